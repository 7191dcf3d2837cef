//go:build !windows

package main

import (
	"os/exec"
	"runtime"
)

func openFolder(dir string) error {
	if runtime.GOOS == "darwin" {
		return exec.Command("open", dir).Start()
	}
	return exec.Command("xdg-open", dir).Start()
}

//go:build windows

package main

import "os/exec"

func openFolder(dir string) error {
	return exec.Command("explorer.exe", dir).Start()
}

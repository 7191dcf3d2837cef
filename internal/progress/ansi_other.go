//go:build !windows

package progress

import "os"

func enableWindowsANSI(*os.File) {}

package platform

import (
	"os"
	"strings"

	"github.com/mitchellh/go-ps"
)

var processesFunc = ps.Processes

// findProcess returns the PID of a running process whose executable name
// matches name case-insensitively, ignoring the current process.
func findProcess(name string) (int, bool) {
	procs, err := processesFunc()
	if err != nil {
		return 0, false
	}
	self := os.Getpid()
	for _, p := range procs {
		if p.Pid() == self {
			continue
		}
		if strings.EqualFold(p.Executable(), name) {
			return p.Pid(), true
		}
	}
	return 0, false
}

//go:build windows

package platform

import (
	"errors"
	"fmt"
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"

	"github.com/koreawook/ClockApp/internal/constants"
)

const runKeyPath = `Software\Microsoft\Windows\CurrentVersion\Run`

type windowsServices struct {
	opts Options
}

func newServices(opts Options) Services {
	return &windowsServices{opts: opts}
}

func schtasks(args ...string) error {
	cmd := exec.Command("schtasks", args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("schtasks %s: %w (%s)", args[0], err, out)
	}
	return nil
}

func (s *windowsServices) EnableStartup(exe string) StartupResult {
	command := StartupCommand(exe)

	regErr := func() error {
		key, _, err := registry.CreateKey(registry.CURRENT_USER, runKeyPath, registry.SET_VALUE)
		if err != nil {
			return fmt.Errorf("failed to open Run key: %w", err)
		}
		defer key.Close()
		return key.SetStringValue(constants.StartupEntryName, command)
	}()
	if regErr == nil {
		return StartupResult{Method: StartupRegistry}
	}

	taskErr := schtasks("/create", "/tn", constants.StartupEntryName,
		"/tr", command, "/sc", "onlogon", "/rl", "limited", "/f")
	if taskErr == nil {
		return StartupResult{Method: StartupScheduledTask}
	}

	return StartupResult{Method: StartupNone, Err: errors.Join(regErr, taskErr)}
}

func (s *windowsServices) DisableStartup() StartupResult {
	var regErr error
	key, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.SET_VALUE)
	if err != nil {
		regErr = err
	} else {
		regErr = key.DeleteValue(constants.StartupEntryName)
		key.Close()
	}

	taskErr := schtasks("/delete", "/tn", constants.StartupEntryName, "/f")

	switch {
	case regErr == nil:
		return StartupResult{Method: StartupRegistry}
	case taskErr == nil:
		return StartupResult{Method: StartupScheduledTask}
	case errors.Is(regErr, registry.ErrNotExist):
		// Nothing was registered anywhere.
		return StartupResult{Method: StartupNone}
	default:
		return StartupResult{Method: StartupNone, Err: errors.Join(regErr, taskErr)}
	}
}

func (s *windowsServices) StartupStatus() (bool, StartupMethod) {
	key, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.QUERY_VALUE)
	if err == nil {
		_, _, err = key.GetStringValue(constants.StartupEntryName)
		key.Close()
		if err == nil {
			return true, StartupRegistry
		}
	}
	if schtasks("/query", "/tn", constants.StartupEntryName) == nil {
		return true, StartupScheduledTask
	}
	return false, StartupNone
}

type mutexInstance struct {
	handle windows.Handle
}

func (m *mutexInstance) Release() error {
	if m.handle == 0 {
		return nil
	}
	err := windows.CloseHandle(m.handle)
	m.handle = 0
	return err
}

func (s *windowsServices) AcquireInstance(name string) (Instance, error) {
	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, err
	}
	handle, err := windows.CreateMutex(nil, false, namePtr)
	if err != nil {
		if errors.Is(err, windows.ERROR_ALREADY_EXISTS) {
			if handle != 0 {
				windows.CloseHandle(handle)
			}
			return nil, ErrAlreadyRunning
		}
		return nil, fmt.Errorf("failed to create instance mutex: %w", err)
	}
	return &mutexInstance{handle: handle}, nil
}

func (s *windowsServices) DetectSibling() Sibling {
	namePtr, err := windows.UTF16PtrFromString(constants.LegacyInstanceMutexName)
	if err == nil {
		if h, err := windows.OpenMutex(windows.SYNCHRONIZE, false, namePtr); err == nil {
			windows.CloseHandle(h)
			return Sibling{Found: true, Via: "mutex"}
		}
	}
	if pid, ok := findProcess(constants.LegacyProcessName); ok {
		return Sibling{Found: true, Via: "process", PID: pid}
	}
	return Sibling{}
}

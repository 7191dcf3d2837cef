//go:build !windows

package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/koreawook/ClockApp/internal/constants"
)

const desktopFileName = "clockapp.desktop"

type unixServices struct {
	opts Options
}

func newServices(opts Options) Services {
	return &unixServices{opts: opts}
}

func (s *unixServices) autostartFile() (string, error) {
	dir := s.opts.AutostartDir
	if dir == "" {
		cfg, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(cfg, "autostart")
	}
	return filepath.Join(dir, desktopFileName), nil
}

func desktopEntry(exe string) string {
	var b strings.Builder
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	fmt.Fprintf(&b, "Name=%s\n", constants.AppName)
	fmt.Fprintf(&b, "Exec=%s\n", StartupCommand(exe))
	b.WriteString("X-GNOME-Autostart-enabled=true\n")
	b.WriteString("Terminal=false\n")
	return b.String()
}

func (s *unixServices) EnableStartup(exe string) StartupResult {
	path, err := s.autostartFile()
	if err != nil {
		return StartupResult{Method: StartupNone, Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return StartupResult{Method: StartupNone, Err: err}
	}
	if err := os.WriteFile(path, []byte(desktopEntry(exe)), 0644); err != nil {
		return StartupResult{Method: StartupNone, Err: fmt.Errorf("failed to write autostart entry: %w", err)}
	}
	return StartupResult{Method: StartupAutostart}
}

func (s *unixServices) DisableStartup() StartupResult {
	path, err := s.autostartFile()
	if err != nil {
		return StartupResult{Method: StartupNone, Err: err}
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return StartupResult{Method: StartupNone, Err: err}
	}
	return StartupResult{Method: StartupAutostart}
}

func (s *unixServices) StartupStatus() (bool, StartupMethod) {
	path, err := s.autostartFile()
	if err != nil {
		return false, StartupNone
	}
	if _, err := os.Stat(path); err == nil {
		return true, StartupAutostart
	}
	return false, StartupNone
}

type lockInstance struct {
	f *os.File
}

func (l *lockInstance) Release() error {
	if l.f == nil {
		return nil
	}
	unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
	err := l.f.Close()
	l.f = nil
	return err
}

func (s *unixServices) AcquireInstance(name string) (Instance, error) {
	dir := s.opts.LockDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(filepath.Join(dir, lockFileName(name)), os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open instance lock: %w", err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, ErrAlreadyRunning
		}
		return nil, fmt.Errorf("failed to lock instance file: %w", err)
	}
	f.Truncate(0)
	fmt.Fprintf(f, "%d\n", os.Getpid())
	return &lockInstance{f: f}, nil
}

func (s *unixServices) DetectSibling() Sibling {
	if pid, ok := findProcess(constants.LegacyProcessName); ok {
		return Sibling{Found: true, Via: "process", PID: pid}
	}
	return Sibling{}
}

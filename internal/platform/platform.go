// Package platform hides the OS integration the clock needs: run-at-login
// registration, the single-instance guard and detection of a running v1
// app. Windows is the primary target; other systems get portable fallbacks.
package platform

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/koreawook/ClockApp/internal/constants"
)

// ErrAlreadyRunning is returned by AcquireInstance when another process
// holds the instance guard.
var ErrAlreadyRunning = errors.New("another instance is already running")

// StartupMethod names the mechanism that registered (or removed) the
// run-at-login entry.
type StartupMethod string

const (
	StartupNone          StartupMethod = "none"
	StartupRegistry      StartupMethod = "registry"
	StartupScheduledTask StartupMethod = "scheduled_task"
	StartupAutostart     StartupMethod = "autostart"
)

// StartupResult reports which mechanism succeeded. Err is set only when
// every mechanism failed.
type StartupResult struct {
	Method StartupMethod
	Err    error
}

// OK reports whether the operation succeeded.
func (r StartupResult) OK() bool {
	return r.Err == nil
}

// Instance is a held single-instance guard.
type Instance interface {
	Release() error
}

// Sibling describes a detected v1 app.
type Sibling struct {
	Found bool
	Via   string // "mutex" or "process"
	PID   int
}

// Services is the OS integration used by the app.
type Services interface {
	// EnableStartup registers exe to start minimized at login.
	EnableStartup(exe string) StartupResult
	// DisableStartup removes the registration; it succeeds if any mechanism does.
	DisableStartup() StartupResult
	// StartupStatus reports whether and how startup is registered.
	StartupStatus() (bool, StartupMethod)
	// AcquireInstance takes the named instance guard.
	AcquireInstance(name string) (Instance, error)
	// DetectSibling looks for a running v1 app.
	DetectSibling() Sibling
}

// Options configures New.
type Options struct {
	// LockDir holds instance lock files where named mutexes are unavailable.
	LockDir string
	// AutostartDir overrides the XDG autostart directory.
	AutostartDir string
}

// New returns the services for the running OS.
func New(opts Options) Services {
	return newServices(opts)
}

// StartupCommand is the command line written into the startup entry.
func StartupCommand(exe string) string {
	return fmt.Sprintf(`"%s" %s`, exe, constants.MinimizedFlag)
}

// Executable returns the running binary path with symlinks resolved.
func Executable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable: %w", err)
	}
	return exe, nil
}

// lockFileName turns a mutex name such as Global\ClockApp_Ver2_... into a
// file name.
func lockFileName(name string) string {
	if i := strings.LastIndex(name, `\`); i >= 0 {
		name = name[i+1:]
	}
	return strings.ToLower(name) + ".lock"
}

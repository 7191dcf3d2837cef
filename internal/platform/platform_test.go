package platform

import (
	"errors"
	"os"
	"testing"

	"github.com/mitchellh/go-ps"
)

func TestStartupCommand(t *testing.T) {
	got := StartupCommand(`C:\Program Files\ClockApp\clockapp.exe`)
	want := `"C:\Program Files\ClockApp\clockapp.exe" --minimized`
	if got != want {
		t.Errorf("StartupCommand() = %s, want %s", got, want)
	}
}

func TestLockFileName(t *testing.T) {
	if got := lockFileName(`Global\ClockApp_Ver2_SingleInstance_Mutex`); got != "clockapp_ver2_singleinstance_mutex.lock" {
		t.Errorf("lockFileName() = %s", got)
	}
	if got := lockFileName("plain"); got != "plain.lock" {
		t.Errorf("lockFileName() = %s", got)
	}
}

func TestStartupResultOK(t *testing.T) {
	if !(StartupResult{Method: StartupRegistry}).OK() {
		t.Error("result without error should be OK")
	}
	if (StartupResult{Method: StartupNone, Err: errors.New("denied")}).OK() {
		t.Error("result with error should not be OK")
	}
}

type fakeProcess struct {
	pid  int
	name string
}

func (p fakeProcess) Pid() int           { return p.pid }
func (p fakeProcess) PPid() int          { return 0 }
func (p fakeProcess) Executable() string { return p.name }

func withProcesses(t *testing.T, procs []ps.Process, err error) {
	t.Helper()
	orig := processesFunc
	processesFunc = func() ([]ps.Process, error) { return procs, err }
	t.Cleanup(func() { processesFunc = orig })
}

func TestFindProcess(t *testing.T) {
	withProcesses(t, []ps.Process{
		fakeProcess{pid: os.Getpid(), name: "ClockApp.exe"},
		fakeProcess{pid: 10, name: "explorer.exe"},
		fakeProcess{pid: 42, name: "clockapp.EXE"},
	}, nil)

	pid, ok := findProcess("ClockApp.exe")
	if !ok || pid != 42 {
		t.Errorf("findProcess() = %d, %v; want 42, true", pid, ok)
	}
}

func TestFindProcessNone(t *testing.T) {
	withProcesses(t, []ps.Process{fakeProcess{pid: 10, name: "explorer.exe"}}, nil)
	if _, ok := findProcess("ClockApp.exe"); ok {
		t.Error("unexpected match")
	}

	withProcesses(t, nil, errors.New("access denied"))
	if _, ok := findProcess("ClockApp.exe"); ok {
		t.Error("listing errors should report no match")
	}
}

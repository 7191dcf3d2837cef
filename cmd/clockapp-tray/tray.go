package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"fyne.io/systray"

	"github.com/koreawook/ClockApp/internal/config"
	"github.com/koreawook/ClockApp/internal/constants"
	"github.com/koreawook/ClockApp/internal/icon"
	"github.com/koreawook/ClockApp/internal/ipc"
	"github.com/koreawook/ClockApp/internal/level"
	"github.com/koreawook/ClockApp/internal/logging"
	"github.com/koreawook/ClockApp/internal/platform"
)

// trayApp manages the tray companion state.
type trayApp struct {
	paths  config.Paths
	client *ipc.Client
	plat   platform.Services
	log    *logging.Logger

	mu         sync.Mutex
	running    bool
	lastStatus *ipc.StatusData

	mStatus   *systray.MenuItem
	mOpen     *systray.MenuItem
	mRest     *systray.MenuItem
	mSettings *systray.MenuItem
	mStartup  *systray.MenuItem
	mLogs     *systray.MenuItem
	mQuit     *systray.MenuItem

	done chan struct{}
}

func newTrayApp(paths config.Paths) *trayApp {
	client := ipc.NewClient(ipc.DefaultAddress(paths.SocketFile()), "tray")
	client.SetTimeout(constants.IPCRequestTimeout)
	return &trayApp{
		paths:  paths,
		client: client,
		plat:   platform.New(platform.Options{LockDir: paths.DataDir}),
		log:    logging.NewDefaultCLILogger().Component("tray"),
		done:   make(chan struct{}),
	}
}

func (a *trayApp) onReady() {
	systray.SetIcon(icon.PNG())
	systray.SetTitle(constants.AppName)
	systray.SetTooltip("ClockApp Ver2 - 연결 중...")

	a.mStatus = systray.AddMenuItem("상태 확인 중...", "ClockApp status")
	a.mStatus.Disable()

	systray.AddSeparator()

	a.mOpen = systray.AddMenuItem("Ver2 열기", "Show the clock window")
	a.mRest = systray.AddMenuItem("지금 휴식", "Open the rest popup now")
	a.mSettings = systray.AddMenuItem("설정", "Open the settings window")

	systray.AddSeparator()

	enabled, _ := a.plat.StartupStatus()
	a.mStartup = systray.AddMenuItemCheckbox("Windows 시작 시 실행", "Start ClockApp at login", enabled)
	a.mLogs = systray.AddMenuItem("로그 보기", "Open the log folder")

	systray.AddSeparator()

	a.mQuit = systray.AddMenuItem("종료", "Quit ClockApp and the tray companion")

	go a.refreshLoop()
	go a.handleMenuClicks()
}

func (a *trayApp) onExit() {
	close(a.done)
}

// refreshLoop polls the clock until the tray exits.
func (a *trayApp) refreshLoop() {
	a.refreshStatus()

	ticker := time.NewTicker(constants.TrayRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.refreshStatus()
		case <-a.done:
			return
		}
	}
}

func (a *trayApp) refreshStatus() {
	ctx, cancel := context.WithTimeout(context.Background(), constants.IPCRequestTimeout)
	defer cancel()

	status, err := a.client.GetStatus(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()

	a.running = err == nil
	a.lastStatus = status
	a.updateUI()
}

// updateUI must be called with a.mu held.
func (a *trayApp) updateUI() {
	systray.SetTooltip(statusTooltip(a.lastStatus))
	a.mStatus.SetTitle(statusLine(a.lastStatus))

	if !a.running {
		a.mRest.Disable()
		a.mSettings.Disable()
	} else {
		a.mRest.Enable()
		a.mSettings.Enable()
		if a.lastStatus.StartupEnabled {
			a.mStartup.Check()
		} else {
			a.mStartup.Uncheck()
		}
	}
}

// statusLine is the disabled first menu entry.
func statusLine(s *ipc.StatusData) string {
	if s == nil {
		return "ClockApp 실행 중 아님"
	}
	if s.RestOpen {
		return "휴식 중"
	}
	return s.NextBreak
}

func statusTooltip(s *ipc.StatusData) string {
	if s == nil {
		return "ClockApp Ver2\n실행 중 아님"
	}
	tip := fmt.Sprintf("ClockApp %s\n%s\n레벨 %d · 누적 %s",
		s.Version, s.NextBreak, s.Level, level.FormatDuration(s.TotalSeconds))
	if s.Weather != "" {
		tip += "\n" + truncate(s.Weather, 40)
	}
	return tip
}

func (a *trayApp) handleMenuClicks() {
	for {
		select {
		case <-a.mOpen.ClickedCh:
			a.openClock()

		case <-a.mRest.ClickedCh:
			a.request("rest", a.client.StartRest)

		case <-a.mSettings.ClickedCh:
			a.request("settings", a.client.OpenSettings)

		case <-a.mStartup.ClickedCh:
			a.toggleStartup()

		case <-a.mLogs.ClickedCh:
			a.viewLogs()

		case <-a.mQuit.ClickedCh:
			a.request("quit", a.client.Quit)
			systray.Quit()
			return

		case <-a.done:
			return
		}
	}
}

func (a *trayApp) request(name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), constants.IPCRequestTimeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		a.log.Warn().Err(err).Str("request", name).Msg("Clock did not answer")
	}

	time.Sleep(300 * time.Millisecond)
	a.refreshStatus()
}

// openClock shows the window of a running clock, or starts one.
func (a *trayApp) openClock() {
	ctx, cancel := context.WithTimeout(context.Background(), constants.IPCRequestTimeout)
	defer cancel()

	if err := a.client.Show(ctx); err == nil {
		return
	}

	exe, err := clockExecutable()
	if err != nil {
		a.log.Error().Err(err).Msg("Failed to find the clock executable")
		return
	}
	if err := exec.Command(exe).Start(); err != nil {
		a.log.Error().Err(err).Str("path", exe).Msg("Failed to launch the clock")
	}
}

func (a *trayApp) toggleStartup() {
	var res platform.StartupResult
	if a.mStartup.Checked() {
		res = a.plat.DisableStartup()
	} else {
		exe, err := clockExecutable()
		if err != nil {
			a.log.Error().Err(err).Msg("Failed to find the clock executable")
			return
		}
		res = a.plat.EnableStartup(exe)
	}
	if !res.OK() {
		a.log.Error().Err(res.Err).Msg("Startup registration failed")
	}

	enabled, method := a.plat.StartupStatus()
	if enabled {
		a.mStartup.Check()
	} else {
		a.mStartup.Uncheck()
	}
	a.log.Info().Bool("enabled", enabled).Str("method", string(method)).Msg("Startup entry updated")
}

func (a *trayApp) viewLogs() {
	dir := a.paths.LogDir
	if err := os.MkdirAll(dir, 0755); err != nil {
		a.log.Warn().Err(err).Str("dir", dir).Msg("Failed to create log directory")
	}
	if err := openFolder(dir); err != nil {
		a.log.Error().Err(err).Str("dir", dir).Msg("Failed to open log directory")
	}
}

// clockExecutable finds the main binary next to the tray companion.
func clockExecutable() (string, error) {
	self, err := platform.Executable()
	if err != nil {
		return "", err
	}
	name := constants.BinaryName
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	exe := filepath.Join(filepath.Dir(self), name)
	if _, err := os.Stat(exe); err != nil {
		if path, lookErr := exec.LookPath(name); lookErr == nil {
			return path, nil
		}
		return "", errors.New(name + " not found next to the tray companion or in PATH")
	}
	return exe, nil
}

// truncate shortens s to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

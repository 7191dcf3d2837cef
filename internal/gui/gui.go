// Package gui is the fyne front end of the clock: the clock window, the
// settings, weather and about windows, the rest, meal and level-up popups
// and the system tray menu.
package gui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"

	"github.com/koreawook/ClockApp/internal/app"
	"github.com/koreawook/ClockApp/internal/config"
	"github.com/koreawook/ClockApp/internal/constants"
	"github.com/koreawook/ClockApp/internal/events"
	"github.com/koreawook/ClockApp/internal/ipc"
	"github.com/koreawook/ClockApp/internal/logging"
	"github.com/koreawook/ClockApp/internal/platform"
	"github.com/koreawook/ClockApp/internal/rest"
	"github.com/koreawook/ClockApp/internal/scheduler"
	"github.com/koreawook/ClockApp/internal/weather"
)

// Options controls how the GUI starts.
type Options struct {
	// Minimized starts hidden in the tray.
	Minimized bool

	// FirstRun registers the startup entry when none exists.
	FirstRun bool

	// Sibling is a running v1 app detected before launch; the user is asked
	// whether to keep both running.
	Sibling platform.Sibling
}

// Run builds the UI and blocks in the fyne event loop until the user quits.
func Run(c *app.Context, opts Options) error {
	if runtime.GOOS == "linux" && os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
		return fmt.Errorf("GUI mode requires a display; DISPLAY and WAYLAND_DISPLAY are not set")
	}

	a := fyneapp.NewWithID(constants.AppID)
	a.SetIcon(AppIcon())
	a.Settings().SetTheme(&clockTheme{})

	ui := NewUI(c, a)
	ui.Build(opts)

	srv := ipc.NewServer(ui, c.Logger.Component("ipc"), ipc.DefaultAddress(c.Paths.SocketFile()))
	if err := srv.Start(); err != nil {
		ui.log.Warn().Err(err).Msg("Control channel unavailable")
	} else {
		defer srv.Stop()
	}

	ui.Start()
	a.Run()
	ui.Stop()
	return nil
}

// UI owns the windows. Widget state is only touched on the fyne thread;
// background work hands results over with fyne.Do.
type UI struct {
	ctx *app.Context
	app fyne.App
	log *logging.Logger

	clock    *ClockWindow
	settings *SettingsWindow
	weather  *WeatherWindow
	about    *AboutWindow
	tray     *Tray

	// UI thread only
	restPopup *RestPopup
	mealPopup *MealPopup
	levelUp   *LevelUpPopup
	focusArm  bool

	runCtx     context.Context
	cancel     context.CancelFunc
	removeTick func()
	wg         sync.WaitGroup
	quitOnce   sync.Once
}

// NewUI creates the UI for a fyne app. Call Build before Start.
func NewUI(c *app.Context, a fyne.App) *UI {
	ctx, cancel := context.WithCancel(context.Background())
	return &UI{
		ctx:    c,
		app:    a,
		log:    c.Logger.Component("gui"),
		runCtx: ctx,
		cancel: cancel,
	}
}

// Build creates the clock window and the tray menu.
func (ui *UI) Build(opts Options) {
	ui.clock = NewClockWindow(ui)
	ui.settings = NewSettingsWindow(ui)
	ui.weather = NewWeatherWindow(ui)
	ui.about = NewAboutWindow(ui)
	ui.tray = NewTray(ui)
	ui.tray.Install()

	lc := ui.app.Lifecycle()
	lc.SetOnEnteredForeground(ui.enteredForeground)
	lc.SetOnExitedForeground(ui.exitedForeground)

	if opts.Minimized {
		ui.log.Info().Msg("Starting minimized to tray")
	} else {
		ui.clock.Show()
	}

	if opts.FirstRun && !ui.ctx.StartupEnabled() {
		if res := ui.ctx.Startup(true); !res.OK() {
			ui.warnStartup(res)
		}
	}

	if opts.Sibling.Found {
		ui.askSibling(opts.Sibling)
	}
}

func (ui *UI) askSibling(s platform.Sibling) {
	ui.clock.Show()
	msg := "ClockApp Ver1이 실행 중입니다.\n두 버전을 함께 실행하면 알림이 중복될 수 있습니다.\n계속 실행하시겠습니까?"
	dialog.NewConfirm("이전 버전 감지", msg, func(ok bool) {
		if !ok {
			ui.log.Info().Str("via", s.Via).Int("pid", s.PID).Msg("Exiting in favour of v1 instance")
			ui.quit()
		}
	}, ui.clock.Window()).Show()
}

// Start launches the scheduler, the weather refresher and the event
// listeners.
func (ui *UI) Start() {
	ui.removeTick = ui.ctx.Scheduler.AddTickHandler(func(now time.Time) {
		cd := ui.ctx.Scheduler.NextBreak(now)
		ui.do(func() { ui.clock.Update(now, cd) })
	})

	ui.goRun(func() {
		ui.ctx.Run(ui.runCtx, func(tr scheduler.Trigger) {
			ui.do(func() { ui.handleTrigger(tr) })
		})
	})
	ui.goRun(ui.weatherLoop)
	ui.goRun(ui.monitorControl)
	ui.goRun(ui.monitorWeather)

	ui.clock.Update(ui.ctx.Now(), ui.ctx.Scheduler.NextBreak(ui.ctx.Now()))
}

// do runs fn on the UI thread unless the event loop has already stopped.
func (ui *UI) do(fn func()) {
	if ui.runCtx.Err() != nil {
		return
	}
	fyne.Do(fn)
}

func (ui *UI) goRun(fn func()) {
	ui.wg.Add(1)
	go func() {
		defer ui.wg.Done()
		fn()
	}()
}

// Stop cancels the background work and closes any open popups so their
// time is credited.
func (ui *UI) Stop() {
	ui.cancel()
	if ui.removeTick != nil {
		ui.removeTick()
	}
	if ctrl, ok := ui.ctx.ActiveRest(); ok {
		ctrl.Close(rest.ReasonClosed)
	}
	if meal, ok := ui.ctx.ActiveMeal(); ok {
		meal.Close(rest.ReasonClosed)
	}
	ui.wg.Wait()
}

func (ui *UI) handleTrigger(tr scheduler.Trigger) {
	switch tr.Kind {
	case scheduler.BreakTrigger:
		ui.openRest(false)
	case scheduler.MealTrigger:
		ui.openMeal(tr.Meal.Kind)
	}
}

// openRest shows a rest popup. Must run on the UI thread.
func (ui *UI) openRest(manual bool) error {
	popup := newRestPopup(ui)
	ctrl, err := ui.ctx.StartRest(manual, popup.hooks())
	if err != nil {
		if errors.Is(err, app.ErrRestOpen) && ui.restPopup != nil {
			ui.restPopup.window.RequestFocus()
		}
		return err
	}
	ui.restPopup = popup
	ui.focusArm = false
	popup.Show(ctrl)
	return nil
}

// enteredForeground arms focus-loss detection once an open rest popup has
// been in front.
func (ui *UI) enteredForeground() {
	if ui.restPopup != nil {
		ui.focusArm = true
	}
}

// exitedForeground closes an armed rest popup. Fyne reports focus per
// application, so switching between ClockApp's own windows does not count.
func (ui *UI) exitedForeground() {
	if ui.restPopup != nil && ui.focusArm {
		ui.restPopup.FocusLost()
	}
}

func (ui *UI) restClosed(p *RestPopup) {
	if ui.restPopup == p {
		ui.restPopup = nil
		ui.focusArm = false
	}
}

// openMeal shows a meal popup. Must run on the UI thread.
func (ui *UI) openMeal(meal config.MealKind) {
	popup := newMealPopup(ui)
	countdown, err := ui.ctx.StartMeal(meal, popup.hooks())
	if err != nil {
		ui.log.Debug().Err(err).Str("meal", string(meal)).Msg("Meal popup not opened")
		return
	}
	ui.mealPopup = popup
	popup.Show(countdown)
}

func (ui *UI) mealClosed(p *MealPopup) {
	if ui.mealPopup == p {
		ui.mealPopup = nil
	}
}

// showLevelUp replaces any level-up popup on screen. Must run on the UI thread.
func (ui *UI) showLevelUp(lvl int, message string) {
	if ui.levelUp != nil {
		ui.levelUp.Close()
	}
	ui.levelUp = NewLevelUpPopup(ui.app, lvl, message, func(p *LevelUpPopup) {
		if ui.levelUp == p {
			ui.levelUp = nil
		}
	})
	ui.levelUp.Show()
}

// hideToTray hides the clock window and tells the user the app keeps running.
func (ui *UI) hideToTray() {
	ui.clock.Hide()
	ui.ctx.Notifier.RunningInBackground()
}

func (ui *UI) quit() {
	ui.quitOnce.Do(func() {
		ui.log.Info().Msg("Quitting")
		ui.app.Quit()
	})
}

func (ui *UI) warnStartup(res platform.StartupResult) {
	ui.log.Warn().Err(res.Err).Msg("Startup registration failed")
	dialog.ShowInformation("시작프로그램 등록 실패",
		fmt.Sprintf("윈도우 시작 시 자동 실행을 설정하지 못했습니다.\n%v", res.Err), ui.clock.Window())
}

// weatherLoop fetches once at start and again whenever the cache expires.
func (ui *UI) weatherLoop() {
	ui.refreshWeather(false)

	ticker := time.NewTicker(ui.ctx.Config.CacheTTL())
	defer ticker.Stop()
	for {
		select {
		case <-ui.runCtx.Done():
			return
		case <-ticker.C:
			ui.refreshWeather(false)
		}
	}
}

func (ui *UI) refreshWeather(force bool) {
	ui.clock.status.SetProgress("날씨 정보를 확인하는 중...")
	ui.ctx.Weather.Get(ui.runCtx, force)
}

// monitorWeather forwards weather results to the windows.
func (ui *UI) monitorWeather() {
	ch := ui.ctx.Bus.Subscribe(events.EventWeatherUpdate)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			we, ok := ev.(*events.WeatherEvent)
			if !ok {
				continue
			}
			ui.clock.SetWeather(we.Summary, we.Source)
			if we.Source == string(weather.SourceFallback) {
				ui.clock.status.SetWarning("날씨 서버에 연결할 수 없어 기본 정보를 표시합니다")
			} else {
				ui.clock.status.SetInfo(fmt.Sprintf("날씨 업데이트: %s", we.Timestamp().Format("15:04")))
			}
		case <-ui.runCtx.Done():
			return
		}
	}
}

// monitorControl handles window requests published by other components.
func (ui *UI) monitorControl() {
	show := ui.ctx.Bus.Subscribe(events.EventShowWindow)
	settings := ui.ctx.Bus.Subscribe(events.EventOpenSettings)
	quit := ui.ctx.Bus.Subscribe(events.EventQuit)
	changed := ui.ctx.Bus.Subscribe(events.EventSettingsChanged)
	for {
		select {
		case _, ok := <-changed:
			if !ok {
				return
			}
			ui.do(ui.tray.Refresh)
		case _, ok := <-show:
			if !ok {
				return
			}
			ui.do(ui.clock.Show)
		case _, ok := <-settings:
			if !ok {
				return
			}
			ui.do(ui.settings.Show)
		case _, ok := <-quit:
			if !ok {
				return
			}
			ui.do(ui.quit)
		case <-ui.runCtx.Done():
			return
		}
	}
}

// GetStatus implements ipc.Handler.
func (ui *UI) GetStatus() *ipc.StatusData {
	return ui.ctx.Status()
}

// Show implements ipc.Handler.
func (ui *UI) Show() error {
	ui.ctx.Bus.PublishControl(events.EventShowWindow, "ipc")
	return nil
}

// OpenSettings implements ipc.Handler.
func (ui *UI) OpenSettings() error {
	ui.ctx.Bus.PublishControl(events.EventOpenSettings, "ipc")
	return nil
}

// StartRest implements ipc.Handler. It reports app.ErrRestOpen when a rest
// popup is already on screen.
func (ui *UI) StartRest() error {
	if err := ui.runCtx.Err(); err != nil {
		return err
	}
	var err error
	fyne.DoAndWait(func() {
		err = ui.openRest(true)
	})
	return err
}

// ReloadSettings implements ipc.Handler.
func (ui *UI) ReloadSettings() error {
	s := ui.ctx.ReloadSettings()
	ui.log.Info().Int("interval", s.TimeInterval).Msg("Settings reloaded")
	ui.ctx.Bus.PublishControl(events.EventSettingsChanged, "ipc")
	return nil
}

// Quit implements ipc.Handler.
func (ui *UI) Quit() error {
	ui.ctx.Bus.PublishControl(events.EventQuit, "ipc")
	return nil
}

package gui

import (
	"errors"
	"io"
	"math/rand"
	"strings"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"

	"github.com/koreawook/ClockApp/internal/app"
	"github.com/koreawook/ClockApp/internal/config"
	"github.com/koreawook/ClockApp/internal/history"
	"github.com/koreawook/ClockApp/internal/level"
	"github.com/koreawook/ClockApp/internal/logging"
	"github.com/koreawook/ClockApp/internal/platform"
	"github.com/koreawook/ClockApp/internal/rest"
	"github.com/koreawook/ClockApp/internal/weather"
)

type fakePlatform struct {
	enabled bool
}

func (p *fakePlatform) EnableStartup(string) platform.StartupResult {
	p.enabled = true
	return platform.StartupResult{Method: platform.StartupRegistry}
}

func (p *fakePlatform) DisableStartup() platform.StartupResult {
	p.enabled = false
	return platform.StartupResult{Method: platform.StartupRegistry}
}

func (p *fakePlatform) StartupStatus() (bool, platform.StartupMethod) {
	if p.enabled {
		return true, platform.StartupRegistry
	}
	return false, platform.StartupNone
}

func (p *fakePlatform) AcquireInstance(string) (platform.Instance, error) {
	return nil, errors.New("not supported")
}

func (p *fakePlatform) DetectSibling() platform.Sibling {
	return platform.Sibling{}
}

var testNow = time.Date(2025, 3, 4, 9, 0, 0, 0, time.Local)

func newTestUI(t *testing.T) (*UI, *fakePlatform) {
	t.Helper()
	a := test.NewApp()
	t.Cleanup(a.Quit)

	paths := config.NewPaths(t.TempDir())
	cfg := config.NewAppConfig()
	cfg.Weather.Enabled = false
	cfg.Notifications.Enabled = false
	if err := config.SaveAppConfig(cfg, paths.AppConfigFile()); err != nil {
		t.Fatal(err)
	}
	logger := logging.NewLogger(app.ModeCLI, nil)
	logger.SetOutput(io.Discard)
	plat := &fakePlatform{}

	c, err := app.New(app.Options{
		Paths:    &paths,
		Mode:     app.ModeCLI,
		Platform: plat,
		Logger:   logger,
		Now:      func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	t.Cleanup(c.Close)

	ui := NewUI(c, a)
	ui.clock = NewClockWindow(ui)
	ui.settings = NewSettingsWindow(ui)
	ui.weather = NewWeatherWindow(ui)
	ui.about = NewAboutWindow(ui)
	ui.tray = NewTray(ui)
	t.Cleanup(func() {
		ui.cancel()
		ui.wg.Wait()
	})
	return ui, plat
}

func TestFormatDate(t *testing.T) {
	if got := formatDate(testNow); got != "2025-03-04 화요일" {
		t.Errorf("formatDate() = %q", got)
	}
}

func TestSettingsFormParse(t *testing.T) {
	valid := formFromSettings(config.DefaultSettings())

	tests := []struct {
		name    string
		edit    func(*settingsForm)
		wantErr error
	}{
		{"defaults", func(*settingsForm) {}, nil},
		{"spaces trimmed", func(f *settingsForm) { f.Interval = " 45 " }, nil},
		{"not a number", func(f *settingsForm) { f.Interval = "abc" }, errNotANumber},
		{"empty hour", func(f *settingsForm) { f.LunchHour = "" }, errNotANumber},
		{"interval zero", func(f *settingsForm) { f.Interval = "0" }, config.ErrInvalidInterval},
		{"interval too long", func(f *settingsForm) { f.Interval = "1441" }, config.ErrInvalidInterval},
		{"dinner hour", func(f *settingsForm) { f.DinnerHour = "24" }, config.ErrInvalidDinnerHour},
		{"lunch minute", func(f *settingsForm) { f.LunchMinute = "60" }, config.ErrInvalidLunchMinute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid
			tt.edit(&f)
			_, err := f.parse()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("parse() error = %v, want %v", err, tt.wantErr)
			}
			if err != nil && settingsErrorText(err) == "" {
				t.Error("no message for error")
			}
		})
	}

	s, err := valid.parse()
	if err != nil || s != config.DefaultSettings() {
		t.Errorf("round trip = %+v, %v", s, err)
	}
}

func TestNumberOptions(t *testing.T) {
	opts := numberOptions(24)
	if len(opts) != 24 || opts[0] != "00" || opts[23] != "23" {
		t.Errorf("numberOptions(24) = %v", opts)
	}
}

func TestSettingsWindowSave(t *testing.T) {
	ui, plat := newTestUI(t)
	ui.settings.Show()

	if ui.settings.interval.Text != "20" || ui.settings.lunchMinute.Selected != "10" {
		t.Fatalf("form not loaded: interval=%q lunch minute=%q",
			ui.settings.interval.Text, ui.settings.lunchMinute.Selected)
	}

	ui.settings.interval.SetText("45")
	ui.settings.dinnerCheck.SetChecked(true)
	ui.settings.startup.SetChecked(true)
	if !ui.settings.save() {
		t.Fatalf("save() rejected: %q", ui.settings.errorText.Text)
	}

	got := ui.ctx.CurrentSettings()
	if got.TimeInterval != 45 || !got.DinnerEnabled {
		t.Errorf("saved settings = %+v", got)
	}
	if !plat.enabled {
		t.Error("startup entry not registered")
	}

	ui.settings.Show()
	ui.settings.interval.SetText("0")
	if ui.settings.save() {
		t.Fatal("save() accepted interval 0")
	}
	if ui.settings.errorText.Text == "" {
		t.Error("no validation message shown")
	}
	if ui.ctx.CurrentSettings().TimeInterval != 45 {
		t.Error("rejected settings were applied")
	}
}

func TestClockWindowUpdate(t *testing.T) {
	ui, _ := newTestUI(t)

	ui.clock.Update(testNow, ui.ctx.Scheduler.NextBreak(testNow))
	if ui.clock.timeText.Text != "09:00:00" {
		t.Errorf("time = %q", ui.clock.timeText.Text)
	}
	if ui.clock.dateText.Text != "2025-03-04 화요일" {
		t.Errorf("date = %q", ui.clock.dateText.Text)
	}
	if ui.clock.breakText.Text != "⏰ 다음 휴식: 20:00" {
		t.Errorf("next break = %q", ui.clock.breakText.Text)
	}
	if !strings.Contains(ui.clock.levelText.Text, "레벨 1") {
		t.Errorf("level = %q", ui.clock.levelText.Text)
	}
}

func TestRestPopupLifecycle(t *testing.T) {
	ui, _ := newTestUI(t)

	if err := ui.openRest(true); err != nil {
		t.Fatalf("openRest() error = %v", err)
	}
	p := ui.restPopup
	if p == nil {
		t.Fatal("rest popup not registered")
	}
	if p.countdown.Text != "30초" {
		t.Errorf("countdown = %q", p.countdown.Text)
	}
	if !p.confirm.Disabled() || p.confirm.Text != "확인 (20초 후)" {
		t.Errorf("confirm = %q disabled=%v", p.confirm.Text, p.confirm.Disabled())
	}
	if p.level.Text != "레벨: 1" {
		t.Errorf("level = %q", p.level.Text)
	}

	if err := ui.openRest(false); !errors.Is(err, app.ErrRestOpen) {
		t.Errorf("second openRest() error = %v", err)
	}

	p.render(rest.View{
		Remaining:      5,
		Total:          30,
		ConfirmEnabled: true,
		ConfirmLabel:   "확인",
		Band:           rest.BandRed,
		Progress:       level.ProgressFor(45),
	})
	if p.confirm.Disabled() || p.countdown.Color != colorRed {
		t.Error("confirm should be enabled and the countdown red")
	}

	ctrl, ok := ui.ctx.ActiveRest()
	if !ok {
		t.Fatal("no active rest")
	}
	ctrl.Close(rest.ReasonClosed)
	if ui.restPopup != nil {
		t.Error("popup still registered after close")
	}
	if !p.closed {
		t.Error("popup window not dismissed")
	}
}

func TestRestPopupClosesWhenAppLeavesForeground(t *testing.T) {
	ui, _ := newTestUI(t)

	if err := ui.openRest(true); err != nil {
		t.Fatal(err)
	}
	p := ui.restPopup

	// Leaving the foreground before the popup was ever in front is ignored.
	ui.exitedForeground()
	if _, open := ui.ctx.ActiveRest(); !open {
		t.Fatal("popup closed before it reached the foreground")
	}

	ui.enteredForeground()
	ui.exitedForeground()
	if _, open := ui.ctx.ActiveRest(); open {
		t.Fatal("popup still open after the app left the foreground")
	}
	if ui.restPopup != nil || !p.closed {
		t.Error("popup not dismissed")
	}

	sessions, err := ui.ctx.History.Recent(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 || sessions[0].Reason != string(rest.ReasonFocusLost) {
		t.Errorf("sessions = %+v", sessions)
	}
}

func TestMealPopupLifecycle(t *testing.T) {
	ui, _ := newTestUI(t)

	ui.openMeal(config.Lunch)
	p := ui.mealPopup
	if p == nil {
		t.Fatal("meal popup not registered")
	}
	if p.timer.Text != "1:00:00" {
		t.Errorf("timer = %q", p.timer.Text)
	}
	if !strings.Contains(p.message.Text, "점심") {
		t.Errorf("message = %q", p.message.Text)
	}

	countdown, _ := ui.ctx.ActiveMeal()
	countdown.Close(rest.ReasonConfirm)
	if ui.mealPopup != nil {
		t.Error("meal popup still registered")
	}
}

func TestLevelUpPopupClosesOnce(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	calls := 0
	p := NewLevelUpPopup(a, 4, level.Message(4), func(*LevelUpPopup) { calls++ })
	if p.fireworks == nil {
		t.Error("level 4 should have fireworks")
	}
	p.Show()
	p.Close()
	p.Close()
	if calls != 1 {
		t.Errorf("onClosed ran %d times", calls)
	}

	quiet := NewLevelUpPopup(a, 2, level.Message(2), nil)
	if quiet.fireworks != nil {
		t.Error("level 2 should not have fireworks")
	}
	quiet.Close()
}

func TestShowLevelUpReplacesPrevious(t *testing.T) {
	ui, _ := newTestUI(t)

	ui.showLevelUp(2, level.Message(2))
	first := ui.levelUp
	ui.showLevelUp(3, level.Message(3))
	if !first.closed {
		t.Error("previous popup left open")
	}
	if ui.levelUp == nil || ui.levelUp.Level() != 3 {
		t.Error("new popup not tracked")
	}
	ui.levelUp.Close()
	if ui.levelUp != nil {
		t.Error("closed popup still tracked")
	}
}

func TestFireworksFade(t *testing.T) {
	f := newFireworks(level.Celebration{Particles: 8, MaxSize: 3, SpawnRate: 1}, rand.New(rand.NewSource(1)))
	f.step()
	if len(f.live) != 8 || len(f.layer.Objects) != 8 {
		t.Fatalf("live = %d objects = %d", len(f.live), len(f.layer.Objects))
	}

	f.cfg.SpawnRate = 0
	for i := 0; i < 40; i++ {
		f.step()
	}
	if len(f.live) != 0 || len(f.layer.Objects) != 0 {
		t.Errorf("particles not cleared: live = %d objects = %d", len(f.live), len(f.layer.Objects))
	}
}

func TestWeatherWindowRender(t *testing.T) {
	ui, _ := newTestUI(t)
	ui.weather.build()

	report := weather.Fallback(testNow)
	for len(report.Hourly) < 10 {
		report.Hourly = append(report.Hourly, weather.Slot{Time: "00:00", Icon: "☀️", Temp: "10°C"})
	}
	ui.weather.render(weather.Result{Report: report, Source: weather.SourceFallback, FetchedAt: testNow})

	if n := len(ui.weather.slots.Objects); n != maxForecastSlots {
		t.Errorf("slots = %d, want %d", n, maxForecastSlots)
	}
	if ui.weather.updated.Text != "🔄 마지막 업데이트: 09:00 (기본값)" {
		t.Errorf("updated = %q", ui.weather.updated.Text)
	}
	if !strings.HasPrefix(ui.weather.details.Text, "습도: ") {
		t.Errorf("details = %q", ui.weather.details.Text)
	}
}

func TestAboutStats(t *testing.T) {
	ui, _ := newTestUI(t)

	_, err := ui.ctx.History.Record(history.Session{
		Kind:      history.KindRest,
		Reason:    "timeout",
		StartedAt: testNow.Add(-time.Hour),
		Elapsed:   90 * time.Second,
	})
	if err != nil {
		t.Fatal(err)
	}

	text := ui.about.statsText(testNow)
	if !strings.Contains(text, "오늘 휴식 1회 (1분 30초)") {
		t.Errorf("stats = %q", text)
	}
	if !strings.Contains(text, "최근 7일 휴식 1회") {
		t.Errorf("stats = %q", text)
	}
}

func TestTrayToggleBreaks(t *testing.T) {
	ui, _ := newTestUI(t)
	ui.tray.breakItem = fyne.NewMenuItem("휴식 알림", ui.tray.toggleBreaks)
	ui.tray.menu = fyne.NewMenu("ClockApp Ver2", ui.tray.breakItem)
	ui.tray.Refresh()
	if !ui.tray.breakItem.Checked {
		t.Fatal("break item should start checked")
	}

	ui.tray.breakItem.Action()
	if ui.ctx.CurrentSettings().BreakEnabled {
		t.Error("break reminders still enabled")
	}
	if ui.tray.breakItem.Checked {
		t.Error("menu item not updated")
	}
}

package app

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/koreawook/ClockApp/internal/config"
	"github.com/koreawook/ClockApp/internal/events"
	"github.com/koreawook/ClockApp/internal/history"
	"github.com/koreawook/ClockApp/internal/logging"
	"github.com/koreawook/ClockApp/internal/platform"
	"github.com/koreawook/ClockApp/internal/rest"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fakePlatform struct {
	enabled bool
	exe     string
}

func (p *fakePlatform) EnableStartup(exe string) platform.StartupResult {
	p.enabled = true
	p.exe = exe
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

func newTestContext(t *testing.T) (*Context, *fakeClock, *fakePlatform) {
	t.Helper()
	paths := config.NewPaths(t.TempDir())

	cfg := config.NewAppConfig()
	cfg.Weather.Enabled = false
	cfg.Notifications.Enabled = false
	if err := config.SaveAppConfig(cfg, paths.AppConfigFile()); err != nil {
		t.Fatal(err)
	}

	logger := logging.NewLogger(ModeCLI, nil)
	logger.SetOutput(io.Discard)

	clock := &fakeClock{t: time.Date(2025, 3, 4, 9, 0, 0, 0, time.Local)}
	plat := &fakePlatform{}

	c, err := New(Options{
		Paths:    &paths,
		Mode:     ModeCLI,
		Platform: plat,
		Logger:   logger,
		Now:      clock.Now,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(c.Close)
	return c, clock, plat
}

func TestNewUsesDefaults(t *testing.T) {
	c, _, _ := newTestContext(t)

	if c.CurrentSettings() != config.DefaultSettings() {
		t.Errorf("settings = %+v, want defaults", c.CurrentSettings())
	}
	if c.Config.Weather.Enabled {
		t.Error("clock.conf was not read")
	}
	if c.History == nil {
		t.Fatal("history store should be open")
	}
	if c.Stretch == nil || c.Stretch.Count() != 0 {
		t.Error("expected an empty stretch picker")
	}
}

func TestSaveSettings(t *testing.T) {
	c, _, _ := newTestContext(t)
	ch := c.Bus.Subscribe(events.EventSettingsChanged)

	s := config.DefaultSettings()
	s.TimeInterval = 45
	if err := c.SaveSettings(s, "test"); err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}
	if c.Scheduler.Settings().TimeInterval != 45 {
		t.Error("scheduler did not receive the new settings")
	}
	if got, _ := c.Settings.Load(); got != s {
		t.Errorf("stored settings = %+v", got)
	}

	select {
	case ev := <-ch:
		if ce, ok := ev.(*events.ControlEvent); !ok || ce.Origin != "test" {
			t.Errorf("unexpected event %#v", ev)
		}
	case <-time.After(time.Second):
		t.Error("settings_changed not published")
	}

	bad := s
	bad.TimeInterval = 0
	if err := c.SaveSettings(bad, "test"); !errors.Is(err, config.ErrInvalidInterval) {
		t.Errorf("SaveSettings(invalid) = %v", err)
	}
	if c.Scheduler.Settings().TimeInterval != 45 {
		t.Error("invalid settings reached the scheduler")
	}
}

func TestSaveSettingsRestartsBreak(t *testing.T) {
	c, clock, _ := newTestContext(t)

	s := config.DefaultSettings()
	s.TimeInterval = 60
	if err := c.SaveSettings(s, "test"); err != nil {
		t.Fatal(err)
	}
	clock.Advance(30 * time.Minute)

	s.TimeInterval = 20
	if err := c.SaveSettings(s, "test"); err != nil {
		t.Fatal(err)
	}
	clock.Advance(time.Second)
	if c.Scheduler.CheckBreak(clock.Now()) {
		t.Fatalf("break fired right after shortening the interval; last break %v, now %v",
			c.Scheduler.LastBreak(), clock.Now())
	}

	clock.Advance(20 * time.Minute)
	if !c.Scheduler.CheckBreak(clock.Now()) {
		t.Error("break should fire 20 minutes after the save")
	}

	// A reload from disk restarts the interval the same way.
	clock.Advance(10 * time.Minute)
	c.ReloadSettings()
	if !c.Scheduler.LastBreak().Equal(clock.Now()) {
		t.Errorf("LastBreak after reload = %v, want %v", c.Scheduler.LastBreak(), clock.Now())
	}
}

func TestRestPopupRunsOnSchedulerTick(t *testing.T) {
	c, clock, _ := newTestContext(t)

	var (
		ticks    int
		levelUps []int
		closed   []rest.Summary
	)
	ctrl, err := c.StartRest(true, RestHooks{
		OnTick:    func(rest.View) { ticks++ },
		OnLevelUp: func(lvl int, _ string) { levelUps = append(levelUps, lvl) },
		OnClosed:  func(s rest.Summary) { closed = append(closed, s) },
	})
	if err != nil {
		t.Fatalf("StartRest() error = %v", err)
	}
	if _, err := c.StartRest(false, RestHooks{}); !errors.Is(err, ErrRestOpen) {
		t.Errorf("second StartRest() error = %v, want ErrRestOpen", err)
	}

	for i := 0; i < 31; i++ {
		clock.Advance(time.Second)
		c.Scheduler.Step()
	}

	if ctrl.State() != rest.Closed {
		t.Fatalf("state = %v, want closed", ctrl.State())
	}
	if ticks != 30 {
		t.Errorf("OnTick ran %d times, want 30", ticks)
	}
	if len(levelUps) != 1 || levelUps[0] != 2 {
		t.Errorf("level ups = %v, want [2]", levelUps)
	}
	if len(closed) != 1 || closed[0].Reason != rest.ReasonTimeout {
		t.Fatalf("closed = %+v", closed)
	}
	if _, open := c.ActiveRest(); open {
		t.Error("popup still registered after close")
	}

	st, _ := c.Level.Load()
	if st.TotalSeconds != 31 || st.Level != 2 {
		t.Errorf("level state = %+v", st)
	}

	sessions, err := c.History.Recent(5)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	got := sessions[0]
	if got.Kind != history.KindRest || !got.Manual || got.Reason != "timeout" || got.Elapsed != 31*time.Second {
		t.Errorf("recorded session = %+v", got)
	}
	if got.LevelBefore != 1 || got.LevelAfter != 2 {
		t.Errorf("levels = %d -> %d", got.LevelBefore, got.LevelAfter)
	}

	// Further ticks must not touch the closed popup.
	clock.Advance(time.Second)
	c.Scheduler.Step()
	if ticks != 30 {
		t.Error("closed popup kept ticking")
	}

	if _, err := c.StartRest(false, RestHooks{}); err != nil {
		t.Errorf("StartRest() after close error = %v", err)
	}
}

func TestManualRestResetsBreak(t *testing.T) {
	c, clock, _ := newTestContext(t)

	clock.Advance(10 * time.Minute)
	ctrl, err := c.StartRest(true, RestHooks{})
	if err != nil {
		t.Fatal(err)
	}
	defer ctrl.Close(rest.ReasonClosed)

	if !c.Scheduler.LastBreak().Equal(clock.Now()) {
		t.Errorf("LastBreak = %v, want %v", c.Scheduler.LastBreak(), clock.Now())
	}
}

func TestMealPopupRecorded(t *testing.T) {
	c, clock, _ := newTestContext(t)

	var summary rest.MealSummary
	countdown, err := c.StartMeal(config.Lunch, MealHooks{
		OnClosed: func(s rest.MealSummary) { summary = s },
	})
	if err != nil {
		t.Fatalf("StartMeal() error = %v", err)
	}
	if _, err := c.StartMeal(config.Dinner, MealHooks{}); !errors.Is(err, ErrMealOpen) {
		t.Errorf("second StartMeal() error = %v, want ErrMealOpen", err)
	}

	clock.Advance(90 * time.Second)
	countdown.Close(rest.ReasonClosed)

	if summary.Meal != config.Lunch || summary.Completed {
		t.Errorf("summary = %+v", summary)
	}
	sessions, err := c.History.Recent(5)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 || sessions[0].Kind != history.KindMeal || sessions[0].Meal != "lunch" {
		t.Errorf("sessions = %+v", sessions)
	}
	if _, open := c.ActiveMeal(); open {
		t.Error("meal popup still registered")
	}
}

func TestStatus(t *testing.T) {
	c, clock, plat := newTestContext(t)

	clock.Advance(5 * time.Minute)
	st := c.Status()
	if st.NextBreak != "⏰ 다음 휴식: 15:00" {
		t.Errorf("NextBreak = %q", st.NextBreak)
	}
	if st.NextBreakSeconds != 900 || !st.BreakEnabled || st.MealPaused {
		t.Errorf("status = %+v", st)
	}
	if st.Level != 1 || st.RestOpen || st.StartupEnabled {
		t.Errorf("status = %+v", st)
	}
	if st.Uptime != "5m0s" {
		t.Errorf("Uptime = %q", st.Uptime)
	}

	if res := c.Startup(true); !res.OK() {
		t.Fatalf("Startup(true) = %+v", res)
	}
	if plat.exe == "" {
		t.Error("executable path not passed to the platform")
	}
	if !c.Status().StartupEnabled {
		t.Error("StartupEnabled not reported")
	}

	ctrl, err := c.StartRest(false, RestHooks{})
	if err != nil {
		t.Fatal(err)
	}
	if !c.Status().RestOpen {
		t.Error("RestOpen not reported")
	}
	ctrl.Close(rest.ReasonClosed)
}

func TestStatusDuringLunch(t *testing.T) {
	c, clock, _ := newTestContext(t)

	clock.Advance(3*time.Hour + 15*time.Minute) // 12:15
	st := c.Status()
	if !st.MealPaused || st.ActiveMeal != "점심" || st.NextBreakSeconds != 0 {
		t.Errorf("status = %+v", st)
	}
}

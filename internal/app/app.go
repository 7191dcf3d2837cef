// Package app wires the clock's stores and services into one Context that
// the GUI, the CLI and the control channel share.
package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/koreawook/ClockApp/internal/config"
	"github.com/koreawook/ClockApp/internal/constants"
	"github.com/koreawook/ClockApp/internal/events"
	"github.com/koreawook/ClockApp/internal/history"
	"github.com/koreawook/ClockApp/internal/level"
	"github.com/koreawook/ClockApp/internal/logging"
	"github.com/koreawook/ClockApp/internal/notify"
	"github.com/koreawook/ClockApp/internal/platform"
	"github.com/koreawook/ClockApp/internal/scheduler"
	"github.com/koreawook/ClockApp/internal/stretch"
	"github.com/koreawook/ClockApp/internal/weather"
)

// Errors returned when a popup of the same kind is already on screen.
var (
	ErrRestOpen = errors.New("rest popup already open")
	ErrMealOpen = errors.New("meal popup already open")
)

// Modes accepted by Options.Mode.
const (
	ModeGUI = "gui"
	ModeCLI = "cli"
)

// Options configures New. Zero values select the defaults.
type Options struct {
	// Paths overrides the data directory layout.
	Paths *config.Paths

	// Mode is ModeGUI or ModeCLI; it selects the log sink.
	Mode string

	// Verbose forces debug logging.
	Verbose bool

	// Platform overrides the OS services.
	Platform platform.Services

	// Logger overrides the logger built from Mode.
	Logger *logging.Logger

	// Now is the clock used by the scheduler and popups.
	Now func() time.Time
}

// Context carries everything the clock needs at run time.
type Context struct {
	Paths     config.Paths
	Config    *config.AppConfig
	Settings  *config.SettingsManager
	Level     *level.Store
	Scheduler *scheduler.Scheduler
	Weather   *weather.Service
	History   *history.Store // nil when the database could not be opened
	Notifier  *notify.Notifier
	Stretch   *stretch.Picker
	Bus       *events.EventBus
	Platform  platform.Services
	Logger    *logging.Logger
	StartedAt time.Time

	now func() time.Time

	mu         sync.Mutex
	activeRest *restSession
	activeMeal *mealSession
}

// New loads the configuration and settings and builds every service. Load
// problems are logged and replaced by defaults; only a data directory that
// cannot be created is an error.
func New(opts Options) (*Context, error) {
	paths := config.DefaultPaths()
	if opts.Paths != nil {
		paths = *opts.Paths
	}
	if err := paths.Ensure(); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Mode == "" {
		opts.Mode = ModeGUI
	}

	bus := events.NewEventBus(constants.EventBusDefaultBuffer)

	logger := opts.Logger
	if logger == nil {
		if opts.Mode == ModeGUI {
			logger = logging.NewGUILogger(paths.LogFile(), bus)
		} else {
			logger = logging.NewLogger(ModeCLI, bus)
		}
	}

	cfg, cfgErr := loadConfig(paths.AppConfigFile())
	switch {
	case opts.Verbose:
		logging.SetGlobalLevel(zerolog.DebugLevel)
	case opts.Mode == ModeCLI:
		logging.SetGlobalLevel(zerolog.WarnLevel)
	default:
		logging.SetGlobalLevel(logging.ParseLevel(cfg.App.LogLevel))
	}
	if cfgErr != nil {
		logger.Warn().Err(cfgErr).Str("path", paths.AppConfigFile()).Msg("Using default configuration")
	}

	manager := config.NewSettingsManager(config.NewSettingsStore(paths.SettingsFile()), paths)
	settings, res := manager.Load()
	switch res.Outcome {
	case config.Loaded:
	case config.Missing:
		logger.Info().Str("path", paths.SettingsFile()).Msg("No settings file, using defaults")
	default:
		logger.Warn().Err(res.Err).Str("outcome", res.Outcome.String()).Str("path", paths.SettingsFile()).Msg("Using default settings")
	}

	c := &Context{
		Paths:     paths,
		Config:    cfg,
		Settings:  manager,
		Level:     level.NewStore(paths.LevelFile()),
		Bus:       bus,
		Logger:    logger,
		StartedAt: opts.Now(),
		now:       opts.Now,
	}

	c.Scheduler = scheduler.New(settings, scheduler.Options{
		MealWindow:  cfg.MealWindow(),
		MealCatchUp: cfg.Scheduler.MealCatchUp,
		Now:         opts.Now,
		Bus:         bus,
	})

	c.Weather, c.History, c.Stretch = c.openServices()

	c.Notifier = notify.NewNotifier(cfg.Notifications, logger.Component("notify"))

	c.Platform = opts.Platform
	if c.Platform == nil {
		c.Platform = platform.New(platform.Options{})
	}

	return c, nil
}

func loadConfig(path string) (*config.AppConfig, error) {
	cfg, err := config.LoadAppConfig(path)
	if err != nil {
		return config.NewAppConfig(), err
	}
	if err := cfg.Validate(); err != nil {
		return config.NewAppConfig(), err
	}
	return cfg, nil
}

func (c *Context) openServices() (*weather.Service, *history.Store, *stretch.Picker) {
	wlog := c.Logger.Component("weather")
	svc, err := weather.NewFromConfig(c.Config, c.Paths, wlog, c.Bus)
	if err != nil {
		wlog.Warn().Err(err).Msg("Weather client unavailable, fallback data only")
		svc = weather.NewService(weather.Options{
			Cache:    weather.NewCache(c.Paths.WeatherCacheFile(), c.Config.CacheTTL()),
			Disabled: true,
			Now:      c.now,
			Logger:   wlog,
			Bus:      c.Bus,
		})
	}

	hist, err := history.Open(c.Paths.HistoryFile())
	if err != nil {
		c.Logger.Warn().Err(err).Str("path", c.Paths.HistoryFile()).Msg("Session history disabled")
		hist = nil
	}

	dir := c.Config.ResolveStretchDir()
	picker, err := stretch.NewPicker(dir, nil)
	if err != nil {
		c.Logger.Warn().Err(err).Str("dir", dir).Msg("Failed to scan stretch images")
	}
	c.Logger.Debug().Str("dir", dir).Int("images", picker.Count()).Msg("Stretch images")

	return svc, hist, picker
}

// Now returns the context clock.
func (c *Context) Now() time.Time {
	return c.now()
}

// Close releases the history database, the log file and the event bus.
func (c *Context) Close() {
	if c.History != nil {
		if err := c.History.Close(); err != nil {
			c.Logger.Warn().Err(err).Msg("Failed to close history")
		}
	}
	c.Bus.Close()
	_ = c.Logger.Close()
}

// CurrentSettings returns the settings the scheduler is using.
func (c *Context) CurrentSettings() config.Settings {
	return c.Scheduler.Settings()
}

// SaveSettings validates and persists s, hands it to the scheduler and
// announces the change. A failed backup is logged but does not undo the save.
func (c *Context) SaveSettings(s config.Settings, origin string) error {
	if err := c.Settings.Save(s); err != nil {
		if !errors.Is(err, config.ErrBackupFailed) {
			return err
		}
		c.Logger.Warn().Err(err).Msg("Settings saved without backup")
	}
	c.Scheduler.UpdateSettings(s)
	c.Bus.PublishControl(events.EventSettingsChanged, origin)
	c.Logger.Info().
		Int("interval", s.TimeInterval).
		Bool("break", s.BreakEnabled).
		Bool("lunch", s.LunchEnabled).
		Bool("dinner", s.DinnerEnabled).
		Msg("Settings saved")
	return nil
}

// ReloadSettings re-reads the settings file into the scheduler, for changes
// made by another process such as `clockapp settings set`.
func (c *Context) ReloadSettings() config.Settings {
	s, res := c.Settings.Load()
	if res.Outcome == config.Corrupt || res.Outcome == config.Unreadable {
		c.Logger.Warn().Err(res.Err).Msg("Settings reload failed, keeping current settings")
		return c.Scheduler.Settings()
	}
	c.Scheduler.UpdateSettings(s)
	return s
}

// Startup registers or removes the run-at-login entry for this executable.
func (c *Context) Startup(enable bool) platform.StartupResult {
	var res platform.StartupResult
	if enable {
		exe, err := platform.Executable()
		if err != nil {
			return platform.StartupResult{Method: platform.StartupNone, Err: err}
		}
		res = c.Platform.EnableStartup(exe)
	} else {
		res = c.Platform.DisableStartup()
	}

	if res.OK() {
		c.Logger.Info().Bool("enable", enable).Str("method", string(res.Method)).Msg("Startup registration updated")
	} else {
		c.Logger.Warn().Err(res.Err).Bool("enable", enable).Msg("Startup registration failed")
	}
	return res
}

// StartupEnabled reports whether a run-at-login entry exists.
func (c *Context) StartupEnabled() bool {
	on, _ := c.Platform.StartupStatus()
	return on
}

// CachedWeather returns the cached report without touching the network.
func (c *Context) CachedWeather() (weather.Report, bool) {
	entry, res := c.Weather.Cache().Read()
	if res.Outcome != config.Loaded {
		return weather.Report{}, false
	}
	var report weather.Report
	if err := json.Unmarshal(entry.Data, &report); err != nil {
		return weather.Report{}, false
	}
	return report, true
}

// PID is the process id reported over the control channel.
func PID() int {
	return os.Getpid()
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/ini.v1"

	"github.com/koreawook/ClockApp/internal/constants"
)

// AppConfig is the application configuration kept in clock.conf. It holds
// everything that is not a user-facing reminder setting.
//
// INI format:
//
//	[app]
//	log_level = info
//	start_minimized = false
//	minimize_to_tray = true
//
//	[scheduler]
//	meal_catch_up = false
//	meal_window_minutes = 60
//
//	[rest]
//	popup_seconds = 30
//	confirm_after_seconds = 10
//	meal_popup_seconds = 3600
//	stretch_dir =
//
//	[weather]
//	enabled = true
//	provider = wttr
//	cache_ttl_minutes = 120
//	proxy_mode = system
//
//	[notifications]
//	enabled = true
//	sound = true
type AppConfig struct {
	App           AppSection
	Scheduler     SchedulerSection
	Rest          RestSection
	Weather       WeatherSection
	Notifications NotificationSection
}

// AppSection contains process-wide settings.
type AppSection struct {
	// LogLevel is one of debug, info, warn, error. Default: info
	LogLevel string

	// StartMinimized starts hidden in the tray even without --minimized.
	StartMinimized bool

	// MinimizeToTray hides the clock window on close instead of quitting.
	// Default: true
	MinimizeToTray bool
}

// SchedulerSection tunes the reminder scheduler.
type SchedulerSection struct {
	// MealCatchUp fires a meal reminder at any tick inside its window
	// instead of only during its exact minute. Still once per day.
	MealCatchUp bool

	// MealWindowMinutes is how long breaks stay suppressed after a meal starts.
	// Minimum: 1, Maximum: 240, Default: 60
	MealWindowMinutes int
}

// RestSection tunes the rest and meal popups.
type RestSection struct {
	// PopupSeconds is the rest countdown length. Minimum: 10, Maximum: 600, Default: 30
	PopupSeconds int

	// ConfirmAfterSeconds enables the confirm button once this many seconds remain.
	// Must not exceed PopupSeconds. Default: 10
	ConfirmAfterSeconds int

	// MealPopupSeconds is the meal countdown length. Default: 3600
	MealPopupSeconds int

	// StretchDir overrides the stretch image folder. Empty means next to the executable.
	StretchDir string
}

// WeatherSection configures the weather fetcher.
type WeatherSection struct {
	Enabled bool

	// Provider is "wttr" or "openweathermap". The OpenWeatherMap key lives
	// in the OS keyring, never here.
	Provider string

	CacheTTLMinutes       int
	GeoURL                string
	WttrURL               string
	OWMURL                string
	GeoTimeoutSeconds     int
	WeatherTimeoutSeconds int

	// ProxyMode is "no-proxy", "system" or "manual".
	ProxyMode string
	ProxyURL  string
	NoProxy   string
}

// NotificationSection controls desktop toasts.
type NotificationSection struct {
	Enabled bool
	Sound   bool
}

// Weather providers
const (
	ProviderWttr           = "wttr"
	ProviderOpenWeatherMap = "openweathermap"
)

// Proxy modes
const (
	ProxyModeNone   = "no-proxy"
	ProxyModeSystem = "system"
	ProxyModeManual = "manual"
)

// AppConfig validation errors
var (
	ErrInvalidLogLevel       = errors.New("log_level must be one of debug, info, warn, error")
	ErrInvalidMealWindow     = errors.New("meal_window_minutes must be between 1 and 240")
	ErrInvalidPopupSeconds   = errors.New("popup_seconds must be between 10 and 600")
	ErrInvalidConfirmAfter   = errors.New("confirm_after_seconds must be between 1 and popup_seconds")
	ErrInvalidMealPopup      = errors.New("meal_popup_seconds must be between 60 and 14400")
	ErrInvalidProvider       = errors.New("provider must be wttr or openweathermap")
	ErrInvalidCacheTTL       = errors.New("cache_ttl_minutes must be between 1 and 1440")
	ErrInvalidWeatherTimeout = errors.New("weather timeouts must be between 1 and 120 seconds")
	ErrInvalidProxyMode      = errors.New("proxy_mode must be no-proxy, system or manual")
	ErrMissingProxyURL       = errors.New("proxy_url is required when proxy_mode is manual")
)

// NewAppConfig returns the default configuration.
func NewAppConfig() *AppConfig {
	return &AppConfig{
		App: AppSection{
			LogLevel:       "info",
			StartMinimized: false,
			MinimizeToTray: true,
		},
		Scheduler: SchedulerSection{
			MealCatchUp:       false,
			MealWindowMinutes: int(constants.MealWindow / time.Minute),
		},
		Rest: RestSection{
			PopupSeconds:        constants.RestPopupSeconds,
			ConfirmAfterSeconds: constants.ConfirmEnableSeconds,
			MealPopupSeconds:    constants.MealPopupSeconds,
		},
		Weather: WeatherSection{
			Enabled:               true,
			Provider:              ProviderWttr,
			CacheTTLMinutes:       int(constants.WeatherCacheTTL / time.Minute),
			GeoURL:                constants.DefaultGeoURL,
			WttrURL:               constants.DefaultWttrURL,
			OWMURL:                constants.DefaultOpenWeatherMapURL,
			GeoTimeoutSeconds:     int(constants.GeoLookupTimeout / time.Second),
			WeatherTimeoutSeconds: int(constants.WeatherLookupTimeout / time.Second),
			ProxyMode:             ProxyModeSystem,
		},
		Notifications: NotificationSection{
			Enabled: true,
			Sound:   true,
		},
	}
}

// LoadAppConfig loads clock.conf. A missing file yields the defaults and no
// error; an unparsable file yields an error.
func LoadAppConfig(path string) (*AppConfig, error) {
	cfg := NewAppConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	iniFile, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load clock.conf: %w", err)
	}

	d := NewAppConfig()

	app := iniFile.Section("app")
	cfg.App.LogLevel = strings.ToLower(app.Key("log_level").MustString(d.App.LogLevel))
	cfg.App.StartMinimized = app.Key("start_minimized").MustBool(d.App.StartMinimized)
	cfg.App.MinimizeToTray = app.Key("minimize_to_tray").MustBool(d.App.MinimizeToTray)

	sched := iniFile.Section("scheduler")
	cfg.Scheduler.MealCatchUp = sched.Key("meal_catch_up").MustBool(d.Scheduler.MealCatchUp)
	cfg.Scheduler.MealWindowMinutes = sched.Key("meal_window_minutes").MustInt(d.Scheduler.MealWindowMinutes)

	rest := iniFile.Section("rest")
	cfg.Rest.PopupSeconds = rest.Key("popup_seconds").MustInt(d.Rest.PopupSeconds)
	cfg.Rest.ConfirmAfterSeconds = rest.Key("confirm_after_seconds").MustInt(d.Rest.ConfirmAfterSeconds)
	cfg.Rest.MealPopupSeconds = rest.Key("meal_popup_seconds").MustInt(d.Rest.MealPopupSeconds)
	cfg.Rest.StretchDir = rest.Key("stretch_dir").String()

	w := iniFile.Section("weather")
	cfg.Weather.Enabled = w.Key("enabled").MustBool(d.Weather.Enabled)
	cfg.Weather.Provider = strings.ToLower(w.Key("provider").MustString(d.Weather.Provider))
	cfg.Weather.CacheTTLMinutes = w.Key("cache_ttl_minutes").MustInt(d.Weather.CacheTTLMinutes)
	cfg.Weather.GeoURL = w.Key("geo_url").MustString(d.Weather.GeoURL)
	cfg.Weather.WttrURL = w.Key("wttr_url").MustString(d.Weather.WttrURL)
	cfg.Weather.OWMURL = w.Key("owm_url").MustString(d.Weather.OWMURL)
	cfg.Weather.GeoTimeoutSeconds = w.Key("geo_timeout_seconds").MustInt(d.Weather.GeoTimeoutSeconds)
	cfg.Weather.WeatherTimeoutSeconds = w.Key("weather_timeout_seconds").MustInt(d.Weather.WeatherTimeoutSeconds)
	cfg.Weather.ProxyMode = strings.ToLower(w.Key("proxy_mode").MustString(d.Weather.ProxyMode))
	cfg.Weather.ProxyURL = w.Key("proxy_url").String()
	cfg.Weather.NoProxy = w.Key("no_proxy").String()

	n := iniFile.Section("notifications")
	cfg.Notifications.Enabled = n.Key("enabled").MustBool(d.Notifications.Enabled)
	cfg.Notifications.Sound = n.Key("sound").MustBool(d.Notifications.Sound)

	return cfg, nil
}

// SaveAppConfig writes clock.conf (temporary file + rename).
func SaveAppConfig(cfg *AppConfig, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	iniFile := ini.Empty()

	sections := []struct {
		name string
		keys [][2]string
	}{
		{"app", [][2]string{
			{"log_level", cfg.App.LogLevel},
			{"start_minimized", fmt.Sprintf("%t", cfg.App.StartMinimized)},
			{"minimize_to_tray", fmt.Sprintf("%t", cfg.App.MinimizeToTray)},
		}},
		{"scheduler", [][2]string{
			{"meal_catch_up", fmt.Sprintf("%t", cfg.Scheduler.MealCatchUp)},
			{"meal_window_minutes", fmt.Sprintf("%d", cfg.Scheduler.MealWindowMinutes)},
		}},
		{"rest", [][2]string{
			{"popup_seconds", fmt.Sprintf("%d", cfg.Rest.PopupSeconds)},
			{"confirm_after_seconds", fmt.Sprintf("%d", cfg.Rest.ConfirmAfterSeconds)},
			{"meal_popup_seconds", fmt.Sprintf("%d", cfg.Rest.MealPopupSeconds)},
			{"stretch_dir", cfg.Rest.StretchDir},
		}},
		{"weather", [][2]string{
			{"enabled", fmt.Sprintf("%t", cfg.Weather.Enabled)},
			{"provider", cfg.Weather.Provider},
			{"cache_ttl_minutes", fmt.Sprintf("%d", cfg.Weather.CacheTTLMinutes)},
			{"geo_url", cfg.Weather.GeoURL},
			{"wttr_url", cfg.Weather.WttrURL},
			{"owm_url", cfg.Weather.OWMURL},
			{"geo_timeout_seconds", fmt.Sprintf("%d", cfg.Weather.GeoTimeoutSeconds)},
			{"weather_timeout_seconds", fmt.Sprintf("%d", cfg.Weather.WeatherTimeoutSeconds)},
			{"proxy_mode", cfg.Weather.ProxyMode},
			{"proxy_url", cfg.Weather.ProxyURL},
			{"no_proxy", cfg.Weather.NoProxy},
		}},
		{"notifications", [][2]string{
			{"enabled", fmt.Sprintf("%t", cfg.Notifications.Enabled)},
			{"sound", fmt.Sprintf("%t", cfg.Notifications.Sound)},
		}},
	}

	for _, s := range sections {
		section, err := iniFile.NewSection(s.name)
		if err != nil {
			return fmt.Errorf("failed to create %s section: %w", s.name, err)
		}
		for _, kv := range s.keys {
			section.Key(kv[0]).SetValue(kv[1])
		}
	}

	tmpPath := path + ".tmp"
	if err := iniFile.SaveTo(tmpPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(tmpPath, 0600); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to set config permissions: %w", err)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

// Validate checks value ranges and enumerations.
func (cfg *AppConfig) Validate() error {
	switch cfg.App.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}

	if cfg.Scheduler.MealWindowMinutes < 1 || cfg.Scheduler.MealWindowMinutes > 240 {
		return ErrInvalidMealWindow
	}

	if cfg.Rest.PopupSeconds < 10 || cfg.Rest.PopupSeconds > 600 {
		return ErrInvalidPopupSeconds
	}
	if cfg.Rest.ConfirmAfterSeconds < 1 || cfg.Rest.ConfirmAfterSeconds > cfg.Rest.PopupSeconds {
		return ErrInvalidConfirmAfter
	}
	if cfg.Rest.MealPopupSeconds < 60 || cfg.Rest.MealPopupSeconds > 14400 {
		return ErrInvalidMealPopup
	}

	switch cfg.Weather.Provider {
	case ProviderWttr, ProviderOpenWeatherMap:
	default:
		return ErrInvalidProvider
	}
	if cfg.Weather.CacheTTLMinutes < 1 || cfg.Weather.CacheTTLMinutes > 1440 {
		return ErrInvalidCacheTTL
	}
	if cfg.Weather.GeoTimeoutSeconds < 1 || cfg.Weather.GeoTimeoutSeconds > 120 ||
		cfg.Weather.WeatherTimeoutSeconds < 1 || cfg.Weather.WeatherTimeoutSeconds > 120 {
		return ErrInvalidWeatherTimeout
	}

	switch cfg.Weather.ProxyMode {
	case ProxyModeNone, ProxyModeSystem:
	case ProxyModeManual:
		if strings.TrimSpace(cfg.Weather.ProxyURL) == "" {
			return ErrMissingProxyURL
		}
	default:
		return ErrInvalidProxyMode
	}

	return nil
}

// MealWindow returns the meal suppression window as a duration.
func (cfg *AppConfig) MealWindow() time.Duration {
	return time.Duration(cfg.Scheduler.MealWindowMinutes) * time.Minute
}

// CacheTTL returns the weather cache lifetime.
func (cfg *AppConfig) CacheTTL() time.Duration {
	return time.Duration(cfg.Weather.CacheTTLMinutes) * time.Minute
}

// GeoTimeout returns the geolocation request timeout.
func (cfg *AppConfig) GeoTimeout() time.Duration {
	return time.Duration(cfg.Weather.GeoTimeoutSeconds) * time.Second
}

// WeatherTimeout returns the weather request timeout.
func (cfg *AppConfig) WeatherTimeout() time.Duration {
	return time.Duration(cfg.Weather.WeatherTimeoutSeconds) * time.Second
}

// ResolveStretchDir returns the configured stretch folder or the default.
func (cfg *AppConfig) ResolveStretchDir() string {
	if strings.TrimSpace(cfg.Rest.StretchDir) != "" {
		return cfg.Rest.StretchDir
	}
	return StretchDir()
}

package constants

import (
	"time"
)

// Application identity
const (
	// AppName - display name used for windows, notifications and the keyring service
	AppName = "ClockApp"

	// AppID - fyne application ID (preferences namespace)
	AppID = "com.koreawook.clockapp.ver2"

	// DataDirName - per-user data directory under %APPDATA% (or XDG config dir)
	DataDirName = "ClockApp-Ver2"

	// LegacyDataDirName - data directory used by the v1 app
	LegacyDataDirName = "ClockApp"

	// StartupEntryName - Run key value name and scheduled task name
	// Kept as "MouseClock" so upgrades replace the v1 entry instead of adding a second one.
	StartupEntryName = "MouseClock"

	// MinimizedFlag - command line flag written into the startup entry
	MinimizedFlag = "--minimized"

	// BinaryName - base name of the main executable, looked up next to the tray companion
	BinaryName = "clockapp"

	// Publisher, ContactEmail, Homepage - shown in the about window
	Publisher    = "KoreawookDevTeam"
	ContactEmail = "koreawook@gmail.com"
	Homepage     = "https://koreawook.github.io/ClockApp/"
)

// Single instance
const (
	// InstanceMutexName - named mutex held for the process lifetime
	InstanceMutexName = `Global\ClockApp_Ver2_SingleInstance_Mutex`

	// LegacyInstanceMutexName - mutex held by a running v1 app
	LegacyInstanceMutexName = `Global\ClockApp_SingleInstance_Mutex`

	// LegacyProcessName - executable name of the v1 app (process scan fallback)
	LegacyProcessName = "ClockApp.exe"
)

// Data files
const (
	SettingsFileName       = "clock_settings_ver2.json"
	LegacySettingsFileName = "clock_settings.json"
	LevelFileName          = "rest_level_data.json"
	WeatherCacheFileName   = "weather_cache.json"
	AppConfigFileName      = "clock.conf"
	HistoryFileName        = "history.db"
	BackupDirName          = "backup"
	LogFileName            = "clockapp.log"

	// MaxSettingsBackups - number of settings_backup_*.json files kept
	MaxSettingsBackups = 10
)

// Scheduling
const (
	// SchedulerTickInterval - single periodic tick driving every countdown
	SchedulerTickInterval = 1 * time.Second

	// DefaultBreakIntervalMinutes - minutes between break popups
	DefaultBreakIntervalMinutes = 20

	// MinBreakIntervalMinutes / MaxBreakIntervalMinutes bound the interval (1 minute to 24 hours)
	MinBreakIntervalMinutes = 1
	MaxBreakIntervalMinutes = 1440

	// MealWindow - break reminders are suppressed this long after a meal starts
	MealWindow = 60 * time.Minute
)

// Popups
const (
	// RestPopupSeconds - rest popup countdown length
	RestPopupSeconds = 30

	// ConfirmEnableSeconds - confirm button becomes enabled at this remaining time
	ConfirmEnableSeconds = 10

	// MealPopupSeconds - meal popup countdown length (1 hour)
	MealPopupSeconds = 3600

	// LevelUpAutoClose - level-up popup closes itself after this long
	LevelUpAutoClose = 5 * time.Second

	// BackgroundNoticeDuration - "running in background" notice lifetime
	BackgroundNoticeDuration = 3 * time.Second

	// StretchRecentExclusion - number of recently shown stretch images to skip
	StretchRecentExclusion = 5
)

// Weather
const (
	// WeatherCacheTTL - cached weather is reused for this long
	WeatherCacheTTL = 2 * time.Hour

	// GeoLookupTimeout - IP geolocation request timeout
	GeoLookupTimeout = 5 * time.Second

	// WeatherLookupTimeout - weather-by-coordinates request timeout
	WeatherLookupTimeout = 10 * time.Second

	// WeatherHourlySlots - number of three-hour forecast slots shown
	WeatherHourlySlots = 8

	DefaultGeoURL            = "https://ipapi.co/json/"
	DefaultWttrURL           = "https://wttr.in"
	DefaultOpenWeatherMapURL = "https://api.openweathermap.org/data/2.5"

	// KeyringWeatherUser - keyring account holding the OpenWeatherMap API key
	KeyringWeatherUser = "openweathermap-api-key"
)

// Event System
const (
	// EventBusDefaultBuffer - default buffer size for event channels
	EventBusDefaultBuffer = 256

	// EventBusMaxBuffer - maximum buffer size
	EventBusMaxBuffer = 1024
)

// HTTP Client Timeouts
const (
	// HTTPIdleConnTimeout - how long to keep idle connections open (90 seconds)
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPTLSHandshakeTimeout - timeout for TLS handshake (10 seconds)
	HTTPTLSHandshakeTimeout = 10 * time.Second

	// HTTPDialTimeout - timeout for establishing connection (5 seconds)
	HTTPDialTimeout = 5 * time.Second

	// HTTPDialKeepAlive - keep-alive period for dialer (30 seconds)
	HTTPDialKeepAlive = 30 * time.Second
)

// Instance control channel
const (
	// PipeName - Windows named pipe for the instance control channel
	PipeName = `\\.\pipe\clockapp-ver2`

	// SocketFileName - unix socket name (inside the data directory) on other platforms
	SocketFileName = "clockapp.sock"

	// IPCRequestTimeout - default client timeout
	IPCRequestTimeout = 2 * time.Second

	// TrayRefreshInterval - tray companion status refresh period
	TrayRefreshInterval = 5 * time.Second
)

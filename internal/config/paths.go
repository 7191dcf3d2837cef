// Package config provides settings and configuration management for ClockApp.
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/koreawook/ClockApp/internal/constants"
)

// Paths holds every on-disk location the app uses. Components receive a
// Paths value instead of computing locations themselves, so tests can point
// the whole app at a temporary directory.
type Paths struct {
	// DataDir holds settings, level data, weather cache, clock.conf and history.db
	DataDir string

	// LogDir holds rotated log files
	LogDir string
}

// DefaultPaths returns the per-user locations.
//
// Locations:
//   - Windows: %APPDATA%\ClockApp-Ver2 and %LOCALAPPDATA%\ClockApp-Ver2\logs
//   - Unix: ~/.config/ClockApp-Ver2 and ~/.config/ClockApp-Ver2/logs
func DefaultPaths() Paths {
	return Paths{
		DataDir: DataDirectory(),
		LogDir:  LogDirectory(),
	}
}

// NewPaths roots every location under dir.
func NewPaths(dir string) Paths {
	return Paths{
		DataDir: dir,
		LogDir:  filepath.Join(dir, "logs"),
	}
}

// DataDirectory returns the per-user data directory.
func DataDirectory() string {
	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return filepath.Join(os.TempDir(), constants.DataDirName)
			}
			appData = filepath.Join(homeDir, "AppData", "Roaming")
		}
		return filepath.Join(appData, constants.DataDirName)
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), constants.DataDirName)
		}
		return filepath.Join(homeDir, ".config", constants.DataDirName)
	}
	return filepath.Join(configDir, constants.DataDirName)
}

// LogDirectory returns the log directory.
func LogDirectory() string {
	if runtime.GOOS == "windows" {
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return filepath.Join(os.TempDir(), "clockapp-logs")
			}
			localAppData = filepath.Join(homeDir, "AppData", "Local")
		}
		return filepath.Join(localAppData, constants.DataDirName, "logs")
	}
	return filepath.Join(DataDirectory(), "logs")
}

// Ensure creates the data and log directories.
func (p Paths) Ensure() error {
	if err := os.MkdirAll(p.DataDir, 0700); err != nil {
		return err
	}
	return os.MkdirAll(p.LogDir, 0700)
}

// SettingsFile is the user settings JSON file.
func (p Paths) SettingsFile() string {
	return filepath.Join(p.DataDir, constants.SettingsFileName)
}

// LevelFile holds the accumulated rest level.
func (p Paths) LevelFile() string {
	return filepath.Join(p.DataDir, constants.LevelFileName)
}

func (p Paths) WeatherCacheFile() string {
	return filepath.Join(p.DataDir, constants.WeatherCacheFileName)
}

// AppConfigFile is the INI application configuration.
func (p Paths) AppConfigFile() string {
	return filepath.Join(p.DataDir, constants.AppConfigFileName)
}

func (p Paths) HistoryFile() string {
	return filepath.Join(p.DataDir, constants.HistoryFileName)
}

func (p Paths) BackupDir() string {
	return filepath.Join(p.DataDir, constants.BackupDirName)
}

// SocketFile is the control socket used on non-Windows platforms.
func (p Paths) SocketFile() string {
	return filepath.Join(p.DataDir, constants.SocketFileName)
}

func (p Paths) LogFile() string {
	return filepath.Join(p.LogDir, constants.LogFileName)
}

// StretchDir is the default stretch image folder, next to the executable.
func StretchDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "stretchimage"
	}
	return filepath.Join(filepath.Dir(exe), "stretchimage")
}

// LegacySettingsCandidates lists the places a v1 clock_settings.json may live,
// in lookup order.
func LegacySettingsCandidates() []string {
	var candidates []string

	if runtime.GOOS == "windows" {
		programFiles := os.Getenv("PROGRAMFILES")
		if programFiles == "" {
			programFiles = `C:\Program Files`
		}
		candidates = append(candidates, filepath.Join(programFiles, constants.LegacyDataDirName, constants.LegacySettingsFileName))
		if appData := os.Getenv("APPDATA"); appData != "" {
			candidates = append(candidates, filepath.Join(appData, constants.LegacyDataDirName, constants.LegacySettingsFileName))
		}
	}

	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), constants.LegacySettingsFileName))
	}

	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, constants.LegacySettingsFileName),
			filepath.Join(home, "Desktop", constants.LegacySettingsFileName),
			filepath.Join(home, "Documents", constants.LegacySettingsFileName),
		)
	}

	return candidates
}

package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/koreawook/ClockApp/internal/constants"
)

// Settings manager errors
var (
	ErrNoLegacySettings = errors.New("no v1 settings file found")
	ErrAlreadyMigrated  = errors.New("v2 settings already exist")
	ErrBackupFailed     = errors.New("settings backup failed")
)

const (
	backupPrefix      = "settings_backup_"
	resetBackupPrefix = "settings_reset_backup_"
	v1BackupPrefix    = "settings_v1_"
	backupTimeLayout  = "20060102_150405"
)

// SettingsManager layers backups, import/export, reset and v1 migration on
// top of a SettingsStore.
type SettingsManager struct {
	store     *SettingsStore
	backupDir string
	legacy    []string
	now       func() time.Time
}

// NewSettingsManager creates a manager for the settings file in paths.
// Legacy v1 files are looked up in LegacySettingsCandidates().
func NewSettingsManager(store *SettingsStore, paths Paths) *SettingsManager {
	return &SettingsManager{
		store:     store,
		backupDir: paths.BackupDir(),
		legacy:    LegacySettingsCandidates(),
		now:       time.Now,
	}
}

// SetLegacyCandidates overrides the v1 lookup list.
func (m *SettingsManager) SetLegacyCandidates(paths []string) {
	m.legacy = paths
}

// SetClock overrides the time source used for backup names.
func (m *SettingsManager) SetClock(now func() time.Time) {
	m.now = now
}

// Store returns the underlying settings store.
func (m *SettingsManager) Store() *SettingsStore {
	return m.store
}

// Load delegates to the store.
func (m *SettingsManager) Load() (Settings, LoadResult) {
	return m.store.Load()
}

// Save writes the settings and then a timestamped backup copy. When only the
// backup fails the settings are saved and the returned error wraps
// ErrBackupFailed.
func (m *SettingsManager) Save(s Settings) error {
	if err := m.store.Save(s); err != nil {
		return err
	}
	if err := m.backup(s, backupPrefix); err != nil {
		return fmt.Errorf("%w: %v", ErrBackupFailed, err)
	}
	return m.pruneBackups()
}

func (m *SettingsManager) backup(s Settings, prefix string) error {
	name := prefix + m.now().Format(backupTimeLayout) + ".json"
	return writeJSONFile(filepath.Join(m.backupDir, name), s)
}

// pruneBackups keeps the newest MaxSettingsBackups regular backups.
func (m *SettingsManager) pruneBackups() error {
	matches, err := filepath.Glob(filepath.Join(m.backupDir, backupPrefix+"*.json"))
	if err != nil {
		return err
	}
	if len(matches) <= constants.MaxSettingsBackups {
		return nil
	}
	sort.Strings(matches)
	for _, old := range matches[:len(matches)-constants.MaxSettingsBackups] {
		if err := os.Remove(old); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove old backup: %w", err)
		}
	}
	return nil
}

// BackupInfo describes one file in the backup directory.
type BackupInfo struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// Backups lists backup files, newest first.
func (m *SettingsManager) Backups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []BackupInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), "settings_") || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			Name:    e.Name(),
			Path:    filepath.Join(m.backupDir, e.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		if backups[i].ModTime.Equal(backups[j].ModTime) {
			return backups[i].Name > backups[j].Name
		}
		return backups[i].ModTime.After(backups[j].ModTime)
	})
	return backups, nil
}

// Export writes the current settings (defaults if none are stored) to path.
func (m *SettingsManager) Export(path string) error {
	s, _ := m.store.Load()
	return writeJSONFile(path, s)
}

// Import reads, validates and saves settings from path. The current settings
// are backed up first. Nothing changes when the file is invalid.
func (m *SettingsManager) Import(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read import file: %w", err)
	}
	s, err := parseSettings(data)
	if err != nil {
		return Settings{}, err
	}

	if current, res := m.store.Load(); res.Outcome == Loaded {
		if err := m.backup(current, backupPrefix); err != nil {
			return Settings{}, fmt.Errorf("%w: %v", ErrBackupFailed, err)
		}
	}
	if err := m.store.Save(s); err != nil {
		return Settings{}, err
	}
	return s, m.pruneBackups()
}

// Reset backs up the current settings as settings_reset_backup_*.json and
// writes the defaults.
func (m *SettingsManager) Reset() error {
	if current, res := m.store.Load(); res.Outcome == Loaded {
		if err := m.backup(current, resetBackupPrefix); err != nil {
			return fmt.Errorf("%w: %v", ErrBackupFailed, err)
		}
	}
	return m.store.Save(DefaultSettings())
}

// SettingsInfo summarizes the settings file for `clockapp settings info`.
type SettingsInfo struct {
	Path        string
	Exists      bool
	Outcome     LoadOutcome
	Size        int64
	ModTime     time.Time
	BackupDir   string
	BackupCount int
	LegacyPath  string
}

// Info reports where the settings live and their state.
func (m *SettingsManager) Info() SettingsInfo {
	info := SettingsInfo{
		Path:      m.store.Path(),
		BackupDir: m.backupDir,
	}
	if st, err := os.Stat(m.store.Path()); err == nil {
		info.Exists = true
		info.Size = st.Size()
		info.ModTime = st.ModTime()
	}
	_, res := m.store.Load()
	info.Outcome = res.Outcome

	if backups, err := m.Backups(); err == nil {
		info.BackupCount = len(backups)
	}
	if legacy, ok := m.FindLegacy(); ok {
		info.LegacyPath = legacy
	}
	return info
}

// FindLegacy returns the first existing v1 settings file.
func (m *SettingsManager) FindLegacy() (string, bool) {
	for _, p := range m.legacy {
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p, true
		}
	}
	return "", false
}

// MigrationResult describes a completed v1 migration.
type MigrationResult struct {
	Source   string
	Backup   string
	Settings Settings
}

// MigrateFromV1 converts the first v1 clock_settings.json found into the v2
// settings file. The v1 file is copied to backup/settings_v1_*.json and left
// in place. Unless force is set an existing v2 file is never overwritten.
func (m *SettingsManager) MigrateFromV1(force bool) (MigrationResult, error) {
	if !force {
		if _, err := os.Stat(m.store.Path()); err == nil {
			return MigrationResult{}, ErrAlreadyMigrated
		}
	}

	source, ok := m.FindLegacy()
	if !ok {
		return MigrationResult{}, ErrNoLegacySettings
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("failed to read v1 settings: %w", err)
	}
	s, err := parseSettings(data)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("v1 settings: %w", err)
	}

	if err := m.store.Save(s); err != nil {
		return MigrationResult{}, err
	}

	backupPath := filepath.Join(m.backupDir, v1BackupPrefix+m.now().Format(backupTimeLayout)+".json")
	if err := copyFile(source, backupPath); err != nil {
		return MigrationResult{Source: source, Settings: s}, fmt.Errorf("%w: %v", ErrBackupFailed, err)
	}

	return MigrationResult{Source: source, Backup: backupPath, Settings: s}, nil
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0700); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/koreawook/ClockApp/internal/constants"
	"github.com/koreawook/ClockApp/internal/state"
)

// Settings is the user-editable reminder configuration, stored as
// clock_settings_ver2.json. The file is always overwritten wholesale.
type Settings struct {
	// TimeInterval is the break interval in minutes (1..1440).
	TimeInterval int `json:"time_interval"`

	LunchHour   int `json:"lunch_hour"`
	LunchMinute int `json:"lunch_minute"`

	DinnerHour   int `json:"dinner_hour"`
	DinnerMinute int `json:"dinner_minute"`

	BreakEnabled  bool `json:"break_enabled"`
	LunchEnabled  bool `json:"lunch_enabled"`
	DinnerEnabled bool `json:"dinner_enabled"`
}

// Settings validation errors
var (
	ErrInvalidInterval     = errors.New("time_interval must be between 1 and 1440 minutes")
	ErrInvalidLunchHour    = errors.New("lunch_hour must be between 0 and 23")
	ErrInvalidLunchMinute  = errors.New("lunch_minute must be between 0 and 59")
	ErrInvalidDinnerHour   = errors.New("dinner_hour must be between 0 and 23")
	ErrInvalidDinnerMinute = errors.New("dinner_minute must be between 0 and 59")
)

// DefaultSettings returns the factory settings: 20 minute breaks, lunch at
// 12:10 (on), dinner at 18:00 (off).
func DefaultSettings() Settings {
	return Settings{
		TimeInterval:  constants.DefaultBreakIntervalMinutes,
		LunchHour:     12,
		LunchMinute:   10,
		DinnerHour:    18,
		DinnerMinute:  0,
		BreakEnabled:  true,
		LunchEnabled:  true,
		DinnerEnabled: false,
	}
}

// Validate checks value ranges. The first violation is returned.
func (s Settings) Validate() error {
	if s.TimeInterval < constants.MinBreakIntervalMinutes || s.TimeInterval > constants.MaxBreakIntervalMinutes {
		return ErrInvalidInterval
	}
	if s.LunchHour < 0 || s.LunchHour > 23 {
		return ErrInvalidLunchHour
	}
	if s.LunchMinute < 0 || s.LunchMinute > 59 {
		return ErrInvalidLunchMinute
	}
	if s.DinnerHour < 0 || s.DinnerHour > 23 {
		return ErrInvalidDinnerHour
	}
	if s.DinnerMinute < 0 || s.DinnerMinute > 59 {
		return ErrInvalidDinnerMinute
	}
	return nil
}

// MealKind identifies a configured meal.
type MealKind string

const (
	Lunch  MealKind = "lunch"
	Dinner MealKind = "dinner"
)

// DisplayName returns the Korean label used in popups.
func (m MealKind) DisplayName() string {
	switch m {
	case Lunch:
		return "점심"
	case Dinner:
		return "저녁"
	default:
		return "식사"
	}
}

// MealTime is one configured meal.
type MealTime struct {
	Kind    MealKind
	Hour    int
	Minute  int
	Enabled bool
}

// Meals returns lunch and dinner in that order.
func (s Settings) Meals() []MealTime {
	return []MealTime{
		{Kind: Lunch, Hour: s.LunchHour, Minute: s.LunchMinute, Enabled: s.LunchEnabled},
		{Kind: Dinner, Hour: s.DinnerHour, Minute: s.DinnerMinute, Enabled: s.DinnerEnabled},
	}
}

// LoadOutcome and LoadResult are the typed outcome of a settings load.
type (
	LoadOutcome = state.Outcome
	LoadResult  = state.Result
)

// Load outcomes
const (
	Loaded     = state.Loaded
	Missing    = state.Missing
	Corrupt    = state.Corrupt
	Unreadable = state.Unreadable
)

// SettingsStore reads and writes the settings file.
type SettingsStore struct {
	mu   sync.Mutex
	path string
}

// NewSettingsStore creates a store for the given file path.
func NewSettingsStore(path string) *SettingsStore {
	return &SettingsStore{path: path}
}

// Path returns the settings file path.
func (s *SettingsStore) Path() string {
	return s.path
}

// Load reads the settings file. It never fails: a missing, unreadable or
// corrupt file yields DefaultSettings and the reason in the LoadResult.
// Keys absent from an otherwise valid file keep their default values.
func (s *SettingsStore) Load() (Settings, LoadResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readSettingsFile(s.path)
}

func readSettingsFile(path string) (Settings, LoadResult) {
	data, res := state.ReadFile(path)
	if res.Outcome != Loaded {
		return DefaultSettings(), res
	}

	settings, err := parseSettings(data)
	if err != nil {
		return DefaultSettings(), state.CorruptResult(err)
	}
	return settings, res
}

func parseSettings(data []byte) (Settings, error) {
	settings := DefaultSettings()
	if err := json.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid settings: %w", err)
	}
	return settings, nil
}

// Save validates and writes the settings file (pretty-printed, atomic rename).
// Invalid settings are rejected and nothing is written.
func (s *SettingsStore) Save(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSONFile(s.path, settings)
}

// writeJSONFile writes v as 4-space indented JSON via temp file and rename.
func writeJSONFile(path string, v interface{}) error {
	return state.WriteJSON(path, v, "    ")
}

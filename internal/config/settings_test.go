package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	if s.TimeInterval != 20 {
		t.Errorf("Expected TimeInterval=20, got %d", s.TimeInterval)
	}
	if s.LunchHour != 12 || s.LunchMinute != 10 {
		t.Errorf("Expected lunch 12:10, got %d:%02d", s.LunchHour, s.LunchMinute)
	}
	if s.DinnerHour != 18 || s.DinnerMinute != 0 {
		t.Errorf("Expected dinner 18:00, got %d:%02d", s.DinnerHour, s.DinnerMinute)
	}
	if !s.BreakEnabled || !s.LunchEnabled || s.DinnerEnabled {
		t.Errorf("Unexpected enable flags: %+v", s)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
		want   error
	}{
		{"valid", func(s *Settings) {}, nil},
		{"interval zero", func(s *Settings) { s.TimeInterval = 0 }, ErrInvalidInterval},
		{"interval max", func(s *Settings) { s.TimeInterval = 1440 }, nil},
		{"interval too large", func(s *Settings) { s.TimeInterval = 1441 }, ErrInvalidInterval},
		{"lunch hour", func(s *Settings) { s.LunchHour = 24 }, ErrInvalidLunchHour},
		{"lunch minute", func(s *Settings) { s.LunchMinute = -1 }, ErrInvalidLunchMinute},
		{"dinner hour", func(s *Settings) { s.DinnerHour = -1 }, ErrInvalidDinnerHour},
		{"dinner minute", func(s *Settings) { s.DinnerMinute = 60 }, ErrInvalidDinnerMinute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			err := s.Validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	store := NewSettingsStore(filepath.Join(t.TempDir(), "clock_settings_ver2.json"))

	want := Settings{
		TimeInterval:  45,
		LunchHour:     11,
		LunchMinute:   30,
		DinnerHour:    19,
		DinnerMinute:  15,
		BreakEnabled:  false,
		LunchEnabled:  false,
		DinnerEnabled: true,
	}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, res := store.Load()
	if res.Outcome != Loaded {
		t.Fatalf("Load() outcome = %v (%v), want loaded", res.Outcome, res.Err)
	}
	if got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestSettingsLoadMissing(t *testing.T) {
	store := NewSettingsStore(filepath.Join(t.TempDir(), "nope.json"))

	got, res := store.Load()
	if res.Outcome != Missing {
		t.Errorf("outcome = %v, want missing", res.Outcome)
	}
	if !res.UsedDefaults() {
		t.Error("UsedDefaults() should be true for a missing file")
	}
	if got != DefaultSettings() {
		t.Errorf("expected defaults, got %+v", got)
	}
}

func TestSettingsLoadCorrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "{time_interval: 20"},
		{"out of range", `{"time_interval": 0}`},
		{"wrong type", `{"time_interval": "twenty"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "settings.json")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}

			got, res := NewSettingsStore(path).Load()
			if res.Outcome != Corrupt {
				t.Errorf("outcome = %v, want corrupt", res.Outcome)
			}
			if res.Err == nil {
				t.Error("corrupt load should carry an error")
			}
			if got != DefaultSettings() {
				t.Errorf("expected defaults, got %+v", got)
			}
		})
	}
}

func TestSettingsLoadPartialFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"time_interval": 5, "dinner_enabled": true}`), 0600); err != nil {
		t.Fatal(err)
	}

	got, res := NewSettingsStore(path).Load()
	if res.Outcome != Loaded {
		t.Fatalf("outcome = %v, want loaded", res.Outcome)
	}

	want := DefaultSettings()
	want.TimeInterval = 5
	want.DinnerEnabled = true
	if got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestSettingsLoadUnreadable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("directory-as-file read error differs on Windows")
	}
	// A directory at the settings path cannot be read as a file.
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.Mkdir(path, 0700); err != nil {
		t.Fatal(err)
	}

	_, res := NewSettingsStore(path).Load()
	if res.Outcome != Unreadable {
		t.Errorf("outcome = %v, want unreadable", res.Outcome)
	}
}

func TestSettingsSaveRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	store := NewSettingsStore(path)

	s := DefaultSettings()
	s.LunchHour = 25
	if err := store.Save(s); !errors.Is(err, ErrInvalidLunchHour) {
		t.Errorf("Save() error = %v, want ErrInvalidLunchHour", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("invalid settings must not be written")
	}
}

func TestSettingsMeals(t *testing.T) {
	meals := DefaultSettings().Meals()
	if len(meals) != 2 {
		t.Fatalf("expected 2 meals, got %d", len(meals))
	}
	if meals[0].Kind != Lunch || meals[0].Hour != 12 || meals[0].Minute != 10 || !meals[0].Enabled {
		t.Errorf("unexpected lunch: %+v", meals[0])
	}
	if meals[1].Kind != Dinner || meals[1].Enabled {
		t.Errorf("unexpected dinner: %+v", meals[1])
	}
	if Lunch.DisplayName() != "점심" || Dinner.DisplayName() != "저녁" {
		t.Error("unexpected meal display names")
	}
}

package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/koreawook/ClockApp/internal/events"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"chatty", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSetOutput(t *testing.T) {
	l := NewDefaultCLILogger()
	var buf bytes.Buffer
	l.SetOutput(&buf)

	l.Infof("next break in %d minutes", 20)

	if !strings.Contains(buf.String(), "next break in 20 minutes") {
		t.Errorf("expected message in output, got %q", buf.String())
	}
	if l.Output() != &buf {
		t.Error("Output() should return the writer passed to SetOutput")
	}
}

func TestWarnfForwardsToEventBus(t *testing.T) {
	bus := events.NewEventBus(10)
	defer bus.Close()
	ch := bus.Subscribe(events.EventLog)

	l := NewLogger("gui", bus)
	l.SetOutput(&bytes.Buffer{})
	l.Warnf("registry write failed: %s", "access denied")

	select {
	case ev := <-ch:
		logEv := ev.(*events.LogEvent)
		if logEv.Level != events.WarnLevel {
			t.Errorf("expected WARN level, got %v", logEv.Level)
		}
		if logEv.Message != "registry write failed: access denied" {
			t.Errorf("unexpected message %q", logEv.Message)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for forwarded log event")
	}
}

func TestFormatEntry(t *testing.T) {
	now := time.Date(2025, 3, 4, 12, 10, 0, 0, time.UTC)
	line := formatEntry([]byte(`{"level":"warn","component":"weather","message":"fallback used","source":"fallback","time":"x"}`), now)

	want := `2025-03-04 12:10:00.000 [WARN] weather: fallback used source="fallback"` + "\n"
	if line != want {
		t.Errorf("formatEntry() = %q, want %q", line, want)
	}

	raw := formatEntry([]byte("not json"), now)
	if raw != "not json\n" {
		t.Errorf("non-JSON entry should pass through, got %q", raw)
	}
}

func TestGUILoggerWritesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logs", "clockapp.log")

	l := NewGUILogger(path, nil)
	l.Component("scheduler").Info().Msg("break due")
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), "[INFO] scheduler: break due") {
		t.Errorf("unexpected log file content: %q", string(data))
	}
}

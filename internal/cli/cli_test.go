package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/koreawook/ClockApp/internal/app"
	"github.com/koreawook/ClockApp/internal/config"
	"github.com/koreawook/ClockApp/internal/history"
	"github.com/koreawook/ClockApp/internal/level"
	"github.com/koreawook/ClockApp/internal/platform"
	"github.com/koreawook/ClockApp/internal/rest"
)

type fakePlatform struct {
	enabled    bool
	acquireErr error
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
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	return nil, errors.New("not supported")
}

func (p *fakePlatform) DetectSibling() platform.Sibling {
	return platform.Sibling{}
}

// setupDataDir prepares a data directory with weather and notifications
// turned off and routes the platform services to a fake.
func setupDataDir(t *testing.T) (string, *fakePlatform) {
	t.Helper()
	dir := t.TempDir()
	paths := config.NewPaths(dir)
	if err := paths.Ensure(); err != nil {
		t.Fatal(err)
	}
	cfg := config.NewAppConfig()
	cfg.Weather.Enabled = false
	cfg.Notifications.Enabled = false
	if err := config.SaveAppConfig(cfg, paths.AppConfigFile()); err != nil {
		t.Fatal(err)
	}

	plat := &fakePlatform{}
	prev := newPlatform
	newPlatform = func(config.Paths) platform.Services { return plat }
	t.Cleanup(func() {
		newPlatform = prev
		dataDir = ""
	})
	return dir, plat
}

// runCLI executes the command tree with args and returns stdout.
func runCLI(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	rootCmd := NewRootCmd()
	AddCommands(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--data-dir", dir}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

// TestSecondLaunchOpensNothing checks that a launch losing the instance
// guard exits without touching the history database or the GUI log
func TestSecondLaunchOpensNothing(t *testing.T) {
	dir, plat := setupDataDir(t)
	plat.acquireErr = platform.ErrAlreadyRunning

	if _, err := runCLI(t, dir); err != nil {
		t.Fatalf("second launch error = %v", err)
	}

	paths := config.NewPaths(dir)
	for _, f := range []string{paths.HistoryFile(), paths.LogFile()} {
		if _, err := os.Stat(f); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("%s exists after second launch (stat err = %v)", filepath.Base(f), err)
		}
	}
}

// TestCommandStructure checks every subcommand is registered with help text
func TestCommandStructure(t *testing.T) {
	rootCmd := NewRootCmd()
	AddCommands(rootCmd)

	for _, name := range []string{"settings", "migrate", "level", "weather", "startup", "history", "rest", "status", "version", "completion"} {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd == rootCmd {
			t.Errorf("command %q not registered", name)
			continue
		}
		if cmd.Short == "" {
			t.Errorf("command %q has no Short description", name)
		}
	}

	if rootCmd.Flags().Lookup("minimized") == nil {
		t.Error("--minimized flag missing")
	}
	if rootCmd.PersistentFlags().Lookup("data-dir") == nil {
		t.Error("--data-dir flag missing")
	}
}

// TestSettingsSubcommands checks the settings group layout
func TestSettingsSubcommands(t *testing.T) {
	cmd := newSettingsCmd()
	want := map[string]bool{"show": false, "path": false, "set": false, "reset": false, "export": false, "import": false, "backups": false, "info": false}
	for _, sub := range cmd.Commands() {
		name := strings.Fields(sub.Use)[0]
		if _, ok := want[name]; ok {
			want[name] = true
		}
		if sub.RunE == nil {
			t.Errorf("settings %s: RunE is nil", name)
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("settings %s missing", name)
		}
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		h, m    int
		wantErr bool
	}{
		{"12:30", 12, 30, false},
		{" 7:05 ", 7, 5, false},
		{"1230", 0, 0, true},
		{"ab:10", 0, 0, true},
		{"12:xx", 0, 0, true},
	}
	for _, tt := range tests {
		h, m, err := parseClock(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseClock(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && (h != tt.h || m != tt.m) {
			t.Errorf("parseClock(%q) = %d:%d, want %d:%d", tt.in, h, m, tt.h, tt.m)
		}
	}
}

func TestSettingsSetAndShow(t *testing.T) {
	dir, _ := setupDataDir(t)

	if _, err := runCLI(t, dir, "settings", "set"); err == nil {
		t.Error("settings set without flags should fail")
	}

	out, err := runCLI(t, dir, "settings", "set", "--interval", "30", "--dinner", "18:30", "--dinner-enabled")
	if err != nil {
		t.Fatalf("settings set error = %v", err)
	}
	if !strings.Contains(out, "Break interval:  30 min (on)") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, err = runCLI(t, dir, "settings", "show")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"30 min", "Lunch:           12:10 (on)", "Dinner:          18:30 (on)"} {
		if !strings.Contains(out, want) {
			t.Errorf("settings show missing %q:\n%s", want, out)
		}
	}

	if _, err := runCLI(t, dir, "settings", "set", "--interval", "0"); !errors.Is(err, config.ErrInvalidInterval) {
		t.Errorf("invalid interval error = %v", err)
	}
	if _, err := runCLI(t, dir, "settings", "set", "--lunch", "noon"); err == nil {
		t.Error("bad --lunch accepted")
	}
}

func TestSettingsExportImportReset(t *testing.T) {
	dir, _ := setupDataDir(t)

	if _, err := runCLI(t, dir, "settings", "set", "--interval", "45"); err != nil {
		t.Fatal(err)
	}
	exported := filepath.Join(t.TempDir(), "settings.json")
	if _, err := runCLI(t, dir, "settings", "export", exported); err != nil {
		t.Fatalf("export error = %v", err)
	}
	if _, err := os.Stat(exported); err != nil {
		t.Fatalf("export file missing: %v", err)
	}

	out, err := runCLI(t, dir, "settings", "reset")
	if err != nil {
		t.Fatalf("reset error = %v", err)
	}
	if !strings.Contains(out, "20 min") {
		t.Errorf("reset did not restore defaults:\n%s", out)
	}

	out, err = runCLI(t, dir, "settings", "import", exported)
	if err != nil {
		t.Fatalf("import error = %v", err)
	}
	if !strings.Contains(out, "45 min") {
		t.Errorf("import output:\n%s", out)
	}

	out, err = runCLI(t, dir, "settings", "backups")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "No backups.") {
		t.Error("reset and import should leave backups")
	}
}

func TestLevelAdd(t *testing.T) {
	dir, _ := setupDataDir(t)

	out, err := runCLI(t, dir, "level", "--add", "31")
	if err != nil {
		t.Fatalf("level --add error = %v", err)
	}
	for _, want := range []string{"Added 0분 31초.", "Level 2!", "Level:          2", "Total rest:     0분 31초"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if _, err := runCLI(t, dir, "level", "--add", "-5"); err == nil {
		t.Error("negative --add accepted")
	}
}

func TestStartupCommands(t *testing.T) {
	dir, plat := setupDataDir(t)

	if _, err := runCLI(t, dir, "startup", "enable"); err != nil {
		t.Fatalf("startup enable error = %v", err)
	}
	if !plat.enabled {
		t.Error("startup entry not registered")
	}
	out, err := runCLI(t, dir, "startup", "status")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Startup: enabled") {
		t.Errorf("status output: %q", out)
	}

	if _, err := runCLI(t, dir, "startup", "disable"); err != nil {
		t.Fatal(err)
	}
	if plat.enabled {
		t.Error("startup entry still registered")
	}
}

func TestHistoryEmpty(t *testing.T) {
	dir, _ := setupDataDir(t)

	out, err := runCLI(t, dir, "history", "--days", "3")
	if err != nil {
		t.Fatalf("history error = %v", err)
	}
	if !strings.Contains(out, "No sessions recorded yet.") || !strings.Contains(out, "last 3 days") {
		t.Errorf("history output:\n%s", out)
	}
	if _, err := runCLI(t, dir, "history", "--limit", "0"); err == nil {
		t.Error("--limit 0 accepted")
	}
}

func TestStatusNotRunning(t *testing.T) {
	dir, _ := setupDataDir(t)

	out, err := runCLI(t, dir, "status")
	if err != nil {
		t.Fatalf("status error = %v", err)
	}
	if !strings.Contains(out, "not running") {
		t.Errorf("status output: %q", out)
	}
}

func TestFormatSession(t *testing.T) {
	start := time.Date(2025, 3, 4, 9, 30, 0, 0, time.Local)

	got := formatSession(history.Session{
		Kind: history.KindRest, Manual: true, Reason: "timeout",
		StartedAt: start, Elapsed: 31 * time.Second, LevelBefore: 1, LevelAfter: 2,
	})
	want := "2025-03-04 09:30  rest* 0분 31초 (timeout)  level 1 → 2"
	if got != want {
		t.Errorf("formatSession(rest) = %q, want %q", got, want)
	}

	got = formatSession(history.Session{
		Kind: history.KindMeal, Meal: "lunch", Reason: "confirm",
		StartedAt: start, Elapsed: 90 * time.Second,
	})
	if !strings.Contains(got, "meal") || !strings.Contains(got, "점심") || !strings.Contains(got, "1분 30초") {
		t.Errorf("formatSession(meal) = %q", got)
	}
}

func TestDayBar(t *testing.T) {
	if got := dayBar(0, time.Minute, 20); got != "" {
		t.Errorf("dayBar(0) = %q", got)
	}
	if got := dayBar(time.Minute, time.Minute, 20); got != strings.Repeat("█", 20) {
		t.Errorf("dayBar(full) = %q", got)
	}
	if got := dayBar(time.Second, time.Hour, 20); got != "█" {
		t.Errorf("dayBar(tiny) = %q, want one block", got)
	}
}

type fakeRestView struct {
	total    int
	updates  int
	finished []rest.Summary
}

func (v *fakeRestView) Update(rest.View)    { v.updates++ }
func (v *fakeRestView) LevelUp(int, string) {}
func (v *fakeRestView) Finish(s rest.Summary) {
	v.finished = append(v.finished, s)
}

func TestRunRestCancelled(t *testing.T) {
	dir, _ := setupDataDir(t)
	dataDir = dir

	c, err := openContext(app.ModeCLI)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	view := &fakeRestView{}
	summary, err := runRest(ctx, c, func(total int, _ level.Progress) restView {
		view.total = total
		return view
	})
	if err != nil {
		t.Fatalf("runRest() error = %v", err)
	}
	if summary.Reason != rest.ReasonClosed || !summary.Manual {
		t.Errorf("summary = %+v", summary)
	}
	if view.total != c.Config.Rest.PopupSeconds {
		t.Errorf("view total = %d", view.total)
	}
	if len(view.finished) != 1 {
		t.Errorf("Finish called %d times", len(view.finished))
	}
	if _, open := c.ActiveRest(); open {
		t.Error("rest still open after cancel")
	}
}

func TestVersionCommand(t *testing.T) {
	cmd := newVersionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.Run(cmd, nil)
	if !strings.HasPrefix(out.String(), "ClockApp v") {
		t.Errorf("version output: %q", out.String())
	}
}

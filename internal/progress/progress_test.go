package progress

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/koreawook/ClockApp/internal/level"
	"github.com/koreawook/ClockApp/internal/rest"
)

func TestRestUITextOutput(t *testing.T) {
	var buf bytes.Buffer
	u := newRestUI(&buf, false, 30, level.ProgressFor(0))
	if u.IsTerminal() {
		t.Fatal("expected text mode")
	}

	for remaining := 29; remaining >= 0; remaining-- {
		u.Update(rest.View{Remaining: remaining, Total: 30, Progress: level.ProgressFor(int64(30 - remaining))})
	}
	u.LevelUp(2, level.Message(2))
	u.Finish(rest.Summary{
		Reason:       rest.ReasonTimeout,
		Elapsed:      31 * time.Second,
		LevelAfter:   2,
		TotalSeconds: 31,
	})

	out := buf.String()
	if !strings.HasPrefix(out, "Rest started: 30 seconds (level 1)\n") {
		t.Errorf("missing start line:\n%s", out)
	}
	if n := strings.Count(out, "seconds left"); n != 3 {
		t.Errorf("printed %d countdown lines, want 3:\n%s", n, out)
	}
	if !strings.Contains(out, "Level up: 2") {
		t.Errorf("missing level up:\n%s", out)
	}
	if !strings.Contains(out, "Rest finished (timeout): 0분 31초 credited, level 2, total 0분 31초") {
		t.Errorf("missing summary:\n%s", out)
	}
}

func TestCLIProgressWritesBar(t *testing.T) {
	var buf bytes.Buffer
	p := NewCLIProgress(&buf)
	p.Start(60, "레벨 2")
	p.Update(30)
	if !strings.Contains(buf.String(), "레벨 2") {
		t.Errorf("bar output = %q", buf.String())
	}
}

func TestNoOpProgress(t *testing.T) {
	var r Reporter = NoOpProgress{}
	r.Start(10, "x")
	r.Update(5)
	r.SetDescription("y")
	r.Finish()
}

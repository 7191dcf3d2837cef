package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/koreawook/ClockApp/internal/level"
	"github.com/koreawook/ClockApp/internal/rest"
)

// textInterval is how often the non-TTY output prints the countdown.
const textInterval = 10

// RestUI shows a rest countdown in the terminal: one bar for the seconds
// left and one for the progress toward the next level. Without a terminal
// it prints a line every few seconds instead.
type RestUI struct {
	out        io.Writer
	isTerminal bool

	progress  *mpb.Progress
	countdown *mpb.Bar
	levelBar  *mpb.Bar

	mu          sync.Mutex
	remaining   int
	lvl         level.Progress
	lastPrinted int
}

// NewRestUI creates the countdown view on stderr.
func NewRestUI(total int, start level.Progress) *RestUI {
	terminal := IsTerminal(os.Stderr)
	if terminal {
		enableWindowsANSI(os.Stderr)
	}
	return newRestUI(os.Stderr, terminal, total, start)
}

func newRestUI(out io.Writer, terminal bool, total int, start level.Progress) *RestUI {
	u := &RestUI{
		out:         out,
		isTerminal:  terminal,
		remaining:   total,
		lvl:         start,
		lastPrinted: total + 1,
	}
	if !terminal {
		fmt.Fprintf(out, "Rest started: %d seconds (level %d)\n", total, start.Level)
		return u
	}

	u.progress = mpb.New(
		mpb.WithOutput(out),
		mpb.WithRefreshRate(200*time.Millisecond),
		mpb.WithWidth(40),
	)
	style := mpb.BarStyle().Lbound("[").Filler("█").Tip("█").Padding("░").Rbound("]")

	u.countdown = u.progress.New(int64(total), style,
		mpb.PrependDecorators(decor.Name("휴식  ", decor.WCSyncSpaceR)),
		mpb.AppendDecorators(decor.Any(func(decor.Statistics) string {
			u.mu.Lock()
			defer u.mu.Unlock()
			return fmt.Sprintf("%3d초 남음", u.remaining)
		}, decor.WCSyncSpace)),
	)
	u.levelBar = u.progress.New(start.Required, style,
		mpb.PrependDecorators(decor.Any(func(decor.Statistics) string {
			u.mu.Lock()
			defer u.mu.Unlock()
			return fmt.Sprintf("레벨 %d", u.lvl.Level)
		}, decor.WCSyncSpaceR)),
		mpb.AppendDecorators(decor.Any(func(decor.Statistics) string {
			u.mu.Lock()
			defer u.mu.Unlock()
			return "다음 레벨까지 " + level.FormatDuration(u.lvl.Remaining)
		}, decor.WCSyncSpace)),
	)
	u.levelBar.SetCurrent(start.IntoLevel)
	return u
}

// IsTerminal reports whether bars are drawn.
func (u *RestUI) IsTerminal() bool {
	return u.isTerminal
}

// Update renders a controller view.
func (u *RestUI) Update(v rest.View) {
	u.mu.Lock()
	u.remaining = v.Remaining
	levelChanged := v.Progress.Level != u.lvl.Level
	u.lvl = v.Progress
	due := !u.isTerminal && u.lastPrinted-v.Remaining >= textInterval
	if due {
		u.lastPrinted = v.Remaining
	}
	u.mu.Unlock()

	if !u.isTerminal {
		if due {
			fmt.Fprintf(u.out, "%d seconds left (level %d, %s to next level)\n",
				v.Remaining, v.Progress.Level, level.FormatDuration(v.Progress.Remaining))
		}
		return
	}

	u.countdown.SetCurrent(int64(v.Total - v.Remaining))
	if levelChanged {
		u.levelBar.SetTotal(v.Progress.Required, false)
	}
	u.levelBar.SetCurrent(v.Progress.IntoLevel)
}

// LevelUp announces a new level.
func (u *RestUI) LevelUp(lvl int, message string) {
	if u.isTerminal {
		fmt.Fprintf(u.progress, "🎉 레벨 %d! %s\n", lvl, message)
		return
	}
	fmt.Fprintf(u.out, "Level up: %d - %s\n", lvl, message)
}

// Finish stops the bars and prints the summary of the closed rest.
func (u *RestUI) Finish(s rest.Summary) {
	if u.isTerminal {
		if s.Reason == rest.ReasonTimeout {
			u.countdown.SetTotal(-1, true)
		} else {
			u.countdown.Abort(false)
		}
		u.levelBar.Abort(false)
		u.progress.Wait()
	}
	fmt.Fprintf(u.out, "Rest finished (%s): %s credited, level %d, total %s\n",
		s.Reason, level.FormatDuration(int64(s.Elapsed/time.Second)), s.LevelAfter, level.FormatDuration(s.TotalSeconds))
}

// Package rest implements the rest popup and meal popup countdowns
// independently of any window toolkit. The GUI and the CLI both drive a
// Controller from the scheduler tick and render its View.
package rest

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/koreawook/ClockApp/internal/constants"
	"github.com/koreawook/ClockApp/internal/events"
	"github.com/koreawook/ClockApp/internal/level"
)

// State of a popup countdown.
type State int

const (
	CountingDown State = iota
	Closing
	Closed
)

func (s State) String() string {
	switch s {
	case CountingDown:
		return "counting_down"
	case Closing:
		return "closing"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// CloseReason records why a popup closed.
type CloseReason string

const (
	ReasonTimeout   CloseReason = "timeout"
	ReasonConfirm   CloseReason = "confirm"
	ReasonFocusLost CloseReason = "focus_lost"
	ReasonClosed    CloseReason = "closed"
)

// Band is the colour band of a countdown progress bar.
type Band int

const (
	BandGreen Band = iota
	BandOrange
	BandRed
)

// BandFor maps the remaining ratio to a colour: above 0.5 green, above 0.2
// orange, otherwise red.
func BandFor(ratio float64) Band {
	switch {
	case ratio > 0.5:
		return BandGreen
	case ratio > 0.2:
		return BandOrange
	default:
		return BandRed
	}
}

// Options configures a Controller.
type Options struct {
	// Seconds is the countdown length. Default 30.
	Seconds int

	// ConfirmAfter enables the confirm button once this many seconds remain.
	// Zero or out of range means 10.
	ConfirmAfter int

	// Manual marks a popup the user asked for.
	Manual bool

	Now func() time.Time
	Bus *events.EventBus

	// OnLevelUp runs (on the ticking goroutine) whenever the level rises.
	OnLevelUp func(lvl int, message string)

	// OnClosed runs once, after the final state is persisted.
	OnClosed func(Summary)
}

// View is the render model of a rest popup.
type View struct {
	Remaining      int
	Total          int
	ConfirmEnabled bool
	ConfirmLabel   string
	Band           Band
	Progress       level.Progress
	State          State
}

// Ratio returns the remaining fraction of the countdown.
func (v View) Ratio() float64 {
	if v.Total <= 0 || v.Remaining <= 0 {
		return 0
	}
	return float64(v.Remaining) / float64(v.Total)
}

// Summary describes a closed rest popup.
type Summary struct {
	SessionID    string
	Reason       CloseReason
	Manual       bool
	StartedAt    time.Time
	Elapsed      time.Duration
	LevelBefore  int
	LevelAfter   int
	TotalSeconds int64
	Err          error // persistence failure, if any
}

// Controller is the rest popup state machine:
// CountingDown -> Closing -> Closed.
type Controller struct {
	mu sync.Mutex

	opts      Options
	store     *level.Store
	sessionID string

	state     State
	remaining int
	started   time.Time

	initialTotal int64
	initialLevel int
	lastLevel    int // highest level observed (and reported) in this popup
	summary      Summary
}

// NewController opens a rest popup. The level state is read now; a missing
// or unusable level file counts as zero seconds.
func NewController(store *level.Store, opts Options) *Controller {
	if opts.Seconds <= 0 {
		opts.Seconds = constants.RestPopupSeconds
	}
	if opts.ConfirmAfter <= 0 || opts.ConfirmAfter > opts.Seconds {
		opts.ConfirmAfter = constants.ConfirmEnableSeconds
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	st, _ := store.Load()
	c := &Controller{
		opts:         opts,
		store:        store,
		sessionID:    uuid.NewString(),
		state:        CountingDown,
		remaining:    opts.Seconds,
		started:      opts.Now(),
		initialTotal: st.TotalSeconds,
		initialLevel: st.Level,
		lastLevel:    st.Level,
	}

	if bus := opts.Bus; bus != nil {
		bus.Publish(&events.RestEvent{
			BaseEvent:    events.BaseEvent{EventType: events.EventRestStarted, Time: c.started},
			SessionID:    c.sessionID,
			LevelBefore:  st.Level,
			TotalSeconds: st.TotalSeconds,
		})
	}
	return c
}

// SessionID identifies this popup in logs and history.
func (c *Controller) SessionID() string {
	return c.sessionID
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// View returns the current render model.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view(c.opts.Now())
}

func (c *Controller) view(now time.Time) View {
	total := c.initialTotal + c.elapsedSeconds(now)
	v := View{
		Remaining: c.remaining,
		Total:     c.opts.Seconds,
		Progress:  level.ProgressFor(total),
		State:     c.state,
	}
	if v.Remaining < 0 {
		v.Remaining = 0
	}
	v.ConfirmEnabled = c.remaining <= c.opts.ConfirmAfter
	if v.ConfirmEnabled {
		v.ConfirmLabel = "확인"
	} else {
		v.ConfirmLabel = fmt.Sprintf("확인 (%d초 후)", c.remaining-c.opts.ConfirmAfter)
	}
	v.Band = BandFor(v.Ratio())
	return v
}

func (c *Controller) elapsedSeconds(now time.Time) int64 {
	d := now.Sub(c.started)
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}

// Tick advances the countdown by one second. It recomputes the level from
// the time spent in the popup; a level rise is reported and persisted
// immediately. Once the countdown runs out the popup closes with
// ReasonTimeout. Ticks after Closing are ignored.
func (c *Controller) Tick() View {
	c.mu.Lock()
	if c.state != CountingDown {
		v := c.view(c.opts.Now())
		c.mu.Unlock()
		return v
	}

	now := c.opts.Now()
	c.remaining--

	total := c.initialTotal + c.elapsedSeconds(now)
	lvl, _ := level.Calculate(total)
	var levelUp int
	if lvl > c.lastLevel {
		c.lastLevel = lvl
		levelUp = lvl
		if err := c.store.Save(level.NewState(total)); err != nil {
			c.summary.Err = err
		}
	}

	expired := c.remaining < 0
	v := c.view(now)
	c.mu.Unlock()

	if levelUp > 0 {
		c.reportLevelUp(levelUp)
	}
	if expired {
		c.Close(ReasonTimeout)
		return c.View()
	}
	return v
}

// Confirm closes the popup if the confirm button is enabled.
func (c *Controller) Confirm() bool {
	c.mu.Lock()
	enabled := c.state == CountingDown && c.remaining <= c.opts.ConfirmAfter
	c.mu.Unlock()
	if !enabled {
		return false
	}
	c.Close(ReasonConfirm)
	return true
}

// FocusLost closes the popup when it stops being the foreground window.
func (c *Controller) FocusLost() {
	c.Close(ReasonFocusLost)
}

// Close persists the popup's elapsed time and moves to Closed. Only the
// first call has any effect; it returns the summary of that call.
func (c *Controller) Close(reason CloseReason) Summary {
	c.mu.Lock()
	if c.state != CountingDown {
		s := c.summary
		c.mu.Unlock()
		return s
	}
	c.state = Closing

	now := c.opts.Now()
	elapsed := c.elapsedSeconds(now)
	total := c.initialTotal + elapsed
	final := level.NewState(total)

	if err := c.store.Save(final); err != nil {
		c.summary.Err = err
	}

	var levelUp int
	if final.Level > c.lastLevel {
		c.lastLevel = final.Level
		levelUp = final.Level
	}

	c.summary = Summary{
		SessionID:    c.sessionID,
		Reason:       reason,
		Manual:       c.opts.Manual,
		StartedAt:    c.started,
		Elapsed:      time.Duration(elapsed) * time.Second,
		LevelBefore:  c.initialLevel,
		LevelAfter:   final.Level,
		TotalSeconds: total,
		Err:          c.summary.Err,
	}
	c.state = Closed
	summary := c.summary
	c.mu.Unlock()

	if levelUp > 0 {
		c.reportLevelUp(levelUp)
	}
	if bus := c.opts.Bus; bus != nil {
		bus.Publish(&events.RestEvent{
			BaseEvent:    events.BaseEvent{EventType: events.EventRestFinished, Time: now},
			SessionID:    summary.SessionID,
			Reason:       string(summary.Reason),
			Elapsed:      summary.Elapsed,
			LevelBefore:  summary.LevelBefore,
			LevelAfter:   summary.LevelAfter,
			TotalSeconds: summary.TotalSeconds,
		})
	}
	if c.opts.OnClosed != nil {
		c.opts.OnClosed(summary)
	}
	return summary
}

func (c *Controller) reportLevelUp(lvl int) {
	msg := level.Message(lvl)
	if bus := c.opts.Bus; bus != nil {
		bus.Publish(&events.LevelUpEvent{
			BaseEvent: events.BaseEvent{EventType: events.EventLevelUp, Time: c.opts.Now()},
			Level:     lvl,
			Message:   msg,
		})
	}
	if c.opts.OnLevelUp != nil {
		c.opts.OnLevelUp(lvl, msg)
	}
}

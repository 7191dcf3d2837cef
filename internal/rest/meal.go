package rest

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/koreawook/ClockApp/internal/config"
	"github.com/koreawook/ClockApp/internal/constants"
	"github.com/koreawook/ClockApp/internal/events"
)

// MealView is the render model of a meal popup.
type MealView struct {
	Message   string // "지금은 점심 시간입니다! 🍽️"
	Timer     string // "H:MM:SS", or "식사 완료!" once finished
	Remaining int
	Total     int
	Band      Band
	State     State
}

// Ratio returns the remaining fraction of the countdown.
func (v MealView) Ratio() float64 {
	if v.Total <= 0 || v.Remaining <= 0 {
		return 0
	}
	return float64(v.Remaining) / float64(v.Total)
}

// MealSummary describes a closed meal popup.
type MealSummary struct {
	SessionID string
	Meal      config.MealKind
	Reason    CloseReason
	StartedAt time.Time
	Elapsed   time.Duration
	Completed bool // the countdown ran to the end
}

// MealOptions configures a MealCountdown.
type MealOptions struct {
	// Seconds is the countdown length. Default 3600.
	Seconds int

	Now      func() time.Time
	Bus      *events.EventBus
	OnClosed func(MealSummary)
}

// MealCountdown is the meal popup state machine. It mirrors Controller
// but has no level bookkeeping and may be closed at any time.
type MealCountdown struct {
	mu        sync.Mutex
	opts      MealOptions
	meal      config.MealKind
	sessionID string
	state     State
	remaining int
	started   time.Time
	summary   MealSummary
}

// NewMealCountdown opens a meal popup for meal.
func NewMealCountdown(meal config.MealKind, opts MealOptions) *MealCountdown {
	if opts.Seconds <= 0 {
		opts.Seconds = constants.MealPopupSeconds
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &MealCountdown{
		opts:      opts,
		meal:      meal,
		sessionID: uuid.NewString(),
		state:     CountingDown,
		remaining: opts.Seconds,
		started:   opts.Now(),
	}
}

// Meal returns which meal this popup is for.
func (m *MealCountdown) Meal() config.MealKind {
	return m.meal
}

// View returns the current render model.
func (m *MealCountdown) View() MealView {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view()
}

func (m *MealCountdown) view() MealView {
	v := MealView{
		Message:   fmt.Sprintf("지금은 %s 시간입니다! 🍽️", m.meal.DisplayName()),
		Remaining: m.remaining,
		Total:     m.opts.Seconds,
		State:     m.state,
	}
	if v.Remaining < 0 {
		v.Remaining = 0
	}
	if m.remaining < 0 {
		v.Timer = "식사 완료!"
	} else {
		v.Timer = FormatHMS(m.remaining)
	}
	v.Band = BandFor(v.Ratio())
	return v
}

// FormatHMS renders seconds as H:MM:SS.
func FormatHMS(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

// Tick advances the countdown by one second and closes the popup once it
// has run out.
func (m *MealCountdown) Tick() MealView {
	m.mu.Lock()
	if m.state != CountingDown {
		v := m.view()
		m.mu.Unlock()
		return v
	}
	m.remaining--
	expired := m.remaining < 0
	v := m.view()
	m.mu.Unlock()

	if expired {
		m.Close(ReasonTimeout)
		return m.View()
	}
	return v
}

// Close ends the popup. Only the first call has any effect.
func (m *MealCountdown) Close(reason CloseReason) MealSummary {
	m.mu.Lock()
	if m.state != CountingDown {
		s := m.summary
		m.mu.Unlock()
		return s
	}
	now := m.opts.Now()
	m.state = Closed
	m.summary = MealSummary{
		SessionID: m.sessionID,
		Meal:      m.meal,
		Reason:    reason,
		StartedAt: m.started,
		Elapsed:   now.Sub(m.started).Truncate(time.Second),
		Completed: reason == ReasonTimeout,
	}
	summary := m.summary
	m.mu.Unlock()

	if bus := m.opts.Bus; bus != nil {
		bus.Publish(&events.MealFinishedEvent{
			BaseEvent: events.BaseEvent{EventType: events.EventMealFinished, Time: now},
			Meal:      string(summary.Meal),
			Elapsed:   summary.Elapsed,
			Completed: summary.Completed,
		})
	}
	if m.opts.OnClosed != nil {
		m.opts.OnClosed(summary)
	}
	return summary
}

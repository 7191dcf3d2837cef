package scheduler

import (
	"fmt"
	"time"

	"github.com/koreawook/ClockApp/internal/config"
)

// CountdownStatus selects the next-break label and its colour.
type CountdownStatus int

const (
	// StatusMinutes: a minute or more left (green)
	StatusMinutes CountdownStatus = iota
	// StatusSeconds: under a minute left (orange)
	StatusSeconds
	// StatusDue: the break is due now (red)
	StatusDue
	// StatusMealPause: breaks are suppressed by a meal window (orange)
	StatusMealPause
	// StatusDisabled: break reminders are off
	StatusDisabled
)

// Countdown is the model behind the "next break" label.
type Countdown struct {
	Status    CountdownStatus
	Remaining time.Duration
	Meal      config.MealKind // set for StatusMealPause
}

// Label renders the countdown text.
func (c Countdown) Label() string {
	switch c.Status {
	case StatusMealPause:
		return "🍽️ 식사시간 (휴식 알림 일시정지)"
	case StatusDisabled:
		return "⏸️ 휴식 알림 꺼짐"
	case StatusDue:
		return "⏰ 휴식시간!"
	case StatusSeconds:
		return fmt.Sprintf("⏰ 다음 휴식: %d초", int(c.Remaining/time.Second))
	default:
		secs := int(c.Remaining / time.Second)
		return fmt.Sprintf("⏰ 다음 휴식: %d:%02d", secs/60, secs%60)
	}
}

// NextBreak returns the countdown to the next break at now.
func (s *Scheduler) NextBreak(now time.Time) Countdown {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextBreak(now)
}

func (s *Scheduler) nextBreak(now time.Time) Countdown {
	if meal, ok := s.inMealWindow(now); ok {
		return Countdown{Status: StatusMealPause, Meal: meal.Kind}
	}
	if !s.settings.BreakEnabled {
		return Countdown{Status: StatusDisabled}
	}

	remaining := s.interval() - now.Sub(s.lastBreak)
	switch {
	case remaining >= time.Minute:
		return Countdown{Status: StatusMinutes, Remaining: remaining}
	case remaining >= time.Second:
		return Countdown{Status: StatusSeconds, Remaining: remaining}
	default:
		return Countdown{Status: StatusDue}
	}
}

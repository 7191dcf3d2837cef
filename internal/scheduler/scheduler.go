// Package scheduler decides once per second whether a break or meal
// reminder is due, and drives every other countdown from the same tick.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/koreawook/ClockApp/internal/config"
	"github.com/koreawook/ClockApp/internal/constants"
	"github.com/koreawook/ClockApp/internal/events"
)

// TriggerKind identifies what fired on a tick.
type TriggerKind int

const (
	BreakTrigger TriggerKind = iota
	MealTrigger
)

// Trigger is one reminder that became due.
type Trigger struct {
	Kind TriggerKind
	Meal config.MealTime // set for MealTrigger
	At   time.Time
}

// TickHandler is called on every scheduler tick, after the due checks.
type TickHandler func(now time.Time)

// Options configures a Scheduler. Zero values select the defaults.
type Options struct {
	// MealWindow is how long breaks stay suppressed after a meal starts.
	MealWindow time.Duration

	// MealCatchUp fires a meal reminder at any tick inside its window
	// rather than only during its exact minute (still once per day).
	MealCatchUp bool

	// TickInterval is the Run period.
	TickInterval time.Duration

	// Now is the clock. Defaults to time.Now.
	Now func() time.Time

	// Bus receives tick, break_due and meal_due events. May be nil.
	Bus *events.EventBus
}

// Scheduler holds the reminder state: last break time, interval and the
// per-meal shown-today stamps.
type Scheduler struct {
	mu        sync.Mutex
	settings  config.Settings
	lastBreak time.Time
	shown     map[config.MealKind]string // meal -> "2006-01-02" it was last shown
	opts      Options

	handlersMu sync.Mutex
	handlers   map[int]TickHandler
	nextID     int
}

// New creates a scheduler whose break interval starts counting now.
func New(settings config.Settings, opts Options) *Scheduler {
	if opts.MealWindow <= 0 {
		opts.MealWindow = constants.MealWindow
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = constants.SchedulerTickInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Scheduler{
		settings:  settings,
		lastBreak: opts.Now(),
		shown:     make(map[config.MealKind]string),
		opts:      opts,
		handlers:  make(map[int]TickHandler),
	}
}

// Now returns the scheduler clock's current time.
func (s *Scheduler) Now() time.Time {
	return s.opts.Now()
}

// Settings returns the settings in effect.
func (s *Scheduler) Settings() config.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// UpdateSettings replaces the settings and restarts the break interval, so
// a new interval counts from the save. Meal stamps are kept.
func (s *Scheduler) UpdateSettings(settings config.Settings) {
	now := s.opts.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	s.lastBreak = now
}

// LastBreak returns when the break interval last restarted.
func (s *Scheduler) LastBreak() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBreak
}

// ResetBreak restarts the break interval at now.
func (s *Scheduler) ResetBreak(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastBreak = now
}

// InMealWindow reports whether now falls inside an enabled meal's window.
func (s *Scheduler) InMealWindow(now time.Time) (config.MealTime, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inMealWindow(now)
}

func (s *Scheduler) inMealWindow(now time.Time) (config.MealTime, bool) {
	for _, meal := range s.settings.Meals() {
		if meal.Enabled && s.withinWindow(meal, now) {
			return meal, true
		}
	}
	return config.MealTime{}, false
}

// withinWindow checks [start, start+window) on the minute-of-day circle so a
// late meal's window continues past midnight.
func (s *Scheduler) withinWindow(meal config.MealTime, now time.Time) bool {
	const day = 24 * 60
	start := meal.Hour*60 + meal.Minute
	current := now.Hour()*60 + now.Minute()
	offset := (current - start + day) % day
	return offset < int(s.opts.MealWindow/time.Minute)
}

// CheckBreak fires when breaks are enabled, no meal window is active and
// the interval has elapsed since the last break. Firing restarts the
// interval. Inside a meal window nothing fires and nothing is reset.
func (s *Scheduler) CheckBreak(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkBreak(now)
}

func (s *Scheduler) checkBreak(now time.Time) bool {
	if !s.settings.BreakEnabled {
		return false
	}
	if _, ok := s.inMealWindow(now); ok {
		return false
	}
	if now.Sub(s.lastBreak) < s.interval() {
		return false
	}
	s.lastBreak = now
	return true
}

func (s *Scheduler) interval() time.Duration {
	return time.Duration(s.settings.TimeInterval) * time.Minute
}

// CheckMeal fires the first enabled meal whose time matches now and that has
// not been shown today. With MealCatchUp any minute inside the meal window
// matches.
func (s *Scheduler) CheckMeal(now time.Time) (config.MealTime, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meals := s.checkMeals(now)
	if len(meals) == 0 {
		return config.MealTime{}, false
	}
	return meals[0], true
}

func (s *Scheduler) checkMeals(now time.Time) []config.MealTime {
	today := now.Format("2006-01-02")
	var due []config.MealTime
	for _, meal := range s.settings.Meals() {
		if !meal.Enabled || s.shown[meal.Kind] == today {
			continue
		}
		match := now.Hour() == meal.Hour && now.Minute() == meal.Minute
		if !match && s.opts.MealCatchUp {
			match = s.withinWindow(meal, now)
		}
		if match {
			s.shown[meal.Kind] = today
			due = append(due, meal)
		}
	}
	return due
}

// Tick runs the break check, then the meal checks, publishes the resulting
// events and returns what fired.
func (s *Scheduler) Tick(now time.Time) []Trigger {
	s.mu.Lock()
	var triggers []Trigger
	if s.checkBreak(now) {
		triggers = append(triggers, Trigger{Kind: BreakTrigger, At: now})
	}
	for _, meal := range s.checkMeals(now) {
		triggers = append(triggers, Trigger{Kind: MealTrigger, Meal: meal, At: now})
	}
	countdown := s.nextBreak(now)
	s.mu.Unlock()

	s.publish(now, triggers, countdown)
	return triggers
}

func (s *Scheduler) publish(now time.Time, triggers []Trigger, c Countdown) {
	bus := s.opts.Bus
	if bus == nil {
		return
	}
	for _, tr := range triggers {
		switch tr.Kind {
		case BreakTrigger:
			bus.Publish(&events.BreakDueEvent{
				BaseEvent: events.BaseEvent{EventType: events.EventBreakDue, Time: now},
			})
		case MealTrigger:
			bus.Publish(&events.MealDueEvent{
				BaseEvent: events.BaseEvent{EventType: events.EventMealDue, Time: now},
				Meal:      string(tr.Meal.Kind),
				Display:   tr.Meal.Kind.DisplayName(),
			})
		}
	}
	tick := &events.TickEvent{
		BaseEvent:  events.BaseEvent{EventType: events.EventTick, Time: now},
		NextBreak:  c.Remaining,
		MealPaused: c.Status == StatusMealPause,
	}
	if tick.MealPaused {
		tick.ActiveMeal = string(c.Meal)
	}
	bus.Publish(tick)
}

// AddTickHandler registers h to run on every tick and returns a function
// that removes it. Handlers run on the scheduler goroutine.
func (s *Scheduler) AddTickHandler(h TickHandler) (remove func()) {
	s.handlersMu.Lock()
	id := s.nextID
	s.nextID++
	s.handlers[id] = h
	s.handlersMu.Unlock()

	return func() {
		s.handlersMu.Lock()
		delete(s.handlers, id)
		s.handlersMu.Unlock()
	}
}

func (s *Scheduler) runHandlers(now time.Time) {
	s.handlersMu.Lock()
	handlers := make([]TickHandler, 0, len(s.handlers))
	for _, h := range s.handlers {
		handlers = append(handlers, h)
	}
	s.handlersMu.Unlock()

	for _, h := range handlers {
		h(now)
	}
}

// Step performs one full tick: due checks, events and tick handlers.
func (s *Scheduler) Step() []Trigger {
	now := s.opts.Now()
	triggers := s.Tick(now)
	s.runHandlers(now)
	return triggers
}

// Run ticks every TickInterval until ctx is cancelled. onTrigger, when not
// nil, is called for each reminder that fires.
func (s *Scheduler) Run(ctx context.Context, onTrigger func(Trigger)) {
	ticker := time.NewTicker(s.opts.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, tr := range s.Step() {
				if onTrigger != nil {
					onTrigger(tr)
				}
			}
		}
	}
}

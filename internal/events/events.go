package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/koreawook/ClockApp/internal/constants"
)

// EventType defines the types of events that can be emitted
type EventType string

const (
	EventTick          EventType = "tick"
	EventBreakDue      EventType = "break_due"
	EventMealDue       EventType = "meal_due"
	EventRestStarted   EventType = "rest_started"
	EventRestFinished  EventType = "rest_finished"
	EventLevelUp       EventType = "level_up"
	EventMealFinished  EventType = "meal_finished"
	EventWeatherUpdate EventType = "weather_update"
	EventLog           EventType = "log"

	// Published when settings.json or clock.conf changed on disk or through the settings window.
	EventSettingsChanged EventType = "settings_changed"

	// Control requests, usually arriving over the instance control channel or the tray
	EventShowWindow   EventType = "show_window"
	EventOpenSettings EventType = "open_settings"
	EventQuit         EventType = "quit"
)

// LogLevel defines log severity levels
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventType EventType
	Time      time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }

// TickEvent is published once per scheduler tick
type TickEvent struct {
	BaseEvent
	NextBreak  time.Duration // time until the next break (0 when due)
	MealPaused bool          // break reminders suppressed by a meal window
	ActiveMeal string        // meal name when MealPaused
}

// BreakDueEvent asks the UI to open a rest popup
type BreakDueEvent struct {
	BaseEvent
	Manual bool // requested by the user rather than the interval
}

// MealDueEvent asks the UI to open a meal popup
type MealDueEvent struct {
	BaseEvent
	Meal    string // "lunch" or "dinner"
	Display string // localized meal name
}

// RestEvent reports the start or end of a rest popup
type RestEvent struct {
	BaseEvent
	SessionID    string
	Reason       string // close reason, empty for start
	Elapsed      time.Duration
	LevelBefore  int
	LevelAfter   int
	TotalSeconds int64
}

// LevelUpEvent reports that the rest level increased
type LevelUpEvent struct {
	BaseEvent
	Level   int
	Message string
}

// MealFinishedEvent reports a closed meal popup
type MealFinishedEvent struct {
	BaseEvent
	Meal      string
	Elapsed   time.Duration
	Completed bool
}

// WeatherEvent carries a refreshed weather summary
type WeatherEvent struct {
	BaseEvent
	Summary string // e.g. "☀️ 22°C 맑음"
	Source  string // live, cache or fallback
}

// LogEvent represents log messages
type LogEvent struct {
	BaseEvent
	Level   LogLevel
	Message string
	Source  string
	Error   error
}

// ControlEvent is a bare request (show window, open settings, quit)
type ControlEvent struct {
	BaseEvent
	Origin string // "ipc", "tray", "cli"
}

// EventBus manages event subscriptions and publishing
type EventBus struct {
	subscribers   map[EventType][]chan Event
	all           []chan Event // Subscribers to all events
	mu            sync.RWMutex
	bufferSize    int
	closed        bool
	droppedEvents atomic.Int64 // Count of dropped events due to full buffers
}

// NewEventBus creates a new event bus with specified buffer size
func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = constants.EventBusDefaultBuffer
	}
	if bufferSize > constants.EventBusMaxBuffer {
		bufferSize = constants.EventBusMaxBuffer
	}
	return &EventBus{
		subscribers: make(map[EventType][]chan Event),
		all:         make([]chan Event, 0),
		bufferSize:  bufferSize,
	}
}

// Subscribe creates a subscription to a specific event type
func (eb *EventBus) Subscribe(eventType EventType) <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.subscribers[eventType] = append(eb.subscribers[eventType], ch)
	return ch
}

// SubscribeAll creates a subscription to all events
func (eb *EventBus) SubscribeAll() <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.all = append(eb.all, ch)
	return ch
}

// Publish sends an event to all subscribers without blocking.
// A subscriber whose buffer is full misses the event; the drop is counted.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return
	}

	for _, ch := range eb.subscribers[event.Type()] {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}

	for _, ch := range eb.all {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}
}

// Close shuts down the event bus and closes all channels
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	eb.closed = true

	for _, channels := range eb.subscribers {
		for _, ch := range channels {
			close(ch)
		}
	}

	for _, ch := range eb.all {
		close(ch)
	}
}

// PublishLog is a convenience method for publishing log events
func (eb *EventBus) PublishLog(level LogLevel, message, source string, err error) {
	eb.Publish(&LogEvent{
		BaseEvent: BaseEvent{EventType: EventLog, Time: time.Now()},
		Level:     level,
		Message:   message,
		Source:    source,
		Error:     err,
	})
}

// PublishControl publishes a bare control request (show window, open settings, quit)
func (eb *EventBus) PublishControl(eventType EventType, origin string) {
	eb.Publish(&ControlEvent{
		BaseEvent: BaseEvent{EventType: eventType, Time: time.Now()},
		Origin:    origin,
	})
}

// PublishBreakDue asks for a rest popup
func (eb *EventBus) PublishBreakDue(manual bool) {
	eb.Publish(&BreakDueEvent{
		BaseEvent: BaseEvent{EventType: EventBreakDue, Time: time.Now()},
		Manual:    manual,
	})
}

// Unsubscribe removes a subscription channel from a specific event type
func (eb *EventBus) Unsubscribe(eventType EventType, ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	subscribers := eb.subscribers[eventType]
	for i, subCh := range subscribers {
		if subCh == ch {
			subscribers[i] = subscribers[len(subscribers)-1]
			eb.subscribers[eventType] = subscribers[:len(subscribers)-1]
			break
		}
	}
}

// UnsubscribeAll removes a subscription channel from all event types
func (eb *EventBus) UnsubscribeAll(ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	for eventType, subscribers := range eb.subscribers {
		for i, subCh := range subscribers {
			if subCh == ch {
				subscribers[i] = subscribers[len(subscribers)-1]
				eb.subscribers[eventType] = subscribers[:len(subscribers)-1]
				break
			}
		}
	}

	for i, subCh := range eb.all {
		if subCh == ch {
			eb.all[i] = eb.all[len(eb.all)-1]
			eb.all = eb.all[:len(eb.all)-1]
			break
		}
	}
}

// GetDroppedEventCount returns the total number of events dropped due to full buffers
func (eb *EventBus) GetDroppedEventCount() int64 {
	return eb.droppedEvents.Load()
}

// ResetDroppedEventCount resets the dropped event counter to zero
func (eb *EventBus) ResetDroppedEventCount() int64 {
	return eb.droppedEvents.Swap(0)
}

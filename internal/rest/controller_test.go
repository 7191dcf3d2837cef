package rest

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/koreawook/ClockApp/internal/events"
	"github.com/koreawook/ClockApp/internal/level"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newTestStore(t *testing.T, total int64) *level.Store {
	t.Helper()
	s := level.NewStore(filepath.Join(t.TempDir(), "rest_level_data.json"))
	if total > 0 {
		if err := s.Save(level.NewState(total)); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

// tickSeconds advances the clock one second per tick.
func tickSeconds(c *Controller, clock *fakeClock, n int) View {
	var v View
	for i := 0; i < n; i++ {
		clock.now = clock.now.Add(time.Second)
		v = c.Tick()
	}
	return v
}

func TestControllerTimeout(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)}
	store := newTestStore(t, 0)

	var closed []Summary
	c := NewController(store, Options{Now: clock.Now, OnClosed: func(s Summary) { closed = append(closed, s) }})

	v := tickSeconds(c, clock, 30)
	if v.Remaining != 0 || c.State() != CountingDown {
		t.Fatalf("after 30 ticks: remaining=%d state=%v", v.Remaining, c.State())
	}

	tickSeconds(c, clock, 1)
	if c.State() != Closed {
		t.Fatalf("state = %v, want closed", c.State())
	}
	if len(closed) != 1 || closed[0].Reason != ReasonTimeout {
		t.Fatalf("closed = %+v", closed)
	}
	if closed[0].Elapsed != 31*time.Second || closed[0].TotalSeconds != 31 {
		t.Errorf("summary = %+v", closed[0])
	}

	st, _ := store.Load()
	if st.TotalSeconds != 31 || st.Level != 2 {
		t.Errorf("persisted state = %+v", st)
	}
}

func TestControllerConfirmGate(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)}
	c := NewController(newTestStore(t, 0), Options{Now: clock.Now})

	v := c.View()
	if v.ConfirmEnabled || v.ConfirmLabel != "확인 (20초 후)" {
		t.Errorf("initial view = %+v", v)
	}
	if c.Confirm() {
		t.Fatal("confirm must be disabled at 30 seconds")
	}

	v = tickSeconds(c, clock, 19)
	if v.ConfirmEnabled {
		t.Errorf("confirm enabled at %d remaining", v.Remaining)
	}

	v = tickSeconds(c, clock, 1)
	if !v.ConfirmEnabled || v.ConfirmLabel != "확인" || v.Remaining != 10 {
		t.Errorf("at 10 remaining view = %+v", v)
	}
	if !c.Confirm() {
		t.Fatal("confirm should close the popup at 10 seconds")
	}
	if c.State() != Closed {
		t.Errorf("state = %v", c.State())
	}
}

func TestControllerConfirmAfterDefaults(t *testing.T) {
	tests := []struct {
		name         string
		confirmAfter int
		want         int
	}{
		{"zero", 0, 10},
		{"negative", -3, 10},
		{"beyond countdown", 45, 10},
		{"custom", 5, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{now: time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)}
			c := NewController(newTestStore(t, 0), Options{ConfirmAfter: tt.confirmAfter, Now: clock.Now})
			defer c.Close(ReasonClosed)

			v := tickSeconds(c, clock, 30-tt.want-1)
			if v.ConfirmEnabled {
				t.Errorf("confirm enabled at %d remaining", v.Remaining)
			}
			v = tickSeconds(c, clock, 1)
			if !v.ConfirmEnabled || v.Remaining != tt.want {
				t.Errorf("view at %d remaining = %+v", tt.want, v)
			}
		})
	}
}

func TestControllerLevelUpMidPopup(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)}
	store := newTestStore(t, 29)

	var ups []int
	c := NewController(store, Options{
		Now:       clock.Now,
		OnLevelUp: func(lvl int, msg string) { ups = append(ups, lvl) },
	})

	tickSeconds(c, clock, 1)
	if len(ups) != 1 || ups[0] != 2 {
		t.Fatalf("level ups = %v, want [2]", ups)
	}

	st, _ := store.Load()
	if st.Level != 2 || st.TotalSeconds != 30 {
		t.Errorf("level-up should persist immediately, got %+v", st)
	}

	tickSeconds(c, clock, 4)
	s := c.Close(ReasonClosed)
	if len(ups) != 1 {
		t.Errorf("level 2 reported again: %v", ups)
	}
	if s.LevelBefore != 1 || s.LevelAfter != 2 || s.TotalSeconds != 34 {
		t.Errorf("summary = %+v", s)
	}
}

func TestControllerLevelUpOnClose(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)}
	store := newTestStore(t, 85)

	var ups []int
	c := NewController(store, Options{
		Now:       clock.Now,
		OnLevelUp: func(lvl int, msg string) { ups = append(ups, lvl) },
	})

	// Time passes without ticks (for example a blocked UI); closing still credits it.
	clock.now = clock.now.Add(6 * time.Second)
	s := c.Close(ReasonFocusLost)

	if s.LevelAfter != 3 || len(ups) != 1 || ups[0] != 3 {
		t.Errorf("summary = %+v, level ups = %v", s, ups)
	}
}

func TestControllerClosedIsTerminal(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)}
	store := newTestStore(t, 0)

	calls := 0
	c := NewController(store, Options{Now: clock.Now, OnClosed: func(Summary) { calls++ }})

	clock.now = clock.now.Add(5 * time.Second)
	first := c.Close(ReasonClosed)

	clock.now = clock.now.Add(20 * time.Second)
	second := c.Close(ReasonConfirm)
	c.FocusLost()
	v := c.Tick()

	if calls != 1 {
		t.Errorf("OnClosed called %d times", calls)
	}
	if second != first {
		t.Errorf("second Close returned %+v, want %+v", second, first)
	}
	if v.State != Closed {
		t.Errorf("tick after close changed state to %v", v.State)
	}

	st, _ := store.Load()
	if st.TotalSeconds != 5 {
		t.Errorf("persisted total = %d, want 5", st.TotalSeconds)
	}
}

func TestControllerPublishesEvents(t *testing.T) {
	bus := events.NewEventBus(16)
	defer bus.Close()
	started := bus.Subscribe(events.EventRestStarted)
	finished := bus.Subscribe(events.EventRestFinished)

	clock := &fakeClock{now: time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)}
	c := NewController(newTestStore(t, 0), Options{Now: clock.Now, Bus: bus, Manual: true})

	select {
	case ev := <-started:
		if ev.(*events.RestEvent).SessionID != c.SessionID() {
			t.Error("start event has the wrong session id")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("no rest_started event")
	}

	clock.now = clock.now.Add(3 * time.Second)
	s := c.Close(ReasonClosed)
	if !s.Manual {
		t.Error("summary should carry the manual flag")
	}

	select {
	case ev := <-finished:
		re := ev.(*events.RestEvent)
		if re.Reason != "closed" || re.Elapsed != 3*time.Second {
			t.Errorf("finish event = %+v", re)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("no rest_finished event")
	}
}

func TestBandFor(t *testing.T) {
	tests := map[float64]Band{1: BandGreen, 0.51: BandGreen, 0.5: BandOrange, 0.21: BandOrange, 0.2: BandRed, 0: BandRed}
	for ratio, want := range tests {
		if got := BandFor(ratio); got != want {
			t.Errorf("BandFor(%v) = %v, want %v", ratio, got, want)
		}
	}
}

package ratelimit

import (
	"context"
	"testing"
	"time"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

// TestAllowBurstThenRefill tests that the bucket drains and refills with time
func TestAllowBurstThenRefill(t *testing.T) {
	c := &clock{t: time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)}
	rl := newRateLimiter(1.0/60, 2, c.now)

	if !rl.Allow() || !rl.Allow() {
		t.Fatal("burst of 2 should be allowed")
	}
	if rl.Allow() {
		t.Fatal("third call should be limited")
	}

	c.t = c.t.Add(30 * time.Second)
	if rl.Allow() {
		t.Error("half a token should not be enough")
	}

	c.t = c.t.Add(31 * time.Second)
	if !rl.Allow() {
		t.Error("token should have refilled after a minute")
	}
}

// TestTokensCappedAtBurst tests that idle time does not accumulate beyond burst
func TestTokensCappedAtBurst(t *testing.T) {
	c := &clock{t: time.Now()}
	rl := newRateLimiter(1, 3, c.now)

	c.t = c.t.Add(time.Hour)
	if got := rl.GetCurrentTokens(); got != 3 {
		t.Errorf("tokens = %v, want 3", got)
	}
}

// TestWaitCancelled tests that Wait returns the context error
func TestWaitCancelled(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := rl.Wait(ctx); err != context.DeadlineExceeded {
		t.Errorf("Wait() error = %v, want DeadlineExceeded", err)
	}
}

// TestWeatherRefreshLimiter tests the weather preset
func TestWeatherRefreshLimiter(t *testing.T) {
	rl := NewWeatherRefreshLimiter()
	for i := 0; i < WeatherRefreshBurst; i++ {
		if !rl.Allow() {
			t.Fatalf("refresh %d limited", i+1)
		}
	}
	if rl.Allow() {
		t.Error("refresh beyond burst allowed")
	}
}

// Package ratelimit provides a token bucket limiter for outbound requests.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// RateLimiter implements a token bucket rate limiter.
// It allows bursts up to maxTokens, then refills at refillRate tokens/second.
type RateLimiter struct {
	tokens     float64   // Current number of tokens available
	maxTokens  float64   // Maximum bucket capacity
	refillRate float64   // Tokens added per second
	lastRefill time.Time // Last time tokens were refilled
	now        func() time.Time
	mu         sync.Mutex
}

// NewRateLimiter creates a new rate limiter.
//
// Parameters:
//   - tokensPerSecond: Rate at which tokens are added (e.g., 1.0/300 for one token every 5 minutes)
//   - burstSize: Maximum tokens that can accumulate (allows brief bursts)
func NewRateLimiter(tokensPerSecond float64, burstSize float64) *RateLimiter {
	return newRateLimiter(tokensPerSecond, burstSize, time.Now)
}

func newRateLimiter(tokensPerSecond, burstSize float64, now func() time.Time) *RateLimiter {
	return &RateLimiter{
		tokens:     burstSize, // Start with full bucket
		maxTokens:  burstSize,
		refillRate: tokensPerSecond,
		lastRefill: now(),
		now:        now,
	}
}

// NewWeatherRefreshLimiter limits forced weather refreshes.
//
// The free weather endpoints are shared by every user behind the same
// address. A user hammering the refresh button gets WeatherRefreshBurst
// live fetches, then one per WeatherRefreshEvery; the rest are served
// from cache.
func NewWeatherRefreshLimiter() *RateLimiter {
	return NewRateLimiter(1/WeatherRefreshEvery.Seconds(), WeatherRefreshBurst)
}

// Allow consumes a token if one is available and reports whether it did.
func (rl *RateLimiter) Allow() bool {
	return rl.tryAcquire()
}

// Wait blocks until a token is available or context is cancelled.
// Returns an error if the context is cancelled before a token becomes available.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if rl.tryAcquire() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(rl.timeUntilNextToken()):
		}
	}
}

// tryAcquire attempts to acquire one token without blocking.
func (rl *RateLimiter) tryAcquire() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill()
	if rl.tokens >= 1.0 {
		rl.tokens -= 1.0
		return true
	}
	return false
}

// refill must be called with rl.mu held.
func (rl *RateLimiter) refill() {
	now := rl.now()
	elapsed := now.Sub(rl.lastRefill).Seconds()
	if elapsed > 0 {
		rl.tokens += elapsed * rl.refillRate
	}
	if rl.tokens > rl.maxTokens {
		rl.tokens = rl.maxTokens
	}
	rl.lastRefill = now
}

// timeUntilNextToken calculates how long to wait until at least one token is available.
func (rl *RateLimiter) timeUntilNextToken() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	tokensNeeded := 1.0 - rl.tokens
	if tokensNeeded <= 0 {
		return 0
	}
	if rl.refillRate <= 0 {
		return time.Minute
	}
	return time.Duration(tokensNeeded / rl.refillRate * float64(time.Second))
}

// GetCurrentTokens returns the current number of tokens (for testing/debugging).
func (rl *RateLimiter) GetCurrentTokens() float64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refill()
	return rl.tokens
}

package resilience

import (
	"sync/atomic"
	"time"
)

// DefaultCooldown is how long a provider is skipped after a quota signal.
const DefaultCooldown = 60 * time.Second

// RateLimiter tracks a provider-wide cooldown window opened by a quota or
// 429 response. Concurrent requests may each record a rate limit; the last
// write wins.
type RateLimiter struct {
	window time.Duration
	until  atomic.Int64 // unix nanos
}

// NewRateLimiter returns a limiter with the given window, or DefaultCooldown.
func NewRateLimiter(window time.Duration) *RateLimiter {
	if window <= 0 {
		window = DefaultCooldown
	}
	return &RateLimiter{window: window}
}

// IsOpen reports whether calls may proceed at now.
func (r *RateLimiter) IsOpen(now time.Time) bool {
	return now.UnixNano() >= r.until.Load()
}

// RecordRateLimited starts a cooldown window at now.
func (r *RateLimiter) RecordRateLimited(now time.Time) {
	r.until.Store(now.Add(r.window).UnixNano())
}

// Until returns the end of the current cooldown window.
func (r *RateLimiter) Until() time.Time {
	return time.Unix(0, r.until.Load())
}

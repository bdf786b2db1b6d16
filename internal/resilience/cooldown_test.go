package resilience

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Cooldown(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(0)

	assert.True(t, rl.IsOpen(t0))

	rl.RecordRateLimited(t0)
	assert.False(t, rl.IsOpen(t0.Add(30*time.Second)))
	assert.True(t, rl.IsOpen(t0.Add(61*time.Second)))
	assert.True(t, t0.Add(DefaultCooldown).Equal(rl.Until()))
}

func TestRateLimiter_ExtendsOnRepeat(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(10 * time.Second)

	rl.RecordRateLimited(t0)
	rl.RecordRateLimited(t0.Add(8 * time.Second))

	assert.False(t, rl.IsOpen(t0.Add(15*time.Second)))
	assert.True(t, rl.IsOpen(t0.Add(18*time.Second)))
}

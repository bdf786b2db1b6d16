package scrape

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestAdaptiveLimiter_Bounds(t *testing.T) {
	a := NewAdaptiveLimiter(10, 10)

	for i := 0; i < 20; i++ {
		a.OnSuccess()
	}
	assert.InDelta(t, 20, float64(a.Limit()), 0.001)

	for i := 0; i < 20; i++ {
		a.OnRateLimit()
	}
	assert.InDelta(t, 2.5, float64(a.Limit()), 0.001)

	require.NoError(t, a.Wait(context.Background()))
}

func TestHostLimiters_PerHost(t *testing.T) {
	h := NewHostLimiters(2)

	a := h.For("https://example.co.jp/company")
	b := h.For("https://EXAMPLE.co.jp/about")
	c := h.For("https://other.example.com/")

	require.NotNil(t, a)
	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, rate.Limit(2), a.Limit())
}

func TestHostLimiters_Disabled(t *testing.T) {
	assert.Nil(t, NewHostLimiters(0).For("https://example.com"))
	assert.Nil(t, NewHostLimiters(2).For("::not a url"))
	var h *HostLimiters
	assert.Nil(t, h.For("https://example.com"))
}

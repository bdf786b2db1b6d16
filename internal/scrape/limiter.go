package scrape

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// AdaptiveLimiter wraps a rate.Limiter that speeds up on success and backs
// off on 429. The rate stays within [initial/4, initial*2].
type AdaptiveLimiter struct {
	mu          sync.Mutex
	limiter     *rate.Limiter
	maxRate     rate.Limit
	minRate     rate.Limit
	currentRate rate.Limit
}

// NewAdaptiveLimiter creates an adaptive limiter starting at initialRate.
func NewAdaptiveLimiter(initialRate rate.Limit, burst int) *AdaptiveLimiter {
	return &AdaptiveLimiter{
		limiter:     rate.NewLimiter(initialRate, burst),
		maxRate:     initialRate * 2,
		minRate:     initialRate / 4,
		currentRate: initialRate,
	}
}

// Wait blocks until the limiter allows a request.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// OnSuccess raises the rate by 20%.
func (a *AdaptiveLimiter) OnSuccess() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.currentRate = min(a.currentRate*1.2, a.maxRate)
	a.limiter.SetLimit(a.currentRate)
}

// OnRateLimit halves the rate.
func (a *AdaptiveLimiter) OnRateLimit() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.currentRate = max(a.currentRate*0.5, a.minRate)
	a.limiter.SetLimit(a.currentRate)
}

// Limit returns the current rate.
func (a *AdaptiveLimiter) Limit() rate.Limit {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentRate
}

// HostLimiters hands out one AdaptiveLimiter per host so probing a single
// corporate site stays polite while different sites proceed in parallel.
type HostLimiters struct {
	rps   rate.Limit
	burst int

	mu    sync.Mutex
	hosts map[string]*AdaptiveLimiter
}

// NewHostLimiters creates a registry whose limiters start at rps. A
// non-positive rps disables pacing.
func NewHostLimiters(rps float64) *HostLimiters {
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &HostLimiters{rps: rate.Limit(rps), burst: burst, hosts: make(map[string]*AdaptiveLimiter)}
}

// For returns the limiter for rawURL's host, or nil when pacing is off.
func (h *HostLimiters) For(rawURL string) *AdaptiveLimiter {
	if h == nil || h.rps <= 0 {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil
	}
	host := strings.ToLower(u.Host)

	h.mu.Lock()
	defer h.mu.Unlock()
	lim, ok := h.hosts[host]
	if !ok {
		lim = NewAdaptiveLimiter(h.rps, h.burst)
		h.hosts[host] = lim
		zap.L().Debug("scrape: new host limiter", zap.String("host", host), zap.Float64("rps", float64(h.rps)))
	}
	return lim
}

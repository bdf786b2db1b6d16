package news

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/lead-intel/internal/model"
	"github.com/sells-group/lead-intel/internal/resilience"
	"github.com/sells-group/lead-intel/pkg/gnews"
	"github.com/sells-group/lead-intel/pkg/newsapi"
)

// MeteredSource wraps a quota-limited API. While its cooldown is active it
// returns nothing without touching the network; a rate-limit failure
// starts a new cooldown.
type MeteredSource struct {
	name    string
	limiter *resilience.RateLimiter
	breaker *resilience.CircuitBreaker
	now     func() time.Time
	call    func(ctx context.Context, query string) ([]model.NewsItem, error)
}

// MeteredOption configures a MeteredSource.
type MeteredOption func(*MeteredSource)

// WithClock overrides the time source used for cooldown checks.
func WithClock(now func() time.Time) MeteredOption {
	return func(m *MeteredSource) { m.now = now }
}

// WithBreaker guards calls with a circuit breaker.
func WithBreaker(cb *resilience.CircuitBreaker) MeteredOption {
	return func(m *MeteredSource) { m.breaker = cb }
}

func newMetered(name string, limiter *resilience.RateLimiter, call func(context.Context, string) ([]model.NewsItem, error), opts []MeteredOption) *MeteredSource {
	if limiter == nil {
		limiter = resilience.NewRateLimiter(resilience.DefaultCooldown)
	}
	m := &MeteredSource{name: name, limiter: limiter, now: time.Now, call: call}
	for _, o := range opts {
		o(m)
	}
	return m
}

// NewGNewsSource searches GNews across titles and article bodies. Sources
// built for the same API key should share one limiter.
func NewGNewsSource(client gnews.Client, limiter *resilience.RateLimiter, opts ...MeteredOption) *MeteredSource {
	return newMetered("gnews", limiter, func(ctx context.Context, query string) ([]model.NewsItem, error) {
		resp, err := client.Search(ctx, gnews.SearchParams{Query: query})
		if err != nil {
			return nil, err
		}
		items := make([]model.NewsItem, 0, len(resp.Articles))
		for _, a := range resp.Articles {
			items = append(items, model.NewsItem{
				Title:       a.Title,
				URL:         a.URL,
				PublishedAt: a.PublishedAt,
				Source:      a.Source.Name,
				Summary:     a.Description,
			})
		}
		return items, nil
	}, opts)
}

// NewNewsAPISource searches NewsAPI's everything endpoint.
func NewNewsAPISource(client newsapi.Client, limiter *resilience.RateLimiter, opts ...MeteredOption) *MeteredSource {
	return newMetered("newsapi", limiter, func(ctx context.Context, query string) ([]model.NewsItem, error) {
		resp, err := client.Everything(ctx, query, feedItemLimit)
		if err != nil {
			return nil, err
		}
		items := make([]model.NewsItem, 0, len(resp.Articles))
		for _, a := range resp.Articles {
			items = append(items, model.NewsItem{
				Title:       a.Title,
				URL:         a.URL,
				PublishedAt: a.PublishedAt,
				Source:      a.Source.Name,
				Summary:     a.Description,
			})
		}
		return items, nil
	}, opts)
}

// Name implements Source.
func (m *MeteredSource) Name() string { return m.name }

// Fetch implements Source.
func (m *MeteredSource) Fetch(ctx context.Context, query string) ([]model.NewsItem, error) {
	if !m.limiter.IsOpen(m.now()) {
		zap.L().Debug("news: provider cooling down",
			zap.String("provider", m.name),
			zap.Time("until", m.limiter.Until()),
		)
		return nil, nil
	}

	var (
		items []model.NewsItem
		err   error
	)
	if m.breaker != nil {
		items, err = resilience.ExecuteVal(ctx, m.breaker, func(ctx context.Context) ([]model.NewsItem, error) {
			return m.call(ctx, query)
		})
	} else {
		items, err = m.call(ctx, query)
	}
	if err != nil {
		if resilience.IsRateLimited(err) {
			m.limiter.RecordRateLimited(m.now())
			zap.L().Warn("news: provider rate limited",
				zap.String("provider", m.name),
				zap.Time("until", m.limiter.Until()),
			)
		}
		return nil, err
	}
	return items, nil
}

package news

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/lead-intel/internal/model"
)

// Config wires an Aggregator. Sources are listed in merge priority order:
// press releases first, then general RSS, then metered APIs.
type Config struct {
	CompanySources []Source
	TopicSources   []Source
	// Fallback is queried only when every topic source came back empty.
	Fallback Source

	FreshnessDays int
	CompanyLimit  int
	TopicLimit    int
	// Timeout bounds each provider call.
	Timeout time.Duration
	Now     func() time.Time
}

// Aggregator merges, filters and deduplicates news from several sources.
// It never returns an error: a failing source contributes nothing.
type Aggregator struct {
	cfg Config
}

// NewAggregator creates an Aggregator, filling unset limits with defaults.
func NewAggregator(cfg Config) *Aggregator {
	if cfg.FreshnessDays <= 0 {
		cfg.FreshnessDays = 365
	}
	if cfg.CompanyLimit <= 0 {
		cfg.CompanyLimit = 10
	}
	if cfg.TopicLimit <= 0 {
		cfg.TopicLimit = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Aggregator{cfg: cfg}
}

// CompanyNews searches under the company's normalized name and, when it
// differs, its brand alias.
func (a *Aggregator) CompanyNews(ctx context.Context, name string) []model.NewsItem {
	if strings.TrimSpace(name) == "" {
		return []model.NewsItem{}
	}

	variants := []string{NormalizeQuery(name)}
	if brand := BrandName(name); brand != "" {
		if q := NormalizeQuery(brand); q != variants[0] {
			variants = append(variants, q)
		}
	}

	var merged []model.NewsItem
	for _, q := range variants {
		merged = append(merged, a.fanOut(ctx, a.cfg.CompanySources, q)...)
	}

	out := a.finish(merged, a.cfg.CompanyLimit)
	zap.L().Info("news: company news",
		zap.String("company", name),
		zap.Strings("queries", variants),
		zap.Int("fetched", len(merged)),
		zap.Int("returned", len(out)),
	)
	return out
}

// TopicNews searches a topic query, falling back to the secondary metered
// provider only when the primary sources found nothing.
func (a *Aggregator) TopicNews(ctx context.Context, query string) []model.NewsItem {
	if strings.TrimSpace(query) == "" {
		return []model.NewsItem{}
	}

	merged := a.fanOut(ctx, a.cfg.TopicSources, query)
	if len(merged) == 0 && a.cfg.Fallback != nil {
		zap.L().Debug("news: topic sources empty, using fallback",
			zap.String("query", query),
			zap.String("fallback", a.cfg.Fallback.Name()),
		)
		merged = a.fetch(ctx, a.cfg.Fallback, query)
	}
	return a.finish(merged, a.cfg.TopicLimit)
}

// PestleNews runs the regulation, client-market and industry topic
// searches in parallel. Technology is not searched.
func (a *Aggregator) PestleNews(ctx context.Context, q model.TopicQuerySet) model.PestleNews {
	var out model.PestleNews
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out.Regulation = a.TopicNews(gctx, q.Regulation)
		return nil
	})
	g.Go(func() error {
		out.ClientMarket = a.TopicNews(gctx, q.ClientMarket)
		return nil
	})
	g.Go(func() error {
		out.Industry = a.TopicNews(gctx, q.Industry)
		return nil
	})
	_ = g.Wait()
	return out
}

// fanOut queries every source in parallel and concatenates results in
// source order.
func (a *Aggregator) fanOut(ctx context.Context, sources []Source, query string) []model.NewsItem {
	results := make([][]model.NewsItem, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			results[i] = a.fetch(gctx, src, query)
			return nil
		})
	}
	_ = g.Wait()

	var merged []model.NewsItem
	for _, r := range results {
		merged = append(merged, r...)
	}
	return merged
}

func (a *Aggregator) fetch(ctx context.Context, src Source, query string) []model.NewsItem {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	items, err := src.Fetch(ctx, query)
	if err != nil {
		zap.L().Warn("news: source failed",
			zap.String("source", src.Name()),
			zap.String("query", query),
			zap.Error(err),
		)
		return nil
	}
	return items
}

func (a *Aggregator) finish(items []model.NewsItem, limit int) []model.NewsItem {
	items = FilterFresh(items, a.cfg.Now(), a.cfg.FreshnessDays)
	items = Dedup(items)
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

// Dedup keeps the first item seen for each URL, preserving order.
func Dedup(items []model.NewsItem) []model.NewsItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]model.NewsItem, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.URL]; ok {
			continue
		}
		seen[it.URL] = struct{}{}
		out = append(out, it)
	}
	return out
}

// FilterFresh drops items published more than days before now. Items whose
// date is missing or unparsable are kept.
func FilterFresh(items []model.NewsItem, now time.Time, days int) []model.NewsItem {
	cutoff := now.Add(-time.Duration(days) * 24 * time.Hour)
	out := make([]model.NewsItem, 0, len(items))
	for _, it := range items {
		if t, ok := ParseDate(it.PublishedAt); ok && t.Before(cutoff) {
			continue
		}
		out = append(out, it)
	}
	return out
}

var dateLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
	"2006.01.02",
	"2006.1.2",
	"2006年1月2日",
}

// ParseDate parses the date formats seen across providers.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

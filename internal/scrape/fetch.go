package scrape

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const maxBodyBytes = 20 << 20

// Response is a fully read HTTP response.
type Response struct {
	URL         string
	StatusCode  int
	ContentType string
	Disposition string
	Body        []byte
}

// Fetcher performs paced GET requests and rejects error and challenge pages.
type Fetcher struct {
	client    *http.Client
	userAgent string
	limiters  *HostLimiters
}

// NewFetcher creates a Fetcher. limiters may be nil.
func NewFetcher(client *http.Client, userAgent string, limiters *HostLimiters) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	return &Fetcher{client: client, userAgent: userAgent, limiters: limiters}
}

// Get fetches rawURL within timeout. Non-2xx responses and detected block
// pages are returned as errors.
func (f *Fetcher) Get(ctx context.Context, rawURL string, timeout time.Duration) (*Response, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	lim := f.limiters.For(rawURL)
	if lim != nil {
		if err := lim.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "scrape: rate limiter wait")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "scrape: create request")
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept-Language", "ja,en-US;q=0.9,en;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: fetch %s", rawURL)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: read body %s", rawURL)
	}

	if resp.StatusCode == http.StatusTooManyRequests && lim != nil {
		lim.OnRateLimit()
		zap.L().Warn("scrape: host rate limited, slowing down",
			zap.String("url", rawURL),
			zap.Float64("rps", float64(lim.Limit())),
		)
	}

	if blocked, kind := DetectBlock(resp, body); blocked {
		return nil, eris.Errorf("scrape: blocked (%s) at %s", kind, rawURL)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, eris.Errorf("scrape: status %d from %s", resp.StatusCode, rawURL)
	}
	if lim != nil {
		lim.OnSuccess()
	}

	return &Response{
		URL:         resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: strings.ToLower(resp.Header.Get("Content-Type")),
		Disposition: strings.ToLower(resp.Header.Get("Content-Disposition")),
		Body:        body,
	}, nil
}

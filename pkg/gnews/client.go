// Package gnews provides a client for the GNews search API.
package gnews

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-intel/internal/resilience"
)

const defaultBaseURL = "https://gnews.io/api/v4"

// Client searches GNews.
type Client interface {
	Search(ctx context.Context, p SearchParams) (*SearchResponse, error)
}

// SearchParams configures a search request. Zero values use the Japanese
// defaults (lang=ja, country=jp, max=5, sortby=publishedAt).
type SearchParams struct {
	Query string
	// In restricts matching to a field, e.g. "title".
	In      string
	Max     int
	Lang    string
	Country string
}

// SearchResponse is the parsed search response.
type SearchResponse struct {
	TotalArticles int       `json:"totalArticles"`
	Articles      []Article `json:"articles"`
}

// Article is a single search hit.
type Article struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Source      Source `json:"source"`
}

// Source names the publisher of an article.
type Source struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a GNews client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, p SearchParams) (*SearchResponse, error) {
	if p.Max <= 0 {
		p.Max = 5
	}
	if p.Lang == "" {
		p.Lang = "ja"
	}
	if p.Country == "" {
		p.Country = "jp"
	}

	q := url.Values{}
	q.Set("q", p.Query)
	q.Set("lang", p.Lang)
	q.Set("country", p.Country)
	q.Set("max", strconv.Itoa(p.Max))
	q.Set("sortby", "publishedAt")
	if p.In != "" {
		q.Set("in", p.In)
	}
	q.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "gnews: create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "gnews: request failed")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, eris.Wrap(err, "gnews: read response body")
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := eris.Errorf("gnews: status %d: %s", resp.StatusCode, string(body))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(statusErr, resp.StatusCode)
		}
		return nil, statusErr
	}

	var out SearchResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, eris.Wrap(err, "gnews: unmarshal response")
	}
	return &out, nil
}

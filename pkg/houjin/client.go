// Package houjin provides a client for the National Tax Agency corporate
// number Web-API (version 4).
package houjin

import (
	"context"
	"encoding/xml"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-intel/internal/resilience"
)

const defaultBaseURL = "https://api.houjin-bangou.nta.go.jp/4"

// Client looks up registered corporations.
type Client interface {
	SearchByName(ctx context.Context, name string) ([]Corporation, error)
}

// Corporation is a single registry entry.
type Corporation struct {
	CorporateNumber string `xml:"corporateNumber"`
	Name            string `xml:"name"`
	Kind            string `xml:"kind"`
	PrefectureName  string `xml:"prefectureName"`
	CityName        string `xml:"cityName"`
	StreetNumber    string `xml:"streetNumber"`
	CloseDate       string `xml:"closeDate"`
	LatestFlag      string `xml:"latest"`
}

// Address joins the prefecture, city and street parts.
func (c Corporation) Address() string {
	return c.PrefectureName + c.CityName + c.StreetNumber
}

// Active reports whether the corporation is current and not closed.
func (c Corporation) Active() bool {
	return c.CloseDate == "" && c.LatestFlag != "0"
}

type corporations struct {
	Count        int           `xml:"count"`
	Corporations []Corporation `xml:"corporation"`
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
	appID   string
	baseURL string
	http    *http.Client
}

// NewClient creates a corporate-number API client for the given application ID.
func NewClient(appID string, opts ...Option) Client {
	c := &httpClient{
		appID:   appID,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SearchByName runs a partial-match name search (mode=2) returning XML (type=12).
func (c *httpClient) SearchByName(ctx context.Context, name string) ([]Corporation, error) {
	q := url.Values{}
	q.Set("id", c.appID)
	q.Set("name", name)
	q.Set("type", "12")
	q.Set("mode", "2")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/name?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "houjin: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "houjin: request failed")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, eris.Wrap(err, "houjin: read response body")
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := eris.Errorf("houjin: status %d", resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(statusErr, resp.StatusCode)
		}
		return nil, statusErr
	}

	var out corporations
	if err := xml.Unmarshal(body, &out); err != nil {
		return nil, eris.Wrap(err, "houjin: unmarshal response")
	}
	return out.Corporations, nil
}

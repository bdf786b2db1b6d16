// Package catr scrapes published balance-sheet notices (決算公告) from catr.jp.
package catr

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

const (
	defaultBaseURL   = "https://catr.jp"
	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Client looks up the latest public notice for a company.
type Client interface {
	// LatestNotice returns nil without error when no company matches.
	LatestNotice(ctx context.Context, companyName string) (*Notice, error)
}

// Notice holds the figures read from a company's notice page. Values keep
// their printed units (e.g. "1,234 百万円").
type Notice struct {
	PageURL     string
	NetIncome   string
	TotalAssets string
}

// Empty reports whether neither figure was found.
func (n *Notice) Empty() bool {
	return n == nil || (n.NetIncome == "" && n.TotalAssets == "")
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default site URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a catr.jp scraper.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) LatestNotice(ctx context.Context, companyName string) (*Notice, error) {
	search, err := c.get(ctx, c.baseURL+"/search?word="+url.QueryEscape(companyName))
	if err != nil {
		return nil, eris.Wrap(err, "catr: search")
	}

	href, ok := search.Find(".company_name a").First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return nil, nil
	}

	pageURL := c.resolve(href)
	page, err := c.get(ctx, pageURL)
	if err != nil {
		return nil, eris.Wrap(err, "catr: company page")
	}

	n := &Notice{PageURL: pageURL}
	page.Find("tr").Each(func(_ int, row *goquery.Selection) {
		text := row.Text()
		if n.NetIncome == "" && strings.Contains(text, "純利益") {
			n.NetIncome = cleanValue(row.Find("td").Text())
		}
		if n.TotalAssets == "" && (strings.Contains(text, "資産の部") ||
			strings.Contains(text, "総資産") || strings.Contains(text, "資産合計")) {
			n.TotalAssets = cleanValue(row.Find("td").Last().Text())
		}
	})
	return n, nil
}

func (c *httpClient) resolve(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return c.baseURL + href
}

func (c *httpClient) get(ctx context.Context, rawURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "request failed")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil, eris.Wrap(err, "parse html")
	}
	return doc, nil
}

func cleanValue(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

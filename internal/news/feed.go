package news

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed/rss"
	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-intel/internal/model"
)

const (
	feedItemLimit  = 5
	summaryRunes   = 200
	feedAccept     = "application/rss+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.7"
	feedAcceptLang = "ja,en-US;q=0.9,en;q=0.8"
)

// FeedSource reads a provider's RSS search feed.
type FeedSource struct {
	name          string
	userAgent     string
	referer       string
	defaultSource string
	withSummary   bool
	http          *http.Client

	// feedURL builds the request URL; it returns "" to skip the query.
	feedURL func(query string) string
}

// NewGoogleNews returns a Google News RSS search source.
func NewGoogleNews(baseURL, userAgent string, hc *http.Client) *FeedSource {
	return &FeedSource{
		name:          "google_news",
		userAgent:     userAgent,
		referer:       "https://news.google.com/",
		defaultSource: "Google News",
		http:          hc,
		feedURL: func(query string) string {
			v := url.Values{}
			v.Set("q", query)
			v.Set("hl", "ja")
			v.Set("gl", "JP")
			v.Set("ceid", "JP:ja")
			return baseURL + "?" + v.Encode()
		},
	}
}

// NewPRTimes returns a PR Times press-release source. It only answers
// company-name queries and skips anything that looks like a topic query.
func NewPRTimes(baseURL, userAgent string, hc *http.Client) *FeedSource {
	return &FeedSource{
		name:          "prtimes",
		userAgent:     userAgent,
		referer:       "https://prtimes.jp/",
		defaultSource: "PR Times",
		withSummary:   true,
		http:          hc,
		feedURL: func(query string) string {
			name := StripLegalSuffix(query)
			if name == "" || LooksGeneric(name) {
				return ""
			}
			v := url.Values{}
			v.Set("run", "rss")
			v.Set("company_name", name)
			return baseURL + "?" + v.Encode()
		},
	}
}

// Name implements Source.
func (f *FeedSource) Name() string { return f.name }

// Fetch implements Source.
func (f *FeedSource) Fetch(ctx context.Context, query string) ([]model.NewsItem, error) {
	u := f.feedURL(query)
	if u == "" {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "%s: create request", f.name)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", feedAccept)
	req.Header.Set("Accept-Language", feedAcceptLang)
	req.Header.Set("Referer", f.referer)

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "%s: request failed", f.name)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return nil, eris.Errorf("%s: status %d", f.name, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, eris.Wrapf(err, "%s: read response body", f.name)
	}

	ct := strings.ToLower(resp.Header.Get("Content-Type"))
	if !strings.Contains(ct, "xml") && !bytes.Contains(body, []byte("<rss")) {
		return nil, eris.Errorf("%s: unexpected content type %q", f.name, ct)
	}

	p := rss.Parser{}
	feed, err := p.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrapf(err, "%s: parse feed", f.name)
	}

	items := make([]model.NewsItem, 0, feedItemLimit)
	for _, it := range feed.Items {
		if len(items) == feedItemLimit {
			break
		}
		title := strings.TrimSpace(it.Title)
		link := strings.TrimSpace(it.Link)
		if title == "" || link == "" {
			continue
		}
		item := model.NewsItem{
			Title:       title,
			URL:         link,
			PublishedAt: publishedAt(it),
			Source:      f.defaultSource,
		}
		if it.Source != nil && strings.TrimSpace(it.Source.Title) != "" {
			item.Source = strings.TrimSpace(it.Source.Title)
		}
		if f.withSummary {
			item.Summary = plainText(it.Description, summaryRunes)
		}
		items = append(items, item)
	}
	return items, nil
}

func publishedAt(it *rss.Item) string {
	if it.PubDateParsed != nil {
		return it.PubDateParsed.UTC().Format(time.RFC3339)
	}
	return strings.TrimSpace(it.PubDate)
}

// plainText strips markup from an RSS description and truncates it.
func plainText(s string, maxRunes int) string {
	if s == "" {
		return ""
	}
	text := s
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
		text = doc.Text()
	}
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) > maxRunes {
		text = string([]rune(text)[:maxRunes])
	}
	return text
}

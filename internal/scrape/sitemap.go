package scrape

import (
	"bytes"
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// ParseSitemap returns the <loc> values of a sitemap or sitemap index.
func ParseSitemap(body []byte) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}
	var locs []string
	doc.Find("loc").Each(func(_ int, s *goquery.Selection) {
		if loc := strings.TrimSpace(s.Text()); loc != "" {
			locs = append(locs, loc)
		}
	})
	return locs
}

func (s *Scraper) sitemapLocs(ctx context.Context) SitemapLocs {
	return func(sitemapURL string) []string {
		resp, err := s.fetcher.Get(ctx, sitemapURL, s.cfg.ProbeTimeout)
		if err != nil {
			zap.L().Debug("scrape: sitemap unavailable", zap.String("url", sitemapURL), zap.Error(err))
			return nil
		}
		locs := ParseSitemap(resp.Body)
		zap.L().Debug("scrape: sitemap read", zap.String("url", sitemapURL), zap.Int("locs", len(locs)))
		return locs
	}
}

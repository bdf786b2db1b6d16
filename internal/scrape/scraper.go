// Package scrape fetches company web pages and PDFs and extracts the text,
// technology signals and corporate facts used by analysis.
package scrape

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/lead-intel/internal/model"
)

// Config controls page fetching and the corporate-page crawl.
type Config struct {
	UserAgent       string
	PageTimeout     time.Duration
	ProbeTimeout    time.Duration
	MaxSitemapPages int
	HostRPS         float64
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *Scraper) { s.httpClient = hc }
}

// WithTranscriber enables OCR for PDFs without a usable text layer.
func WithTranscriber(t Transcriber) Option {
	return func(s *Scraper) { s.ocr = t }
}

// Scraper fetches target pages. It never fails: an unreachable or
// unparsable page yields an empty ScrapedPage.
type Scraper struct {
	cfg        Config
	httpClient *http.Client
	fetcher    *Fetcher
	ocr        Transcriber
}

// New creates a Scraper.
func New(cfg Config, opts ...Option) *Scraper {
	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = 15 * time.Second
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 5 * time.Second
	}
	if cfg.MaxSitemapPages <= 0 {
		cfg.MaxSitemapPages = 5
	}
	s := &Scraper{cfg: cfg}
	for _, o := range opts {
		o(s)
	}
	s.fetcher = NewFetcher(s.httpClient, cfg.UserAgent, NewHostLimiters(cfg.HostRPS))
	return s
}

// Fetcher exposes the paced fetcher for collaborators probing the same sites.
func (s *Scraper) Fetcher() *Fetcher { return s.fetcher }

// FetchPageContent scrapes rawURL as a PDF or HTML page.
func (s *Scraper) FetchPageContent(ctx context.Context, rawURL string) model.ScrapedPage {
	page := model.EmptyScrapedPage()
	page.URL = rawURL

	log := zap.L().With(zap.String("url", rawURL))
	resp, err := s.fetcher.Get(ctx, rawURL, s.cfg.PageTimeout)
	if err != nil {
		log.Warn("scrape: page fetch failed", zap.Error(err))
		return page
	}

	if IsPDF(rawURL, resp.ContentType, resp.Disposition, resp.Body) {
		page.IsPDF = true
		page.Title = pdfTitle(rawURL)
		page.Description = pdfDescription
		page.BodyText = s.pdfBody(ctx, rawURL, resp.Body)
		log.Info("scrape: pdf parsed", zap.Int("bytes", len(resp.Body)), zap.Int("text_len", len(page.BodyText)))
		return page
	}

	doc, err := parseHTML(resp.Body, resp.ContentType, resp.URL)
	if err != nil {
		log.Warn("scrape: html parse failed", zap.Error(err))
		return page
	}

	page.Title = doc.title
	page.Description = doc.description
	page.BodyText = truncateRunes(doc.text, htmlTextBudget)
	page.RecruitLinks = doc.recruitLinks
	page.TechStack = DetectTechStack(doc.raw)
	page.CompanyInfo = ParseCompanyInfo(doc.text)

	if base, err := url.Parse(resp.URL); err == nil && base.Host != "" {
		s.crawlCompanyInfo(ctx, base, &page.CompanyInfo)
	}

	log.Info("scrape: page parsed",
		zap.String("title", page.Title),
		zap.Int("recruit_links", len(page.RecruitLinks)),
		zap.Bool("has_core_facts", page.CompanyInfo.HasCoreFacts()),
	)
	return page
}

// crawlCompanyInfo probes candidate pages until revenue, capital or
// headcount is known. Earlier findings are never overwritten.
func (s *Scraper) crawlCompanyInfo(ctx context.Context, base *url.URL, info *model.CompanyInfo) {
	if info.HasCoreFacts() {
		return
	}

	probed := 0
	for c := range Candidates(base, s.sitemapLocs(ctx), s.cfg.MaxSitemapPages) {
		if ctx.Err() != nil {
			return
		}
		probed++
		resp, err := s.fetcher.Get(ctx, c.URL, s.cfg.ProbeTimeout)
		if err != nil {
			continue
		}
		info.Fill(ParseCompanyInfo(pageText(resp.Body, resp.ContentType)))
		if info.HasCoreFacts() {
			zap.L().Info("scrape: company info found",
				zap.String("url", c.URL),
				zap.String("stage", string(c.Stage)),
				zap.Int("probed", probed),
			)
			return
		}
	}
	zap.L().Debug("scrape: company info not found", zap.String("host", base.Host), zap.Int("probed", probed))
}

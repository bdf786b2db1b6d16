// Package analysis sequences a full company analysis: identity, page scrape,
// industry classification, the parallel fan-out over financials and news,
// and the final strategy synthesis.
package analysis

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/lead-intel/internal/llm"
	"github.com/sells-group/lead-intel/internal/model"
	"github.com/sells-group/lead-intel/internal/news"
)

// ErrInvalidRequest is returned when neither a company name nor a domain is given.
var ErrInvalidRequest = eris.New("Company name or domain is required")

// PageScraper fetches and parses a company page. It never fails.
type PageScraper interface {
	FetchPageContent(ctx context.Context, rawURL string) model.ScrapedPage
}

// NewsAggregator collects company and topic news. It never fails.
type NewsAggregator interface {
	CompanyNews(ctx context.Context, name string) []model.NewsItem
	PestleNews(ctx context.Context, q model.TopicQuerySet) model.PestleNews
}

// SiteNews reads news straight from a company site.
type SiteNews interface {
	Fetch(ctx context.Context, siteURL string) []model.NewsItem
}

// Generator is the generative side of the analysis.
type Generator interface {
	AnalyzeIndustryAndTopics(ctx context.Context, companyName string, page model.ScrapedPage) model.QuickAnalysis
	Synthesize(ctx context.Context, in llm.SynthesisInput) model.Strategy
	InboundHypothesis(ctx context.Context, in llm.InboundInput) model.InboundLeadResult
}

// Deps are the collaborators of a Service. SiteNews may be nil.
type Deps struct {
	Identity   IdentityResolver
	Scraper    PageScraper
	News       NewsAggregator
	SiteNews   SiteNews
	Financials []FinancialSource
	Generator  Generator
}

// Service runs analyses. It is safe for concurrent use.
type Service struct {
	deps     Deps
	validate *validator.Validate
}

// New creates a Service.
func New(deps Deps) *Service {
	return &Service{deps: deps, validate: validator.New()}
}

// Analyze runs the full analysis for req. It fails only on an invalid
// request or an unidentifiable company; every other failure degrades the
// corresponding part of the result.
func (s *Service) Analyze(ctx context.Context, req model.AnalysisRequest) (*model.AnalysisResult, error) {
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	req.Domain = strings.TrimSpace(req.Domain)
	if err := s.validate.Struct(req); err != nil {
		return nil, ErrInvalidRequest
	}

	requestID := uuid.NewString()
	log := zap.L().With(
		zap.String("request_id", requestID),
		zap.String("company", req.CompanyName),
		zap.String("domain", req.Domain),
	)
	log.Info("analysis: starting")
	start := time.Now()

	var (
		phaseMu sync.Mutex
		phases  []model.PhaseResult
	)
	trackPhase := func(name string, fn func() (map[string]any, error)) {
		phaseStart := time.Now()
		meta, err := fn()
		pr := model.PhaseResult{
			Name:     name,
			Status:   model.PhaseStatusComplete,
			Duration: time.Since(phaseStart).Milliseconds(),
			Metadata: meta,
		}
		if err != nil {
			pr.Status = model.PhaseStatusFailed
			pr.Error = err.Error()
			log.Warn("analysis: phase failed", zap.String("phase", name), zap.Int64("duration_ms", pr.Duration), zap.Error(err))
		} else {
			log.Info("analysis: phase complete", zap.String("phase", name), zap.Int64("duration_ms", pr.Duration))
		}
		phaseMu.Lock()
		phases = append(phases, pr)
		phaseMu.Unlock()
	}

	// Identity
	var profile model.CompanyProfile
	var identErr error
	trackPhase("identity", func() (map[string]any, error) {
		profile, identErr = s.deps.Identity.Resolve(ctx, req.CompanyName, req.Domain)
		return map[string]any{"corporate_number": profile.CorporateNumber}, identErr
	})
	if identErr != nil {
		if errors.Is(identErr, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrap(identErr, "analysis: identity")
	}
	if profile.Domain == "" {
		profile.Domain = req.Domain
	}

	// Primary page
	target := TargetURL(req, profile)
	page := model.EmptyScrapedPage()
	if target != "" {
		trackPhase("scrape", func() (map[string]any, error) {
			page = s.deps.Scraper.FetchPageContent(ctx, target)
			return map[string]any{
				"url":        target,
				"body_runes": len([]rune(page.BodyText)),
				"pdf":        page.IsPDF,
			}, nil
		})
	}

	// Classification
	quick := llm.DefaultQuickAnalysis()
	if strings.TrimSpace(page.BodyText) != "" {
		trackPhase("classify", func() (map[string]any, error) {
			quick = s.deps.Generator.AnalyzeIndustryAndTopics(ctx, profile.Name, page)
			return map[string]any{"industry": quick.Industry, "code": quick.IndustryCode}, nil
		})
	}
	profile.IndustryName = quick.Industry
	profile.IndustryCode = quick.IndustryCode

	// Fan-out. Branches never return errors so one failure cannot cancel the others.
	var (
		financials   []model.FinancialRecord
		finSource    string
		pestle       model.PestleNews
		companyNews  []model.NewsItem
		additional   *model.ScrapedPage
		additionalTo = httpURL(req.AdditionalURL)
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		trackPhase("financials", func() (map[string]any, error) {
			financials, finSource = firstFinancials(gCtx, s.deps.Financials, profile)
			return map[string]any{"source": finSource, "records": len(financials)}, nil
		})
		return nil
	})
	g.Go(func() error {
		trackPhase("pestle_news", func() (map[string]any, error) {
			pestle = s.deps.News.PestleNews(gCtx, quick.Topics)
			return map[string]any{
				"regulation":    len(pestle.Regulation),
				"client_market": len(pestle.ClientMarket),
				"industry":      len(pestle.Industry),
			}, nil
		})
		return nil
	})
	g.Go(func() error {
		trackPhase("company_news", func() (map[string]any, error) {
			companyNews = s.deps.News.CompanyNews(gCtx, profile.Name)
			fromSite := false
			if len(companyNews) == 0 && target != "" && s.deps.SiteNews != nil {
				companyNews = s.deps.SiteNews.Fetch(gCtx, target)
				fromSite = true
			}
			return map[string]any{"items": len(companyNews), "from_site": fromSite}, nil
		})
		return nil
	})
	if additionalTo != "" {
		g.Go(func() error {
			trackPhase("additional_url", func() (map[string]any, error) {
				p := s.deps.Scraper.FetchPageContent(gCtx, additionalTo)
				additional = &p
				return map[string]any{"url": additionalTo}, nil
			})
			return nil
		})
	}
	_ = g.Wait()

	if companyNews == nil {
		companyNews = []model.NewsItem{}
	}
	if finSource == "edinet" {
		profile.ListingStatus = model.ListingListed
	}
	industryNews := news.Dedup(pestle.All())

	// Synthesis
	var strategy model.Strategy
	trackPhase("synthesize", func() (map[string]any, error) {
		strategy = s.deps.Generator.Synthesize(ctx, llm.SynthesisInput{
			Company:         profile,
			Financials:      financials,
			CompanyNews:     companyNews,
			IndustryNews:    industryNews,
			Page:            page,
			InquiryBody:     req.InquiryBody,
			BusinessSegment: req.BusinessSegment,
			Additional:      additional,
		})
		return map[string]any{"score": int(strategy.Score), "missing_conclusions": len(strategy.MissingConclusions())}, nil
	})

	log.Info("analysis: complete",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("company_news", len(companyNews)),
		zap.Int("industry_news", len(industryNews)),
	)

	return &model.AnalysisResult{
		RequestID:  requestID,
		Company:    profile,
		Financials: financials,
		News: model.NewsBundle{
			Company:  companyNews,
			Industry: industryNews,
			Pestle:   nonNilPestle(pestle),
		},
		QuickAnalysis: quick.Summary(),
		Strategy:      strategy,
		Phases:        phases,
	}, nil
}

// TargetURL picks the page to scrape: an http(s) pageUrl, else the request
// domain, else the profile's site.
func TargetURL(req model.AnalysisRequest, profile model.CompanyProfile) string {
	if u := httpURL(req.PageURL); u != "" {
		return u
	}
	if d := strings.TrimSpace(req.Domain); d != "" {
		return "https://" + d
	}
	return profile.URL
}

func httpURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return ""
}

func nonNilPestle(p model.PestleNews) model.PestleNews {
	if p.Regulation == nil {
		p.Regulation = []model.NewsItem{}
	}
	if p.ClientMarket == nil {
		p.ClientMarket = []model.NewsItem{}
	}
	if p.Industry == nil {
		p.Industry = []model.NewsItem{}
	}
	return p
}

package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-intel/internal/analysis"
	"github.com/sells-group/lead-intel/internal/config"
	"github.com/sells-group/lead-intel/internal/cost"
	"github.com/sells-group/lead-intel/internal/industry"
	"github.com/sells-group/lead-intel/internal/llm"
	"github.com/sells-group/lead-intel/internal/model"
	"github.com/sells-group/lead-intel/internal/news"
	"github.com/sells-group/lead-intel/internal/ocr"
	"github.com/sells-group/lead-intel/internal/resilience"
	"github.com/sells-group/lead-intel/internal/scrape"
	anthropicpkg "github.com/sells-group/lead-intel/pkg/anthropic"
	"github.com/sells-group/lead-intel/pkg/catr"
	"github.com/sells-group/lead-intel/pkg/edinet"
	"github.com/sells-group/lead-intel/pkg/gemini"
	"github.com/sells-group/lead-intel/pkg/gnews"
	"github.com/sells-group/lead-intel/pkg/houjin"
	"github.com/sells-group/lead-intel/pkg/newsapi"
)

// analyzer is the service surface used by the commands.
type analyzer interface {
	Analyze(ctx context.Context, req model.AnalysisRequest) (*model.AnalysisResult, error)
	AnalyzeInboundLead(ctx context.Context, req model.InboundLeadRequest) model.InboundLeadResult
}

// initService builds every client and collaborator from cfg. Providers
// without a key are left out.
func initService(ctx context.Context, cfg *config.Config, breakers *resilience.ServiceBreakers) (*analysis.Service, error) {
	table, err := industry.Default()
	if err != nil {
		return nil, eris.Wrap(err, "load industry table")
	}

	gen, err := initGenerator(ctx, cfg, table)
	if err != nil {
		return nil, err
	}

	scraper := scrape.New(scrape.Config{
		UserAgent:       cfg.Scrape.UserAgent,
		PageTimeout:     secs(cfg.Scrape.PageTimeoutSecs),
		ProbeTimeout:    secs(cfg.Scrape.ProbeTimeoutSecs),
		MaxSitemapPages: cfg.Scrape.MaxSitemapPages,
		HostRPS:         cfg.Scrape.HostRPS,
	}, scrape.WithTranscriber(ocr.NewFromConfig(cfg.OCR, gen)))

	var identity *analysis.RegistryResolver
	if cfg.NationalTax.Key != "" {
		identity = analysis.NewRegistryResolver(houjin.NewClient(cfg.NationalTax.Key, houjin.WithBaseURL(cfg.NationalTax.BaseURL)))
	} else {
		zap.L().Info("corporate-number lookup disabled (no key)")
		identity = analysis.NewRegistryResolver(nil)
	}

	var financials []analysis.FinancialSource
	if cfg.EDINET.Key != "" {
		financials = append(financials, analysis.NewEDINETSource(
			edinet.NewClient(cfg.EDINET.Key, edinet.WithBaseURL(cfg.EDINET.BaseURL)),
			cfg.EDINET.LookbackDays,
		))
	}
	financials = append(financials, analysis.NewCatrSource(catr.NewClient(catr.WithBaseURL(cfg.Catr.BaseURL))))

	return analysis.New(analysis.Deps{
		Identity:   identity,
		Scraper:    scraper,
		News:       news.NewAggregator(newsConfig(cfg, breakers)),
		SiteNews:   scrape.NewSiteNewsScraper(scraper.Fetcher(), secs(cfg.Scrape.ProbeTimeoutSecs)),
		Financials: financials,
		Generator:  gen,
	}), nil
}

func initGenerator(ctx context.Context, cfg *config.Config, table *industry.Table) (*llm.Orchestrator, error) {
	var full, lite, vision []llm.Candidate
	if cfg.Gemini.Key != "" {
		geminiClient, err := gemini.NewClient(ctx, cfg.Gemini.Key)
		if err != nil {
			return nil, eris.Wrap(err, "init gemini")
		}
		geminiBackend := llm.NewGeminiBackend(geminiClient)
		full = llm.Candidates(geminiBackend, cfg.Gemini.Models...)
		lite = llm.Candidates(geminiBackend, cfg.Gemini.LiteModels...)
		vision = llm.Candidates(geminiBackend, cfg.Gemini.Models...)
	} else {
		zap.L().Warn("gemini disabled (no key); generation falls back to defaults")
	}
	if cfg.Anthropic.Key != "" {
		claude := llm.NewAnthropicBackend(anthropicpkg.NewClient(cfg.Anthropic.Key), cfg.Anthropic.MaxTokens)
		full = append(full, llm.Candidates(claude, cfg.Anthropic.Model)...)
		if len(lite) == 0 {
			lite = llm.Candidates(claude, cfg.Anthropic.Model)
		}
	}

	return llm.New(llm.Config{
		Full:       full,
		Lite:       lite,
		Vision:     vision,
		Costs:      cost.NewCalculator(cost.DefaultRates()),
		Industries: table,
		SynthesisRetry: resilience.RetryConfig{
			MaxAttempts:    cfg.Generation.SynthesisAttempts,
			InitialBackoff: time.Duration(cfg.Generation.InitialBackoffMs) * time.Millisecond,
		},
	}), nil
}

// newsBreakers guards the metered news APIs. Only transient failures count
// toward opening a circuit, so a 4xx from a bad key or query does not.
func newsBreakers(cfg *config.Config) *resilience.ServiceBreakers {
	bc := resilience.NewCircuitBreakerConfig(cfg.Circuit.FailureThreshold, secs(cfg.Circuit.ResetTimeoutSecs))
	bc.ShouldTrip = resilience.IsTransient
	return resilience.NewServiceBreakers(bc)
}

// newsConfig wires the feed sources and the metered APIs in merge priority
// order: press releases, general RSS, then GNews.
func newsConfig(cfg *config.Config, breakers *resilience.ServiceBreakers) news.Config {
	hc := &http.Client{Timeout: secs(cfg.News.TimeoutSecs)}
	cooldown := secs(cfg.News.CooldownSecs)

	googleNews := news.NewGoogleNews(cfg.GoogleNews.BaseURL, cfg.Scrape.UserAgent, hc)
	prTimes := news.NewPRTimes(cfg.PRTimes.BaseURL, cfg.Scrape.UserAgent, hc)

	company := []news.Source{prTimes, googleNews}
	topic := []news.Source{prTimes, googleNews}
	var fallback news.Source

	if cfg.GNews.Key != "" {
		client := gnews.NewClient(cfg.GNews.Key, gnews.WithBaseURL(cfg.GNews.BaseURL), gnews.WithHTTPClient(hc))
		src := news.NewGNewsSource(client, resilience.NewRateLimiter(cooldown), news.WithBreaker(breakers.Get("gnews")))
		company = append(company, src)
		topic = append(topic, src)
	} else {
		zap.L().Info("gnews disabled (no key)")
	}
	if cfg.NewsAPI.Key != "" {
		client := newsapi.NewClient(cfg.NewsAPI.Key, newsapi.WithBaseURL(cfg.NewsAPI.BaseURL), newsapi.WithHTTPClient(hc))
		fallback = news.NewNewsAPISource(client, resilience.NewRateLimiter(cooldown), news.WithBreaker(breakers.Get("newsapi")))
	} else {
		zap.L().Info("newsapi disabled (no key)")
	}

	return news.Config{
		CompanySources: company,
		TopicSources:   topic,
		Fallback:       fallback,
		FreshnessDays:  cfg.News.FreshnessDays,
		CompanyLimit:   cfg.News.CompanyLimit,
		TopicLimit:     cfg.News.TopicLimit,
		Timeout:        secs(cfg.News.TimeoutSecs),
	}
}

func secs(n int) time.Duration {
	return time.Duration(n) * time.Second
}

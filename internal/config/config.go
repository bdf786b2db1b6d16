package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Server      ServerConfig     `yaml:"server" mapstructure:"server"`
	Log         LogConfig        `yaml:"log" mapstructure:"log"`
	Gemini      GeminiConfig     `yaml:"gemini" mapstructure:"gemini"`
	Anthropic   AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	GNews       APIConfig        `yaml:"gnews" mapstructure:"gnews"`
	NewsAPI     APIConfig        `yaml:"newsapi" mapstructure:"newsapi"`
	GoogleNews  FeedConfig       `yaml:"google_news" mapstructure:"google_news"`
	PRTimes     FeedConfig       `yaml:"prtimes" mapstructure:"prtimes"`
	NationalTax APIConfig        `yaml:"national_tax" mapstructure:"national_tax"`
	EDINET      EDINETConfig     `yaml:"edinet" mapstructure:"edinet"`
	Catr        FeedConfig       `yaml:"catr" mapstructure:"catr"`
	Scrape      ScrapeConfig     `yaml:"scrape" mapstructure:"scrape"`
	OCR         OCRConfig        `yaml:"ocr" mapstructure:"ocr"`
	News        NewsConfig       `yaml:"news" mapstructure:"news"`
	Generation  GenerationConfig `yaml:"generation" mapstructure:"generation"`
	Circuit     CircuitConfig    `yaml:"circuit" mapstructure:"circuit"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port               int      `yaml:"port" mapstructure:"port"`
	RequestTimeoutSecs int      `yaml:"request_timeout_secs" mapstructure:"request_timeout_secs"`
	AllowedOrigins     []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// GeminiConfig holds Gemini API settings. Models is the full cascade in
// priority order; LiteModels is the subset used for cheap classification.
type GeminiConfig struct {
	Key        string   `yaml:"key" mapstructure:"key"`
	Models     []string `yaml:"models" mapstructure:"models"`
	LiteModels []string `yaml:"lite_models" mapstructure:"lite_models"`
}

// AnthropicConfig holds the optional Anthropic fallback backend.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// APIConfig is a keyed HTTP API. An empty key disables the provider.
type APIConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// FeedConfig is an unauthenticated HTTP source.
type FeedConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// EDINETConfig configures the securities-filing lookup.
type EDINETConfig struct {
	Key          string `yaml:"key" mapstructure:"key"`
	BaseURL      string `yaml:"base_url" mapstructure:"base_url"`
	LookbackDays int    `yaml:"lookback_days" mapstructure:"lookback_days"`
}

// ScrapeConfig configures the page scraper.
type ScrapeConfig struct {
	UserAgent        string  `yaml:"user_agent" mapstructure:"user_agent"`
	PageTimeoutSecs  int     `yaml:"page_timeout_secs" mapstructure:"page_timeout_secs"`
	ProbeTimeoutSecs int     `yaml:"probe_timeout_secs" mapstructure:"probe_timeout_secs"`
	MaxSitemapPages  int     `yaml:"max_sitemap_pages" mapstructure:"max_sitemap_pages"`
	HostRPS          float64 `yaml:"host_rps" mapstructure:"host_rps"`
}

// OCRConfig configures scanned-PDF transcription.
type OCRConfig struct {
	PdfToPPMPath string `yaml:"pdftoppm_path" mapstructure:"pdftoppm_path"`
	MaxPages     int    `yaml:"max_pages" mapstructure:"max_pages"`
	Width        int    `yaml:"width" mapstructure:"width"`
}

// NewsConfig configures news aggregation.
type NewsConfig struct {
	TimeoutSecs   int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	FreshnessDays int `yaml:"freshness_days" mapstructure:"freshness_days"`
	CompanyLimit  int `yaml:"company_limit" mapstructure:"company_limit"`
	TopicLimit    int `yaml:"topic_limit" mapstructure:"topic_limit"`
	CooldownSecs  int `yaml:"cooldown_secs" mapstructure:"cooldown_secs"`
}

// GenerationConfig configures strategy synthesis retries.
type GenerationConfig struct {
	SynthesisAttempts int `yaml:"synthesis_attempts" mapstructure:"synthesis_attempts"`
	InitialBackoffMs  int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
}

// CircuitConfig configures per-provider circuit breakers.
type CircuitConfig struct {
	FailureThreshold int `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
}

// envAliases maps config keys to the conventional variable names operators
// already export, checked after the prefixed form.
var envAliases = map[string]string{
	"gemini.key":       "GEMINI_API_KEY",
	"anthropic.key":    "ANTHROPIC_API_KEY",
	"gnews.key":        "GNEWS_API_KEY",
	"newsapi.key":      "NEWSAPI_KEY",
	"national_tax.key": "NATIONAL_TAX_API_KEY",
	"edinet.key":       "EDINET_API_KEY",
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADINTEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, alias := range envAliases {
		prefixed := "LEADINTEL_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, alias); err != nil {
			return nil, eris.Wrapf(err, "config: bind env %s", key)
		}
	}

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.request_timeout_secs", 180)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("gemini.models", []string{"gemini-2.5-flash-lite", "gemini-2.0-flash-lite", "gemini-2.0-flash"})
	v.SetDefault("gemini.lite_models", []string{"gemini-2.5-flash-lite", "gemini-2.0-flash-lite"})
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 8192)
	v.SetDefault("gnews.base_url", "https://gnews.io/api/v4")
	v.SetDefault("newsapi.base_url", "https://newsapi.org/v2")
	v.SetDefault("google_news.base_url", "https://news.google.com/rss/search")
	v.SetDefault("prtimes.base_url", "https://prtimes.jp/main/action.php")
	v.SetDefault("national_tax.base_url", "https://api.houjin-bangou.nta.go.jp/4")
	v.SetDefault("edinet.base_url", "https://disclosure.edinet-fsa.go.jp/api/v2")
	v.SetDefault("edinet.lookback_days", 7)
	v.SetDefault("catr.base_url", "https://catr.jp")
	v.SetDefault("scrape.user_agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	v.SetDefault("scrape.page_timeout_secs", 15)
	v.SetDefault("scrape.probe_timeout_secs", 5)
	v.SetDefault("scrape.max_sitemap_pages", 5)
	v.SetDefault("scrape.host_rps", 2.0)
	v.SetDefault("ocr.pdftoppm_path", "pdftoppm")
	v.SetDefault("ocr.max_pages", 3)
	v.SetDefault("ocr.width", 1200)
	v.SetDefault("news.timeout_secs", 10)
	v.SetDefault("news.freshness_days", 365)
	v.SetDefault("news.company_limit", 10)
	v.SetDefault("news.topic_limit", 5)
	v.SetDefault("news.cooldown_secs", 60)
	v.SetDefault("generation.synthesis_attempts", 3)
	v.SetDefault("generation.initial_backoff_ms", 2000)
	v.SetDefault("circuit.failure_threshold", 5)
	v.SetDefault("circuit.reset_timeout_secs", 30)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command needs. Missing provider keys are
// never an error: the provider is simply disabled.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
	case "analyze":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(c.Gemini.Models) == 0 {
		errs = append(errs, "gemini.models must not be empty")
	}
	if c.Generation.SynthesisAttempts < 1 {
		errs = append(errs, "generation.synthesis_attempts must be >= 1")
	}
	if c.News.FreshnessDays < 1 {
		errs = append(errs, "news.freshness_days must be >= 1")
	}

	if len(errs) > 0 {
		return eris.New(fmt.Sprintf("config: %s", strings.Join(errs, "; ")))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, []string{"gemini-2.5-flash-lite", "gemini-2.0-flash-lite", "gemini-2.0-flash"}, cfg.Gemini.Models)
	assert.Equal(t, []string{"gemini-2.5-flash-lite", "gemini-2.0-flash-lite"}, cfg.Gemini.LiteModels)
	assert.Equal(t, "https://gnews.io/api/v4", cfg.GNews.BaseURL)
	assert.Equal(t, "https://newsapi.org/v2", cfg.NewsAPI.BaseURL)
	assert.Equal(t, 15, cfg.Scrape.PageTimeoutSecs)
	assert.Equal(t, 5, cfg.Scrape.ProbeTimeoutSecs)
	assert.Equal(t, 3, cfg.OCR.MaxPages)
	assert.Equal(t, 1200, cfg.OCR.Width)
	assert.Equal(t, 365, cfg.News.FreshnessDays)
	assert.Equal(t, 10, cfg.News.CompanyLimit)
	assert.Equal(t, 5, cfg.News.TopicLimit)
	assert.Equal(t, 60, cfg.News.CooldownSecs)
	assert.Equal(t, 3, cfg.Generation.SynthesisAttempts)
	assert.Equal(t, 5, cfg.Circuit.FailureThreshold)
	assert.Empty(t, cfg.Gemini.Key)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
log:
  level: debug
  format: console
server:
  port: 9090
gemini:
  models: [gemini-2.0-flash]
news:
  company_limit: 7
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"gemini-2.0-flash"}, cfg.Gemini.Models)
	assert.Equal(t, 7, cfg.News.CompanyLimit)
	// Defaults still apply for unset values
	assert.Equal(t, 5, cfg.News.TopicLimit)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log:\n  level: debug\n"), 0644))
	t.Setenv("LEADINTEL_LOG_LEVEL", "warn")
	t.Setenv("LEADINTEL_SERVER_PORT", "4000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 4000, cfg.Server.Port)
}

func TestLoadConventionalKeyNames(t *testing.T) {
	chdirTemp(t)

	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("GNEWS_API_KEY", "gnews-key")
	t.Setenv("NEWSAPI_KEY", "newsapi-key")
	t.Setenv("NATIONAL_TAX_API_KEY", "nta-key")
	t.Setenv("EDINET_API_KEY", "edinet-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gem-key", cfg.Gemini.Key)
	assert.Equal(t, "gnews-key", cfg.GNews.Key)
	assert.Equal(t, "newsapi-key", cfg.NewsAPI.Key)
	assert.Equal(t, "nta-key", cfg.NationalTax.Key)
	assert.Equal(t, "edinet-key", cfg.EDINET.Key)
}

func TestLoadPrefixedKeyWins(t *testing.T) {
	chdirTemp(t)

	t.Setenv("LEADINTEL_GEMINI_KEY", "prefixed")
	t.Setenv("GEMINI_API_KEY", "conventional")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "prefixed", cfg.Gemini.Key)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log: [unclosed"), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func validDefaults() *Config {
	cfg := &Config{}
	cfg.Server.Port = 3000
	cfg.Gemini.Models = []string{"gemini-2.0-flash"}
	cfg.Generation.SynthesisAttempts = 3
	cfg.News.FreshnessDays = 365
	return cfg
}

func TestValidate(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("serve"))
	assert.NoError(t, cfg.Validate("analyze"))

	cfg.Server.Port = 0
	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
	assert.NoError(t, cfg.Validate("analyze"))
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := validDefaults()
	cfg.Gemini.Models = nil
	cfg.Generation.SynthesisAttempts = 0

	err := cfg.Validate("analyze")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini.models must not be empty")
	assert.Contains(t, err.Error(), "generation.synthesis_attempts must be >= 1")
}

func TestValidateUnknownMode(t *testing.T) {
	err := validDefaults().Validate("batch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.Error(t, InitLogger(LogConfig{Level: "invalid", Format: "json"}))
}

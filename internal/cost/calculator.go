// Package cost attributes estimated USD spend to generative model calls.
package cost

import (
	"strings"

	"go.uber.org/zap"
)

// ModelRate holds per-model token pricing (per million tokens).
type ModelRate struct {
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// Rates maps model IDs to pricing.
type Rates map[string]ModelRate

// Usage is the token count reported by a single model call.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

// Calculator computes costs for model usage.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// Tokens computes the cost of a call. Versioned model IDs such as
// "gemini-2.0-flash-001" fall back to the longest known prefix.
// Unknown models cost 0.
func (c *Calculator) Tokens(model string, u Usage) float64 {
	rate, ok := c.lookup(model)
	if !ok {
		return 0
	}
	return (float64(u.InputTokens)/1e6)*rate.Input + (float64(u.OutputTokens)/1e6)*rate.Output
}

func (c *Calculator) lookup(model string) (ModelRate, bool) {
	if r, ok := c.rates[model]; ok {
		return r, true
	}
	best := ""
	for id := range c.rates {
		if strings.HasPrefix(model, id) && len(id) > len(best) {
			best = id
		}
	}
	if best == "" {
		return ModelRate{}, false
	}
	return c.rates[best], true
}

// Log records token usage and estimated cost for one call.
func (c *Calculator) Log(model, phase string, u Usage) {
	zap.L().Info("cost attribution",
		zap.String("model", model),
		zap.String("phase", phase),
		zap.Int64("input_tokens", u.InputTokens),
		zap.Int64("output_tokens", u.OutputTokens),
		zap.Float64("estimated_cost_usd", c.Tokens(model, u)),
	)
}

// DefaultRates returns list prices for the models in the default cascade.
func DefaultRates() Rates {
	return Rates{
		"gemini-2.5-flash-lite":     {Input: 0.10, Output: 0.40},
		"gemini-2.0-flash-lite":     {Input: 0.075, Output: 0.30},
		"gemini-2.0-flash":          {Input: 0.10, Output: 0.40},
		"claude-haiku-4-5-20251001": {Input: 1.00, Output: 5.00},
	}
}

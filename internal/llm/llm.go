// Package llm drives generative models through an ordered cascade of
// candidates to classify companies, synthesize the strategy report, repair
// missing conclusions, explain inbound leads and transcribe scanned pages.
package llm

import (
	"time"

	"github.com/sells-group/lead-intel/internal/cost"
	"github.com/sells-group/lead-intel/internal/industry"
	"github.com/sells-group/lead-intel/internal/resilience"
)

// Config wires the orchestrator.
type Config struct {
	// Full is the cascade for synthesis, cheapest first.
	Full []Candidate
	// Lite is the cascade for classification, repair and inbound leads.
	// Empty means Full.
	Lite []Candidate
	// Vision is the cascade for OCR. Empty means Full.
	Vision []Candidate

	Costs      *cost.Calculator
	Industries *industry.Table

	// SynthesisRetry wraps the whole synthesis cascade. Zero values default
	// to 3 attempts starting at 2s. Fatal errors are retried without a wait.
	SynthesisRetry resilience.RetryConfig
}

// Orchestrator is safe for concurrent use.
type Orchestrator struct {
	full   []Candidate
	lite   []Candidate
	vision []Candidate

	costs      *cost.Calculator
	industries *industry.Table
	retry      resilience.RetryConfig
}

// New creates an Orchestrator.
func New(cfg Config) *Orchestrator {
	o := &Orchestrator{
		full:       cfg.Full,
		lite:       cfg.Lite,
		vision:     cfg.Vision,
		costs:      cfg.Costs,
		industries: cfg.Industries,
		retry:      cfg.SynthesisRetry,
	}
	if len(o.lite) == 0 {
		o.lite = o.full
	}
	if len(o.vision) == 0 {
		o.vision = o.full
	}
	if o.costs == nil {
		o.costs = cost.NewCalculator(cost.DefaultRates())
	}
	if o.retry.MaxAttempts <= 0 {
		o.retry.MaxAttempts = 3
	}
	if o.retry.InitialBackoff <= 0 {
		o.retry.InitialBackoff = 2 * time.Second
	}
	o.retry.ShouldRetry = IsRetryable
	o.retry.Immediate = func(err error) bool { return !IsRetryable(err) }
	o.retry.OnRetry = resilience.RetryLogger("llm", "synthesize")
	return o
}

// Candidates builds a cascade over models on a single backend.
func Candidates(b Backend, models ...string) []Candidate {
	out := make([]Candidate, 0, len(models))
	for _, m := range models {
		if m != "" {
			out = append(out, Candidate{Backend: b, Model: m})
		}
	}
	return out
}

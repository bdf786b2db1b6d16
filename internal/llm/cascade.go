package llm

import (
	"context"
	"errors"
	"regexp"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-intel/pkg/gemini"
)

// Tier selects which cascade a call runs through.
type Tier int

const (
	// TierFull is every configured model, cheapest first.
	TierFull Tier = iota
	// TierLite is the cheap subset used for classification and repair.
	TierLite
	// TierVision is the multimodal subset used for OCR.
	TierVision
)

func (t Tier) String() string {
	switch t {
	case TierLite:
		return "lite"
	case TierVision:
		return "vision"
	default:
		return "full"
	}
}

var (
	// ErrExhausted is returned when every candidate failed with a retryable error.
	ErrExhausted = eris.New("llm: all model candidates failed")
	// ErrNoModels is returned when a tier has no candidates configured.
	ErrNoModels = eris.New("llm: no models configured")
)

var retryableRe = regexp.MustCompile(`(?i)429|rate limit|quota exceeded|503|unavailable|overloaded`)

// IsRetryable reports whether err should move the cascade to its next
// candidate: an API status of 429 or 503, rate-limit or overload wording,
// or an exhausted cascade.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrExhausted) {
		return true
	}
	switch gemini.StatusCode(err) {
	case 429, 503:
		return true
	}
	return retryableRe.MatchString(err.Error())
}

// cascade tries each candidate in order. A retryable failure moves on to
// the next one; any other failure is returned immediately.
func (o *Orchestrator) cascade(ctx context.Context, cands []Candidate, call Call) (string, error) {
	if len(cands) == 0 {
		return "", eris.Wrap(ErrNoModels, call.Phase)
	}

	var lastErr error
	for _, c := range cands {
		if err := ctx.Err(); err != nil {
			return "", eris.Wrapf(err, "llm: %s", call.Phase)
		}

		out, err := c.Backend.Generate(ctx, c.Model, call)
		if err == nil {
			o.costs.Log(out.Model, call.Phase, out.Usage)
			return out.Text, nil
		}
		lastErr = err

		log := zap.L().With(
			zap.String("phase", call.Phase),
			zap.String("backend", c.Backend.Name()),
			zap.String("model", c.Model),
			zap.Error(err),
		)
		if !IsRetryable(err) {
			log.Warn("llm: model call failed")
			return "", err
		}
		log.Warn("llm: retryable model failure, trying next candidate")
	}

	return "", eris.Wrapf(ErrExhausted, "%s (%d candidates, last: %v)", call.Phase, len(cands), lastErr)
}

// Generate runs prompt through the cascade for tier and returns the raw text.
func (o *Orchestrator) Generate(ctx context.Context, prompt string, tier Tier) (string, error) {
	return o.cascade(ctx, o.candidates(tier), Call{Phase: "generate_" + tier.String(), Prompt: prompt})
}

func (o *Orchestrator) candidates(tier Tier) []Candidate {
	switch tier {
	case TierLite:
		return o.lite
	case TierVision:
		return o.vision
	default:
		return o.full
	}
}

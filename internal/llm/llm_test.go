package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-intel/internal/model"
	"github.com/sells-group/lead-intel/internal/resilience"
)

// scriptBackend answers calls from a per-model script and records them.
type scriptBackend struct {
	mu      sync.Mutex
	replies map[string][]reply
	calls   []recordedCall
}

type reply struct {
	text string
	err  error
}

type recordedCall struct {
	Model string
	Call  Call
}

func newScript() *scriptBackend {
	return &scriptBackend{replies: make(map[string][]reply)}
}

// on queues a reply for model. The last queued reply repeats.
func (b *scriptBackend) on(model, text string, err error) *scriptBackend {
	b.replies[model] = append(b.replies[model], reply{text: text, err: err})
	return b
}

func (b *scriptBackend) Name() string { return "script" }

func (b *scriptBackend) Generate(_ context.Context, model string, call Call) (*Output, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, recordedCall{Model: model, Call: call})

	queue := b.replies[model]
	if len(queue) == 0 {
		return nil, errors.New("script: no reply for " + model)
	}
	r := queue[0]
	if len(queue) > 1 {
		b.replies[model] = queue[1:]
	}
	if r.err != nil {
		return nil, r.err
	}
	return &Output{Text: r.text, Model: model}, nil
}

func (b *scriptBackend) recorded() []recordedCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]recordedCall(nil), b.calls...)
}

func rateLimited() error {
	return resilience.NewTransientError(errors.New("gemini: status 429 RESOURCE_EXHAUSTED"), 429)
}

func newTestOrchestrator(b Backend, full []string, lite []string) *Orchestrator {
	return New(Config{
		Full: Candidates(b, full...),
		Lite: Candidates(b, lite...),
		SynthesisRetry: resilience.RetryConfig{
			MaxAttempts:    3,
			InitialBackoff: time.Millisecond,
			MaxBackoff:     2 * time.Millisecond,
		},
	})
}

// populatedStrategy returns a report with every conclusion filled.
func populatedStrategy() model.Strategy {
	s := DefaultStrategy()
	for _, name := range model.ConclusionSections {
		_, c, _ := s.Section(name)
		*c = model.Text(name + "の結論")
	}
	s.Summary = "**成長企業**"
	s.SWOT.Strengths = model.TextList{"技術力"}
	s.Score = 72
	return s
}

func strategyJSON(t *testing.T, s model.Strategy) string {
	t.Helper()
	data, err := json.Marshal(s)
	require.NoError(t, err)
	return string(data)
}

package llm

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-intel/internal/cost"
	"github.com/sells-group/lead-intel/pkg/anthropic"
	"github.com/sells-group/lead-intel/pkg/gemini"
)

// Call is one backend-independent generation request.
type Call struct {
	Phase  string
	System string
	Prompt string
	// Images are PNG-encoded and attached after the prompt.
	Images [][]byte
	JSON   bool
}

// Output is a successful generation.
type Output struct {
	Text  string
	Model string
	Usage cost.Usage
}

// Backend issues a call against a named model.
type Backend interface {
	Name() string
	Generate(ctx context.Context, model string, call Call) (*Output, error)
}

// Candidate is one entry of a model cascade.
type Candidate struct {
	Backend Backend
	Model   string
}

// GeminiBackend adapts a gemini.Client.
type GeminiBackend struct {
	client gemini.Client
}

// NewGeminiBackend wraps client.
func NewGeminiBackend(client gemini.Client) *GeminiBackend {
	return &GeminiBackend{client: client}
}

// Name implements Backend.
func (b *GeminiBackend) Name() string { return "gemini" }

// Generate implements Backend.
func (b *GeminiBackend) Generate(ctx context.Context, model string, call Call) (*Output, error) {
	req := gemini.Request{
		Model:  model,
		System: call.System,
		Prompt: call.Prompt,
		JSON:   call.JSON,
	}
	for _, img := range call.Images {
		req.Images = append(req.Images, gemini.Image{Data: img, MIMEType: "image/png"})
	}
	resp, err := b.client.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	return &Output{
		Text:  resp.Text,
		Model: resp.Model,
		Usage: cost.Usage{InputTokens: resp.Usage.InputTokens, OutputTokens: resp.Usage.OutputTokens},
	}, nil
}

// AnthropicBackend adapts an anthropic.Client. It is text-only.
type AnthropicBackend struct {
	client    anthropic.Client
	maxTokens int64
}

// NewAnthropicBackend wraps client. Non-positive maxTokens defaults to 8192.
func NewAnthropicBackend(client anthropic.Client, maxTokens int64) *AnthropicBackend {
	if maxTokens <= 0 {
		maxTokens = 8192
	}
	return &AnthropicBackend{client: client, maxTokens: maxTokens}
}

// Name implements Backend.
func (b *AnthropicBackend) Name() string { return "anthropic" }

// Generate implements Backend.
func (b *AnthropicBackend) Generate(ctx context.Context, model string, call Call) (*Output, error) {
	if len(call.Images) > 0 {
		return nil, eris.New("anthropic: image input is not supported by this backend")
	}
	prompt := call.Prompt
	if call.JSON {
		prompt += "\n\nRespond with a single JSON object only."
	}
	resp, err := b.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     model,
		MaxTokens: b.maxTokens,
		System:    call.System,
		Prompt:    prompt,
	})
	if err != nil {
		return nil, err
	}
	if resp.Text == "" {
		return nil, eris.Errorf("anthropic: %s returned no text", model)
	}
	name := resp.Model
	if name == "" {
		name = model
	}
	return &Output{
		Text:  resp.Text,
		Model: name,
		Usage: cost.Usage{InputTokens: resp.Usage.InputTokens, OutputTokens: resp.Usage.OutputTokens},
	}, nil
}

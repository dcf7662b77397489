package mock

import (
	"context"
	"log/slog"
	"sync"
)

// DefaultResponse is returned when no script is configured.
const DefaultResponse = `{"short":"Summarize the text in three bullet points.","detailed":"You are an expert editor. Summarize the following text for a busy executive in three bullet points, each under twenty words, keeping numbers exact.","creative":"Explain the text as if it were a movie trailer voice-over in three beats."}`

// Reply is one scripted provider outcome.
type Reply struct {
	Text string
	Err  error
}

// Provider is a mock AI provider for testing and development. Scripted
// replies are consumed in order; once exhausted, the last reply repeats.
type Provider struct {
	logger *slog.Logger

	mu      sync.Mutex
	script  []Reply
	calls   int
	prompts []string
}

// New creates a new mock AI provider
func New(logger *slog.Logger, script ...Reply) *Provider {
	return &Provider{
		logger: logger,
		script: script,
	}
}

// Name implements ai.Provider.
func (p *Provider) Name() string {
	return "mock"
}

// Generate returns the next scripted reply, or DefaultResponse.
func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++
	p.prompts = append(p.prompts, prompt)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(p.script) == 0 {
		return DefaultResponse, nil
	}

	idx := p.calls - 1
	if idx >= len(p.script) {
		idx = len(p.script) - 1
	}
	r := p.script[idx]
	p.logger.Debug("Mock provider reply", "call", p.calls, "error", r.Err)
	return r.Text, r.Err
}

// Calls returns how many times Generate ran.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// Prompts returns every prompt received, in order.
func (p *Provider) Prompts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.prompts...)
}

// Reset clears call counters and the script for testing
func (p *Provider) Reset(script ...Reply) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = 0
	p.prompts = nil
	p.script = script
}

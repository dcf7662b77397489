package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/DukeRupert/promptgate/internal/ai"
	"github.com/DukeRupert/promptgate/internal/domain"
	"github.com/DukeRupert/promptgate/internal/metrics"
)

// Retry defaults.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second
)

// errEmptyReply marks an attempt whose reply was empty or whitespace.
var errEmptyReply = errors.New("provider returned an empty reply")

// GenerationRequest is one orchestrated generation.
type GenerationRequest struct {
	Prompt      string
	Category    string
	TargetModel domain.TargetModel
	ModelTier   domain.ModelTier
	MaxAttempts int // 0 uses the orchestrator default
}

// Orchestrator turns a request into structured prompt variants by calling the
// provider with bounded retries and exponential backoff.
type Orchestrator interface {
	Run(ctx context.Context, req GenerationRequest) (*domain.GenerationResult, error)
}

// SleepFunc waits for d or until ctx ends, returning ctx.Err() in that case.
type SleepFunc func(ctx context.Context, d time.Duration) error

// OrchestratorConfig tunes the retry loop.
type OrchestratorConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Sleep       SleepFunc        // nil uses a timer
	Now         func() time.Time // nil uses time.Now
}

// orchestrator implements Orchestrator.
type orchestrator struct {
	provider    ai.Provider
	maxAttempts int
	baseDelay   time.Duration
	sleep       SleepFunc
	now         func() time.Time
	logger      *slog.Logger
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(provider ai.Provider, cfg OrchestratorConfig, logger *slog.Logger) Orchestrator {
	o := &orchestrator{
		provider:    provider,
		maxAttempts: cfg.MaxAttempts,
		baseDelay:   cfg.BaseDelay,
		sleep:       cfg.Sleep,
		now:         cfg.Now,
		logger:      logger,
	}
	if o.maxAttempts <= 0 {
		o.maxAttempts = DefaultMaxAttempts
	}
	if o.baseDelay <= 0 {
		o.baseDelay = DefaultBaseDelay
	}
	if o.sleep == nil {
		o.sleep = sleepContext
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o
}

// Run builds the prompt for the request tier and calls the provider until a
// non-empty reply arrives or attempts run out. Every provider error is
// retried; the error class only labels the attempt metric. A cancelled
// context ends it with ECANCELED.
func (o *orchestrator) Run(ctx context.Context, req GenerationRequest) (*domain.GenerationResult, error) {
	const op = "Orchestrator.Run"

	maxAttempts := req.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = o.maxAttempts
	}
	target := req.TargetModel
	if target == "" {
		target = domain.DefaultTargetModel
	}
	prompt := BuildPrompt(req.Prompt, req.Category, target, req.ModelTier)
	name := o.provider.Name()
	start := o.now()

	var lastErr error
	attempt := 0
	for attempt < maxAttempts {
		attempt++

		if err := ctx.Err(); err != nil {
			return nil, o.canceled(err, op, start)
		}

		text, err := o.provider.Generate(ctx, prompt)
		if err == nil && strings.TrimSpace(text) != "" {
			metrics.ProviderAttempt(name, "ok")
			return o.complete(text, attempt, start), nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, o.canceled(ctxErr, op, start)
		}

		if err == nil {
			err = errEmptyReply
		}
		lastErr = err
		metrics.ProviderAttempt(name, attemptStatus(err))

		o.logger.Warn("generation attempt failed",
			"provider", name,
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"error", lastErr,
		)

		if attempt == maxAttempts {
			break
		}

		if err := o.sleep(ctx, o.backoff(attempt)); err != nil {
			return nil, o.canceled(err, op, start)
		}
	}

	metrics.GenerationFinished("failed", o.now().Sub(start))
	o.logger.Error("generation failed", "provider", name, "attempts", attempt, "error", lastErr)
	return nil, domain.Upstream(lastErr, op, attempt)
}

// attemptStatus labels a failed attempt for metrics.
func attemptStatus(err error) string {
	switch {
	case errors.Is(err, errEmptyReply):
		return "empty"
	case ai.IsPermanent(err):
		return "permanent"
	case ai.IsRetryable(err):
		return "transient"
	default:
		return "error"
	}
}

// backoff returns base * 2^(attempt-1).
func (o *orchestrator) backoff(attempt int) time.Duration {
	return o.baseDelay << (attempt - 1)
}

func (o *orchestrator) complete(text string, attempts int, start time.Time) *domain.GenerationResult {
	output, degraded := ExtractStructured(text)
	duration := o.now().Sub(start)

	status := "completed"
	if degraded {
		status = "degraded"
		o.logger.Warn("provider reply was not valid JSON, returning placeholder", "raw_length", len(text))
	}
	metrics.GenerationFinished(status, duration)

	return &domain.GenerationResult{
		Output:   output,
		Raw:      text,
		Degraded: degraded,
		Attempts: attempts,
		Duration: duration,
	}
}

func (o *orchestrator) canceled(err error, op string, start time.Time) error {
	metrics.GenerationFinished("canceled", o.now().Sub(start))
	return domain.Canceled(err, op)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

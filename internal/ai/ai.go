package ai

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Provider is an upstream text-generation service. Generate returns the raw
// completion text; an empty string with a nil error is a valid (empty) reply.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)

	// Name identifies the provider in logs and metrics.
	Name() string
}

// ProviderConfig contains common configuration for AI providers
type ProviderConfig struct {
	RequestTimeout time.Duration // Timeout for individual requests
	MaxTokens      int           // Upper bound on completion length
	BaseURL        string        // Overrides the provider endpoint (tests, proxies)
}

// WithDefaults fills unset fields.
func (c ProviderConfig) WithDefaults() ProviderConfig {
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 60 * time.Second
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 4096
	}
	return c
}

// Error codes for AI provider operations
var (
	// EAIRateLimit indicates the API rate limit has been exceeded
	EAIRateLimit = errors.New("ai provider rate limit exceeded")

	// EAIInvalidRequest indicates the provider rejected the request itself
	EAIInvalidRequest = errors.New("ai provider rejected the request")

	// EAIContentPolicy indicates the prompt or completion was blocked by a safety filter
	EAIContentPolicy = errors.New("content blocked by provider policy")

	// EAITimeout indicates the request timed out
	EAITimeout = errors.New("ai request timed out")

	// EAIUnavailable indicates the AI service is temporarily unavailable
	EAIUnavailable = errors.New("ai service temporarily unavailable")

	// EAIUnauthorized indicates invalid API credentials
	EAIUnauthorized = errors.New("ai provider authentication failed")
)

// IsRetryable returns true if the error is a transient error that can be retried
func IsRetryable(err error) bool {
	return errors.Is(err, EAIRateLimit) ||
		errors.Is(err, EAITimeout) ||
		errors.Is(err, EAIUnavailable)
}

// IsPermanent returns true if repeating the same request cannot succeed.
func IsPermanent(err error) bool {
	return errors.Is(err, EAIUnauthorized) ||
		errors.Is(err, EAIInvalidRequest)
}

// WrapError wraps an error with context about the AI operation
func WrapError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("ai %s: %w", operation, err)
}

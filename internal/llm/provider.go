// Package llm provides a minimal text-generation interface over external
// LLM APIs. The insight layer owns retry policy and response validation;
// providers here own transport only.
package llm

import (
	"context"
	"errors"
	"time"
)

// Common errors returned by providers.
var (
	ErrNoAPIKey     = errors.New("llm: API key not configured")
	ErrRateLimit    = errors.New("llm: rate limit exceeded")
	ErrProviderDown = errors.New("llm: provider unavailable")
	ErrEmptyReply   = errors.New("llm: empty response")
)

// GenerateOptions configures a single generation request.
type GenerateOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// TextGenerator is the interface the insight synthesizer depends on.
type TextGenerator interface {
	// Name returns the provider identifier (e.g., "gemini").
	Name() string

	// Generate sends a prompt and returns the model's text response.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// DefaultGenerateOptions returns conservative defaults for short,
// focused commentary generation.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Model:       "gemini-2.0-flash",
		Temperature: 0.3,
		MaxTokens:   500,
		Timeout:     10 * time.Second,
	}
}

// withTimeout applies the per-request timeout when one is configured.
func withTimeout(ctx context.Context, opts GenerateOptions) (context.Context, context.CancelFunc) {
	if opts.Timeout > 0 {
		return context.WithTimeout(ctx, opts.Timeout)
	}
	return context.WithCancel(ctx)
}

package llm

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when no model backend or credentials have
// been selected. Agents treat it as an informational condition, not a
// failure.
var ErrNotConfigured = errors.New("llm integration not configured")

// Options control a single model invocation
type Options struct {
	SystemMessage string
	Temperature   float64
	MaxTokens     int
}

// Client is the opaque model-backend capability. Implementations may fail
// with ErrNotConfigured when no backend is usable, or with an arbitrary
// error for transport/auth/quota failures.
type Client interface {
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}

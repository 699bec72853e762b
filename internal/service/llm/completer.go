// Package llm wraps the external text-completion collaborator.
package llm

import (
	"context"
	"errors"
)

// ErrUpstream tags every failure of the completion endpoint: timeouts,
// transport errors, non-2xx responses and empty replies.
var ErrUpstream = errors.New("llm upstream failure")

// Completer is a single-shot, stateless text completion.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

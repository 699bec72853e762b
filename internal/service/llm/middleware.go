package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Limit bounds the number of in-flight completions.
func Limit(next Completer, n int64) Completer {
	if n <= 0 {
		return next
	}
	sem := semaphore.NewWeighted(n)
	return CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
		if err := sem.Acquire(ctx, 1); err != nil {
			return "", fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		defer sem.Release(1)
		return next.Complete(ctx, prompt)
	})
}

// Timeout bounds every call with d.
func Timeout(next Completer, d time.Duration) Completer {
	if d <= 0 {
		return next
	}
	return CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		out, err := next.Complete(ctx, prompt)
		if err != nil && !errors.Is(err, ErrUpstream) {
			err = fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		return out, err
	})
}

// Retry makes up to attempts calls, sleeping backoff between them.
func Retry(next Completer, attempts int, backoff time.Duration, logger *zap.Logger) Completer {
	if attempts <= 1 {
		return next
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
		var lastErr error
		for attempt := 1; attempt <= attempts; attempt++ {
			out, err := next.Complete(ctx, prompt)
			if err == nil {
				return out, nil
			}
			lastErr = err
			logger.Warn("completion attempt failed", zap.Int("attempt", attempt), zap.Error(err))
			if attempt == attempts {
				break
			}
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", ErrUpstream, ctx.Err())
			case <-time.After(backoff):
			}
		}
		return "", lastErr
	})
}

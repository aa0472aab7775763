package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type retrying struct {
	Provider
	maxRetries int
	backoff    func(attempt int) time.Duration
}

// WithRetry retries failed completions up to maxRetries times with quadratic
// backoff. maxRetries <= 0 returns p unchanged.
func WithRetry(p Provider, maxRetries int) Provider {
	if maxRetries <= 0 {
		return p
	}
	return &retrying{
		Provider:   p,
		maxRetries: maxRetries,
		backoff: func(attempt int) time.Duration {
			return time.Duration(attempt*attempt) * 500 * time.Millisecond
		},
	}
}

func (r *retrying) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(r.backoff(attempt)):
			}
			slog.Debug("retrying LLM call", "provider", r.Name(), "attempt", attempt)
		}

		resp, err := r.Provider.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("all retries exhausted for %s: %w", r.Name(), lastErr)
}

package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/openai/openai-go"
)

// RetryPolicy is an explicit retry policy: a capped number of attempts
// with a fixed delay between them.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultRetryPolicy matches the run defaults: 7 attempts, 5s apart.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 7, Delay: 5 * time.Second}

// Retrying wraps a Client and retries transient failures according to a
// RetryPolicy. Non-transient failures (bad request, auth) surface
// immediately.
type Retrying struct {
	inner  Client
	policy RetryPolicy

	// sleep is swappable for tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetrying wraps client with the given policy.
func NewRetrying(client Client, policy RetryPolicy) *Retrying {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &Retrying{
		inner:  client,
		policy: policy,
		sleep:  sleepCtx,
	}
}

func (r *Retrying) Complete(ctx context.Context, req Request) ([]Completion, error) {
	var lastErr error
	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		completions, err := r.inner.Complete(ctx, req)
		if err == nil {
			return completions, nil
		}
		lastErr = err

		if !IsTransient(err) {
			return nil, err
		}
		if attempt == r.policy.MaxAttempts {
			break
		}
		if err := r.sleep(ctx, r.policy.Delay); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("giving up after %d attempt(s): %w", r.policy.MaxAttempts, lastErr)
}

// IsTransient reports whether an error is worth retrying: rate limits,
// server-side failures, and network transport errors.
func IsTransient(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 429, 500, 502, 503, 504:
			return true
		}
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

package retry

import (
	"context"
	"math"
	"time"
)

// Policy describes a bounded retry strategy. It is shared by every call site
// that talks to the model backend so that backoff behaviour stays uniform –
// the solver's proposal path uses it today, future call sites reuse it.
type Policy struct {
	// MaxAttempts is the total number of invocations, including the first.
	MaxAttempts int

	// Backoff returns the delay before the given retry attempt (0-based,
	// counting retries – attempt 0 is the delay before the second call).
	Backoff func(attempt int) time.Duration

	// Retryable reports whether an error is worth another attempt. A nil
	// predicate retries every error.
	Retryable func(err error) bool
}

// Do invokes fn until it succeeds, the attempts are exhausted, the error is
// not retryable, or the context is cancelled. The last error is returned.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		if attempt == attempts-1 {
			break
		}
		var delay time.Duration
		if p.Backoff != nil {
			delay = p.Backoff(attempt)
		}
		if delay <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return err
}

// Constant returns a backoff function that always waits the same delay.
func Constant(delay time.Duration) func(int) time.Duration {
	return func(int) time.Duration { return delay }
}

// Exponential returns a backoff function growing by multiplier per attempt,
// starting at base and never exceeding max.
func Exponential(base time.Duration, multiplier float64, max time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		delay := time.Duration(float64(base) * math.Pow(multiplier, float64(attempt)))
		if max > 0 && delay > max {
			delay = max
		}
		return delay
	}
}

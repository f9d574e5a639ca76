package upstream

import (
	"context"
	"fmt"
	"time"
)

// RetryPolicy bounds transport-level retries. Attempts counts the first call.
type RetryPolicy struct {
	Attempts     int
	InitialDelay time.Duration
	Multiplier   float64
}

// DefaultRetryPolicy is three attempts total, waiting 500ms then 1s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts:     3,
		InitialDelay: 500 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.Attempts <= 0 {
		p.Attempts = 1
	}
	if p.InitialDelay < 0 {
		p.InitialDelay = 0
	}
	if p.Multiplier < 1 {
		p.Multiplier = 2.0
	}
	return p
}

// Delays returns the wait before each retry, in order. Its length is Attempts-1.
func (p RetryPolicy) Delays() []time.Duration {
	p = p.normalized()
	out := make([]time.Duration, 0, p.Attempts-1)
	delay := p.InitialDelay
	for i := 1; i < p.Attempts; i++ {
		out = append(out, delay)
		delay = time.Duration(float64(delay) * p.Multiplier)
	}
	return out
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the production Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Retry calls fn until it returns nil or the policy's attempt budget is spent.
// fn receives the 1-based attempt number. Every error returned by fn is treated
// as retryable; callers only report transport failures through it.
func Retry(ctx context.Context, p RetryPolicy, sleep Sleeper, fn func(attempt int) error) error {
	p = p.normalized()
	if sleep == nil {
		sleep = SleepContext
	}
	delays := p.Delays()

	var lastErr error
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		err := fn(attempt)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == p.Attempts {
			break
		}
		if err := sleep(ctx, delays[attempt-1]); err != nil {
			return fmt.Errorf("%w: retry aborted after %d attempts: %w", ErrUnreachable, attempt, err)
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrUnreachable, p.Attempts, lastErr)
}

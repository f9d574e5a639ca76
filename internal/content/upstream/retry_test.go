package upstream

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// recordingSleeper captures requested delays without waiting.
type recordingSleeper struct {
	delays []time.Duration
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return nil
}

func TestRetryPolicy_DefaultDelays(t *testing.T) {
	p := DefaultRetryPolicy()
	require.Equal(t, 3, p.Attempts)
	require.Equal(t, []time.Duration{500 * time.Millisecond, time.Second}, p.Delays())
}

func TestRetryPolicy_DelaysDoubleEachRetry(t *testing.T) {
	p := RetryPolicy{Attempts: 5, InitialDelay: 100 * time.Millisecond, Multiplier: 2}
	require.Equal(t, []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
	}, p.Delays())
}

func TestRetryPolicy_SingleAttemptHasNoDelays(t *testing.T) {
	require.Empty(t, RetryPolicy{Attempts: 1, InitialDelay: time.Second}.Delays())
	require.Empty(t, RetryPolicy{}.Delays())
}

func TestRetry_SucceedsAfterTwoFailures(t *testing.T) {
	sleeper := &recordingSleeper{}
	calls := 0
	err := Retry(context.Background(), DefaultRetryPolicy(), sleeper.Sleep, func(attempt int) error {
		calls++
		require.Equal(t, calls, attempt)
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
	require.Equal(t, []time.Duration{500 * time.Millisecond, time.Second}, sleeper.delays)
}

func TestRetry_ExhaustionWrapsUnreachable(t *testing.T) {
	sleeper := &recordingSleeper{}
	transportErr := errors.New("no such host")
	calls := 0
	err := Retry(context.Background(), DefaultRetryPolicy(), sleeper.Sleep, func(int) error {
		calls++
		return transportErr
	})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrUnreachable)
	require.ErrorIs(t, err, transportErr)
	require.Equal(t, 3, calls)
	// no wait after the final attempt
	require.Len(t, sleeper.delays, 2)
}

func TestRetry_StopsWhenSleepIsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := Retry(ctx, DefaultRetryPolicy(), SleepContext, func(int) error {
		calls++
		return errors.New("connection reset")
	})
	require.ErrorIs(t, err, ErrUnreachable)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
}

func TestSleepContext_Waits(t *testing.T) {
	start := time.Now()
	require.NoError(t, SleepContext(context.Background(), 20*time.Millisecond))
	require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

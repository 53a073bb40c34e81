package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocalc/internal/resilience"
)

var errBoom = errors.New("boom")

func fastRetry(attempts int) resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	cfg.MaxAttempts = attempts
	cfg.InitialBackoff = time.Millisecond
	cfg.MaxBackoff = 2 * time.Millisecond
	return cfg
}

func TestCircuitBreakerLifecycle(t *testing.T) {
	ctx := context.Background()
	cb := resilience.NewCircuitBreaker("test", resilience.CircuitBreakerConfig{
		ErrorThreshold:   2,
		Timeout:          20 * time.Millisecond,
		SuccessThreshold: 1,
	})

	failing := func() error { return errBoom }
	ok := func() error { return nil }

	require.ErrorIs(t, cb.Execute(ctx, failing), errBoom)
	assert.Equal(t, resilience.StateClosed, cb.GetState())
	require.ErrorIs(t, cb.Execute(ctx, failing), errBoom)
	assert.Equal(t, resilience.StateOpen, cb.GetState())

	require.ErrorIs(t, cb.Execute(ctx, ok), resilience.ErrCircuitOpen)

	time.Sleep(30 * time.Millisecond)
	require.NoError(t, cb.Execute(ctx, ok))
	assert.Equal(t, resilience.StateClosed, cb.GetState())
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	ctx := context.Background()
	cb := resilience.NewCircuitBreaker("test", resilience.CircuitBreakerConfig{
		ErrorThreshold:   1,
		Timeout:          10 * time.Millisecond,
		SuccessThreshold: 2,
	})

	_ = cb.Execute(ctx, func() error { return errBoom })
	time.Sleep(15 * time.Millisecond)

	require.True(t, cb.AllowRequest(ctx))
	assert.Equal(t, resilience.StateHalfOpen, cb.GetState())
	cb.RecordResult(ctx, errBoom)
	assert.Equal(t, resilience.StateOpen, cb.GetState())
}

func TestCircuitBreakerSuccessResetsFailures(t *testing.T) {
	ctx := context.Background()
	cb := resilience.NewCircuitBreaker("test", resilience.CircuitBreakerConfig{ErrorThreshold: 2, Timeout: time.Hour, SuccessThreshold: 1})

	cb.RecordResult(ctx, errBoom)
	cb.RecordResult(ctx, nil)
	cb.RecordResult(ctx, errBoom)
	assert.Equal(t, resilience.StateClosed, cb.GetState())
}

func TestRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := resilience.NewRetry("r", fastRetry(3)).Execute(ctx, func() error {
			calls++
			if calls < 3 {
				return errBoom
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		calls := 0
		err := resilience.NewRetry("r", fastRetry(2)).Execute(ctx, func() error {
			calls++
			return errBoom
		})
		require.ErrorIs(t, err, errBoom)
		assert.Equal(t, 2, calls)
	})

	t.Run("permanent errors are not retried", func(t *testing.T) {
		calls := 0
		err := resilience.NewRetry("r", fastRetry(5)).Execute(ctx, func() error {
			calls++
			return resilience.Permanent(errBoom)
		})
		require.ErrorIs(t, err, errBoom)
		require.ErrorIs(t, err, resilience.ErrPermanent)
		assert.Equal(t, 1, calls)
	})

	t.Run("context cancellation stops waiting", func(t *testing.T) {
		cfg := fastRetry(5)
		cfg.InitialBackoff = time.Second
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		err := resilience.NewRetry("r", cfg).Execute(cctx, func() error { return errBoom })
		require.ErrorIs(t, err, resilience.ErrContextCanceled)
	})
}

func TestPolicyDo(t *testing.T) {
	ctx := context.Background()
	p := resilience.NewPolicyWithConfig("dep", resilience.CircuitBreakerConfig{
		ErrorThreshold: 1, Timeout: time.Hour, SuccessThreshold: 1,
	}, fastRetry(2))

	v, err := resilience.Do(ctx, p, "get", func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	calls := 0
	_, err = resilience.Do(ctx, p, "get", func(context.Context) (int, error) {
		calls++
		return 0, errBoom
	})
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, 2, calls)
	assert.Equal(t, resilience.StateOpen, p.State())

	_, err = resilience.Do(ctx, p, "get", func(context.Context) (int, error) { return 1, nil })
	require.ErrorIs(t, err, resilience.ErrCircuitOpen)
}

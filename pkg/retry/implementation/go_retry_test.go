package implementation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jt828/promdress/pkg/collector"
	obsImpl "github.com/jt828/promdress/pkg/observability/implementation"
	"github.com/jt828/promdress/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRetry_Execute(t *testing.T) {
	t.Run("succeeds on first attempt", func(t *testing.T) {
		r := NewRetry(3, retry.WithInterval(time.Millisecond))
		callCount := 0

		err := r.Execute(context.Background(), func() error {
			callCount++
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 1, callCount)
	})

	t.Run("succeeds after retries", func(t *testing.T) {
		r := NewRetry(3,
			retry.WithInterval(time.Millisecond),
			retry.WithRetryable(func(err error) bool { return true }),
		)
		callCount := 0

		err := r.Execute(context.Background(), func() error {
			callCount++
			if callCount < 3 {
				return errors.New("transient error")
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 3, callCount)
	})

	t.Run("returns error after max retries exhausted", func(t *testing.T) {
		r := NewRetry(2,
			retry.WithInterval(time.Millisecond),
			retry.WithRetryable(func(err error) bool { return true }),
		)
		callCount := 0
		persistentErr := errors.New("persistent error")

		err := r.Execute(context.Background(), func() error {
			callCount++
			return persistentErr
		})

		assert.ErrorIs(t, err, persistentErr)
		// initial attempt + 2 retries = 3 calls
		assert.Equal(t, 3, callCount)
	})

	t.Run("non-retryable error fails immediately", func(t *testing.T) {
		r := NewRetry(3,
			retry.WithInterval(time.Millisecond),
			retry.WithRetryable(func(err error) bool { return false }),
		)
		callCount := 0

		err := r.Execute(context.Background(), func() error {
			callCount++
			return errors.New("fatal error")
		})

		assert.ErrorContains(t, err, "fatal error")
		assert.Equal(t, 1, callCount)
	})

	t.Run("every call gets the full retry budget", func(t *testing.T) {
		r := NewRetry(2,
			retry.WithInterval(time.Millisecond),
			retry.WithRetryable(func(err error) bool { return true }),
		)

		for i := 0; i < 3; i++ {
			callCount := 0
			err := r.Execute(context.Background(), func() error {
				callCount++
				return errors.New("down")
			})

			assert.Error(t, err)
			assert.Equal(t, 3, callCount, "call %d", i+1)
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		r := NewRetry(100,
			retry.WithInterval(time.Second),
			retry.WithRetryable(func(err error) bool { return true }),
		)

		ctx, cancel := context.WithCancel(context.Background())
		callCount := 0

		go func() {
			time.Sleep(50 * time.Millisecond)
			cancel()
		}()

		err := r.Execute(ctx, func() error {
			callCount++
			return errors.New("keep failing")
		})

		assert.Error(t, err)
		assert.LessOrEqual(t, callCount, 3)
	})
}

func TestRetry_WithMeter(t *testing.T) {
	reg := collector.NewRegistry()
	meter := obsImpl.NewCollectorMeter(reg, obsImpl.WrapZap(zap.NewNop()))

	r := NewRetry(2,
		retry.WithInterval(time.Millisecond),
		retry.WithMeter(meter, "sqlite.ping"),
	)

	callCount := 0
	require.NoError(t, r.Execute(context.Background(), func() error {
		callCount++
		if callCount < 2 {
			return errors.New("busy")
		}
		return nil
	}))
	assert.Error(t, r.Execute(context.Background(), func() error {
		return errors.New("down")
	}))

	report := reg.Report()
	assert.Contains(t, report, `retry_attempts_total{operation="sqlite.ping",outcome="retry"} 3`+"\n")
	assert.Contains(t, report, `retry_attempts_total{operation="sqlite.ping",outcome="success"} 1`+"\n")
	assert.Contains(t, report, `retry_attempts_total{operation="sqlite.ping",outcome="failure"} 1`+"\n")

	require.NoError(t, r.Execute(context.Background(), func() error { return nil }))
	assert.Error(t, r.Execute(context.Background(), func() error {
		return errors.New("down")
	}))

	report = reg.Report()
	assert.Contains(t, report, `retry_attempts_total{operation="sqlite.ping",outcome="retry"} 5`+"\n")
	assert.Contains(t, report, `retry_attempts_total{operation="sqlite.ping",outcome="success"} 2`+"\n")
	assert.Contains(t, report, `retry_attempts_total{operation="sqlite.ping",outcome="failure"} 2`+"\n")
}

package implementation

import (
	"context"
	"time"

	"github.com/jt828/promdress/pkg/observability"
	"github.com/jt828/promdress/pkg/retry"
	goretry "github.com/sethvargo/go-retry"
)

type goRetry struct {
	maxRetries  uint64
	interval    time.Duration
	retryableFn func(err error) bool

	attempts  observability.Counter
	operation string
}

func NewRetry(maxRetries uint64, opts ...retry.Option) retry.Retry {
	cfg := retry.ApplyOptions(opts...)

	r := &goRetry{
		maxRetries:  maxRetries,
		interval:    cfg.Interval,
		retryableFn: cfg.RetryableFn,
		operation:   cfg.Operation,
	}
	if cfg.Meter != nil {
		r.attempts = cfg.Meter.Counter("retry_attempts_total", observability.MetricOpt{
			Help:      "Attempts made by retried operations, by outcome.",
			LabelKeys: []string{"operation", "outcome"},
		})
	}
	return r
}

// Execute runs fn with a fresh backoff, so every call gets the full retry
// budget.
func (r *goRetry) Execute(ctx context.Context, fn func() error) error {
	backoff := goretry.WithMaxRetries(r.maxRetries, goretry.NewExponential(r.interval))

	var attempt uint64
	return goretry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := fn()
		if err == nil {
			r.record("success")
			return nil
		}

		if (r.retryableFn != nil && !r.retryableFn(err)) || attempt > r.maxRetries {
			r.record("failure")
			return err
		}

		r.record("retry")
		return goretry.RetryableError(err)
	})
}

func (r *goRetry) record(outcome string) {
	if r.attempts == nil {
		return
	}
	r.attempts.Inc(1, observability.Labels("operation", r.operation, "outcome", outcome)...)
}

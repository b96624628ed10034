package retry

import (
	"context"
	"time"

	"github.com/jt828/promdress/pkg/observability"
)

type Retry interface {
	Execute(ctx context.Context, fn func() error) error
}

type Config struct {
	RetryableFn func(err error) bool
	Interval    time.Duration

	// Meter, when set, receives retry_attempts_total{operation,outcome}.
	Meter     observability.Meter
	Operation string
}

type Option func(*Config)

func WithRetryable(fn func(err error) bool) Option {
	return func(c *Config) {
		c.RetryableFn = fn
	}
}

func WithInterval(d time.Duration) Option {
	return func(c *Config) {
		c.Interval = d
	}
}

// WithMeter counts every attempt of operation by outcome: "success", "retry"
// or "failure".
func WithMeter(meter observability.Meter, operation string) Option {
	return func(c *Config) {
		c.Meter = meter
		c.Operation = operation
	}
}

func ApplyOptions(opts ...Option) *Config {
	c := &Config{Interval: 100 * time.Millisecond}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

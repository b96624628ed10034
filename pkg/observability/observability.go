package observability

import (
	"context"

	"github.com/jt828/promdress/pkg/collector"
)

// Observability bundles the logger, tracer and meter of a process together
// with the registry the meter writes to. Start exposes the registry over
// HTTP; Close shuts that endpoint and the tracer down.
type Observability interface {
	Close(ctx context.Context) error
	Logger() Logger
	Meter() Meter
	Registry() *collector.Registry
	Start(ctx context.Context) error
	Tracer() Tracer
}

package implementation

import (
	"context"

	"github.com/jt828/promdress/pkg/collector"
	"github.com/jt828/promdress/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
)

type Config struct {
	ServiceName    string
	ServiceVersion string
	Log            LogConfig

	// MetricsAddr is where Start serves the registry. Start does nothing
	// when it is empty.
	MetricsAddr string
	MetricsPath string
	// Runtime, when set, is served next to the registry through promhttp.
	Runtime prometheus.Gatherer

	OTLPEndpoint string
	// Registry defaults to a new registry that logs through the configured
	// logger.
	Registry *collector.Registry
}

func NewObservability(cfg Config) (observability.Observability, error) {
	log, err := NewZapLogger(cfg.Log)
	if err != nil {
		return nil, err
	}

	registry := cfg.Registry
	if registry == nil {
		registry = collector.NewRegistry(collector.WithLogger(Zap(log)))
	}

	tracer, shutdown, err := NewOtelTracer(context.Background(), TracerConfig{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: cfg.ServiceVersion,
		Endpoint:       cfg.OTLPEndpoint,
	})
	if err != nil {
		return nil, err
	}

	return &observabilityImplementation{
		cfg:        cfg,
		log:        log,
		registry:   registry,
		meter:      NewCollectorMeter(registry, log),
		tracer:     tracer,
		traceClose: shutdown,
	}, nil
}

package implementation

import (
	"context"
	"net/http"

	"github.com/jt828/promdress/pkg/collector"
	"github.com/jt828/promdress/pkg/observability"
)

type observabilityImplementation struct {
	cfg      Config
	log      observability.Logger
	registry *collector.Registry
	meter    observability.Meter
	tracer   observability.Tracer

	metricsServer *http.Server
	traceClose    func(context.Context) error
}

func (o *observabilityImplementation) Close(ctx context.Context) error {
	var err error
	if o.metricsServer != nil {
		err = o.metricsServer.Shutdown(ctx)
	}
	if o.traceClose != nil {
		if e := o.traceClose(ctx); err == nil {
			err = e
		}
	}
	if s, ok := o.log.(interface{ Sync() error }); ok {
		_ = s.Sync()
	}
	return err
}
func (o *observabilityImplementation) Logger() observability.Logger   { return o.log }
func (o *observabilityImplementation) Meter() observability.Meter     { return o.meter }
func (o *observabilityImplementation) Registry() *collector.Registry { return o.registry }
func (o *observabilityImplementation) Start(ctx context.Context) error {
	if o.cfg.MetricsAddr == "" || o.metricsServer != nil {
		return nil
	}
	mux := NewMetricsMux(o.cfg.MetricsPath, o.registry, o.cfg.Runtime, o.tracer)
	o.metricsServer = StartMetricsServer(o.cfg.MetricsAddr, mux, o.log)
	return nil
}
func (o *observabilityImplementation) Tracer() observability.Tracer { return o.tracer }

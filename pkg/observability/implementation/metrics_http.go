package implementation

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/jt828/promdress/pkg/collector"
	"github.com/jt828/promdress/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler serves the text exposition of reg. Every scrape runs in its
// own span.
func MetricsHandler(reg *collector.Registry, tracer observability.Tracer) http.Handler {
	if tracer == nil {
		tracer = NoopTracer()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		_, span := tracer.Start(r.Context(), "metrics.scrape")
		defer span.End()

		body := reg.Report()
		span.SetInt("metrics.collectors", reg.Len())
		span.SetInt("metrics.bytes", len(body))
		w.Header().Set("Content-Type", collector.ContentType)
		if r.Method == http.MethodHead {
			return
		}
		if _, err := io.WriteString(w, body); err != nil {
			span.RecordError(err)
		}
	})
}

// NewMetricsMux mounts reg at path and, when runtime is non-nil, the
// client_golang gatherer at path + "/prometheus".
func NewMetricsMux(
	path string,
	reg *collector.Registry,
	runtime prometheus.Gatherer,
	tracer observability.Tracer,
) *http.ServeMux {
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, MetricsHandler(reg, tracer))
	if runtime != nil {
		mux.Handle(strings.TrimSuffix(path, "/")+"/prometheus", promhttp.HandlerFor(runtime, promhttp.HandlerOpts{}))
	}
	return mux
}

func StartMetricsServer(
	addr string,
	handler http.Handler,
	log observability.Logger,
) *http.Server {
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		log.Info("metrics server listening", observability.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server stopped", observability.Err(err))
		}
	}()

	return srv
}

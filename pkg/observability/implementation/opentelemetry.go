package implementation

import (
	"context"
	"time"

	"github.com/jt828/promdress/pkg/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type TracerConfig struct {
	ServiceName    string
	ServiceVersion string
	// Endpoint is the OTLP gRPC collector address. Spans are not exported
	// when it is empty.
	Endpoint string
}

type otelTracer struct {
	tracer trace.Tracer
}

type otelSpan struct {
	span trace.Span
}

func (s otelSpan) End()                  { s.span.End() }
func (s otelSpan) RecordError(err error) { s.span.RecordError(err) }
func (s otelSpan) SetInt(key string, v int) {
	s.span.SetAttributes(attribute.Int(key, v))
}

func (t otelTracer) Start(
	ctx context.Context,
	name string,
) (context.Context, observability.Span) {
	ctx, span := t.tracer.Start(ctx, name)
	return ctx, otelSpan{span}
}

// NewTracer wraps a tracer of provider.
func NewTracer(provider trace.TracerProvider, name string) observability.Tracer {
	return otelTracer{tracer: provider.Tracer(name)}
}

// NoopTracer returns a tracer that records nothing.
func NoopTracer() observability.Tracer {
	return NewTracer(noop.NewTracerProvider(), "noop")
}

func NewOtelTracer(
	ctx context.Context,
	cfg TracerConfig,
) (observability.Tracer, func(ctx context.Context) error, error) {
	res, err := resource.New(
		ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			attribute.String("service.version", cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if cfg.Endpoint != "" {
		exp, err := otlptracegrpc.New(
			ctx,
			otlptracegrpc.WithEndpoint(cfg.Endpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, sdktrace.WithBatcher(exp))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)

	return NewTracer(tp, cfg.ServiceName),
		func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return tp.Shutdown(ctx)
		},
		nil
}

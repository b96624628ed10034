package interceptor

import (
	"context"
	"fmt"

	"github.com/jt828/promdress/pkg/observability"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// MetricsInterceptor counts and times unary calls by method and status code.
// Panics are recovered and reported as codes.Internal. Errors that carry no
// gRPC status are logged and hidden behind codes.Internal as well.
func MetricsInterceptor(meter observability.Meter, log observability.Logger) grpc.UnaryServerInterceptor {
	requests := meter.Counter("grpc_requests_total", observability.MetricOpt{
		Help:      "Total number of unary gRPC requests.",
		LabelKeys: []string{"method", "code"},
	})
	duration := meter.Timer("grpc_request_duration_seconds", observability.MetricOpt{
		Help:      "Duration of unary gRPC requests in seconds.",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		LabelKeys: []string{"method"},
	})

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		stop := duration.Start(observability.Labels("method", info.FullMethod)...)

		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered", observability.String("panic", fmt.Sprintf("%v", r)), observability.String("method", info.FullMethod))
				resp, err = nil, status.Error(codes.Internal, "internal server error")
			}
			stop()
			requests.Inc(1, observability.Labels("method", info.FullMethod, "code", status.Code(err).String())...)
		}()

		resp, err = handler(ctx, req)
		if err == nil {
			return resp, nil
		}

		if _, ok := status.FromError(err); !ok {
			log.Error("unhandled error", observability.Err(err), observability.String("method", info.FullMethod))
			return nil, status.Error(codes.Internal, "internal server error")
		}
		return nil, err
	}
}

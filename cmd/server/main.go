package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/jt828/promdress/internal/bootstrap"
	"github.com/jt828/promdress/internal/config"
	"github.com/jt828/promdress/internal/interceptor"
	"github.com/jt828/promdress/pkg/observability"
	"github.com/jt828/promdress/pkg/observability/implementation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

func main() {
	if err := newServerCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newServerCommand() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:          "promdress-server",
		Short:        "gRPC health server exposing promdress metrics",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}
	if err := config.BindFlags(cmd.Flags(), v); err != nil {
		panic(err)
	}
	return cmd
}

func run(ctx context.Context, cfg config.Config) error {
	runtime := prometheus.NewRegistry()
	runtime.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	obs, err := implementation.NewObservability(implementation.Config{
		ServiceName:  cfg.ServiceName,
		Log:          implementation.LogConfig{Level: cfg.LogLevel, Development: cfg.Development},
		MetricsAddr:  cfg.HTTPAddr,
		MetricsPath:  cfg.MetricsPath,
		Runtime:      runtime,
		OTLPEndpoint: cfg.OTLPEndpoint,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	log := obs.Logger()
	runtime.MustRegister(implementation.NewPrometheusBridge(obs.Registry()))

	grpcMetrics := grpc_prometheus.NewServerMetrics()
	runtime.MustRegister(grpcMetrics)

	if err := obs.Start(ctx); err != nil {
		log.Error("failed to start observability", observability.Err(err))
	}

	var db *bootstrap.Database
	if cfg.DatabaseDSN != "" {
		db, err = bootstrap.InitializeDatabase(ctx, cfg.DatabaseDSN, obs.Meter())
		if err != nil {
			log.Error("failed to initialize database", observability.Err(err))
			return err
		}
		defer db.Close()
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Error("failed to listen", observability.String("addr", cfg.GRPCAddr), observability.Err(err))
		return err
	}

	server := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			grpcMetrics.UnaryServerInterceptor(),
			interceptor.MetricsInterceptor(obs.Meter(), log),
		),
		grpc.StreamInterceptor(grpcMetrics.StreamServerInterceptor()),
	)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	grpcMetrics.InitializeMetrics(server)

	checkHealth := func() {
		status := grpc_health_v1.HealthCheckResponse_SERVING
		if db != nil {
			if err := db.Ping(ctx); err != nil {
				log.Warn("database ping failed, server marked as not serving", observability.Err(err))
				status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
			}
		}
		healthServer.SetServingStatus("", status)
	}
	checkHealth()

	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				checkHealth()
			}
		}
	}()

	serveErr := make(chan error, 1)
	go func() {
		log.Info("gRPC server listening", observability.String("addr", cfg.GRPCAddr))
		serveErr <- server.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		err = nil
	case err = <-serveErr:
		log.Error("gRPC server stopped", observability.Err(err))
	}

	log.Info("Graceful stopping gRPC server...")
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	server.GracefulStop()
	log.Info("gRPC server stopped")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if cerr := obs.Close(shutdownCtx); cerr != nil {
		log.Error("failed to close observability", observability.Err(cerr))
	}
	return err
}

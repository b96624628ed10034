package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *viper.Viper {
	t.Helper()
	v := viper.New()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	require.NoError(t, BindFlags(fs, v))
	require.NoError(t, fs.Parse(args))
	return v
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load(newFlags(t))
		require.NoError(t, err)

		assert.Equal(t, Config{
			GRPCAddr:    ":50051",
			HTTPAddr:    ":9090",
			MetricsPath: "/metrics",
			ServiceName: "promdress",
			LogLevel:    "info",
		}, cfg)
	})

	t.Run("flags override defaults", func(t *testing.T) {
		cfg, err := Load(newFlags(t, "--http-addr=:9999", "--development", "--database-dsn=file::memory:"))
		require.NoError(t, err)

		assert.Equal(t, ":9999", cfg.HTTPAddr)
		assert.True(t, cfg.Development)
		assert.Equal(t, "file::memory:", cfg.DatabaseDSN)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("PROMDRESS_METRICS_PATH", "/internal/metrics")
		t.Setenv("PROMDRESS_LOG_LEVEL", "debug")

		cfg, err := Load(newFlags(t))
		require.NoError(t, err)

		assert.Equal(t, "/internal/metrics", cfg.MetricsPath)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("config file is read", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "promdress.yaml")
		require.NoError(t, os.WriteFile(file, []byte("service-name: billing\notlp-endpoint: collector:4317\n"), 0o600))

		cfg, err := Load(newFlags(t, "--config="+file))
		require.NoError(t, err)

		assert.Equal(t, "billing", cfg.ServiceName)
		assert.Equal(t, "collector:4317", cfg.OTLPEndpoint)
	})

	t.Run("missing config file fails", func(t *testing.T) {
		_, err := Load(newFlags(t, "--config="+filepath.Join(t.TempDir(), "absent.yaml")))
		assert.Error(t, err)
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		_, err := Load(newFlags(t, "--metrics-path=metrics"))
		assert.ErrorIs(t, err, ErrInvalidMetricPath)

		_, err = Load(newFlags(t, "--grpc-addr="))
		assert.ErrorIs(t, err, ErrMissingGRPCAddr)
	})
}

// Package config loads server settings from flags, PROMDRESS_* environment
// variables and an optional config file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "PROMDRESS"

type Config struct {
	GRPCAddr     string `mapstructure:"grpc-addr"`
	HTTPAddr     string `mapstructure:"http-addr"`
	MetricsPath  string `mapstructure:"metrics-path"`
	OTLPEndpoint string `mapstructure:"otlp-endpoint"`
	ServiceName  string `mapstructure:"service-name"`
	// DatabaseDSN is a SQLite DSN. The server runs without a database when it
	// is empty.
	DatabaseDSN string `mapstructure:"database-dsn"`
	LogLevel    string `mapstructure:"log-level"`
	Development bool   `mapstructure:"development"`
}

var (
	ErrMissingGRPCAddr   = errors.New("grpc-addr must not be empty")
	ErrInvalidMetricPath = errors.New("metrics-path must start with /")
)

// BindFlags registers the server flags on fs and binds them to v.
func BindFlags(fs *pflag.FlagSet, v *viper.Viper) error {
	fs.String("config", "", "Path to a config file")
	fs.String("grpc-addr", ":50051", "gRPC listen address")
	fs.String("http-addr", ":9090", "Metrics listen address, empty disables the scrape server")
	fs.String("metrics-path", "/metrics", "Scrape path")
	fs.String("otlp-endpoint", "", "OTLP gRPC endpoint for traces")
	fs.String("service-name", "promdress", "Service name reported in traces")
	fs.String("database-dsn", "", "SQLite DSN instrumented with query metrics")
	fs.String("log-level", "info", "Log level")
	fs.Bool("development", false, "Use the development logger")

	return v.BindPFlags(fs)
}

// Load reads the optional config file named by the "config" key, applies
// environment overrides and validates the result.
func Load(v *viper.Viper) (Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.GRPCAddr == "" {
		return ErrMissingGRPCAddr
	}
	if !strings.HasPrefix(c.MetricsPath, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidMetricPath, c.MetricsPath)
	}
	return nil
}

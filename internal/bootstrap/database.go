package bootstrap

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/jt828/promdress/pkg/circuitbreaker"
	cbImpl "github.com/jt828/promdress/pkg/circuitbreaker/implementation"
	"github.com/jt828/promdress/pkg/observability"
	obsImpl "github.com/jt828/promdress/pkg/observability/implementation"
	"github.com/jt828/promdress/pkg/retry"
	retryImpl "github.com/jt828/promdress/pkg/retry/implementation"
	"github.com/sony/gobreaker/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	DB             *gorm.DB
	CircuitBreaker circuitbreaker.CircuitBreaker
	Retry          retry.Retry
}

// InitializeDatabase opens the SQLite database at dsn with query metrics
// installed and waits until it answers a ping.
func InitializeDatabase(ctx context.Context, dsn string, meter observability.Meter) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.Use(obsImpl.NewGormMetricsPlugin(meter)); err != nil {
		return nil, err
	}

	cb := cbImpl.NewInstrumentedCircuitBreaker(gobreaker.Settings{
		Name:    "sqlite",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	}, meter)

	r := retryImpl.NewRetry(3,
		retry.WithInterval(100*time.Millisecond),
		retry.WithMeter(meter, "sqlite.ping"),
		retry.WithRetryable(isBusy),
	)

	d := &Database{DB: db, CircuitBreaker: cb, Retry: r}
	if err := d.Ping(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

// Ping checks the connection through the circuit breaker, retrying while
// the database is locked by another writer.
func (d *Database) Ping(ctx context.Context) error {
	_, err := d.CircuitBreaker.Execute(func() (any, error) {
		return nil, d.Retry.Execute(ctx, func() error {
			sqlDB, err := d.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		})
	})
	return err
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func isBusy(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

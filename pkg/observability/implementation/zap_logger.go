package implementation

import (
	"github.com/jt828/promdress/pkg/observability"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LogConfig struct {
	// Level is a zap level name such as "debug" or "warn". Empty means info.
	Level       string
	Development bool
}

type zapLogger struct {
	l *zap.Logger
}

func NewZapLogger(cfg LogConfig) (observability.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		lvl, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	l, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return &zapLogger{l: l}, nil
}

// WrapZap adapts an existing zap logger.
func WrapZap(l *zap.Logger) observability.Logger {
	return &zapLogger{l: l}
}

// Zap returns the zap logger behind log, or a no-op logger when log is not
// zap backed.
func Zap(log observability.Logger) *zap.Logger {
	if z, ok := log.(*zapLogger); ok {
		return z.l
	}
	return zap.NewNop()
}

func toZap(fields []observability.Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}

	out := make([]zap.Field, 0, len(fields))

	for _, f := range fields {
		if err, ok := f.Value.(error); ok && f.Key == "error" {
			out = append(out, zap.Error(err))
			continue
		}
		out = append(out, zap.Any(f.Key, f.Value))
	}

	return out
}

func (z *zapLogger) Debug(msg string, fields ...observability.Field) {
	z.l.Debug(msg, toZap(fields)...)
}

func (z *zapLogger) Error(msg string, fields ...observability.Field) {
	z.l.Error(msg, toZap(fields)...)
}

func (z *zapLogger) Fatal(msg string, fields ...observability.Field) {
	z.l.Fatal(msg, toZap(fields)...)
}

func (z *zapLogger) Info(msg string, fields ...observability.Field) {
	z.l.Info(msg, toZap(fields)...)
}

func (z *zapLogger) Warn(msg string, fields ...observability.Field) {
	z.l.Warn(msg, toZap(fields)...)
}

func (z *zapLogger) With(fields ...observability.Field) observability.Logger {
	return &zapLogger{
		l: z.l.With(toZap(fields)...),
	}
}

func (z *zapLogger) Sync() error {
	return z.l.Sync()
}

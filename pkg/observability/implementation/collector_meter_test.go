package implementation

import (
	"testing"
	"time"

	"github.com/jt828/promdress/pkg/collector"
	"github.com/jt828/promdress/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLogger struct {
	warnCalls []struct {
		msg    string
		fields []observability.Field
	}
}

func (m *mockLogger) Debug(msg string, fields ...observability.Field) {}
func (m *mockLogger) Error(msg string, fields ...observability.Field) {}
func (m *mockLogger) Fatal(msg string, fields ...observability.Field) {}
func (m *mockLogger) Info(msg string, fields ...observability.Field)  {}
func (m *mockLogger) Warn(msg string, fields ...observability.Field) {
	m.warnCalls = append(m.warnCalls, struct {
		msg    string
		fields []observability.Field
	}{msg, fields})
}
func (m *mockLogger) With(fields ...observability.Field) observability.Logger { return m }

func TestCollectorMeter(t *testing.T) {
	t.Run("counter writes to the registry", func(t *testing.T) {
		reg := collector.NewRegistry()
		meter := NewCollectorMeter(reg, &mockLogger{})

		c := meter.Counter("jobs_total", observability.MetricOpt{
			Help:      "Jobs processed.",
			LabelKeys: []string{"queue"},
		})
		c.Inc(1, observability.Label{Key: "queue", Value: "mail"})
		c.Inc(2, observability.Label{Key: "queue", Value: "mail"})

		assert.Equal(t, "# HELP jobs_total Jobs processed.\n"+
			"# TYPE jobs_total counter\n"+
			"jobs_total{queue=\"mail\"} 3\n", reg.Report())
	})

	t.Run("same name returns the same instrument", func(t *testing.T) {
		reg := collector.NewRegistry()
		meter := NewCollectorMeter(reg, &mockLogger{})

		a := meter.Gauge("workers")
		b := meter.Gauge("workers")
		assert.Same(t, a, b)
		assert.Equal(t, 1, reg.Len())

		assert.Panics(t, func() { meter.Counter("workers") })
	})

	t.Run("const labels are attached to every write", func(t *testing.T) {
		reg := collector.NewRegistry()
		meter := NewCollectorMeter(reg, &mockLogger{})

		g := meter.Gauge("pool_size", observability.MetricOpt{
			Help:        "Pool size.",
			ConstLabels: []observability.Label{{Key: "pool", Value: "db"}},
			LabelKeys:   []string{"state"},
		})
		g.Set(4, observability.Label{Key: "state", Value: "idle"})
		g.Add(-1, observability.Label{Key: "state", Value: "idle"})

		assert.Contains(t, reg.Report(), "pool_size{pool=\"db\",state=\"idle\"} 3\n")
	})

	t.Run("rejected writes are logged", func(t *testing.T) {
		reg := collector.NewRegistry()
		log := &mockLogger{}
		meter := NewCollectorMeter(reg, log)

		c := meter.Counter("jobs_total")
		c.Inc(-1)
		c.Inc(1, observability.Label{Key: "queue", Value: "mail"})

		require.Len(t, log.warnCalls, 2)
		assert.Equal(t, "metric write rejected", log.warnCalls[0].msg)
		assert.Contains(t, log.warnCalls[0].fields, observability.String("metric", "jobs_total"))
		assert.Contains(t, log.warnCalls[0].fields, observability.Err(collector.ErrNegative))
		assert.Equal(t, "# HELP jobs_total jobs_total\n# TYPE jobs_total counter\n", reg.Report())
	})

	t.Run("histogram uses configured buckets", func(t *testing.T) {
		reg := collector.NewRegistry()
		meter := NewCollectorMeter(reg, &mockLogger{})

		h := meter.Histogram("payload_bytes", observability.MetricOpt{
			Help:    "Payload sizes.",
			Buckets: []float64{100, 1000},
		})
		h.Observe(512)

		got := reg.Report()
		assert.Contains(t, got, "payload_bytes_bucket{le=\"100\"} 0\n")
		assert.Contains(t, got, "payload_bytes_bucket{le=\"1000\"} 1\n")
		assert.Contains(t, got, "payload_bytes_sum 512\n")
	})

	t.Run("timer observes elapsed seconds", func(t *testing.T) {
		reg := collector.NewRegistry()
		meter := NewCollectorMeter(reg, &mockLogger{})

		timer := meter.Timer("step_seconds", observability.MetricOpt{
			Buckets:   []float64{1, 5},
			LabelKeys: []string{"step"},
		}).(*meterTimer)
		clock := time.Unix(0, 0)
		timer.now = func() time.Time { return clock }

		stop := timer.Start(observability.Label{Key: "step", Value: "load"})
		clock = clock.Add(2 * time.Second)
		stop()

		got := reg.Report()
		assert.Contains(t, got, "step_seconds_sum{step=\"load\"} 2\n")
		assert.Contains(t, got, "step_seconds_bucket{le=\"1\",step=\"load\"} 0\n")
		assert.Contains(t, got, "step_seconds_bucket{le=\"5\",step=\"load\"} 1\n")
	})

	t.Run("invalid names panic", func(t *testing.T) {
		meter := NewCollectorMeter(collector.NewRegistry(), &mockLogger{})
		assert.Panics(t, func() { meter.Counter("bad-name") })
	})
}

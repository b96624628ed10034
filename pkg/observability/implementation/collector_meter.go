package implementation

import (
	"fmt"
	"sync"
	"time"

	"github.com/jt828/promdress/pkg/collector"
	"github.com/jt828/promdress/pkg/observability"
)

type collectorMeter struct {
	registry *collector.Registry
	log      observability.Logger

	mu          sync.Mutex
	instruments map[string]any
}

// NewCollectorMeter returns a Meter whose instruments live on registry.
// Rejected writes are logged at warn level and otherwise dropped.
func NewCollectorMeter(registry *collector.Registry, log observability.Logger) observability.Meter {
	return &collectorMeter{
		registry:    registry,
		log:         log,
		instruments: make(map[string]any),
	}
}

// instrument returns the cached instrument for name or builds and caches a
// new one. Building panics on invalid options, like MustRegister.
func (m *collectorMeter) instrument(name string, build func() any) any {
	m.mu.Lock()
	defer m.mu.Unlock()

	if inst, ok := m.instruments[name]; ok {
		return inst
	}
	inst := build()
	m.instruments[name] = inst
	return inst
}

func (m *collectorMeter) rejected(kind, name string, err error) {
	m.log.Warn("metric write rejected",
		observability.String("kind", kind),
		observability.String("metric", name),
		observability.Err(err),
	)
}

// -------------------- Counter --------------------

type meterCounter struct {
	m           *collectorMeter
	c           *collector.Counter
	constLabels []observability.Label
}

func (m *collectorMeter) Counter(name string, opts ...observability.MetricOpt) observability.Counter {
	inst := m.instrument(name, func() any {
		opt := firstOpt(opts)
		return &meterCounter{
			m:           m,
			c:           collector.MustNewCounter(m.opts(name, opt)),
			constLabels: opt.ConstLabels,
		}
	})
	return mustBe[*meterCounter](name, inst)
}

func (c *meterCounter) Inc(v float64, labels ...observability.Label) {
	if err := c.c.Add(v, mergeLabels(c.constLabels, labels)); err != nil {
		c.m.rejected("counter", c.c.Name(), err)
	}
}

// -------------------- Histogram --------------------

type meterHistogram struct {
	m           *collectorMeter
	h           *collector.Histogram
	constLabels []observability.Label
}

func (m *collectorMeter) Histogram(name string, opts ...observability.MetricOpt) observability.Histogram {
	inst := m.instrument(name, func() any {
		return m.newHistogram(name, firstOpt(opts))
	})
	return mustBe[*meterHistogram](name, inst)
}

func (m *collectorMeter) newHistogram(name string, opt observability.MetricOpt) *meterHistogram {
	return &meterHistogram{
		m: m,
		h: collector.MustNewHistogram(collector.HistogramOpts{
			Opts:    m.opts(name, opt),
			Buckets: opt.Buckets,
		}),
		constLabels: opt.ConstLabels,
	}
}

func (h *meterHistogram) Observe(v float64, labels ...observability.Label) {
	if err := h.h.Observe(v, mergeLabels(h.constLabels, labels)); err != nil {
		h.m.rejected("histogram", h.h.Name(), err)
	}
}

// -------------------- Gauge --------------------

type meterGauge struct {
	m           *collectorMeter
	g           *collector.Gauge
	constLabels []observability.Label
}

func (m *collectorMeter) Gauge(name string, opts ...observability.MetricOpt) observability.Gauge {
	inst := m.instrument(name, func() any {
		opt := firstOpt(opts)
		return &meterGauge{
			m:           m,
			g:           collector.MustNewGauge(m.opts(name, opt)),
			constLabels: opt.ConstLabels,
		}
	})
	return mustBe[*meterGauge](name, inst)
}

func (g *meterGauge) Set(v float64, labels ...observability.Label) {
	if err := g.g.Set(v, mergeLabels(g.constLabels, labels)); err != nil {
		g.m.rejected("gauge", g.g.Name(), err)
	}
}

func (g *meterGauge) Add(v float64, labels ...observability.Label) {
	if err := g.g.Add(v, mergeLabels(g.constLabels, labels)); err != nil {
		g.m.rejected("gauge", g.g.Name(), err)
	}
}

// -------------------- Timer --------------------

type meterTimer struct {
	hist *meterHistogram
	now  func() time.Time
}

func (m *collectorMeter) Timer(name string, opts ...observability.MetricOpt) observability.Timer {
	inst := m.instrument(name, func() any {
		return &meterTimer{hist: m.newHistogram(name, firstOpt(opts)), now: time.Now}
	})
	return mustBe[*meterTimer](name, inst)
}

func (t *meterTimer) Start(labels ...observability.Label) func() {
	start := t.now()
	return func() {
		t.hist.Observe(t.now().Sub(start).Seconds(), labels...)
	}
}

// -------------------- Helpers --------------------

func (m *collectorMeter) opts(name string, opt observability.MetricOpt) collector.Opts {
	help := opt.Help
	if help == "" {
		help = name
	}
	return collector.Opts{
		Name:       name,
		Help:       help,
		Labels:     labelNames(opt),
		Registries: []*collector.Registry{m.registry},
	}
}

func firstOpt(opts []observability.MetricOpt) observability.MetricOpt {
	if len(opts) == 0 {
		return observability.MetricOpt{}
	}
	return opts[0]
}

func mustBe[T any](name string, inst any) T {
	typed, ok := inst.(T)
	if !ok {
		panic(fmt.Sprintf("metric %q already exists as %T", name, inst))
	}
	return typed
}

func labelNames(opt observability.MetricOpt) []string {
	names := make([]string, 0, len(opt.ConstLabels)+len(opt.LabelKeys))
	for _, l := range opt.ConstLabels {
		names = append(names, l.Key)
	}
	return append(names, opt.LabelKeys...)
}

func mergeLabels(constLabels, dynamicLabels []observability.Label) collector.Labels {
	if len(constLabels)+len(dynamicLabels) == 0 {
		return nil
	}
	m := make(collector.Labels, len(constLabels)+len(dynamicLabels))
	for _, l := range constLabels {
		m[l.Key] = l.Value
	}
	for _, l := range dynamicLabels {
		m[l.Key] = l.Value
	}
	return m
}

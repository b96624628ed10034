package implementation

import (
	"strconv"
	"strings"
	"time"

	"github.com/jt828/promdress/pkg/collector"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusBridge re-exposes a collector.Registry as a client_golang
// collector so it can be merged with other gatherers behind promhttp. It is
// unchecked: Describe sends nothing and every scrape builds const metrics.
type PrometheusBridge struct {
	registry *collector.Registry
}

func NewPrometheusBridge(registry *collector.Registry) *PrometheusBridge {
	return &PrometheusBridge{registry: registry}
}

func (b *PrometheusBridge) Describe(chan<- *prometheus.Desc) {}

func (b *PrometheusBridge) Collect(ch chan<- prometheus.Metric) {
	for _, s := range b.registry.Gather() {
		switch s.Type {
		case collector.TypeCounter:
			collectScalars(ch, s, prometheus.CounterValue)
		case collector.TypeGauge:
			collectScalars(ch, s, prometheus.GaugeValue)
		case collector.TypeHistogram:
			collectHistograms(ch, s)
		}
	}
}

func collectScalars(ch chan<- prometheus.Metric, s collector.Snapshot, typ prometheus.ValueType) {
	for _, v := range s.Values {
		names, values := splitPairs(v.Labels)
		desc := prometheus.NewDesc(s.Name, s.Help, names, nil)

		m, err := prometheus.NewConstMetric(desc, typ, v.Value, values...)
		if err != nil {
			ch <- prometheus.NewInvalidMetric(desc, err)
			continue
		}
		if v.HasTimestamp {
			m = prometheus.NewMetricWithTimestamp(time.UnixMilli(v.Timestamp), m)
		}
		ch <- m
	}
}

type histogramGroup struct {
	labels  []collector.LabelPair
	count   uint64
	sum     float64
	buckets map[float64]uint64
}

// collectHistograms regroups the flat _count/_sum/_bucket values of one
// histogram by label combination.
func collectHistograms(ch chan<- prometheus.Metric, s collector.Snapshot) {
	var (
		order  []string
		groups = make(map[string]*histogramGroup)
	)

	for _, v := range s.Values {
		le, rest := splitLE(v.Labels)
		key := pairsKey(rest)

		g, ok := groups[key]
		if !ok {
			g = &histogramGroup{labels: rest, buckets: make(map[float64]uint64)}
			groups[key] = g
			order = append(order, key)
		}

		switch v.Name {
		case s.Name + "_count":
			g.count = uint64(v.Value)
		case s.Name + "_sum":
			g.sum = v.Value
		case s.Name + "_bucket":
			if le == "+Inf" {
				continue
			}
			bound, err := strconv.ParseFloat(le, 64)
			if err != nil {
				continue
			}
			g.buckets[bound] = uint64(v.Value)
		}
	}

	for _, key := range order {
		g := groups[key]
		names, values := splitPairs(g.labels)
		desc := prometheus.NewDesc(s.Name, s.Help, names, nil)

		m, err := prometheus.NewConstHistogram(desc, g.count, g.sum, g.buckets, values...)
		if err != nil {
			ch <- prometheus.NewInvalidMetric(desc, err)
			continue
		}
		ch <- m
	}
}

func splitLE(pairs []collector.LabelPair) (string, []collector.LabelPair) {
	if len(pairs) > 0 && pairs[0].Name == "le" {
		return pairs[0].Value, pairs[1:]
	}
	return "", pairs
}

func splitPairs(pairs []collector.LabelPair) ([]string, []string) {
	names := make([]string, len(pairs))
	values := make([]string, len(pairs))
	for i, p := range pairs {
		names[i] = p.Name
		values[i] = p.Value
	}
	return names, values
}

func pairsKey(pairs []collector.LabelPair) string {
	var b strings.Builder
	for _, p := range pairs {
		b.WriteString(p.Name)
		b.WriteByte(0)
		b.WriteString(p.Value)
		b.WriteByte(0)
	}
	return b.String()
}

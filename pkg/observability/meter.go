package observability

import "fmt"

// Meter creates instruments backed by a collector registry. Instruments are
// created once per name; asking for an existing name returns the same one.
type Meter interface {
	Counter(name string, opts ...MetricOpt) Counter
	Histogram(name string, opts ...MetricOpt) Histogram
	Gauge(name string, opts ...MetricOpt) Gauge
	Timer(name string, opts ...MetricOpt) Timer
}

// MetricOpt describes an instrument. ConstLabels are attached to every
// series; LabelKeys are the labels callers may pass per write.
type MetricOpt struct {
	Help        string
	Buckets     []float64
	ConstLabels []Label
	LabelKeys   []string
}

type Label struct {
	Key   string
	Value string
}

// Labels builds labels from alternating keys and values. It panics on an odd
// number of arguments.
//
//	requests.Inc(1, observability.Labels("method", m, "code", c)...)
func Labels(kv ...string) []Label {
	if len(kv)%2 != 0 {
		panic(fmt.Sprintf("observability.Labels: odd argument count %d", len(kv)))
	}
	out := make([]Label, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		out = append(out, Label{Key: kv[i], Value: kv[i+1]})
	}
	return out
}

type Counter interface {
	Inc(v float64, labels ...Label)
}

type Histogram interface {
	Observe(v float64, labels ...Label)
}

type Gauge interface {
	Set(v float64, labels ...Label)
	Add(v float64, labels ...Label)
}

// Timer observes durations in seconds into a histogram.
type Timer interface {
	Start(labels ...Label) func()
}

package collector

import (
	"math"
	"sort"
	"time"
)

const (
	bucketLabel = "le"

	countLE = "count"
	sumLE   = "sum"
	infLE   = "+Inf"
)

// DefBuckets are the default histogram buckets, tailored to request latencies
// in seconds.
var DefBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// HistogramOpts configures a Histogram.
type HistogramOpts struct {
	Opts
	// Buckets are the upper bounds of the buckets. Nil means DefBuckets. The
	// slice is copied and sorted; the implicit +Inf bucket is always added.
	Buckets []float64
}

// Histogram counts observations into cumulative buckets and exposes them as
// <name>_bucket series next to <name>_count and <name>_sum.
type Histogram struct {
	collector

	buckets []float64
	les     []string
	// series maps the label key without "le" to its slots in the store.
	series map[string]*histogramSeries
}

type histogramSeries struct {
	count   int
	sum     int
	inf     int
	buckets []int
}

// NewHistogram validates opts and registers the histogram.
func NewHistogram(opts HistogramOpts) (*Histogram, error) {
	h := &Histogram{series: make(map[string]*histogramSeries)}
	if err := h.init(TypeHistogram, opts.Opts); err != nil {
		return nil, err
	}
	if h.declared(bucketLabel) {
		return nil, ErrReservedLabel
	}

	buckets, err := normalizeBuckets(opts.Buckets)
	if err != nil {
		return nil, err
	}
	h.buckets = buckets
	h.les = make([]string, len(buckets))
	for i, b := range buckets {
		h.les[i] = formatFloat(b)
	}
	h.labelNames = append(h.labelNames, bucketLabel)

	if err := register(h, opts.Registries); err != nil {
		return nil, err
	}
	return h, nil
}

// MustNewHistogram is like NewHistogram but panics on error.
func MustNewHistogram(opts HistogramOpts) *Histogram {
	h, err := NewHistogram(opts)
	if err != nil {
		panic(err)
	}
	return h
}

func normalizeBuckets(in []float64) ([]float64, error) {
	if in == nil {
		in = DefBuckets
	}
	out := make([]float64, len(in))
	copy(out, in)
	sort.Float64s(out)

	for i, b := range out {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			return nil, invalidf(ErrInvalidBuckets, b)
		}
		if i > 0 && out[i-1] == b {
			return nil, invalidf(ErrInvalidBuckets, b)
		}
	}
	return out, nil
}

// Buckets returns a copy of the sorted bucket upper bounds.
func (h *Histogram) Buckets() []float64 {
	out := make([]float64, len(h.buckets))
	copy(out, h.buckets)
	return out
}

// Observe records v for the series identified by labels.
func (h *Histogram) Observe(v float64, labels Labels) error {
	if err := validateFinite(v); err != nil {
		return err
	}
	if _, ok := labels[bucketLabel]; ok {
		return ErrReservedLabel
	}
	key, pairs, err := h.resolve(labels)
	if err != nil {
		return err
	}
	h.observe(v, key, labels, pairs)
	return nil
}

// StartTimer returns a function that observes the seconds elapsed since the
// call to StartTimer.
func (h *Histogram) StartTimer(labels Labels) func() error {
	start := time.Now()
	return func() error {
		return h.Observe(time.Since(start).Seconds(), labels)
	}
}

// With returns a handle bound to one label combination.
func (h *Histogram) With(labels Labels) (*BoundHistogram, error) {
	if _, ok := labels[bucketLabel]; ok {
		return nil, ErrReservedLabel
	}
	key, pairs, err := h.resolve(labels)
	if err != nil {
		return nil, err
	}
	own := make(Labels, len(labels))
	for k, v := range labels {
		own[k] = v
	}
	return &BoundHistogram{h: h, key: key, labels: own, pairs: pairs}, nil
}

// Reset drops every series, including the bucket slot index.
func (h *Histogram) Reset() {
	h.mu.Lock()
	h.values = newValueStore()
	h.series = make(map[string]*histogramSeries)
	h.mu.Unlock()
}

func (h *Histogram) observe(v float64, key string, labels Labels, pairs []LabelPair) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.series[key]
	if !ok {
		s = h.materialize(labels, pairs)
		h.series[key] = s
	}

	h.values.at(s.count).Value++
	h.values.at(s.sum).Value += v
	h.values.at(s.inf).Value++

	for i := len(h.buckets) - 1; i >= 0; i-- {
		if v > h.buckets[i] {
			break
		}
		h.values.at(s.buckets[i]).Value++
	}
}

// materialize creates every entry of a new label combination up front, so
// later observations only touch known slots.
func (h *Histogram) materialize(labels Labels, pairs []LabelPair) *histogramSeries {
	s := &histogramSeries{buckets: make([]int, len(h.buckets))}

	s.count = h.values.getOrCreate(keyWithLE(labels, countLE), h.name+"_count", pairs)
	s.sum = h.values.getOrCreate(keyWithLE(labels, sumLE), h.name+"_sum", pairs)

	bucketName := h.name + "_bucket"
	s.inf = h.values.getOrCreate(keyWithLE(labels, infLE), bucketName, withLE(infLE, pairs))
	for i, le := range h.les {
		s.buckets[i] = h.values.getOrCreate(keyWithLE(labels, le), bucketName, withLE(le, pairs))
	}
	return s
}

func keyWithLE(labels Labels, le string) string {
	all := make(Labels, len(labels)+1)
	for k, v := range labels {
		all[k] = v
	}
	all[bucketLabel] = le
	return labelKey(all)
}

// withLE puts the bucket label in front of pairs.
func withLE(le string, pairs []LabelPair) []LabelPair {
	out := make([]LabelPair, 0, len(pairs)+1)
	out = append(out, LabelPair{Name: bucketLabel, Value: le})
	return append(out, pairs...)
}

// BoundHistogram is a Histogram with its labels already resolved.
type BoundHistogram struct {
	h      *Histogram
	key    string
	labels Labels
	pairs  []LabelPair
}

func (b *BoundHistogram) Observe(v float64) error {
	if err := validateFinite(v); err != nil {
		return err
	}
	b.h.observe(v, b.key, b.labels, b.pairs)
	return nil
}

// LinearBuckets returns count buckets, width apart, the lowest at start.
// It panics if count is less than 1.
func LinearBuckets(start, width float64, count int) []float64 {
	if count < 1 {
		panic("LinearBuckets needs a positive count")
	}
	buckets := make([]float64, count)
	for i := range buckets {
		buckets[i] = start
		start += width
	}
	return buckets
}

// ExponentialBuckets returns count buckets, the lowest at start and each one
// factor times the previous. It panics if count is less than 1, start is not
// positive or factor is not greater than 1.
func ExponentialBuckets(start, factor float64, count int) []float64 {
	if count < 1 {
		panic("ExponentialBuckets needs a positive count")
	}
	if start <= 0 {
		panic("ExponentialBuckets needs a positive start value")
	}
	if factor <= 1 {
		panic("ExponentialBuckets needs a factor greater than 1")
	}
	buckets := make([]float64, count)
	for i := range buckets {
		buckets[i] = start
		start *= factor
	}
	return buckets
}

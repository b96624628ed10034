package collector

import (
	"time"
)

// Gauge is a value per label combination that can go up, down or be set.
type Gauge struct {
	collector

	now func() time.Time
}

// NewGauge validates opts and registers the gauge.
func NewGauge(opts Opts) (*Gauge, error) {
	g := &Gauge{now: time.Now}
	if err := g.init(TypeGauge, opts); err != nil {
		return nil, err
	}
	if err := register(g, opts.Registries); err != nil {
		return nil, err
	}
	return g, nil
}

// MustNewGauge is like NewGauge but panics on error.
func MustNewGauge(opts Opts) *Gauge {
	g, err := NewGauge(opts)
	if err != nil {
		panic(err)
	}
	return g
}

func (g *Gauge) Inc(labels Labels, opts ...Option) error {
	return g.Add(1, labels, opts...)
}

func (g *Gauge) Dec(labels Labels, opts ...Option) error {
	return g.Add(-1, labels, opts...)
}

// Add adds v, which may be negative but must be finite.
func (g *Gauge) Add(v float64, labels Labels, opts ...Option) error {
	return g.write(labels, v, opts, addTo)
}

// Sub subtracts v.
func (g *Gauge) Sub(v float64, labels Labels, opts ...Option) error {
	return g.write(labels, -v, opts, addTo)
}

// Set replaces the current value.
func (g *Gauge) Set(v float64, labels Labels, opts ...Option) error {
	return g.write(labels, v, opts, setTo)
}

// SetToCurrentTime sets the value to the current Unix time in seconds.
func (g *Gauge) SetToCurrentTime(labels Labels, opts ...Option) error {
	return g.Set(unixSeconds(g.now()), labels, opts...)
}

// With returns a handle bound to one label combination.
func (g *Gauge) With(labels Labels) (*BoundGauge, error) {
	key, pairs, err := g.resolve(labels)
	if err != nil {
		return nil, err
	}
	return &BoundGauge{g: g, key: key, pairs: pairs}, nil
}

func (g *Gauge) write(labels Labels, v float64, opts []Option, op func(*Value, float64)) error {
	w, err := gaugeWrite(v, opts)
	if err != nil {
		return err
	}
	key, pairs, err := g.resolve(labels)
	if err != nil {
		return err
	}
	g.update(key, pairs, w, func(val *Value) { op(val, v) })
	return nil
}

// BoundGauge is a Gauge with its labels already resolved.
type BoundGauge struct {
	g     *Gauge
	key   string
	pairs []LabelPair
}

func (b *BoundGauge) Inc(opts ...Option) error { return b.write(1, opts, addTo) }

func (b *BoundGauge) Dec(opts ...Option) error { return b.write(-1, opts, addTo) }

func (b *BoundGauge) Add(v float64, opts ...Option) error { return b.write(v, opts, addTo) }

func (b *BoundGauge) Sub(v float64, opts ...Option) error { return b.write(-v, opts, addTo) }

func (b *BoundGauge) Set(v float64, opts ...Option) error { return b.write(v, opts, setTo) }

func (b *BoundGauge) SetToCurrentTime(opts ...Option) error {
	return b.write(unixSeconds(b.g.now()), opts, setTo)
}

func (b *BoundGauge) write(v float64, opts []Option, op func(*Value, float64)) error {
	w, err := gaugeWrite(v, opts)
	if err != nil {
		return err
	}
	b.g.update(b.key, b.pairs, w, func(val *Value) { op(val, v) })
	return nil
}

func gaugeWrite(v float64, opts []Option) (writeOpts, error) {
	if err := validateFinite(v); err != nil {
		return writeOpts{}, err
	}
	return applyOptions(opts)
}

func addTo(val *Value, v float64) { val.Value += v }

func setTo(val *Value, v float64) { val.Value = v }

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

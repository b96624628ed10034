package collector

// Counter is a monotonically increasing value per label combination.
type Counter struct {
	collector
}

// NewCounter validates opts and registers the counter.
func NewCounter(opts Opts) (*Counter, error) {
	c := &Counter{}
	if err := c.init(TypeCounter, opts); err != nil {
		return nil, err
	}
	if err := register(c, opts.Registries); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewCounter is like NewCounter but panics on error.
func MustNewCounter(opts Opts) *Counter {
	c, err := NewCounter(opts)
	if err != nil {
		panic(err)
	}
	return c
}

// Inc adds 1 to the series identified by labels.
func (c *Counter) Inc(labels Labels, opts ...Option) error {
	return c.Add(1, labels, opts...)
}

// Add adds v, which must be finite and non-negative.
func (c *Counter) Add(v float64, labels Labels, opts ...Option) error {
	w, err := counterWrite(v, opts)
	if err != nil {
		return err
	}
	key, pairs, err := c.resolve(labels)
	if err != nil {
		return err
	}
	c.update(key, pairs, w, func(val *Value) { val.Value += v })
	return nil
}

// With returns a handle bound to one label combination.
func (c *Counter) With(labels Labels) (*BoundCounter, error) {
	key, pairs, err := c.resolve(labels)
	if err != nil {
		return nil, err
	}
	return &BoundCounter{c: c, key: key, pairs: pairs}, nil
}

// BoundCounter is a Counter with its labels already resolved.
type BoundCounter struct {
	c     *Counter
	key   string
	pairs []LabelPair
}

func (b *BoundCounter) Inc(opts ...Option) error {
	return b.Add(1, opts...)
}

func (b *BoundCounter) Add(v float64, opts ...Option) error {
	w, err := counterWrite(v, opts)
	if err != nil {
		return err
	}
	b.c.update(b.key, b.pairs, w, func(val *Value) { val.Value += v })
	return nil
}

func counterWrite(v float64, opts []Option) (writeOpts, error) {
	if err := validateFinite(v); err != nil {
		return writeOpts{}, err
	}
	if v < 0 {
		return writeOpts{}, ErrNegative
	}
	return applyOptions(opts)
}

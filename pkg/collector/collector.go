package collector

import (
	"sync"
)

// Type is the exposition type of a collector.
type Type string

const (
	TypeCounter   Type = "counter"
	TypeGauge     Type = "gauge"
	TypeHistogram Type = "histogram"
)

// Opts are the options shared by every collector.
type Opts struct {
	// Name must match ^[a-zA-Z_:][a-zA-Z0-9_:]*$.
	Name string
	// Help is required.
	Help string
	// Labels declares the label names the collector accepts.
	Labels []string
	// Registries the collector registers with on construction. A nil slice
	// means the process-wide Default registry; a non-nil empty slice means
	// none at all.
	Registries []*Registry
}

// Snapshot is what a collector exposes to a registry on every scrape.
type Snapshot struct {
	Type   Type
	Name   string
	Help   string
	Values []Value
}

// Collector is implemented by Counter, Gauge and Histogram.
type Collector interface {
	Name() string
	Help() string
	Type() Type
	// Collect returns the current values in store order.
	Collect() Snapshot
	// Reset drops every value. Registrations are kept.
	Reset()
	// Registries returns the registries the collector is registered with.
	Registries() []*Registry

	base() *collector
}

type collector struct {
	name       string
	help       string
	typ        Type
	labelNames []string

	mu         sync.Mutex
	values     *valueStore
	registries []*Registry
}

// init validates the identity in opts and prepares an empty store.
func (c *collector) init(typ Type, opts Opts) error {
	if !metricNameRE.MatchString(opts.Name) {
		return invalidf(ErrInvalidMetricName, opts.Name)
	}
	if opts.Help == "" {
		return ErrMissingHelp
	}
	if err := validateLabelNames(opts.Labels); err != nil {
		return err
	}

	c.name = opts.Name
	c.help = opts.Help
	c.typ = typ
	c.labelNames = make([]string, len(opts.Labels))
	copy(c.labelNames, opts.Labels)
	c.values = newValueStore()
	return nil
}

// register adds c to registries, or to the Default registry when registries
// is nil. On failure every registration made so far is rolled back.
func register(c Collector, registries []*Registry) error {
	if registries == nil {
		registries = []*Registry{Default()}
	}
	for i, r := range registries {
		if err := r.Register(c); err != nil {
			for _, done := range registries[:i] {
				done.Unregister(c)
			}
			return err
		}
	}
	return nil
}

func (c *collector) base() *collector { return c }

func (c *collector) Name() string { return c.name }

func (c *collector) Help() string { return c.help }

func (c *collector) Type() Type { return c.typ }

// LabelNames returns a copy of the declared label names.
func (c *collector) LabelNames() []string {
	out := make([]string, len(c.labelNames))
	copy(out, c.labelNames)
	return out
}

func (c *collector) Registries() []*Registry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*Registry, len(c.registries))
	copy(out, c.registries)
	return out
}

func (c *collector) Collect() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		Type:   c.typ,
		Name:   c.name,
		Help:   c.help,
		Values: c.values.snapshot(),
	}
}

func (c *collector) Reset() {
	c.mu.Lock()
	c.values = newValueStore()
	c.mu.Unlock()
}

// Get returns the value stored for labels without creating it.
func (c *collector) Get(labels Labels) (Value, bool) {
	key, _, err := c.resolve(labels)
	if err != nil {
		return Value{}, false
	}
	return c.Lookup(key)
}

// Lookup returns the value stored under a canonical label key, for example
// "code:200$method:get$".
func (c *collector) Lookup(key string) (Value, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.values.slot(key)
	if !ok {
		return Value{}, false
	}
	return *c.values.at(i), true
}

// update applies fn to the value under key, creating it first if needed.
// Callers validate their input before calling update.
func (c *collector) update(key string, pairs []LabelPair, w writeOpts, fn func(v *Value)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := c.values.at(c.values.getOrCreate(key, "", pairs))
	fn(v)
	if w.hasTimestamp {
		v.Timestamp = w.timestamp
		v.HasTimestamp = true
	}
}

func (c *collector) addRegistry(r *Registry) {
	c.mu.Lock()
	c.registries = append(c.registries, r)
	c.mu.Unlock()
}

// removeRegistry drops r from the back-references and reports whether it was
// present.
func (c *collector) removeRegistry(r *Registry) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, have := range c.registries {
		if have == r {
			c.registries = append(c.registries[:i], c.registries[i+1:]...)
			return true
		}
	}
	return false
}

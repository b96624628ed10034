package collector

import (
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Registry is a namespace of uniquely named collectors that renders them in
// the text exposition format.
type Registry struct {
	log *zap.Logger

	mu         sync.RWMutex
	byName     map[string]Collector
	collectors []Collector
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger used for registration events.
func WithLogger(l *zap.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		log:    zap.NewNop(),
		byName: make(map[string]Collector),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultRegistry = sync.OnceValue(func() *Registry { return NewRegistry() })

// Default returns the process-wide registry. It is created on first use and
// lives for the rest of the process. Collectors built with nil Registries
// register here.
func Default() *Registry {
	return defaultRegistry()
}

// Register adds c. It fails without changing anything if a collector with
// the same name is already registered.
func (r *Registry) Register(c Collector) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, ok := r.byName[name]; ok {
		r.log.Warn("rejected duplicate collector", zap.String("name", name))
		return &AlreadyRegisteredError{Name: name}
	}

	r.byName[name] = c
	r.collectors = append(r.collectors, c)
	c.base().addRegistry(r)

	r.log.Debug("registered collector", zap.String("name", name), zap.String("type", string(c.Type())))
	return nil
}

// Unregister removes c. Removing a collector that is not registered here is a
// no-op.
func (r *Registry) Unregister(c Collector) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !c.base().removeRegistry(r) {
		return
	}

	name := c.Name()
	delete(r.byName, name)
	for i, have := range r.collectors {
		if have == c {
			r.collectors = append(r.collectors[:i], r.collectors[i+1:]...)
			break
		}
	}

	r.log.Debug("unregistered collector", zap.String("name", name))
}

// Lookup returns the collector registered under name.
func (r *Registry) Lookup(name string) (Collector, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byName[name]
	return c, ok
}

// Len returns the number of registered collectors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.collectors)
}

// Gather collects every registered collector in registration order.
func (r *Registry) Gather() []Snapshot {
	r.mu.RLock()
	collectors := make([]Collector, len(r.collectors))
	copy(collectors, r.collectors)
	r.mu.RUnlock()

	out := make([]Snapshot, 0, len(collectors))
	for _, c := range collectors {
		out = append(out, c.Collect())
	}
	return out
}

// Report renders every registered collector in the text exposition format.
func (r *Registry) Report() string {
	var b strings.Builder
	for _, s := range r.Gather() {
		writeSnapshot(&b, s)
	}
	return b.String()
}

// WriteTo writes Report to w.
func (r *Registry) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, r.Report())
	return int64(n), err
}

package collector

// Value is one series of a collector: a label combination and its sample.
type Value struct {
	// Name overrides the collector name for this series when non-empty.
	Name   string
	Labels []LabelPair
	Value  float64

	Timestamp    int64
	HasTimestamp bool
}

// valueStore keeps values in insertion order. Entries live in a slice and are
// addressed by slot; slots stay valid until the store is replaced.
type valueStore struct {
	index   map[string]int
	entries []Value
}

func newValueStore() *valueStore {
	return &valueStore{index: make(map[string]int)}
}

func (s *valueStore) slot(key string) (int, bool) {
	i, ok := s.index[key]
	return i, ok
}

// getOrCreate returns the slot for key, appending a zero entry on first use.
func (s *valueStore) getOrCreate(key, name string, labels []LabelPair) int {
	if i, ok := s.index[key]; ok {
		return i
	}
	s.entries = append(s.entries, Value{Name: name, Labels: labels})
	i := len(s.entries) - 1
	s.index[key] = i
	return i
}

func (s *valueStore) at(i int) *Value {
	return &s.entries[i]
}

func (s *valueStore) len() int {
	return len(s.entries)
}

func (s *valueStore) snapshot() []Value {
	out := make([]Value, len(s.entries))
	copy(out, s.entries)
	return out
}

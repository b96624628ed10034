package collector

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCounter(t *testing.T, labels ...string) *Counter {
	t.Helper()
	c, err := NewCounter(Opts{
		Name:       "http_requests_total",
		Help:       "The total number of HTTP requests.",
		Labels:     labels,
		Registries: []*Registry{},
	})
	require.NoError(t, err)
	return c
}

func mustLookup(t *testing.T, c interface {
	Lookup(string) (Value, bool)
}, key string) Value {
	t.Helper()
	v, ok := c.Lookup(key)
	require.True(t, ok, "no value under %q", key)
	return v
}

func TestCounter(t *testing.T) {
	t.Run("collect describes the counter", func(t *testing.T) {
		c := newTestCounter(t, "method", "code")
		s := c.Collect()

		assert.Equal(t, TypeCounter, s.Type)
		assert.Equal(t, "http_requests_total", s.Name)
		assert.Equal(t, "The total number of HTTP requests.", s.Help)
		assert.Empty(t, s.Values)
	})

	t.Run("increments and accumulates", func(t *testing.T) {
		c := newTestCounter(t, "method", "code")

		require.NoError(t, c.Inc(nil))
		assert.Equal(t, 1.0, mustLookup(t, c, "").Value)

		require.NoError(t, c.Add(2, Labels{"method": "get"}))
		assert.Equal(t, 2.0, mustLookup(t, c, "method:get$").Value)

		require.NoError(t, c.Add(3, Labels{"method": "get"}))
		v := mustLookup(t, c, "method:get$")
		assert.Equal(t, 5.0, v.Value)
		assert.False(t, v.HasTimestamp)

		require.NoError(t, c.Inc(Labels{"method": "get"}, WithTimestamp(1000)))
		v = mustLookup(t, c, "method:get$")
		assert.Equal(t, 6.0, v.Value)
		assert.True(t, v.HasTimestamp)
		assert.Equal(t, int64(1000), v.Timestamp)
	})

	t.Run("timestamp persists until overwritten", func(t *testing.T) {
		c := newTestCounter(t)

		require.NoError(t, c.Inc(nil, WithTimestamp(10)))
		require.NoError(t, c.Inc(nil))
		assert.Equal(t, int64(10), mustLookup(t, c, "").Timestamp)

		require.NoError(t, c.Inc(nil, WithTimestamp(20)))
		assert.Equal(t, int64(20), mustLookup(t, c, "").Timestamp)
	})

	t.Run("accumulation is associative", func(t *testing.T) {
		split := newTestCounter(t)
		whole := newTestCounter(t)

		require.NoError(t, split.Add(1.25, nil))
		require.NoError(t, split.Add(2.5, nil))
		require.NoError(t, whole.Add(3.75, nil))

		assert.Equal(t, mustLookup(t, whole, "").Value, mustLookup(t, split, "").Value)
	})

	t.Run("rejects invalid amounts without writing", func(t *testing.T) {
		c := newTestCounter(t)
		require.NoError(t, c.Add(2, nil))

		assert.ErrorIs(t, c.Add(math.Inf(1), nil), ErrNotFinite)
		assert.ErrorIs(t, c.Add(math.NaN(), nil), ErrNotFinite)
		assert.ErrorIs(t, c.Add(-1, nil), ErrNegative)
		assert.EqualError(t, c.Add(-1, nil), "v must not be a negative number")

		err := c.Inc(Labels{"foo": "bar"})
		assert.ErrorIs(t, err, ErrUnknownLabel)
		assert.EqualError(t, err, "unknown label foo")

		assert.Equal(t, 2.0, mustLookup(t, c, "").Value)
		assert.Len(t, c.Collect().Values, 1)
	})

	t.Run("rejects invalid timestamps without writing", func(t *testing.T) {
		c := newTestCounter(t, "method")

		assert.ErrorIs(t, c.Inc(Labels{"method": "get"}, WithTimestamp(-1)), ErrInvalidTimestamp)
		assert.ErrorIs(t, c.Inc(Labels{"method": "get"}, WithTimestamp(MaxTimestamp+1)), ErrInvalidTimestamp)
		require.NoError(t, c.Inc(Labels{"method": "get"}, WithTimestamp(MaxTimestamp)))

		assert.Len(t, c.Collect().Values, 1)
		assert.Equal(t, 1.0, mustLookup(t, c, "method:get$").Value)
	})

	t.Run("bound counter writes to the same series", func(t *testing.T) {
		c := newTestCounter(t, "method", "code")

		require.NoError(t, c.Add(5, Labels{"method": "get"}))
		b, err := c.With(Labels{"method": "get"})
		require.NoError(t, err)
		require.NoError(t, b.Add(3))
		assert.Equal(t, 8.0, mustLookup(t, c, "method:get$").Value)

		require.NoError(t, b.Inc(WithTimestamp(42)))
		v := mustLookup(t, c, "method:get$")
		assert.Equal(t, 9.0, v.Value)
		assert.Equal(t, int64(42), v.Timestamp)

		assert.ErrorIs(t, b.Add(-2), ErrNegative)
		assert.Equal(t, 9.0, mustLookup(t, c, "method:get$").Value)
	})

	t.Run("bound counter rejects unknown labels", func(t *testing.T) {
		c := newTestCounter(t, "method")

		_, err := c.With(Labels{"path": "/"})
		assert.ErrorIs(t, err, ErrUnknownLabel)
	})

	t.Run("bound counter survives reset", func(t *testing.T) {
		c := newTestCounter(t, "method")
		b, err := c.With(Labels{"method": "get"})
		require.NoError(t, err)
		require.NoError(t, b.Add(4))

		c.Reset()
		assert.Empty(t, c.Collect().Values)

		require.NoError(t, b.Inc())
		assert.Equal(t, 1.0, mustLookup(t, c, "method:get$").Value)
	})

	t.Run("reset empties the store and keeps registrations", func(t *testing.T) {
		reg := NewRegistry()
		c, err := NewCounter(Opts{Name: "foo", Help: "foo", Labels: []string{"a"}, Registries: []*Registry{reg}})
		require.NoError(t, err)
		require.NoError(t, c.Inc(nil))
		require.NoError(t, c.Inc(Labels{"a": "b"}))

		c.Reset()
		c.Reset()

		assert.Empty(t, c.Collect().Values)
		assert.Equal(t, []*Registry{reg}, c.Registries())
	})
}

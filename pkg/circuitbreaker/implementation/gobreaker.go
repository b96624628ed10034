package implementation

import (
	"github.com/jt828/promdress/pkg/circuitbreaker"
	"github.com/jt828/promdress/pkg/observability"
	"github.com/sony/gobreaker/v2"
)

type gobreakerCircuitBreaker struct {
	cb *gobreaker.CircuitBreaker[any]
}

func NewCircuitBreaker(settings gobreaker.Settings) circuitbreaker.CircuitBreaker {
	return &gobreakerCircuitBreaker{
		cb: gobreaker.NewCircuitBreaker[any](settings),
	}
}

// NewInstrumentedCircuitBreaker publishes the breaker state as
// circuit_breaker_state{name} (0 closed, 1 half-open, 2 open) and counts
// transitions in circuit_breaker_transitions_total{name,from,to}. A
// caller supplied OnStateChange still runs.
func NewInstrumentedCircuitBreaker(settings gobreaker.Settings, meter observability.Meter) circuitbreaker.CircuitBreaker {
	state := meter.Gauge("circuit_breaker_state", observability.MetricOpt{
		Help:      "Current circuit breaker state: 0 closed, 1 half-open, 2 open.",
		LabelKeys: []string{"name"},
	})
	transitions := meter.Counter("circuit_breaker_transitions_total", observability.MetricOpt{
		Help:      "Circuit breaker state transitions.",
		LabelKeys: []string{"name", "from", "to"},
	})

	next := settings.OnStateChange
	settings.OnStateChange = func(name string, from, to gobreaker.State) {
		state.Set(float64(toState(to)), observability.Labels("name", name)...)
		transitions.Inc(1, observability.Labels("name", name, "from", toState(from).String(), "to", toState(to).String())...)
		if next != nil {
			next(name, from, to)
		}
	}

	cb := NewCircuitBreaker(settings)
	state.Set(float64(circuitbreaker.Closed), observability.Labels("name", settings.Name)...)
	return cb
}

func (g *gobreakerCircuitBreaker) Execute(fn func() (any, error)) (any, error) {
	return g.cb.Execute(fn)
}

func (g *gobreakerCircuitBreaker) State() circuitbreaker.State {
	return toState(g.cb.State())
}

func toState(s gobreaker.State) circuitbreaker.State {
	switch s {
	case gobreaker.StateHalfOpen:
		return circuitbreaker.HalfOpen
	case gobreaker.StateOpen:
		return circuitbreaker.Open
	default:
		return circuitbreaker.Closed
	}
}

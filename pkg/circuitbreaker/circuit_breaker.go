package circuitbreaker

type State int

const (
	Closed State = iota
	HalfOpen
	Open
)

func (s State) String() string {
	switch s {
	case HalfOpen:
		return "half-open"
	case Open:
		return "open"
	default:
		return "closed"
	}
}

type CircuitBreaker interface {
	Execute(fn func() (any, error)) (any, error)
	State() State
}

package collector

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidMetricName = errors.New("invalid metric name")
	ErrMissingHelp       = errors.New("help must not be empty")
	ErrInvalidLabelName  = errors.New("invalid label name")
	ErrDuplicateLabel    = errors.New("duplicate label name")
	ErrReservedLabel     = errors.New(`"le" is not allowed as a histogram label`)
	ErrInvalidBuckets    = errors.New("invalid buckets")

	ErrUnknownLabel      = errors.New("unknown label")
	ErrInvalidLabelValue = errors.New(`label values must not contain "$"`)
	ErrNotFinite         = errors.New("v must be a finite number")
	ErrNegative          = errors.New("v must not be a negative number")
	ErrInvalidTimestamp  = errors.New("invalid timestamp")

	ErrAlreadyRegistered = errors.New("already registered")
)

// UnknownLabelError is returned when a mutation names a label the collector
// was not declared with.
type UnknownLabelError struct {
	Label string
}

func (e *UnknownLabelError) Error() string {
	return "unknown label " + e.Label
}

func (e *UnknownLabelError) Is(target error) bool {
	return target == ErrUnknownLabel
}

// AlreadyRegisteredError is returned by Register when the registry already
// holds a collector with the same name.
type AlreadyRegisteredError struct {
	Name string
}

func (e *AlreadyRegisteredError) Error() string {
	return e.Name + " is already registered"
}

func (e *AlreadyRegisteredError) Is(target error) bool {
	return target == ErrAlreadyRegistered
}

func invalidf(sentinel error, value any) error {
	return fmt.Errorf("%w: %q", sentinel, fmt.Sprint(value))
}

package collector

import (
	"math"
)

// MaxTimestamp is the largest accepted sample timestamp in milliseconds since
// the Unix epoch (8.64e15, about the year 275760).
const MaxTimestamp int64 = 8_640_000_000_000_000

// Option tunes a single Counter or Gauge write.
type Option func(*writeOpts)

type writeOpts struct {
	timestamp    int64
	hasTimestamp bool
}

// WithTimestamp attaches an explicit sample timestamp in milliseconds. It
// replaces the timestamp stored for the series; writes without it keep the
// previous one.
func WithTimestamp(ms int64) Option {
	return func(o *writeOpts) {
		o.timestamp = ms
		o.hasTimestamp = true
	}
}

func applyOptions(opts []Option) (writeOpts, error) {
	var o writeOpts
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.hasTimestamp {
		if err := validateTimestamp(o.timestamp); err != nil {
			return writeOpts{}, err
		}
	}
	return o, nil
}

func validateTimestamp(ms int64) error {
	if ms < 0 || ms > MaxTimestamp {
		return invalidf(ErrInvalidTimestamp, ms)
	}
	return nil
}

func validateFinite(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ErrNotFinite
	}
	return nil
}

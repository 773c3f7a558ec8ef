// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral selector factory.

package reactor

import (
	"time"

	"github.com/momentics/nioclient/api"
)

// DefaultMaxEvents bounds the number of readiness records returned by one Wait.
const DefaultMaxEvents = 64

// Option customizes selector construction.
type Option func(*options)

type options struct {
	maxEvents int
}

// WithMaxEvents sets the capacity of the per-Wait event array.
func WithMaxEvents(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxEvents = n
		}
	}
}

// NewSelector constructs the platform selector.
func NewSelector(opts ...Option) (api.Selector, error) {
	o := options{maxEvents: DefaultMaxEvents}
	for _, opt := range opts {
		opt(&o)
	}
	return newSelector(o)
}

// timeoutMillis converts a wait timeout to the poll(2) convention, rounding up
// so that a sub-millisecond timeout does not turn into a busy poll.
func timeoutMillis(d time.Duration) int {
	if d < 0 {
		return -1
	}
	ms := d / time.Millisecond
	if d%time.Millisecond != 0 {
		ms++
	}
	return int(ms)
}

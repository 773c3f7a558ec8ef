// File: api/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Defines the abstract interface for the readiness multiplexer
// used to drive a non-blocking socket through connect, read and write.

package api

import (
	"strings"
	"time"
)

// Interest is a bitset of readiness conditions a descriptor is registered for.
type Interest uint8

const (
	InterestConnect Interest = 1 << iota
	InterestRead
	InterestWrite
)

// Has reports whether every bit of other is set in i.
func (i Interest) Has(other Interest) bool {
	return other != 0 && i&other == other
}

func (i Interest) String() string {
	if i == 0 {
		return "none"
	}
	var parts []string
	if i&InterestConnect != 0 {
		parts = append(parts, "connect")
	}
	if i&InterestRead != 0 {
		parts = append(parts, "read")
	}
	if i&InterestWrite != 0 {
		parts = append(parts, "write")
	}
	return strings.Join(parts, "|")
}

// Ready is one readiness notification produced by Selector.Wait.
// Ready holds the subset of the registered interest that fired.
// Error is set when the kernel reported an error or hangup condition.
type Ready struct {
	Fd       int
	Interest Interest
	Ready    Interest
	Error    bool
	Hangup   bool
}

// Selector registers descriptors with interest flags and waits for readiness.
// Register/Modify/Unregister must be called from the goroutine that calls Wait;
// Wake is the only method safe to call concurrently.
type Selector interface {
	Register(fd int, interest Interest) error
	Modify(fd int, interest Interest) error
	Unregister(fd int) error
	// Interest returns the current registration of fd.
	Interest(fd int) (Interest, bool)
	// Wait blocks up to timeout (negative blocks indefinitely) and returns ready registrations.
	// The returned slice is reused by the next call.
	Wait(timeout time.Duration) ([]Ready, error)
	Wake() error
	Close() error
}

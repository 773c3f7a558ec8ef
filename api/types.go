// File: api/types.go
// Author: momentics <momentics@gmail.com>
//
// Shared API-level type declarations and constants.

package api

// ConnState enumerates the lifecycle state of a client connection.
// Closed is terminal.
type ConnState int32

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

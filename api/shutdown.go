// File: api/shutdown.go
// Package api defines unified graceful shutdown contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// GracefulShutdown is implemented by components that own OS resources.
type GracefulShutdown interface {
	// Shutdown stops internal goroutines and releases descriptors.
	Shutdown() error
}

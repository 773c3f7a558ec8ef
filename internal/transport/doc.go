// File: internal/transport/doc.go
// Package transport
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Non-blocking TCP socket primitives for the readiness-driven client.
// A Socket is created non-blocking, connected asynchronously and finished
// with FinishConnect once the selector reports it writable. Read and Write
// never block: iox.ErrWouldBlock signals that the caller must wait for
// readiness. Platform code is separated by build tags.

package transport

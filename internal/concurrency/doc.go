// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Concurrency primitives for handing work from caller goroutines to the
// single event loop goroutine that owns the socket and the selector.
package concurrency

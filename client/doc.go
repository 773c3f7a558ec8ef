// Package client provides a single-connection, non-blocking TCP client driven
// by a readiness selector on one dedicated goroutine locked to its OS thread.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// A Client owns at most one connection. Start tears down the previous
// connection before opening a new socket, spawns the event loop and returns
// without waiting for the TCP handshake. The loop performs every socket
// operation: connect completion, reads and writes. Send never touches the
// socket; it enqueues a write request, wakes the loop and waits for the
// bytes to be accepted by the kernel. Short writes keep WRITE interest
// registered until the outbound buffer drains.
package client

// File: client/connection.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package client

import (
	"errors"
	"strconv"
	"sync/atomic"

	"github.com/eapache/queue"
	"github.com/google/uuid"
	"github.com/momentics/nioclient/api"
	"github.com/momentics/nioclient/internal/transport"
	"github.com/momentics/nioclient/pool"
)

// writeRequest carries one Send call to the event loop. done receives exactly one value.
type writeRequest struct {
	data string
	done chan error
}

func newWriteRequest(data string) *writeRequest {
	return &writeRequest{data: data, done: make(chan error, 1)}
}

func (r *writeRequest) complete(err error) {
	r.done <- err
}

// outbound is a flipped buffer waiting to drain into the socket.
type outbound struct {
	buf *pool.ByteBuffer
	req *writeRequest
}

// connection is the socket endpoint plus its lifecycle state. Everything except
// id, remote and State is owned by the event loop goroutine.
type connection struct {
	id    string
	host  string
	port  int
	sock  transport.Socket
	sel   api.Selector
	state atomic.Int32

	pending  *queue.Queue // of *outbound
	buffers  pool.BufferSource
	closeErr error
}

func newConnection(host string, port int, sock transport.Socket, sel api.Selector, buffers pool.BufferSource) *connection {
	c := &connection{
		id:      uuid.NewString(),
		host:    host,
		port:    port,
		sock:    sock,
		sel:     sel,
		pending: queue.New(),
		buffers: buffers,
	}
	c.state.Store(int32(api.StateDisconnected))
	return c
}

// remote returns host:port of the peer.
func (c *connection) remote() string {
	return c.host + ":" + strconv.Itoa(c.port)
}

// State is safe to call from any goroutine.
func (c *connection) State() api.ConnState {
	return api.ConnState(c.state.Load())
}

func (c *connection) setState(s api.ConnState) {
	c.state.Store(int32(s))
}

// pendingWrites returns the number of outbound buffers not yet fully written.
func (c *connection) pendingWrites() int {
	return c.pending.Length()
}

// desiredInterest derives the registration from the lifecycle state and the outbound queue.
func (c *connection) desiredInterest() api.Interest {
	switch c.State() {
	case api.StateConnecting:
		return api.InterestConnect
	case api.StateConnected:
		i := api.InterestRead
		if c.pending.Length() > 0 {
			i |= api.InterestWrite
		}
		return i
	default:
		return 0
	}
}

// syncInterest registers the connection for exactly the interests its state requires.
func (c *connection) syncInterest() error {
	want := c.desiredInterest()
	if _, ok := c.sel.Interest(c.sock.Fd()); ok {
		return c.sel.Modify(c.sock.Fd(), want)
	}
	return c.sel.Register(c.sock.Fd(), want)
}

// enqueue copies data into a buffer sized to the message and queues it for draining.
func (c *connection) enqueue(req *writeRequest) error {
	buf := c.buffers.Get(len(req.data))
	if err := buf.PutString(req.data); err != nil {
		c.buffers.Put(buf)
		return err
	}
	buf.Flip()
	c.pending.Add(&outbound{buf: buf, req: req})
	return nil
}

// close unregisters and closes the socket once, failing queued writes with cause.
// It reports whether this call performed the transition to Closed.
func (c *connection) close(cause error) (bool, error) {
	if c.State() == api.StateClosed {
		return false, nil
	}
	c.setState(api.StateClosed)
	if cause == nil {
		cause = api.ErrClosed
	}
	c.closeErr = cause

	var errs []error
	if err := c.sel.Unregister(c.sock.Fd()); err != nil &&
		!errors.Is(err, api.ErrNotRegistered) && !errors.Is(err, api.ErrSelectorClosed) {
		errs = append(errs, err)
	}
	if err := c.sock.Close(); err != nil {
		errs = append(errs, err)
	}
	for c.pending.Length() > 0 {
		ob := c.pending.Remove().(*outbound)
		ob.req.complete(cause)
		c.buffers.Put(ob.buf)
	}
	return true, errors.Join(errs...)
}

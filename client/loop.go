// File: client/loop.go
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// eventLoop owns the selector and the connection. It runs on one goroutine
// locked to its OS thread, alternating between draining write requests and
// waiting for readiness.

package client

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"

	"github.com/momentics/nioclient/affinity"
	"github.com/momentics/nioclient/api"
	"github.com/momentics/nioclient/control"
	"github.com/momentics/nioclient/internal/concurrency"
	"github.com/rs/zerolog"
)

type eventLoop struct {
	cfg      *Config
	sel      api.Selector
	conn     *connection
	io       *ioHandler
	requests *concurrency.TaskQueue[*writeRequest]
	metrics  *control.MetricsRegistry
	log      zerolog.Logger

	running atomic.Bool
	doneCh  chan struct{} // closed after run exits
	err     error         // terminal error, readable after doneCh is closed
	batch   []*writeRequest
}

func newEventLoop(cfg *Config, sel api.Selector, conn *connection, metrics *control.MetricsRegistry) *eventLoop {
	logger := cfg.logger().With().Str("conn_id", conn.id).Logger()
	l := &eventLoop{
		cfg:      cfg,
		sel:      sel,
		conn:     conn,
		requests: concurrency.NewTaskQueue[*writeRequest](),
		metrics:  metrics,
		log:      logger,
		doneCh:   make(chan struct{}),
	}
	l.io = &ioHandler{
		conn:     conn,
		handler:  cfg.Handler,
		readSize: cfg.ReadBufferSize,
		metrics:  metrics,
		log:      logger,
	}
	l.running.Store(true)
	return l
}

// run is the loop body. It returns when stop is requested, the connect
// attempt fails, or the selector wait fails.
func (l *eventLoop) run() {
	runtime.LockOSThread()
	if !l.pin() {
		defer runtime.UnlockOSThread()
	}
	defer l.shutdown()

	if err := l.io.connect(); err != nil {
		l.terminate(err)
		return
	}
	for l.running.Load() {
		l.drainRequests()
		ready, err := l.sel.Wait(l.cfg.PollTimeout)
		if err != nil {
			l.terminate(api.WrapError(api.ErrCodePoll, "selector wait", err))
			return
		}
		for _, r := range ready {
			if err := l.io.dispatch(r); err != nil {
				l.handleError(err)
				if api.CodeOf(err) == api.ErrCodeConnect {
					return
				}
			}
		}
	}
}

// pin applies the configured CPU affinity to the locked thread. A pinned
// thread stays locked and exits together with the loop goroutine.
func (l *eventLoop) pin() bool {
	if !l.cfg.PinLoop {
		return false
	}
	if err := affinity.SetAffinity(l.cfg.LoopCPU); err != nil {
		l.log.Warn().Err(err).Int("cpu", l.cfg.LoopCPU).Msg("cpu affinity not applied")
		return false
	}
	l.log.Debug().Int("cpu", l.cfg.LoopCPU).Msg("event loop pinned")
	return true
}

// handleError scopes a dispatch failure to the connection: it is closed and the loop goes on.
func (l *eventLoop) handleError(err error) {
	l.metrics.Counter(control.HandlerErrors).Inc()
	if api.CodeOf(err) == api.ErrCodeConnect {
		l.terminate(err)
		return
	}
	l.log.Warn().Err(err).Msg("connection error")
	l.io.closeConn(err)
	l.cfg.Handler.OnError(l.conn.id, err)
}

// terminate records a terminal error, closes the connection and stops the loop.
func (l *eventLoop) terminate(err error) {
	l.log.Error().Err(err).Msg("event loop terminated")
	l.err = err
	l.running.Store(false)
	l.io.closeConn(err)
	l.cfg.Handler.OnError(l.conn.id, err)
}

// drainRequests moves queued Send calls into the connection and attempts to write them.
func (l *eventLoop) drainRequests() {
	l.batch = l.requests.Drain(l.batch[:0], 0)
	if len(l.batch) == 0 {
		return
	}
	queued := false
	for i, req := range l.batch {
		l.batch[i] = nil
		switch l.conn.State() {
		case api.StateConnected:
		case api.StateClosed:
			req.complete(api.ErrClosed)
			continue
		default:
			req.complete(api.ErrNotConnected)
			continue
		}
		if err := l.conn.enqueue(req); err != nil {
			req.complete(api.WrapError(api.ErrCodeWrite, "encode message", err))
			continue
		}
		queued = true
	}
	if !queued {
		return
	}
	if err := l.io.flush(); err != nil {
		l.handleError(err)
	}
}

// shutdown runs on loop exit: close the connection, fail stragglers, release the selector.
func (l *eventLoop) shutdown() {
	l.running.Store(false)
	l.io.closeConn(api.ErrClosed)
	for _, req := range l.requests.Close() {
		req.complete(api.ErrClosed)
	}
	if err := l.sel.Close(); err != nil {
		l.log.Warn().Err(err).Msg("selector close")
	}
	l.log.Debug().Msg("event loop stopped")
	close(l.doneCh)
}

// send hands msg to the loop and waits until the kernel accepted all of it.
func (l *eventLoop) send(ctx context.Context, msg string) error {
	switch l.conn.State() {
	case api.StateConnected:
	case api.StateClosed:
		return api.ErrClosed
	default:
		return api.ErrNotConnected
	}
	req := newWriteRequest(msg)
	if !l.requests.Push(req) {
		return api.ErrClosed
	}
	if err := l.sel.Wake(); err != nil && !errors.Is(err, api.ErrSelectorClosed) {
		l.log.Warn().Err(err).Msg("selector wake")
	}
	select {
	case err := <-req.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// stop clears the run flag, wakes the selector and waits for run to return.
func (l *eventLoop) stop() error {
	l.running.Store(false)
	if err := l.sel.Wake(); err != nil && !errors.Is(err, api.ErrSelectorClosed) {
		l.log.Warn().Err(err).Msg("selector wake")
	}
	<-l.doneCh
	return l.err
}

func (l *eventLoop) done() <-chan struct{} {
	return l.doneCh
}

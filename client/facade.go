// File: client/facade.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Client is the owned handle exposing start/stop/send. It keeps at most one
// connection and serializes teardown of the previous connection with the
// creation of the next one.

package client

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/momentics/nioclient/api"
	"github.com/momentics/nioclient/control"
	"github.com/momentics/nioclient/internal/transport"
	"github.com/momentics/nioclient/pool"
	"github.com/momentics/nioclient/reactor"
	"github.com/rs/zerolog"
)

// socketOpener creates the unconnected socket for a connection.
type socketOpener func(ctx context.Context, host string, port int, opts transport.Options) (transport.Socket, error)

// Client is a single-connection non-blocking TCP client.
type Client struct {
	cfg     *Config
	log     zerolog.Logger
	metrics *control.MetricsRegistry
	buffers pool.BufferSource
	open    socketOpener
	newSel  func() (api.Selector, error)

	startMu sync.Mutex                // serializes Start
	loop    atomic.Pointer[eventLoop] // current or most recent loop
}

// Ensure compliance with api.GracefulShutdown.
var _ api.GracefulShutdown = (*Client)(nil)

// New constructs an idle client. A nil cfg uses DefaultConfig.
func New(cfg *Config) *Client {
	cfg = cfg.withDefaults()
	c := &Client{
		cfg:     cfg,
		log:     cfg.logger(),
		metrics: control.NewMetricsRegistry(),
		buffers: pool.HeapSource{},
		open:    transport.Open,
	}
	c.newSel = func() (api.Selector, error) {
		return reactor.NewSelector(reactor.WithMaxEvents(cfg.MaxEvents))
	}
	if cfg.PooledBuffers {
		c.buffers = pool.NewSizeClassPool()
	}
	if cfg.Handler == nil {
		cfg.Handler = logHandler{log: c.log}
	}
	c.metrics.RegisterProbe("state", func() any { return c.State().String() })
	c.metrics.RegisterProbe("queued_requests", func() any {
		if loop := c.loop.Load(); loop != nil {
			return loop.requests.Len()
		}
		return 0
	})
	return c
}

// StartDefault connects to the configured default host and port.
func (c *Client) StartDefault() error {
	return c.Start(c.cfg.Host, c.cfg.Port)
}

// Start stops any existing connection, then creates a new socket and selector
// and spawns the event loop. It returns before the TCP handshake completes.
// Readers such as State and Send never wait on Start, so handler callbacks
// fired while the previous loop shuts down may call back into the Client.
func (c *Client) Start(host string, port int) error {
	if err := c.cfg.Validate(); err != nil {
		return api.WrapError(api.ErrCodeSetup, "invalid config", err)
	}

	c.startMu.Lock()
	defer c.startMu.Unlock()

	if prev := c.loop.Load(); prev != nil {
		if err := prev.stop(); err != nil {
			c.log.Debug().Err(err).Msg("previous connection ended with error")
		}
	}

	sel, err := c.newSel()
	if err != nil {
		return api.WrapError(api.ErrCodeSetup, "create selector", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.ResolveTimeout)
	defer cancel()
	sock, err := c.open(ctx, host, port, transport.Options{
		NoDelay:        c.cfg.NoDelay,
		SendBufferSize: c.cfg.SendBufferSize,
		RecvBufferSize: c.cfg.RecvBufferSize,
	})
	if err != nil {
		_ = sel.Close()
		return api.WrapError(api.ErrCodeSetup, "open socket", err).
			WithContext("host", host).WithContext("port", port)
	}

	conn := newConnection(host, port, sock, sel, c.buffers)
	loop := newEventLoop(c.cfg, sel, conn, c.metrics)
	c.loop.Store(loop)
	c.log.Info().Str("conn_id", conn.id).Str("host", host).Int("port", port).Msg("starting connection")
	go loop.run()
	return nil
}

// Stop requests the event loop to exit and waits until it has released the
// socket and the selector. It returns the loop's terminal error, if any.
func (c *Client) Stop() error {
	loop := c.loop.Load()
	if loop == nil {
		return nil
	}
	return loop.stop()
}

// Shutdown implements api.GracefulShutdown.
func (c *Client) Shutdown() error {
	return c.Stop()
}

// Send transmits msg on the active connection. The quit token is never sent
// and reports false without error. Send returns true once every byte has been
// handed to the kernel.
func (c *Client) Send(msg string) (bool, error) {
	return c.SendContext(context.Background(), msg)
}

// SendContext is Send with a bound on how long the caller waits. Bytes already
// queued are still written after ctx is done.
func (c *Client) SendContext(ctx context.Context, msg string) (bool, error) {
	if msg == QuitToken {
		return false, nil
	}
	loop := c.loop.Load()
	if loop == nil {
		return false, api.ErrNotConnected
	}
	if err := loop.send(ctx, msg); err != nil {
		return false, err
	}
	return true, nil
}

// State reports the lifecycle state of the current connection.
func (c *Client) State() api.ConnState {
	loop := c.loop.Load()
	if loop == nil {
		return api.StateDisconnected
	}
	return loop.conn.State()
}

// ConnID returns the identifier of the current connection, or "".
func (c *Client) ConnID() string {
	loop := c.loop.Load()
	if loop == nil {
		return ""
	}
	return loop.conn.id
}

// Remote returns host:port of the current connection, or "".
func (c *Client) Remote() string {
	loop := c.loop.Load()
	if loop == nil {
		return ""
	}
	return loop.conn.remote()
}

// Done is closed when the current event loop exits. Nil before the first Start.
func (c *Client) Done() <-chan struct{} {
	loop := c.loop.Load()
	if loop == nil {
		return nil
	}
	return loop.done()
}

// Err returns the terminal error of the current loop once it has exited.
func (c *Client) Err() error {
	loop := c.loop.Load()
	if loop == nil {
		return nil
	}
	select {
	case <-loop.done():
		return loop.err
	default:
		return nil
	}
}

// Metrics returns a snapshot of the client's counters.
func (c *Client) Metrics() map[string]any {
	return c.metrics.GetSnapshot()
}

// logHandler is the default MessageHandler: everything goes to the logger.
type logHandler struct {
	log zerolog.Logger
}

func (h logHandler) OnConnect(connID string) {}

func (h logHandler) OnMessage(connID string, text string) {
	h.log.Info().Str("conn_id", connID).Int("bytes", len(text)).Str("text", text).Msg("message received")
}

func (h logHandler) OnClose(connID string) {
	h.log.Info().Str("conn_id", connID).Msg("connection closed")
}

func (h logHandler) OnError(connID string, err error) {
	h.log.Error().Err(err).Str("conn_id", connID).Msg("connection error")
}

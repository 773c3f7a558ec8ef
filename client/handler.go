// File: client/handler.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// I/O handler: reacts to one readiness record of the connection.

package client

import (
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"code.hybscloud.com/iox"
	"github.com/momentics/nioclient/api"
	"github.com/momentics/nioclient/control"
	"github.com/rs/zerolog"
)

// ioHandler performs connect completion, inbound and outbound transfers.
// It runs only on the event loop goroutine.
type ioHandler struct {
	conn     *connection
	handler  api.MessageHandler
	readSize int
	metrics  *control.MetricsRegistry
	log      zerolog.Logger
}

// connect issues the non-blocking connect and registers the matching interest.
func (h *ioHandler) connect() error {
	h.metrics.Counter(control.ConnectAttempts).Inc()
	h.conn.setState(api.StateConnecting)
	done, err := h.conn.sock.Connect()
	if err != nil {
		return h.connectFailed(err)
	}
	if done {
		return h.connected()
	}
	if err := h.conn.syncInterest(); err != nil {
		return api.WrapError(api.ErrCodeSetup, "register connect interest", err).
			WithContext("conn_id", h.conn.id)
	}
	h.log.Debug().Str("conn_id", h.conn.id).Str("remote", h.conn.remote()).Msg("connect in progress")
	return nil
}

func (h *ioHandler) connected() error {
	h.conn.setState(api.StateConnected)
	if err := h.conn.syncInterest(); err != nil {
		return api.WrapError(api.ErrCodeSetup, "register read interest", err).
			WithContext("conn_id", h.conn.id)
	}
	h.metrics.Counter(control.Connects).Inc()
	h.log.Info().Str("conn_id", h.conn.id).Str("remote", h.conn.remote()).Msg("connected")
	h.handler.OnConnect(h.conn.id)
	return nil
}

func (h *ioHandler) connectFailed(cause error) error {
	h.metrics.Counter(control.ConnectFailures).Inc()
	return api.WrapError(api.ErrCodeConnect, "connect "+h.conn.remote(),
		errors.Join(api.ErrConnectFailed, cause)).WithContext("conn_id", h.conn.id)
}

// dispatch handles one readiness record in connect, read, write order.
func (h *ioHandler) dispatch(r api.Ready) error {
	if h.conn.State() == api.StateClosed || r.Fd != h.conn.sock.Fd() {
		return nil
	}
	if r.Ready.Has(api.InterestConnect) {
		if err := h.finishConnect(); err != nil {
			return err
		}
	}
	if r.Ready.Has(api.InterestRead) {
		if err := h.read(); err != nil {
			return err
		}
	}
	if r.Ready.Has(api.InterestWrite) && h.conn.State() == api.StateConnected {
		if err := h.flush(); err != nil {
			return err
		}
	}
	return nil
}

func (h *ioHandler) finishConnect() error {
	done, err := h.conn.sock.FinishConnect()
	if err != nil {
		return h.connectFailed(err)
	}
	if !done {
		return h.connectFailed(errors.New("connect did not complete"))
	}
	return h.connected()
}

// read performs one read into a fresh buffer. A zero-byte or would-block
// result is a no-op; EOF closes the connection.
func (h *ioHandler) read() error {
	buf := h.conn.buffers.Get(h.readSize)
	defer h.conn.buffers.Put(buf)

	n, err := buf.FillFrom(h.conn.sock)
	switch {
	case n > 0:
		h.metrics.Counter(control.Reads).Inc()
		h.metrics.Counter(control.BytesRead).Add(uint64(n))
		buf.Flip()
		h.deliver(buf.Bytes())
		if err != nil && !iox.IsWouldBlock(err) {
			return h.readFailed(err)
		}
		return nil
	case err == nil, iox.IsWouldBlock(err):
		h.metrics.Counter(control.EmptyReads).Inc()
		return nil
	default:
		return h.readFailed(err)
	}
}

func (h *ioHandler) readFailed(err error) error {
	if errors.Is(err, io.EOF) {
		h.log.Info().Str("conn_id", h.conn.id).Msg("peer closed connection")
		h.closeConn(api.ErrClosed)
		return nil
	}
	return api.WrapError(api.ErrCodeRead, "read", err).WithContext("conn_id", h.conn.id)
}

func (h *ioHandler) deliver(p []byte) {
	text := string(p)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, string(utf8.RuneError))
	}
	h.handler.OnMessage(h.conn.id, text)
}

// flush writes queued buffers until the socket stops accepting bytes, then
// re-arms WRITE interest only while something remains.
func (h *ioHandler) flush() error {
	for h.conn.pending.Length() > 0 {
		ob := h.conn.pending.Peek().(*outbound)
		want := ob.buf.Remaining()
		n, err := ob.buf.DrainTo(h.conn.sock)
		if n > 0 {
			h.metrics.Counter(control.Writes).Inc()
			h.metrics.Counter(control.BytesWritten).Add(uint64(n))
		}
		if err != nil {
			if iox.IsWouldBlock(err) {
				break
			}
			h.metrics.Counter(control.WriteFailures).Inc()
			return api.WrapError(api.ErrCodeWrite, "write", err).WithContext("conn_id", h.conn.id)
		}
		if ob.buf.HasRemaining() {
			if n == 0 {
				break
			}
			h.metrics.Counter(control.ShortWrites).Inc()
			h.log.Debug().Str("conn_id", h.conn.id).Int("bytes", n).Int("requested", want).Msg("short write")
			continue
		}
		h.conn.pending.Remove()
		h.conn.buffers.Put(ob.buf)
		ob.req.complete(nil)
	}
	if err := h.conn.syncInterest(); err != nil {
		return api.WrapError(api.ErrCodeWrite, "update write interest", err).WithContext("conn_id", h.conn.id)
	}
	return nil
}

// closeConn closes the connection once and notifies the handler.
func (h *ioHandler) closeConn(cause error) {
	first, err := h.conn.close(cause)
	if err != nil {
		h.log.Warn().Err(err).Str("conn_id", h.conn.id).Msg("close connection")
	}
	if first {
		h.metrics.Counter(control.Closes).Inc()
		h.handler.OnClose(h.conn.id)
	}
}

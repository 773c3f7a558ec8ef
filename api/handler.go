// File: api/handler.go
// Package api defines callback interfaces.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// MessageHandler receives lifecycle and inbound data notifications.
// Callbacks run on the event loop goroutine and must not block. They may read
// client state; calls that wait on the loop (start, stop, send) deadlock there.
type MessageHandler interface {
	OnConnect(connID string)
	OnMessage(connID string, text string)
	OnClose(connID string)
	OnError(connID string, err error)
}

// HandlerFuncs adapts optional functions to MessageHandler. Nil fields are skipped.
type HandlerFuncs struct {
	Connect func(connID string)
	Message func(connID string, text string)
	Close   func(connID string)
	Error   func(connID string, err error)
}

func (h HandlerFuncs) OnConnect(connID string) {
	if h.Connect != nil {
		h.Connect(connID)
	}
}

func (h HandlerFuncs) OnMessage(connID string, text string) {
	if h.Message != nil {
		h.Message(connID, text)
	}
}

func (h HandlerFuncs) OnClose(connID string) {
	if h.Close != nil {
		h.Close(connID)
	}
}

func (h HandlerFuncs) OnError(connID string, err error) {
	if h.Error != nil {
		h.Error(connID, err)
	}
}

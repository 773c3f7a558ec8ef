package client

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/momentics/nioclient/api"
	"github.com/momentics/nioclient/fake"
	"github.com/momentics/nioclient/internal/transport"
	"github.com/rs/zerolog"
)

// recorder is a MessageHandler capturing every callback.
type recorder struct {
	mu       sync.Mutex
	connects int
	closes   int
	messages []string
	errs     []error
}

func (r *recorder) OnConnect(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connects++
}

func (r *recorder) OnMessage(_ string, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, text)
}

func (r *recorder) OnClose(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closes++
}

func (r *recorder) OnError(_ string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *recorder) text() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return strings.Join(r.messages, "")
}

func (r *recorder) counts() (connects, closes, errs int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connects, r.closes, len(r.errs)
}

func (r *recorder) lastErr() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.errs) == 0 {
		return nil
	}
	return r.errs[len(r.errs)-1]
}

func testConfig(h api.MessageHandler) *Config {
	logger := zerolog.Nop()
	cfg := DefaultConfig()
	cfg.Handler = h
	cfg.Logger = &logger
	return cfg
}

// newFakeClient wires a Client to fake selectors and sockets. Each Start
// consumes the next socket from socks.
func newFakeClient(t *testing.T, h api.MessageHandler, socks ...transport.Socket) (*Client, *[]*fake.Selector) {
	t.Helper()
	c := New(testConfig(h))
	var mu sync.Mutex
	sels := &[]*fake.Selector{}
	c.newSel = func() (api.Selector, error) {
		mu.Lock()
		defer mu.Unlock()
		s := fake.NewSelector()
		*sels = append(*sels, s)
		return s, nil
	}
	next := 0
	c.open = func(context.Context, string, int, transport.Options) (transport.Socket, error) {
		mu.Lock()
		defer mu.Unlock()
		if next >= len(socks) {
			t.Fatalf("unexpected socket open #%d", next+1)
		}
		s := socks[next]
		next++
		return s, nil
	}
	t.Cleanup(func() { _ = c.Stop() })
	return c, sels
}

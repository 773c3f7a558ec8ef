// File: client/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package client

import (
	"fmt"
	"time"

	"github.com/momentics/nioclient/api"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Defaults used by StartDefault and DefaultConfig.
const (
	DefaultHost           = "127.0.0.1"
	DefaultPort           = 12345
	DefaultPollTimeout    = time.Second
	DefaultReadBufferSize = 1024
	DefaultMaxEvents      = 64
	DefaultResolveTimeout = 5 * time.Second
)

// QuitToken is the message Send refuses to transmit, reserved for client-side termination.
const QuitToken = "q"

// Config holds client parameters.
type Config struct {
	Host           string        // default remote host for StartDefault
	Port           int           // default remote port for StartDefault
	PollTimeout    time.Duration // upper bound of one selector wait
	ReadBufferSize int           // bytes read per READ readiness
	MaxEvents      int           // readiness records per wait
	NoDelay        bool          // TCP_NODELAY
	SendBufferSize int           // SO_SNDBUF, 0 = kernel default
	RecvBufferSize int           // SO_RCVBUF, 0 = kernel default
	ResolveTimeout time.Duration // bound on host resolution inside Start
	PooledBuffers  bool          // recycle I/O buffers by size class instead of allocating per call
	PinLoop        bool          // pin the event loop thread to LoopCPU
	LoopCPU        int
	Handler        api.MessageHandler
	Logger         *zerolog.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Host:           DefaultHost,
		Port:           DefaultPort,
		PollTimeout:    DefaultPollTimeout,
		ReadBufferSize: DefaultReadBufferSize,
		MaxEvents:      DefaultMaxEvents,
		NoDelay:        true,
		ResolveTimeout: DefaultResolveTimeout,
	}
}

// Validate checks numeric bounds.
func (c *Config) Validate() error {
	if c.PollTimeout <= 0 {
		return fmt.Errorf("poll timeout must be positive: %w", api.ErrInvalidArgument)
	}
	if c.ReadBufferSize <= 0 {
		return fmt.Errorf("read buffer size must be positive: %w", api.ErrInvalidArgument)
	}
	if c.MaxEvents <= 0 {
		return fmt.Errorf("max events must be positive: %w", api.ErrInvalidArgument)
	}
	if c.PinLoop && c.LoopCPU < 0 {
		return fmt.Errorf("loop cpu must not be negative: %w", api.ErrInvalidArgument)
	}
	if c.SendBufferSize < 0 {
		return fmt.Errorf("send buffer size must not be negative: %w", api.ErrInvalidArgument)
	}
	if c.RecvBufferSize < 0 {
		return fmt.Errorf("receive buffer size must not be negative: %w", api.ErrInvalidArgument)
	}
	if c.ResolveTimeout <= 0 {
		return fmt.Errorf("resolve timeout must be positive: %w", api.ErrInvalidArgument)
	}
	return nil
}

// withDefaults returns a copy with zero fields filled in.
func (c *Config) withDefaults() *Config {
	out := *DefaultConfig()
	if c == nil {
		return &out
	}
	merged := *c
	if merged.Host == "" {
		merged.Host = out.Host
	}
	if merged.Port == 0 {
		merged.Port = out.Port
	}
	if merged.PollTimeout == 0 {
		merged.PollTimeout = out.PollTimeout
	}
	if merged.ReadBufferSize == 0 {
		merged.ReadBufferSize = out.ReadBufferSize
	}
	if merged.MaxEvents == 0 {
		merged.MaxEvents = out.MaxEvents
	}
	if merged.ResolveTimeout == 0 {
		merged.ResolveTimeout = out.ResolveTimeout
	}
	return &merged
}

func (c *Config) logger() zerolog.Logger {
	if c.Logger != nil {
		return *c.Logger
	}
	return log.Logger
}

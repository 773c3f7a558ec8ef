//go:build !linux
// +build !linux

// File: internal/transport/transport_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.

package transport

import (
	"fmt"
	"net/netip"

	"github.com/momentics/nioclient/api"
)

func newSocket(netip.AddrPort, Options) (Socket, error) {
	return nil, fmt.Errorf("transport: %w", api.ErrNotSupported)
}

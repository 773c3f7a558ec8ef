// Package transport
// Author: momentics <momentics@gmail.com>
//
// Platform-independent address resolution and Socket contract.

package transport

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"strconv"

	"github.com/momentics/nioclient/api"
)

// Socket is a non-blocking stream socket. All methods except Fd and Close
// must be called from the goroutine owning the socket.
type Socket interface {
	Fd() int
	// Connect starts the connection. It reports true when the kernel completed
	// the handshake synchronously, false when completion is pending.
	Connect() (bool, error)
	// FinishConnect reports whether a pending connect has completed.
	FinishConnect() (bool, error)
	// Read returns io.EOF on orderly peer shutdown and iox.ErrWouldBlock when no data is available.
	Read(p []byte) (int, error)
	// Write returns iox.ErrWouldBlock when the send buffer is full. n may be short.
	Write(p []byte) (int, error)
	Close() error
}

// Options tune socket creation.
type Options struct {
	NoDelay        bool
	SendBufferSize int // SO_SNDBUF, 0 keeps the kernel default
	RecvBufferSize int // SO_RCVBUF, 0 keeps the kernel default
}

// Resolve turns host and port into a single address, preferring IPv4.
func Resolve(ctx context.Context, host string, port int) (netip.AddrPort, error) {
	if port <= 0 || port > 65535 {
		return netip.AddrPort{}, fmt.Errorf("port %d: %w", port, api.ErrInvalidArgument)
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		return netip.AddrPortFrom(addr.Unmap(), uint16(port)), nil
	}
	ips, err := net.DefaultResolver.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("resolve %s: %w", net.JoinHostPort(host, strconv.Itoa(port)), err)
	}
	if len(ips) == 0 {
		return netip.AddrPort{}, fmt.Errorf("resolve %s: no addresses", host)
	}
	chosen := ips[0].Unmap()
	for _, ip := range ips {
		if ip.Unmap().Is4() {
			chosen = ip.Unmap()
			break
		}
	}
	return netip.AddrPortFrom(chosen, uint16(port)), nil
}

// Open resolves the remote address and creates an unconnected non-blocking socket for it.
func Open(ctx context.Context, host string, port int, opts Options) (Socket, error) {
	addr, err := Resolve(ctx, host, port)
	if err != nil {
		return nil, err
	}
	return newSocket(addr, opts)
}

//go:build linux
// +build linux

// File: internal/transport/transport_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux non-blocking TCP socket on raw descriptors.

package transport

import (
	"errors"
	"fmt"
	"io"
	"net/netip"
	"sync/atomic"

	"code.hybscloud.com/iox"
	"golang.org/x/sys/unix"
)

type linuxSocket struct {
	fd     int
	remote unix.Sockaddr
	closed atomic.Bool
}

// newSocket creates a non-blocking TCP socket for the family of addr.
func newSocket(addr netip.AddrPort, opts Options) (Socket, error) {
	family := unix.AF_INET6
	var sa unix.Sockaddr
	if addr.Addr().Is4() {
		family = unix.AF_INET
		sa = &unix.SockaddrInet4{Port: int(addr.Port()), Addr: addr.Addr().As4()}
	} else {
		sa = &unix.SockaddrInet6{Port: int(addr.Port()), Addr: addr.Addr().As16()}
	}

	fd, err := unix.Socket(family, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		return nil, fmt.Errorf("socket create: %w", err)
	}
	if opts.NoDelay {
		_ = unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
	}
	if opts.SendBufferSize > 0 {
		if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_SNDBUF, opts.SendBufferSize); err != nil {
			_ = unix.Close(fd)
			return nil, fmt.Errorf("setsockopt SO_SNDBUF: %w", err)
		}
	}
	if opts.RecvBufferSize > 0 {
		if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUF, opts.RecvBufferSize); err != nil {
			_ = unix.Close(fd)
			return nil, fmt.Errorf("setsockopt SO_RCVBUF: %w", err)
		}
	}
	return &linuxSocket{fd: fd, remote: sa}, nil
}

func (s *linuxSocket) Fd() int {
	return s.fd
}

func (s *linuxSocket) Connect() (bool, error) {
	for {
		err := unix.Connect(s.fd, s.remote)
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EINPROGRESS), errors.Is(err, unix.EALREADY):
			return false, nil
		default:
			return false, fmt.Errorf("connect: %w", err)
		}
	}
}

// FinishConnect inspects SO_ERROR after the descriptor became writable.
func (s *linuxSocket) FinishConnect() (bool, error) {
	soErr, err := unix.GetsockoptInt(s.fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return false, fmt.Errorf("getsockopt SO_ERROR: %w", err)
	}
	switch errno := unix.Errno(soErr); errno {
	case 0:
		return true, nil
	case unix.EINPROGRESS, unix.EALREADY:
		return false, nil
	default:
		return false, fmt.Errorf("connect: %w", errno)
	}
}

func (s *linuxSocket) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for {
		n, err := unix.Read(s.fd, p)
		switch {
		case err == nil && n == 0:
			return 0, io.EOF
		case err == nil:
			return n, nil
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EAGAIN):
			return 0, iox.ErrWouldBlock
		default:
			return 0, fmt.Errorf("read: %w", err)
		}
	}
}

func (s *linuxSocket) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for {
		n, err := unix.Write(s.fd, p)
		switch {
		case err == nil:
			return n, nil
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EAGAIN):
			return 0, iox.ErrWouldBlock
		default:
			return 0, fmt.Errorf("write: %w", err)
		}
	}
}

// Close releases the descriptor once; later calls are no-ops.
func (s *linuxSocket) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return unix.Close(s.fd)
}

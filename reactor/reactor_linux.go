//go:build linux
// +build linux

// File: reactor/reactor_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux epoll(7)-based selector implementation.

package reactor

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/momentics/nioclient/api"
	"golang.org/x/sys/unix"
)

// epollSelector implements api.Selector with level-triggered epoll.
type epollSelector struct {
	epfd      int
	wakefd    int
	interests map[int]api.Interest
	events    []unix.EpollEvent
	ready     []api.Ready

	mu     sync.RWMutex // guards closed against concurrent Wake
	closed bool
}

func newSelector(o options) (api.Selector, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll create: %w", err)
	}
	wakefd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		_ = unix.Close(epfd)
		return nil, fmt.Errorf("eventfd: %w", err)
	}
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(wakefd)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, wakefd, &ev); err != nil {
		_ = unix.Close(wakefd)
		_ = unix.Close(epfd)
		return nil, fmt.Errorf("epoll ctl add wakefd: %w", err)
	}
	return &epollSelector{
		epfd:      epfd,
		wakefd:    wakefd,
		interests: make(map[int]api.Interest),
		events:    make([]unix.EpollEvent, o.maxEvents),
		ready:     make([]api.Ready, 0, o.maxEvents),
	}, nil
}

// toEpoll maps interest flags to epoll event bits. Connect completion is
// reported by the kernel as writability.
func toEpoll(interest api.Interest) uint32 {
	var events uint32
	if interest&(api.InterestConnect|api.InterestWrite) != 0 {
		events |= unix.EPOLLOUT
	}
	if interest&api.InterestRead != 0 {
		events |= unix.EPOLLIN | unix.EPOLLRDHUP
	}
	return events
}

func (s *epollSelector) Register(fd int, interest api.Interest) error {
	if s.isClosed() {
		return api.ErrSelectorClosed
	}
	if _, ok := s.interests[fd]; ok {
		return s.Modify(fd, interest)
	}
	ev := unix.EpollEvent{Events: toEpoll(interest), Fd: int32(fd)}
	if err := unix.EpollCtl(s.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return fmt.Errorf("epoll ctl add: %w", err)
	}
	s.interests[fd] = interest
	return nil
}

func (s *epollSelector) Modify(fd int, interest api.Interest) error {
	if s.isClosed() {
		return api.ErrSelectorClosed
	}
	cur, ok := s.interests[fd]
	if !ok {
		return fmt.Errorf("modify fd %d: %w", fd, api.ErrNotRegistered)
	}
	if cur == interest {
		return nil
	}
	ev := unix.EpollEvent{Events: toEpoll(interest), Fd: int32(fd)}
	if err := unix.EpollCtl(s.epfd, unix.EPOLL_CTL_MOD, fd, &ev); err != nil {
		return fmt.Errorf("epoll ctl mod: %w", err)
	}
	s.interests[fd] = interest
	return nil
}

func (s *epollSelector) Unregister(fd int) error {
	if s.isClosed() {
		return api.ErrSelectorClosed
	}
	if _, ok := s.interests[fd]; !ok {
		return fmt.Errorf("unregister fd %d: %w", fd, api.ErrNotRegistered)
	}
	delete(s.interests, fd)
	if err := unix.EpollCtl(s.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		return fmt.Errorf("epoll ctl del: %w", err)
	}
	return nil
}

func (s *epollSelector) Interest(fd int) (api.Interest, bool) {
	i, ok := s.interests[fd]
	return i, ok
}

// Wait blocks up to timeout. EINTR yields an empty result, not an error.
func (s *epollSelector) Wait(timeout time.Duration) ([]api.Ready, error) {
	if s.isClosed() {
		return nil, api.ErrSelectorClosed
	}
	s.ready = s.ready[:0]
	n, err := unix.EpollWait(s.epfd, s.events, timeoutMillis(timeout))
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return s.ready, nil
		}
		return nil, fmt.Errorf("epoll wait: %w", err)
	}
	for i := 0; i < n; i++ {
		ev := s.events[i]
		fd := int(ev.Fd)
		if fd == s.wakefd {
			s.drainWake()
			continue
		}
		interest, ok := s.interests[fd]
		if !ok {
			continue
		}
		r := api.Ready{
			Fd:       fd,
			Interest: interest,
			Error:    ev.Events&unix.EPOLLERR != 0,
			Hangup:   ev.Events&(unix.EPOLLHUP|unix.EPOLLRDHUP) != 0,
		}
		if ev.Events&unix.EPOLLOUT != 0 {
			r.Ready |= interest & (api.InterestConnect | api.InterestWrite)
		}
		if ev.Events&(unix.EPOLLIN|unix.EPOLLRDHUP|unix.EPOLLHUP) != 0 {
			r.Ready |= interest & api.InterestRead
		}
		if r.Error {
			// Surface the failure through whichever operation the caller is waiting on.
			r.Ready |= interest
		}
		if r.Ready == 0 {
			continue
		}
		s.ready = append(s.ready, r)
	}
	return s.ready, nil
}

func (s *epollSelector) drainWake() {
	var buf [8]byte
	_, _ = unix.Read(s.wakefd, buf[:])
}

// Wake interrupts a blocked Wait. Safe for concurrent use.
func (s *epollSelector) Wake() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return api.ErrSelectorClosed
	}
	var buf [8]byte
	binary.NativeEndian.PutUint64(buf[:], 1)
	if _, err := unix.Write(s.wakefd, buf[:]); err != nil && !errors.Is(err, unix.EAGAIN) {
		return fmt.Errorf("eventfd write: %w", err)
	}
	return nil
}

// Close releases the epoll and eventfd descriptors, dropping all registrations.
func (s *epollSelector) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.interests = make(map[int]api.Interest)
	werr := unix.Close(s.wakefd)
	if err := unix.Close(s.epfd); err != nil {
		return fmt.Errorf("epoll close: %w", err)
	}
	if werr != nil {
		return fmt.Errorf("eventfd close: %w", werr)
	}
	return nil
}

func (s *epollSelector) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// File: fake/selector.go
// Author: momentics <momentics@gmail.com>

package fake

import (
	"fmt"
	"sync"
	"time"

	"github.com/momentics/nioclient/api"
)

// Selector is a scriptable api.Selector. Wait returns queued batches first;
// with nothing queued it sleeps until the timeout or a Wake.
type Selector struct {
	mu        sync.Mutex
	interests map[int]api.Interest
	batches   [][]api.Ready
	waitErr   error
	closed    bool
	wake      chan struct{}

	registers   int
	unregisters int
	closes      int
}

// NewSelector returns an empty selector.
func NewSelector() *Selector {
	return &Selector{
		interests: make(map[int]api.Interest),
		wake:      make(chan struct{}, 1),
	}
}

// Fire queues one readiness batch for the next Wait.
func (s *Selector) Fire(ready ...api.Ready) {
	s.mu.Lock()
	s.batches = append(s.batches, ready)
	s.mu.Unlock()
	_ = s.Wake()
}

// FailWait makes every following Wait return err.
func (s *Selector) FailWait(err error) {
	s.mu.Lock()
	s.waitErr = err
	s.mu.Unlock()
	_ = s.Wake()
}

func (s *Selector) Register(fd int, interest api.Interest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return api.ErrSelectorClosed
	}
	s.interests[fd] = interest
	s.registers++
	return nil
}

func (s *Selector) Modify(fd int, interest api.Interest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return api.ErrSelectorClosed
	}
	if _, ok := s.interests[fd]; !ok {
		return fmt.Errorf("modify fd %d: %w", fd, api.ErrNotRegistered)
	}
	s.interests[fd] = interest
	return nil
}

func (s *Selector) Unregister(fd int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return api.ErrSelectorClosed
	}
	if _, ok := s.interests[fd]; !ok {
		return fmt.Errorf("unregister fd %d: %w", fd, api.ErrNotRegistered)
	}
	delete(s.interests, fd)
	s.unregisters++
	return nil
}

func (s *Selector) Interest(fd int) (api.Interest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.interests[fd]
	return i, ok
}

func (s *Selector) Wait(timeout time.Duration) ([]api.Ready, error) {
	if out, ok, err := s.next(); ok {
		return out, err
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-s.wake:
	case <-timer.C:
	}
	out, _, err := s.next()
	return out, err
}

func (s *Selector) next() ([]api.Ready, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, true, api.ErrSelectorClosed
	}
	if s.waitErr != nil {
		return nil, true, s.waitErr
	}
	if len(s.batches) == 0 {
		return nil, false, nil
	}
	b := s.batches[0]
	s.batches = s.batches[1:]
	// Readiness only covers interests still registered, like the kernel would.
	out := make([]api.Ready, 0, len(b))
	for _, r := range b {
		cur, ok := s.interests[r.Fd]
		if !ok {
			continue
		}
		r.Interest = cur
		r.Ready &= cur
		if r.Ready != 0 {
			out = append(out, r)
		}
	}
	return out, true, nil
}

func (s *Selector) Wake() error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return api.ErrSelectorClosed
	}
	select {
	case s.wake <- struct{}{}:
	default:
	}
	return nil
}

func (s *Selector) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	if s.closed {
		return nil
	}
	s.closed = true
	s.interests = make(map[int]api.Interest)
	return nil
}

// Registers returns the number of Register calls.
func (s *Selector) Registers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registers
}

// Unregisters returns the number of successful Unregister calls.
func (s *Selector) Unregisters() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unregisters
}

// Closed reports whether Close has been called.
func (s *Selector) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// File: fake/socket.go
// Author: momentics <momentics@gmail.com>

package fake

import (
	"bytes"
	"io"
	"sync"

	"code.hybscloud.com/iox"
)

// Socket is a scriptable transport.Socket. Reads are served from queued
// chunks; an empty queue yields iox.ErrWouldBlock.
type Socket struct {
	mu sync.Mutex

	FD            int
	ConnectDone   bool  // Connect completes synchronously
	ConnectErr    error // Connect fails
	FinishDone    bool  // FinishConnect reports completion
	FinishErr     error
	WriteLimit    int   // max bytes accepted per Write, 0 = unlimited
	WriteBlocked  bool  // Write returns iox.ErrWouldBlock
	WriteErr      error // Write fails

	reads      []readResult
	written    bytes.Buffer
	writeCalls int
	closeCalls int
}

type readResult struct {
	data []byte
	err  error
}

// NewSocket returns a socket whose connect completes asynchronously and successfully.
func NewSocket(fd int) *Socket {
	return &Socket{FD: fd, FinishDone: true}
}

// QueueRead schedules data for a later Read.
func (s *Socket) QueueRead(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads = append(s.reads, readResult{data: data})
}

// QueueEOF schedules an orderly peer shutdown.
func (s *Socket) QueueEOF() {
	s.QueueError(io.EOF)
}

// QueueError schedules a read failure.
func (s *Socket) QueueError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads = append(s.reads, readResult{err: err})
}

// SetWriteBlocked toggles send-buffer exhaustion.
func (s *Socket) SetWriteBlocked(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.WriteBlocked = v
}

func (s *Socket) Fd() int {
	return s.FD
}

func (s *Socket) Connect() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ConnectDone, s.ConnectErr
}

func (s *Socket) FinishConnect() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.FinishDone, s.FinishErr
}

func (s *Socket) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.reads) == 0 {
		return 0, iox.ErrWouldBlock
	}
	r := s.reads[0]
	if r.err != nil {
		s.reads = s.reads[1:]
		return 0, r.err
	}
	n := copy(p, r.data)
	if n < len(r.data) {
		s.reads[0].data = r.data[n:]
	} else {
		s.reads = s.reads[1:]
	}
	return n, nil
}

func (s *Socket) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeCalls++
	if s.WriteErr != nil {
		return 0, s.WriteErr
	}
	if s.WriteBlocked {
		return 0, iox.ErrWouldBlock
	}
	n := len(p)
	if s.WriteLimit > 0 && n > s.WriteLimit {
		n = s.WriteLimit
	}
	s.written.Write(p[:n])
	return n, nil
}

func (s *Socket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeCalls++
	return nil
}

// Written returns a copy of everything accepted by Write.
func (s *Socket) Written() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return bytes.Clone(s.written.Bytes())
}

// WriteCalls returns the number of Write invocations.
func (s *Socket) WriteCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeCalls
}

// CloseCalls returns the number of Close invocations.
func (s *Socket) CloseCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeCalls
}

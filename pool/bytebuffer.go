// File: pool/bytebuffer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Cursor-based byte region with fill/flip/drain discipline.

package pool

import (
	"fmt"
	"io"

	"github.com/momentics/nioclient/api"
)

// ByteBuffer is a fixed-capacity byte region with position, limit and mark.
// Invariant: -1 == mark (unset) or 0 <= mark <= position <= limit <= capacity.
// A ByteBuffer is not safe for concurrent use.
type ByteBuffer struct {
	buf      []byte
	position int
	limit    int
	mark     int
}

// Allocate returns a zeroed buffer in fill mode with the given capacity.
func Allocate(capacity int) *ByteBuffer {
	if capacity < 0 {
		panic(fmt.Sprintf("pool: negative buffer capacity %d", capacity))
	}
	return &ByteBuffer{buf: make([]byte, capacity), limit: capacity, mark: -1}
}

// Wrap returns a buffer backed by b in fill mode. The slice is not copied.
func Wrap(b []byte) *ByteBuffer {
	return &ByteBuffer{buf: b, limit: len(b), mark: -1}
}

func (b *ByteBuffer) Capacity() int {
	return len(b.buf)
}

func (b *ByteBuffer) Position() int {
	return b.position
}

func (b *ByteBuffer) Limit() int {
	return b.limit
}

// Remaining is the number of bytes between position and limit.
func (b *ByteBuffer) Remaining() int {
	return b.limit - b.position
}

func (b *ByteBuffer) HasRemaining() bool {
	return b.position < b.limit
}

// SetPosition moves the cursor. A mark beyond the new position is discarded.
func (b *ByteBuffer) SetPosition(p int) {
	if p < 0 || p > b.limit {
		panic(fmt.Sprintf("pool: position %d out of range [0,%d]", p, b.limit))
	}
	b.position = p
	if b.mark > p {
		b.mark = -1
	}
}

// SetLimit moves the end of the valid region, clamping position and mark.
func (b *ByteBuffer) SetLimit(l int) {
	if l < 0 || l > len(b.buf) {
		panic(fmt.Sprintf("pool: limit %d out of range [0,%d]", l, len(b.buf)))
	}
	b.limit = l
	if b.position > l {
		b.position = l
	}
	if b.mark > l {
		b.mark = -1
	}
}

// Mark saves the current position for Reset.
func (b *ByteBuffer) Mark() {
	b.mark = b.position
}

// Reset returns to the marked position.
func (b *ByteBuffer) Reset() error {
	if b.mark < 0 {
		return fmt.Errorf("pool: reset without mark: %w", api.ErrInvalidArgument)
	}
	b.position = b.mark
	return nil
}

// Flip switches from fill mode to drain mode: limit = position, position = 0.
func (b *ByteBuffer) Flip() {
	b.limit = b.position
	b.position = 0
	b.mark = -1
}

// Clear switches back to fill mode over the whole capacity. Contents are kept.
func (b *ByteBuffer) Clear() {
	b.position = 0
	b.limit = len(b.buf)
	b.mark = -1
}

// Rewind restarts draining (or filling) from zero without touching limit.
func (b *ByteBuffer) Rewind() {
	b.position = 0
	b.mark = -1
}

// Compact moves the unread remainder to the front and switches to fill mode after it.
func (b *ByteBuffer) Compact() {
	n := copy(b.buf, b.buf[b.position:b.limit])
	b.position = n
	b.limit = len(b.buf)
	b.mark = -1
}

// Put copies p at position. Nothing is written if p does not fit.
func (b *ByteBuffer) Put(p []byte) error {
	if len(p) > b.Remaining() {
		return fmt.Errorf("pool: put %d bytes, %d remaining: %w", len(p), b.Remaining(), api.ErrBufferOverflow)
	}
	b.position += copy(b.buf[b.position:b.limit], p)
	return nil
}

// PutByte writes one byte at position.
func (b *ByteBuffer) PutByte(c byte) error {
	if b.position >= b.limit {
		return api.ErrBufferOverflow
	}
	b.buf[b.position] = c
	b.position++
	return nil
}

// PutString copies s at position.
func (b *ByteBuffer) PutString(s string) error {
	if len(s) > b.Remaining() {
		return fmt.Errorf("pool: put %d bytes, %d remaining: %w", len(s), b.Remaining(), api.ErrBufferOverflow)
	}
	b.position += copy(b.buf[b.position:b.limit], s)
	return nil
}

// Get fills dst from position. Nothing is consumed if dst is larger than Remaining.
func (b *ByteBuffer) Get(dst []byte) error {
	if len(dst) > b.Remaining() {
		return fmt.Errorf("pool: get %d bytes, %d remaining: %w", len(dst), b.Remaining(), api.ErrBufferUnderflow)
	}
	b.position += copy(dst, b.buf[b.position:b.limit])
	return nil
}

// GetByte reads one byte at position.
func (b *ByteBuffer) GetByte() (byte, error) {
	if b.position >= b.limit {
		return 0, api.ErrBufferUnderflow
	}
	c := b.buf[b.position]
	b.position++
	return c, nil
}

// Bytes returns the region between position and limit without copying.
func (b *ByteBuffer) Bytes() []byte {
	return b.buf[b.position:b.limit]
}

// FillFrom performs a single Read into the region between position and limit
// and advances position by the byte count. It does not loop: n may be short.
func (b *ByteBuffer) FillFrom(r io.Reader) (int, error) {
	if !b.HasRemaining() {
		return 0, nil
	}
	n, err := r.Read(b.buf[b.position:b.limit])
	if n > 0 {
		b.position += n
	}
	return n, err
}

// DrainTo performs a single Write of the region between position and limit
// and advances position by the accepted byte count. A short write leaves
// the remainder in place for the next call.
func (b *ByteBuffer) DrainTo(w io.Writer) (int, error) {
	if !b.HasRemaining() {
		return 0, nil
	}
	n, err := w.Write(b.buf[b.position:b.limit])
	if n > 0 {
		b.position += n
	}
	return n, err
}

func (b *ByteBuffer) String() string {
	return fmt.Sprintf("ByteBuffer[pos=%d lim=%d cap=%d]", b.position, b.limit, len(b.buf))
}

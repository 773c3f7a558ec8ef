// File: pool/sizeclass.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Power-of-two size-class recycling for ByteBuffer backing storage.

package pool

import (
	"math/bits"
	"sync"
)

const (
	minClassShift = 5  // 32 B
	maxClassShift = 16 // 64 KiB
)

// BufferSource hands out ByteBuffers for a single I/O attempt.
type BufferSource interface {
	// Get returns a buffer in fill mode with capacity exactly n.
	Get(n int) *ByteBuffer
	// Put hands the buffer back. The caller must not use it afterwards.
	Put(b *ByteBuffer)
}

// HeapSource allocates a fresh buffer on every Get and lets the GC reclaim it.
type HeapSource struct{}

func (HeapSource) Get(n int) *ByteBuffer { return Allocate(n) }

func (HeapSource) Put(*ByteBuffer) {}

// SizeClassPool recycles backing arrays keyed by power-of-two size class.
// Requests above 64 KiB bypass the pool.
type SizeClassPool struct {
	classes [maxClassShift - minClassShift + 1]sync.Pool
}

// NewSizeClassPool constructs an empty pool.
func NewSizeClassPool() *SizeClassPool {
	p := &SizeClassPool{}
	for i := range p.classes {
		size := 1 << (minClassShift + i)
		p.classes[i].New = func() any {
			b := make([]byte, size)
			return &b
		}
	}
	return p
}

// classOf returns the index of the smallest class holding n bytes, or -1.
func classOf(n int) int {
	if n <= 1<<minClassShift {
		return 0
	}
	shift := bits.Len(uint(n - 1))
	if shift > maxClassShift {
		return -1
	}
	return shift - minClassShift
}

// Get returns a buffer with capacity exactly n backed by a pooled array.
func (p *SizeClassPool) Get(n int) *ByteBuffer {
	idx := classOf(n)
	if idx < 0 {
		return Allocate(n)
	}
	arr := p.classes[idx].Get().(*[]byte)
	b := (*arr)[:n]
	clear(b)
	return Wrap(b)
}

// Put returns the backing array of b to its class.
func (p *SizeClassPool) Put(b *ByteBuffer) {
	if b == nil {
		return
	}
	full := b.buf[:cap(b.buf)]
	idx := classOf(len(full))
	if idx < 0 || len(full) != 1<<(minClassShift+idx) {
		return
	}
	b.buf = nil
	b.position, b.limit, b.mark = 0, 0, -1
	p.classes[idx].Put(&full)
}

package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassOf(t *testing.T) {
	cases := map[int]int{
		0:         0,
		1:         0,
		32:        0,
		33:        1,
		64:        1,
		1024:      5,
		1025:      6,
		64 * 1024: 11,
		64*1024 + 1: -1,
	}
	for n, want := range cases {
		require.Equal(t, want, classOf(n), "n=%d", n)
	}
}

func TestSizeClassPool_ExactCapacity(t *testing.T) {
	p := NewSizeClassPool()
	for _, n := range []int{0, 5, 32, 1000, 1024, 70000} {
		b := p.Get(n)
		require.Equal(t, n, b.Capacity())
		require.Equal(t, n, b.Limit())
		require.Equal(t, 0, b.Position())
		p.Put(b)
	}
}

func TestSizeClassPool_ReusedBufferIsZeroed(t *testing.T) {
	p := NewSizeClassPool()
	b := p.Get(16)
	require.NoError(t, b.PutString("secretsecret"))
	p.Put(b)

	again := p.Get(16)
	for _, c := range again.buf {
		require.Zero(t, c)
	}
}

func TestHeapSource(t *testing.T) {
	var src BufferSource = HeapSource{}
	b := src.Get(1024)
	require.Equal(t, 1024, b.Capacity())
	src.Put(b)
}

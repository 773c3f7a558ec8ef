package concurrency

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTaskQueue_FIFO(t *testing.T) {
	q := NewTaskQueue[int]()
	for i := 0; i < 100; i++ {
		require.True(t, q.Push(i))
	}
	require.Equal(t, 100, q.Len())

	got := q.Drain(nil, 10)
	require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)

	got = q.Drain(got[:0], 0)
	require.Len(t, got, 90)
	require.Equal(t, 10, got[0])
	require.Equal(t, 99, got[89])
	require.Zero(t, q.Len())
}

func TestTaskQueue_ConcurrentProducers(t *testing.T) {
	q := NewTaskQueue[int]()
	const producers, perProducer = 8, 500

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(base + i)
			}
		}(p * perProducer)
	}

	seen := make(map[int]bool)
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	var batch []int
	for {
		batch = q.Drain(batch[:0], 0)
		for _, v := range batch {
			require.False(t, seen[v], "duplicate %d", v)
			seen[v] = true
		}
		select {
		case <-done:
			for _, v := range q.Drain(batch[:0], 0) {
				seen[v] = true
			}
			require.Len(t, seen, producers*perProducer)
			return
		default:
		}
	}
}

func TestTaskQueue_CloseReturnsRemainder(t *testing.T) {
	q := NewTaskQueue[string]()
	q.Push("a")
	q.Push("b")
	rest := q.Close()
	require.Equal(t, []string{"a", "b"}, rest)
	require.False(t, q.Push("c"))
	require.Empty(t, q.Close())
}

package control

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMetricsRegistry_Counters(t *testing.T) {
	mr := NewMetricsRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				mr.Counter(Reads).Inc()
			}
		}()
	}
	wg.Wait()
	mr.Counter(BytesRead).Add(42)

	snap := mr.GetSnapshot()
	require.Equal(t, uint64(4000), snap[Reads])
	require.Equal(t, uint64(42), snap[BytesRead])
	require.Contains(t, snap, "uptime")
}

func TestMetricsRegistry_Probes(t *testing.T) {
	mr := NewMetricsRegistry()
	state := "connecting"
	mr.RegisterProbe("state", func() any { return state })
	require.Equal(t, "connecting", mr.GetSnapshot()["state"])
	state = "connected"
	require.Equal(t, "connected", mr.GetSnapshot()["state"])
}

func TestKeysSorted(t *testing.T) {
	keys := Keys(map[string]any{"b": 1, "a": 2, "c": 3})
	require.Equal(t, []string{"a", "b", "c"}, keys)
}

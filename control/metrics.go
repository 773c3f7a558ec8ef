// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics collector for the client connection lifecycle.
// Counters are lock-free; gauges are probe functions sampled on snapshot.

package control

import (
	"sort"
	"sync"
	"time"

	"code.hybscloud.com/atomix"
)

// Counter names recorded by the client.
const (
	ConnectAttempts = "connect_attempts"
	ConnectFailures = "connect_failures"
	Connects        = "connects"
	Reads           = "reads"
	EmptyReads      = "empty_reads"
	BytesRead       = "bytes_read"
	Writes          = "writes"
	ShortWrites     = "short_writes"
	BytesWritten    = "bytes_written"
	WriteFailures   = "write_failures"
	Closes          = "closes"
	HandlerErrors   = "handler_errors"
)

// Counter is a monotonically increasing value.
type Counter struct {
	v atomix.Uint64
}

// Add increments the counter by n.
func (c *Counter) Add(n uint64) {
	c.v.Add(n)
}

// Inc increments the counter by one.
func (c *Counter) Inc() {
	c.v.Add(1)
}

// Load returns the current value.
func (c *Counter) Load() uint64 {
	return c.v.Load()
}

// MetricsRegistry holds named counters and gauge probes.
type MetricsRegistry struct {
	mu       sync.RWMutex
	counters map[string]*Counter
	probes   map[string]func() any
	started  time.Time
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		counters: make(map[string]*Counter),
		probes:   make(map[string]func() any),
		started:  time.Now(),
	}
}

// Counter returns the counter registered under name, creating it on first use.
func (mr *MetricsRegistry) Counter(name string) *Counter {
	mr.mu.RLock()
	c, ok := mr.counters[name]
	mr.mu.RUnlock()
	if ok {
		return c
	}
	mr.mu.Lock()
	defer mr.mu.Unlock()
	if c, ok = mr.counters[name]; ok {
		return c
	}
	c = &Counter{}
	mr.counters[name] = c
	return c
}

// RegisterProbe inserts a named gauge sampled on every snapshot.
func (mr *MetricsRegistry) RegisterProbe(name string, fn func() any) {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	mr.probes[name] = fn
}

// GetSnapshot returns counter values and sampled probes.
func (mr *MetricsRegistry) GetSnapshot() map[string]any {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	out := make(map[string]any, len(mr.counters)+len(mr.probes)+1)
	for k, c := range mr.counters {
		out[k] = c.Load()
	}
	for k, fn := range mr.probes {
		out[k] = fn()
	}
	out["uptime"] = time.Since(mr.started).Truncate(time.Millisecond).String()
	return out
}

// Keys returns the sorted names present in a snapshot.
func Keys(snapshot map[string]any) []string {
	keys := make([]string, 0, len(snapshot))
	for k := range snapshot {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics for the nioclient connection lifecycle.
//
// Provides concurrent-safe state handling primitives including:
//   - Lock-free counters updated from the event loop goroutine
//   - Gauge probes sampled at snapshot time
//   - Sorted snapshot keys for stable rendering
package control

// Package affinity pins the event loop's OS thread to a logical CPU.
package affinity

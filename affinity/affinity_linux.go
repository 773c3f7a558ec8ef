//go:build linux

// File: affinity/affinity_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux-specific implementation for setting thread CPU affinity.

package affinity

import (
	"fmt"

	"github.com/momentics/nioclient/api"
	"golang.org/x/sys/unix"
)

// setAffinityPlatform restricts the calling thread (pid 0) to cpuID.
func setAffinityPlatform(cpuID int) error {
	if cpuID < 0 || cpuID >= len(unix.CPUSet{})*64 {
		return fmt.Errorf("affinity: cpu %d: %w", cpuID, api.ErrInvalidArgument)
	}
	var set unix.CPUSet
	set.Set(cpuID)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("affinity: sched_setaffinity cpu %d: %w", cpuID, err)
	}
	return nil
}

func currentCPUsPlatform() ([]int, error) {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return nil, fmt.Errorf("affinity: sched_getaffinity: %w", err)
	}
	cpus := make([]int, 0, set.Count())
	for i := 0; i < len(set)*64; i++ {
		if set.IsSet(i) {
			cpus = append(cpus, i)
		}
	}
	return cpus, nil
}

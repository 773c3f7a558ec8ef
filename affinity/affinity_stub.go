//go:build !linux

// File: affinity/affinity_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.

package affinity

import (
	"fmt"

	"github.com/momentics/nioclient/api"
)

func setAffinityPlatform(cpuID int) error {
	return fmt.Errorf("affinity: cpu %d: %w", cpuID, api.ErrNotSupported)
}

func currentCPUsPlatform() ([]int, error) {
	return nil, fmt.Errorf("affinity: %w", api.ErrNotSupported)
}

// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral API for CPU affinity. Platform-specific implementations are located
// in separate files guarded by build tags.

package affinity

// SetAffinity pins the current OS thread to a given logical CPU.
// The caller must hold runtime.LockOSThread, otherwise the pin applies to
// whichever goroutine next runs on the thread.
// On unsupported platforms returns an error wrapping api.ErrNotSupported.
func SetAffinity(cpuID int) error {
	return setAffinityPlatform(cpuID)
}

// CurrentCPUs returns the logical CPUs the current OS thread may run on.
func CurrentCPUs() ([]int, error) {
	return currentCPUsPlatform()
}

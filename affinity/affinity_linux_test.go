//go:build linux

package affinity

import (
	"runtime"
	"testing"

	"github.com/momentics/nioclient/api"
	"github.com/stretchr/testify/require"
)

func TestSetAffinity_PinsThread(t *testing.T) {
	// No UnlockOSThread: the thread exits with the test goroutine instead of
	// going back to the scheduler with a narrowed mask.
	runtime.LockOSThread()

	allowed, err := CurrentCPUs()
	require.NoError(t, err)
	require.NotEmpty(t, allowed)

	target := allowed[len(allowed)-1]
	require.NoError(t, SetAffinity(target))
	pinned, err := CurrentCPUs()
	require.NoError(t, err)
	require.Equal(t, []int{target}, pinned)
}

func TestSetAffinity_RejectsOutOfRange(t *testing.T) {
	require.ErrorIs(t, SetAffinity(-1), api.ErrInvalidArgument)
	require.ErrorIs(t, SetAffinity(1<<20), api.ErrInvalidArgument)
}

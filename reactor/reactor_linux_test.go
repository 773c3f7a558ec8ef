//go:build linux

package reactor

import (
	"testing"
	"time"

	"github.com/momentics/nioclient/api"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func socketPair(t *testing.T) (int, int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = unix.Close(fds[0])
		_ = unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

func newTestSelector(t *testing.T) api.Selector {
	t.Helper()
	sel, err := NewSelector()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sel.Close() })
	return sel
}

func TestSelector_ReadReadiness(t *testing.T) {
	sel := newTestSelector(t)
	a, b := socketPair(t)
	require.NoError(t, sel.Register(a, api.InterestRead))

	ready, err := sel.Wait(10 * time.Millisecond)
	require.NoError(t, err)
	require.Empty(t, ready, "nothing written yet")

	_, err = unix.Write(b, []byte("x"))
	require.NoError(t, err)

	ready, err = sel.Wait(time.Second)
	require.NoError(t, err)
	require.Len(t, ready, 1)
	require.Equal(t, a, ready[0].Fd)
	require.True(t, ready[0].Ready.Has(api.InterestRead))
	require.False(t, ready[0].Ready.Has(api.InterestWrite))
}

func TestSelector_WriteInterestOnlyWhenRegistered(t *testing.T) {
	sel := newTestSelector(t)
	a, _ := socketPair(t)
	require.NoError(t, sel.Register(a, api.InterestRead))

	ready, err := sel.Wait(10 * time.Millisecond)
	require.NoError(t, err)
	require.Empty(t, ready)

	require.NoError(t, sel.Modify(a, api.InterestRead|api.InterestWrite))
	i, ok := sel.Interest(a)
	require.True(t, ok)
	require.Equal(t, api.InterestRead|api.InterestWrite, i)

	ready, err = sel.Wait(time.Second)
	require.NoError(t, err)
	require.Len(t, ready, 1)
	require.Equal(t, api.InterestWrite, ready[0].Ready)
}

func TestSelector_ConnectInterestMapsToWritable(t *testing.T) {
	sel := newTestSelector(t)
	a, _ := socketPair(t)
	require.NoError(t, sel.Register(a, api.InterestConnect))

	ready, err := sel.Wait(time.Second)
	require.NoError(t, err)
	require.Len(t, ready, 1)
	require.Equal(t, api.InterestConnect, ready[0].Ready)
}

func TestSelector_HangupReportsRead(t *testing.T) {
	sel := newTestSelector(t)
	a, b := socketPair(t)
	require.NoError(t, sel.Register(a, api.InterestRead))
	require.NoError(t, unix.Shutdown(b, unix.SHUT_WR))

	ready, err := sel.Wait(time.Second)
	require.NoError(t, err)
	require.Len(t, ready, 1)
	require.True(t, ready[0].Ready.Has(api.InterestRead))
	require.True(t, ready[0].Hangup)
}

func TestSelector_Unregister(t *testing.T) {
	sel := newTestSelector(t)
	a, b := socketPair(t)
	require.NoError(t, sel.Register(a, api.InterestRead))
	require.NoError(t, sel.Unregister(a))
	require.ErrorIs(t, sel.Unregister(a), api.ErrNotRegistered)
	require.ErrorIs(t, sel.Modify(a, api.InterestRead), api.ErrNotRegistered)

	_, err := unix.Write(b, []byte("x"))
	require.NoError(t, err)
	ready, err := sel.Wait(20 * time.Millisecond)
	require.NoError(t, err)
	require.Empty(t, ready)
}

func TestSelector_WakeInterruptsWait(t *testing.T) {
	sel := newTestSelector(t)
	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = sel.Wake()
	}()
	start := time.Now()
	ready, err := sel.Wait(5 * time.Second)
	require.NoError(t, err)
	require.Empty(t, ready)
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestSelector_Close(t *testing.T) {
	sel, err := NewSelector(WithMaxEvents(4))
	require.NoError(t, err)
	require.NoError(t, sel.Close())
	require.NoError(t, sel.Close(), "close is idempotent")

	_, err = sel.Wait(time.Millisecond)
	require.ErrorIs(t, err, api.ErrSelectorClosed)
	require.ErrorIs(t, sel.Wake(), api.ErrSelectorClosed)
	require.ErrorIs(t, sel.Register(0, api.InterestRead), api.ErrSelectorClosed)
}

func TestTimeoutMillis(t *testing.T) {
	require.Equal(t, -1, timeoutMillis(-1))
	require.Equal(t, 0, timeoutMillis(0))
	require.Equal(t, 1, timeoutMillis(time.Microsecond))
	require.Equal(t, 1000, timeoutMillis(time.Second))
	require.Equal(t, 1001, timeoutMillis(time.Second+time.Nanosecond))
}

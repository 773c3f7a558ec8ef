package transport

import (
	"context"
	"testing"

	"github.com/momentics/nioclient/api"
	"github.com/stretchr/testify/require"
)

func TestResolve_Literal(t *testing.T) {
	ap, err := Resolve(context.Background(), "127.0.0.1", 12345)
	require.NoError(t, err)
	require.True(t, ap.Addr().Is4())
	require.Equal(t, uint16(12345), ap.Port())

	ap, err = Resolve(context.Background(), "::1", 80)
	require.NoError(t, err)
	require.True(t, ap.Addr().Is6())
}

func TestResolve_Localhost(t *testing.T) {
	ap, err := Resolve(context.Background(), "localhost", 8080)
	require.NoError(t, err)
	require.True(t, ap.Addr().IsLoopback())
}

func TestResolve_BadPort(t *testing.T) {
	for _, port := range []int{0, -1, 65536} {
		_, err := Resolve(context.Background(), "127.0.0.1", port)
		require.ErrorIs(t, err, api.ErrInvalidArgument)
	}
}

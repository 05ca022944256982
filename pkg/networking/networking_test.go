package networking

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsLoopback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		host     string
		expected bool
	}{
		{"ipv4 loopback", "127.0.0.1", true},
		{"ipv4 loopback range", "127.1.2.3", true},
		{"ipv6 loopback", "::1", true},
		{"localhost name", "localhost", true},
		{"any address", "0.0.0.0", false},
		{"public address", "8.8.8.8", false},
		{"private address", "192.168.1.10", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, IsLoopback(tt.host))
		})
	}
}

func TestEnsureLoopback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		host     string
		expected string
	}{
		{"loopback preserved", "127.0.0.1", "127.0.0.1"},
		{"localhost preserved", "localhost", "localhost"},
		{"empty host defaulted", "", DefaultHost},
		{"external host rewritten", "0.0.0.0", DefaultHost},
		{"public host rewritten", "203.0.113.7", DefaultHost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, EnsureLoopback(tt.host))
		})
	}
}

func TestIsAvailable(t *testing.T) {
	t.Parallel()

	// A port we just released should be available.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	assert.True(t, IsAvailable(port))

	// A port held open should not be.
	held, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { held.Close() })
	assert.False(t, IsAvailable(held.Addr().(*net.TCPAddr).Port))
}

package envutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestString(t *testing.T) {
	get := env(map[string]string{"A": "  x ", "B": "   "})
	require.Equal(t, "x", String(get, "A", "def"))
	require.Equal(t, "def", String(get, "B", "def"))
	require.Equal(t, "def", String(get, "C", "def"))
}

func TestBool(t *testing.T) {
	get := env(map[string]string{"T": "Yes", "F": "off", "X": "maybe"})
	require.True(t, Bool(get, "T", false))
	require.False(t, Bool(get, "F", true))
	require.True(t, Bool(get, "X", true))
	require.False(t, Bool(get, "missing", false))
}

func TestDuration(t *testing.T) {
	get := env(map[string]string{"OK": "2m", "BAD": "soon", "NEG": "-1s"})
	require.Equal(t, 2*time.Minute, Duration(get, "OK", time.Second))
	require.Equal(t, time.Second, Duration(get, "BAD", time.Second))
	require.Equal(t, time.Second, Duration(get, "NEG", time.Second))
	require.Equal(t, time.Second, Duration(get, "missing", time.Second))
}

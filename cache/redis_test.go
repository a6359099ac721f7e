package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"forge-build-publisher/config"
)

func TestOptions(t *testing.T) {
	opts := Options(config.RedisConfig{Host: "cache.local", Port: 6380, User: " bob ", Password: "pw", Scheme: "redis"})
	require.Equal(t, "cache.local:6380", opts.Addr)
	require.Equal(t, "bob", opts.Username)
	require.Equal(t, "pw", opts.Password)
	require.Nil(t, opts.TLSConfig)
}

func TestOptions_TLS(t *testing.T) {
	opts := Options(config.RedisConfig{Host: "cache.local", Port: 6379, Scheme: "rediss"})
	require.NotNil(t, opts.TLSConfig)
}

func TestNewRedis_DisabledWithoutHost(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	client, err := NewRedis(lc, &config.Config{}, zap.NewNop().Sugar())
	require.NoError(t, err)
	require.Nil(t, client)
}

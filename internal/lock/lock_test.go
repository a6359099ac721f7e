package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"forge-build-publisher/config"
)

type fakeRedis struct {
	values  map[string]string
	ttls    map[string]time.Duration
	setErr  error
	evalled int
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	if f.setErr != nil {
		return redis.NewBoolResult(false, f.setErr)
	}
	if _, ok := f.values[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.values[key] = value.(string)
	f.ttls[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	f.evalled++
	if f.values[keys[0]] == args[0].(string) {
		delete(f.values, keys[0])
		return redis.NewCmdResult(int64(1), nil)
	}
	return redis.NewCmdResult(int64(0), nil)
}

func TestAcquireRelease(t *testing.T) {
	r := newFakeRedis()
	l := newLocker(r, time.Minute, zap.NewNop().Sugar())

	lease, err := l.Acquire(context.Background(), "1234")
	require.NoError(t, err)
	require.Contains(t, r.values, "forge:publish:1234")
	require.Equal(t, time.Minute, r.ttls["forge:publish:1234"])

	_, err = l.Acquire(context.Background(), "1234")
	require.ErrorIs(t, err, ErrHeld)

	require.NoError(t, lease.Release(context.Background()))
	require.NotContains(t, r.values, "forge:publish:1234")

	_, err = l.Acquire(context.Background(), "1234")
	require.NoError(t, err)
}

func TestReleaseLeavesForeignToken(t *testing.T) {
	r := newFakeRedis()
	l := newLocker(r, time.Minute, zap.NewNop().Sugar())

	lease, err := l.Acquire(context.Background(), "7")
	require.NoError(t, err)

	// Simulate expiry and takeover by another run.
	r.values["forge:publish:7"] = "someone-else"

	require.NoError(t, lease.Release(context.Background()))
	require.Equal(t, "someone-else", r.values["forge:publish:7"])
}

func TestAcquireError(t *testing.T) {
	r := newFakeRedis()
	r.setErr = errors.New("connection refused")
	l := newLocker(r, 0, zap.NewNop().Sugar())

	_, err := l.Acquire(context.Background(), "1")
	require.ErrorContains(t, err, "connection refused")
	require.NotErrorIs(t, err, ErrHeld)
}

func TestDisabledLocker(t *testing.T) {
	l := NewLocker(nil, &config.Config{}, zap.NewNop().Sugar())
	require.False(t, l.Enabled())

	lease, err := l.Acquire(context.Background(), "1")
	require.NoError(t, err)
	require.NoError(t, lease.Release(context.Background()))
}

package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"forge-build-publisher/config"
)

var ErrHeld = errors.New("another publish run holds the lock for this item")

const keyPrefix = "forge:publish:"

// releaseScript deletes the key only when it still carries our token.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

type redisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// Locker serializes publish runs per item across processes.
type Locker struct {
	client redisClient
	ttl    time.Duration
	logger *zap.SugaredLogger
}

func NewLocker(client *redis.Client, cfg *config.Config, logger *zap.SugaredLogger) *Locker {
	if client == nil {
		return &Locker{logger: logger}
	}
	return newLocker(client, cfg.Redis.LockTTL, logger)
}

func newLocker(client redisClient, ttl time.Duration, logger *zap.SugaredLogger) *Locker {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Locker{client: client, ttl: ttl, logger: logger}
}

func (l *Locker) Enabled() bool { return l.client != nil }

func Key(itemID string) string { return keyPrefix + itemID }

type Lease struct {
	locker *Locker
	key    string
	token  string
}

// Acquire returns ErrHeld when another run owns the item. Without Redis it
// returns a lease whose Release does nothing.
func (l *Locker) Acquire(ctx context.Context, itemID string) (*Lease, error) {
	if !l.Enabled() {
		return &Lease{}, nil
	}

	key := Key(itemID)
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire %s: %w", key, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (item %s)", ErrHeld, itemID)
	}
	l.logger.Debugw("publish_lock_acquired", "key", key, "ttl", l.ttl.String())
	return &Lease{locker: l, key: key, token: token}, nil
}

func (le *Lease) Release(ctx context.Context) error {
	if le == nil || le.locker == nil {
		return nil
	}
	n, err := le.locker.client.Eval(ctx, releaseScript, []string{le.key}, le.token).Int64()
	if err != nil {
		return fmt.Errorf("release %s: %w", le.key, err)
	}
	if n == 0 {
		le.locker.logger.Warnw("publish_lock_expired_before_release", "key", le.key)
	}
	return nil
}

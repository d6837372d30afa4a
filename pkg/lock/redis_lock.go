// Package lock provides short-lived Redis claims: an advisory mutex for
// background jobs and a first-writer-wins marker for idempotent requests.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrNotHeld = errors.New("lock not held")

// Locker hands out claims on keys. Acquire returns ok=false, without an
// error, when someone else already holds the key.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (claim *Claim, ok bool, err error)
}

// Claim is a held key. The token ties the claim to its holder so an expired
// holder never deletes a successor's key.
type Claim struct {
	Key   string
	Token string

	release func(ctx context.Context, key, token string) error
}

// Release gives the key back early; otherwise the claim lapses with its TTL.
func (c *Claim) Release(ctx context.Context) error {
	if c == nil || c.release == nil {
		return nil
	}
	return c.release(ctx, c.Key, c.Token)
}

// RedisLocker implements Locker with SET NX PX and a compare-and-delete release
type RedisLocker struct {
	redis *redis.Client
}

func NewRedisLocker(redisClient *redis.Client) *RedisLocker {
	return &RedisLocker{redis: redisClient}
}

// Lua script for atomic release
// KEYS[1] = lock key
// ARGV[1] = holder token
var luaCompareAndDelete = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`)

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (*Claim, bool, error) {
	token := uuid.NewString()

	ok, err := l.redis.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}

	return &Claim{Key: key, Token: token, release: l.release}, true, nil
}

func (l *RedisLocker) release(ctx context.Context, key, token string) error {
	n, err := luaCompareAndDelete.Run(ctx, l.redis, []string{key}, token).Int64()
	if err != nil {
		return fmt.Errorf("failed to release %s: %w", key, err)
	}
	if n == 0 {
		return ErrNotHeld
	}
	return nil
}

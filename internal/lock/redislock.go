// Package lock serialises catalog maintenance across processes sharing one Redis.
package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-drycleaning/internal/resilience"
)

// KeyPrefix namespaces lock keys next to the catalog cache entries.
const KeyPrefix = "pricing:lock:"

const maxBackoffDoublings = 5

// ErrNotConfigured is returned when the locker has no Redis client.
var ErrNotConfigured = errors.New("lock: redis client not configured")

var releaseScript = redis.NewScript(`if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
else
  return 0
end`)

// Locker is a Redis SET NX lock with token-checked release.
type Locker struct {
	Client       redis.UniversalClient
	RetryBackoff time.Duration
}

// WithLock runs fn while holding the lock for name. The lock is released when fn
// returns, error or not. If the lock is not acquired before ctx ends, ctx.Err() is
// returned and fn is not called.
func (l Locker) WithLock(ctx context.Context, name string, ttl time.Duration, fn func(context.Context) error) error {
	if l.Client == nil {
		return ErrNotConfigured
	}
	if fn == nil {
		return errors.New("lock: callback not provided")
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	retry := l.RetryBackoff
	if retry <= 0 {
		retry = 50 * time.Millisecond
	}
	key := KeyPrefix + name
	token := uuid.NewString()

	for attempt := 1; ; attempt++ {
		ok, err := l.Client.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return err
		}
		if ok {
			defer l.release(key, token)
			return fn(ctx)
		}
		timer := time.NewTimer(resilience.Backoff(retry, min(attempt, maxBackoffDoublings), 0.2))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (l Locker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = releaseScript.Run(ctx, l.Client, []string{key}, token).Err()
}

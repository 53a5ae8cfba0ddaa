package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// compareAndDelete removes the key only while it still holds our token.
var compareAndDelete = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker shares leases across replicas with SET NX PX.
type RedisLocker struct {
	client redis.UniversalClient
}

func NewRedis(client redis.UniversalClient) *RedisLocker {
	return &RedisLocker{client: client}
}

func (r *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (*Lease, error) {
	lease := newLease(key, "redis", r)
	ok, err := r.client.SetNX(ctx, key, lease.Token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lock acquire: %w", err)
	}
	if !ok {
		return nil, ErrHeld
	}
	return lease, nil
}

func (r *RedisLocker) release(ctx context.Context, key, token string) error {
	if err := compareAndDelete.Run(ctx, r.client, []string{key}, token).Err(); err != nil {
		return fmt.Errorf("redis lock release: %w", err)
	}
	return nil
}

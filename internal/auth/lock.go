package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const seedLockKey = "auth:seed:lock"

// RedisLocker guards the seeding routine across instances with a SET NX
// key. The TTL bounds how long a crashed seeder can hold the lock.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLocker creates a redis-backed seed lock
func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		client: client,
		ttl:    ttl,
	}
}

// Acquire attempts to take the lock; false means another instance holds it
func (l *RedisLocker) Acquire(ctx context.Context) (bool, error) {
	return l.client.SetNX(ctx, seedLockKey, "1", l.ttl).Result()
}

// Release drops the lock
func (l *RedisLocker) Release(ctx context.Context) error {
	return l.client.Del(ctx, seedLockKey).Err()
}

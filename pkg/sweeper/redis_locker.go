package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLocker implements leader election with a SET NX key. The TTL bounds
// how long a crashed holder can block other replicas.
type RedisLocker struct {
	client *redis.Client
	holder string
}

// NewRedisLocker creates a locker against the given redis URL. The holder id
// should be unique per replica.
func NewRedisLocker(redisURL, holder string) (*RedisLocker, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	return &RedisLocker{
		client: redis.NewClient(opts),
		holder: holder,
	}, nil
}

// Acquire takes the lock if free. Returns false when another holder owns it.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	acquired, err := l.client.SetNX(ctx, key, l.holder, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("setnx %s: %w", key, err)
	}

	return acquired, nil
}

// releaseScript deletes the lock only when this replica still holds it, so a
// slow sweep cannot release a lock that expired and was re-acquired.
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	end
	return 0
`)

// Release frees the lock if still held by this replica.
func (l *RedisLocker) Release(ctx context.Context, key string) error {
	err := releaseScript.Run(ctx, l.client, []string{key}, l.holder).Err()
	if err != nil {
		return fmt.Errorf("releasing %s: %w", key, err)
	}

	return nil
}

// Close closes the underlying client.
func (l *RedisLocker) Close() error {
	return l.client.Close()
}

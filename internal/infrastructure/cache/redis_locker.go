package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultLockPrefix = "showroom:lock:"
	lockRetryInterval = 50 * time.Millisecond
	releaseTimeout    = 2 * time.Second
)

// releaseScript deletes the key only while it still holds the caller's token,
// so an expired holder cannot drop a lock that was re-acquired by someone else
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisAggregateLocker implements AggregateLocker with SET NX PX.
// It serializes ticks on one aggregate across every engine process sharing the Redis.
type RedisAggregateLocker struct {
	client    *redis.Client
	keyPrefix string
	wait      time.Duration
}

// NewRedisClient opens a client and pings it once
func NewRedisClient(cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisAggregateLocker connects to Redis and returns a locker that waits up to wait
// for a held key before giving up
func NewRedisAggregateLocker(cfg RedisConfig, wait time.Duration) (*RedisAggregateLocker, error) {
	client, err := NewRedisClient(cfg)
	if err != nil {
		return nil, err
	}
	return NewRedisAggregateLockerWithClient(client, defaultLockPrefix, wait), nil
}

// NewRedisAggregateLockerWithClient creates a locker over an existing client
func NewRedisAggregateLockerWithClient(client *redis.Client, keyPrefix string, wait time.Duration) *RedisAggregateLocker {
	if keyPrefix == "" {
		keyPrefix = defaultLockPrefix
	}
	return &RedisAggregateLocker{
		client:    client,
		keyPrefix: keyPrefix,
		wait:      wait,
	}
}

// Lock acquires key for ttl. It polls while another holder owns the key and returns
// shared.ErrLockNotAcquired once the wait budget or the context runs out.
func (l *RedisAggregateLocker) Lock(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	redisKey := l.keyPrefix + key
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		acquired, err := l.client.SetNX(ctx, redisKey, token, ttl).Result()
		if err != nil && ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrLockNotAcquired, ctx.Err())
		}
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if acquired {
			return func() { l.release(redisKey, token) }, nil
		}

		if !time.Now().Before(deadline) {
			return nil, shared.ErrLockNotAcquired
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", shared.ErrLockNotAcquired, ctx.Err())
		case <-time.After(lockRetryInterval):
		}
	}
}

// release runs detached from the tick's context, which may already be cancelled
func (l *RedisAggregateLocker) release(redisKey, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()
	_ = releaseScript.Run(ctx, l.client, []string{redisKey}, token).Err()
}

// Close closes the Redis client
func (l *RedisAggregateLocker) Close() error {
	return l.client.Close()
}

// Ensure RedisAggregateLocker implements AggregateLocker
var _ shared.AggregateLocker = (*RedisAggregateLocker)(nil)

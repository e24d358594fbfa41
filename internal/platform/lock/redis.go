// Package lock provides the distributed lock that keeps scheduled
// reconciliation runs from overlapping across replicas.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// RedisLocker obtains short-lived locks through redislock.
type RedisLocker struct {
	client *redis.Client
	locker *redislock.Client
}

// NewRedisLocker connects to the Redis instance at redisURL
// (for example redis://localhost:6379/0) and checks it answers.
func NewRedisLocker(ctx context.Context, redisURL string) (*RedisLocker, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return NewRedisLockerFromClient(client), nil
}

// NewRedisLockerFromClient wraps an existing client.
func NewRedisLockerFromClient(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client, locker: redislock.New(client)}
}

// TryLock makes a single attempt to obtain key for ttl. ok is false when the
// lock is held elsewhere.
func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	lock, err := l.locker.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	release := func(ctx context.Context) error {
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return err
		}
		return nil
	}
	return release, true, nil
}

// Close closes the underlying Redis client.
func (l *RedisLocker) Close() error {
	return l.client.Close()
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter counts failed logins per key (the normalized email).
type LoginLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	RecordFailure(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

// RedisLoginLimiter keeps a failure counter per key that expires one window
// after the most recent failure.
type RedisLoginLimiter struct {
	client      ICacheClient
	maxAttempts int64
	window      time.Duration
}

func NewRedisLoginLimiter(client ICacheClient, maxAttempts int, window time.Duration) *RedisLoginLimiter {
	return &RedisLoginLimiter{
		client:      client,
		maxAttempts: int64(maxAttempts),
		window:      window,
	}
}

func loginFailKey(key string) string {
	return "login_fail:" + key
}

func (l *RedisLoginLimiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := l.client.Get(ctx, loginFailKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return true, fmt.Errorf("read login failure counter: %w", err)
	}
	return count < l.maxAttempts, nil
}

// RecordFailure increments the counter and restarts its window. INCR and
// EXPIRE run in one MULTI so a counter never outlives its window.
func (l *RedisLoginLimiter) RecordFailure(ctx context.Context, key string) error {
	k := loginFailKey(key)
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, k)
		pipe.Expire(ctx, k, l.window)
		return nil
	})
	if err != nil {
		return fmt.Errorf("record login failure: %w", err)
	}
	return nil
}

func (l *RedisLoginLimiter) Reset(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, loginFailKey(key)).Err(); err != nil {
		return fmt.Errorf("reset login failure counter: %w", err)
	}
	return nil
}

// noopLoginLimiter is used when Redis is disabled.
type noopLoginLimiter struct{}

func (noopLoginLimiter) Allow(context.Context, string) (bool, error) { return true, nil }
func (noopLoginLimiter) RecordFailure(context.Context, string) error { return nil }
func (noopLoginLimiter) Reset(context.Context, string) error         { return nil }

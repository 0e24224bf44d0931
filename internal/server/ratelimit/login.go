// Package ratelimit throttles repeated failed logins for the same email.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrLimiterUnavailable = errors.New("login limiter unavailable")

// LoginLimiter counts failed logins per email inside a fixed window.
type LoginLimiter interface {
	// Allow reports whether another attempt for email may be checked.
	Allow(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

type RedisLoginLimiter struct {
	redis       redis.UniversalClient
	maxAttempts int
	window      time.Duration
}

func NewRedisLoginLimiter(client redis.UniversalClient, maxAttempts int, window time.Duration) *RedisLoginLimiter {
	return &RedisLoginLimiter{redis: client, maxAttempts: maxAttempts, window: window}
}

// key hashes the email so addresses are not stored in Redis in clear.
func (l *RedisLoginLimiter) key(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "writerlab:login:" + hex.EncodeToString(sum[:])
}

func (l *RedisLoginLimiter) Allow(ctx context.Context, email string) (bool, error) {
	n, err := l.redis.Get(ctx, l.key(email)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return true, nil
		}
		return true, fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}
	return n < l.maxAttempts, nil
}

// RecordFailure counts one failed attempt. The window starts at the first
// failure and is not extended by later ones.
func (l *RedisLoginLimiter) RecordFailure(ctx context.Context, email string) error {
	key := l.key(email)

	n, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}
	if n == 1 {
		if err := l.redis.Expire(ctx, key, l.window).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
		}
	}
	return nil
}

func (l *RedisLoginLimiter) Reset(ctx context.Context, email string) error {
	if err := l.redis.Del(ctx, l.key(email)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}
	return nil
}

// Nop never limits. It is used when no Redis address is configured.
type Nop struct{}

func (Nop) Allow(context.Context, string) (bool, error) { return true, nil }
func (Nop) RecordFailure(context.Context, string) error { return nil }
func (Nop) Reset(context.Context, string) error         { return nil }

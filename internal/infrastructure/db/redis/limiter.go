package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const attemptKeyPrefix = "login:attempts:"

// allowScript prunes attempts older than the window and reports how long the
// caller must wait, in milliseconds, or 0 when another attempt is allowed.
// KEYS[1] = attempt set, ARGV[1] = limit, ARGV[2] = window ms, ARGV[3] = now ms
var allowScript = redis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, 0, now - window)
local count = redis.call('ZCARD', key)
if count < limit then
    return 0
end
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local wait = window - (now - tonumber(oldest[2]))
if wait < 1 then
    wait = 1
end
return wait
`)

// AttemptLimiter is a sliding-window login limiter backed by a Redis sorted
// set per key. Members are attempt timestamps.
type AttemptLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewAttemptLimiter allows limit attempts per key inside window.
func NewAttemptLimiter(client *redis.Client, limit int, window time.Duration) *AttemptLimiter {
	return &AttemptLimiter{client: client, limit: limit, window: window, now: time.Now}
}

func (l *AttemptLimiter) Allow(ctx context.Context, key string) (int, error) {
	res, err := allowScript.Run(ctx, l.client, []string{l.key(key)},
		l.limit, l.window.Milliseconds(), l.now().UnixMilli()).Int64()
	if err != nil {
		return 0, fmt.Errorf("login limiter: %w", err)
	}
	return retrySeconds(res), nil
}

func (l *AttemptLimiter) Record(ctx context.Context, key string) error {
	now := l.now().UnixMilli()
	k := l.key(key)

	pipe := l.client.TxPipeline()
	pipe.ZAdd(ctx, k, redis.Z{Score: float64(now), Member: fmt.Sprintf("%d-%s", now, uuid.NewString())})
	pipe.PExpire(ctx, k, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record login attempt: %w", err)
	}
	return nil
}

func (l *AttemptLimiter) Reset(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, l.key(key)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("reset login attempts: %w", err)
	}
	return nil
}

func (l *AttemptLimiter) key(key string) string {
	return attemptKeyPrefix + key
}

// retrySeconds rounds a millisecond wait up to whole seconds.
func retrySeconds(ms int64) int {
	if ms <= 0 {
		return 0
	}
	return int((ms + 999) / 1000)
}

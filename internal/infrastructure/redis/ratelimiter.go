package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pendium/hippo-admin/internal/domain/ratelimit"
)

const rateLimitKeyPrefix = "rate_limit:"

// RateLimiter implements sliding-window rate limiting on Redis sorted
// sets. The check runs as a single Lua script so concurrent requests
// against the same key never double-count.
type RateLimiter struct {
	client *redis.Client
}

// NewRateLimiter creates a new Redis rate limiter.
func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{client: client}
}

var checkScript = redis.NewScript(`
	local key = KEYS[1]
	local window_start = tonumber(ARGV[1])
	local now = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local ttl = tonumber(ARGV[4])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
	local current = redis.call('ZCARD', key)

	if current < limit then
		redis.call('ZADD', key, now, now .. ':' .. math.random())
		redis.call('EXPIRE', key, ttl)
		local count = current + 1
		return {1, count, limit - count, 0}
	end

	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	local oldest_ms = now
	if #oldest > 0 then
		oldest_ms = tonumber(oldest[2])
	end
	return {0, current, 0, oldest_ms}
`)

// Check records the request and reports whether the key stayed under the
// limit for the trailing window.
func (r *RateLimiter) Check(ctx context.Context, key string, limit int, window time.Duration) (*ratelimit.Result, error) {
	now := time.Now()
	redisKey := rateLimitKeyPrefix + key

	raw, err := checkScript.Run(ctx, r.client, []string{redisKey},
		now.Add(-window).UnixMilli(),
		now.UnixMilli(),
		limit,
		int(window.Seconds())+1,
	).Result()
	if err != nil {
		return nil, fmt.Errorf("rate limit check: %w", err)
	}

	values, ok := raw.([]interface{})
	if !ok || len(values) != 4 {
		return nil, fmt.Errorf("rate limit check: unexpected script result %T", raw)
	}

	result := &ratelimit.Result{
		Allowed:   values[0].(int64) == 1,
		Limit:     limit,
		Remaining: int(values[2].(int64)),
	}
	if result.Allowed {
		result.ResetTime = now.Add(window)
		return result, nil
	}

	// The window frees a slot when its oldest entry ages out.
	oldestMs := values[3].(int64)
	result.ResetTime = time.UnixMilli(oldestMs).Add(window)
	result.RetryAfter = time.Until(result.ResetTime)
	if result.RetryAfter < 0 {
		result.RetryAfter = 0
	}
	return result, nil
}

// Reset clears the key's window.
func (r *RateLimiter) Reset(ctx context.Context, key string) error {
	return r.client.Del(ctx, rateLimitKeyPrefix+key).Err()
}

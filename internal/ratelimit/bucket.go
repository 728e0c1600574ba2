package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Decision is the outcome of one Allow call
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int64
	RetryAfter time.Duration
}

// Limiter admits or refuses one request for key
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// tokenBucketScript refills whole intervals since the last refill, then takes
// one token if available. Returns {allowed, tokens, retry_after_ms}.
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill_tokens = tonumber(ARGV[3])
local interval_ms = tonumber(ARGV[4])
local ttl_seconds = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])

if tokens == nil or last_refill == nil then
	tokens = capacity
	last_refill = now_ms
end

local elapsed = math.max(0, now_ms - last_refill)
local intervals = math.floor(elapsed / interval_ms)
if intervals > 0 then
	tokens = math.min(capacity, tokens + (intervals * refill_tokens))
	last_refill = last_refill + (intervals * interval_ms)
end

local allowed = 0
local retry_after_ms = 0
if tokens > 0 then
	allowed = 1
	tokens = tokens - 1
else
	retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)

return { allowed, tokens, retry_after_ms }
`)

// TokenBucket is a Redis-backed token bucket shared by every API replica.
// Each interval returns one token, up to capacity.
type TokenBucket struct {
	client   redis.Scripter
	capacity int
	interval time.Duration
	ttl      time.Duration
	now      func() time.Time
}

// NewTokenBucket creates a limiter allowing bursts of capacity and one
// request per interval sustained
func NewTokenBucket(client redis.Scripter, capacity int, interval time.Duration) (*TokenBucket, error) {
	if capacity <= 0 || interval <= 0 {
		return nil, fmt.Errorf("%s: capacity=%d interval=%s", ErrMsgInvalidSettings, capacity, interval)
	}
	ttl := interval * time.Duration(capacity) * 2
	if ttl < MinTTL {
		ttl = MinTTL
	}
	return &TokenBucket{
		client:   client,
		capacity: capacity,
		interval: interval,
		ttl:      ttl,
		now:      time.Now,
	}, nil
}

// Capacity returns the burst size
func (b *TokenBucket) Capacity() int {
	return b.capacity
}

// Allow takes one token for key
func (b *TokenBucket) Allow(ctx context.Context, key string) (Decision, error) {
	args := []interface{}{
		b.now().UnixMilli(),
		b.capacity,
		1,
		b.interval.Milliseconds(),
		int64(b.ttl / time.Second),
	}

	vals, err := tokenBucketScript.Run(ctx, b.client, []string{Key(key)}, args...).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("%s: %w", ErrMsgScriptFailed, err)
	}

	arr, ok := vals.([]interface{})
	if !ok || len(arr) != 3 {
		return Decision{}, fmt.Errorf("%s: %#v", ErrMsgUnexpectedResult, vals)
	}

	return Decision{
		Allowed:    asInt64(arr[0]) == 1,
		Limit:      b.capacity,
		Remaining:  asInt64(arr[1]),
		RetryAfter: time.Duration(asInt64(arr[2])) * time.Millisecond,
	}, nil
}

// Key builds the namespaced Redis key for a limiter subject
func Key(parts ...string) string {
	return KeyPrefix + ":" + strings.Join(parts, ":")
}

func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

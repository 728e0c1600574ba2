package ratelimit

import "time"

const (
	// KeyPrefix namespaces limiter state in Redis
	KeyPrefix = "pullbot:ratelimit"

	// MinTTL keeps idle buckets from lingering forever while outliving a refill
	MinTTL = time.Minute

	pingTimeout = 3 * time.Second
)

// Error and log messages
const (
	ErrMsgRedisPing        = "failed to ping redis"
	ErrMsgScriptFailed     = "rate limit script failed"
	ErrMsgUnexpectedResult = "unexpected rate limit script result"
	ErrMsgInvalidSettings  = "rate limit capacity and interval must be positive"

	LogMsgRedisConnected = "Connected to redis for rate limiting"
)

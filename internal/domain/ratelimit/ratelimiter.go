package ratelimit

import (
	"context"
	"time"
)

// Result is the outcome of one rate limit check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Limiter decides whether a request under the given key may proceed.
type Limiter interface {
	// Check records the request against the key's sliding window and
	// reports whether it stayed under the limit
	Check(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)

	// Reset clears the key's window
	Reset(ctx context.Context, key string) error
}

// Package ratelimit throttles repeated attempts per key (signin attempts per
// email) with a sliding window: at most MaxAttempts within the trailing
// Window are admitted.
package ratelimit

import (
	"context"
	"time"
)

// Limiter admits or rejects one attempt for key. Check returns
// common.ErrRateLimited (wrapped in a *LimitError) when the key has used up
// its attempts; Clear forgets every attempt recorded for key.
type Limiter interface {
	Check(ctx context.Context, key string) error
	Clear(ctx context.Context, key string) error
}

// Settings are shared by every Limiter implementation.
type Settings struct {
	MaxAttempts int
	Window      time.Duration
}

// LimitError reports a rejected attempt together with the time until the
// oldest recorded attempt leaves the window.
type LimitError struct {
	RetryAfter time.Duration
	Err        error
}

func (e *LimitError) Error() string { return e.Err.Error() }

func (e *LimitError) Unwrap() error { return e.Err }

package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

// MemoryLimiter keeps attempt timestamps in process memory. Check and Clear
// are serialized, so concurrent attempts for the same key can never be
// admitted beyond MaxAttempts. Buckets are pruned lazily but never evicted:
// memory grows with the number of distinct keys seen.
type MemoryLimiter struct {
	settings Settings
	now      func() time.Time

	mu      sync.Mutex
	buckets map[string][]time.Time
}

func NewMemoryLimiter(s Settings) *MemoryLimiter {
	return &MemoryLimiter{
		settings: s,
		now:      time.Now,
		buckets:  make(map[string][]time.Time),
	}
}

func (l *MemoryLimiter) Check(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.settings.Window)

	attempts := l.buckets[key]
	kept := attempts[:0]
	for _, ts := range attempts {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= l.settings.MaxAttempts {
		l.buckets[key] = kept
		return &LimitError{
			RetryAfter: kept[0].Add(l.settings.Window).Sub(now),
			Err:        common.ErrRateLimited,
		}
	}

	l.buckets[key] = append(kept, now)
	return nil
}

func (l *MemoryLimiter) Clear(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.buckets, key)
	return nil
}

// attempts returns the number of timestamps currently stored for key.
func (l *MemoryLimiter) attempts(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets[key])
}

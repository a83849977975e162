package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ratelimit:"

// slidingWindow prunes, counts and conditionally records one attempt in a
// single atomic step. Scores are unix microseconds.
//
// KEYS[1] bucket, ARGV[1] now, ARGV[2] window, ARGV[3] max attempts,
// ARGV[4] member, ARGV[5] ttl in milliseconds.
// Returns 0 when admitted, otherwise the score of the oldest attempt.
var slidingWindow = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1] - ARGV[2])
local count = redis.call('ZCARD', KEYS[1])
if count >= tonumber(ARGV[3]) then
  local oldest = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
  return tonumber(oldest[2])
end
redis.call('ZADD', KEYS[1], ARGV[1], ARGV[4])
redis.call('PEXPIRE', KEYS[1], ARGV[5])
return 0
`)

// RedisLimiter keeps one sorted set per key so that several server
// processes share the same attempt history.
type RedisLimiter struct {
	rdb      redis.UniversalClient
	settings Settings
	now      func() time.Time
}

func NewRedisLimiter(rdb redis.UniversalClient, s Settings) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, settings: s, now: time.Now}
}

func bucketKey(key string) string { return keyPrefix + key }

func (l *RedisLimiter) Check(ctx context.Context, key string) error {
	now := l.now()
	nowUs := now.UnixMicro()
	windowUs := l.settings.Window.Microseconds()

	member, err := common.MakeRandHexString(8)
	if err != nil {
		return err
	}
	member = strconv.FormatInt(nowUs, 10) + "-" + member

	oldest, err := slidingWindow.Run(ctx, l.rdb, []string{bucketKey(key)},
		nowUs, windowUs, l.settings.MaxAttempts, member, l.settings.Window.Milliseconds(),
	).Int64()
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	if oldest == 0 {
		return nil
	}

	retry := time.UnixMicro(oldest).Add(l.settings.Window).Sub(now)
	return &LimitError{RetryAfter: retry, Err: common.ErrRateLimited}
}

func (l *RedisLimiter) Clear(ctx context.Context, key string) error {
	if err := l.rdb.Del(ctx, bucketKey(key)).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

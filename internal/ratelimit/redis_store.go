package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/biztools-dev/biztools/internal/storage"
	"github.com/redis/go-redis/v9"
)

// incrementIfBelow rejects at the ceiling, otherwise increments and pins the
// key's expiry to the window boundary on first use. Running as a single
// script makes the check-then-increment atomic per counter key.
var incrementIfBelow = redis.NewScript(`
local count = tonumber(redis.call('GET', KEYS[1]) or '0')
if count >= tonumber(ARGV[1]) then
  return {count, 0}
end
count = redis.call('INCR', KEYS[1])
if count == 1 then
  redis.call('PEXPIREAT', KEYS[1], tonumber(ARGV[2]))
end
return {count, 1}
`)

// RedisStore keeps usage counters in Redis. Expiry is handled by Redis
// itself, so Cleanup is a no-op kept for interface symmetry.
type RedisStore struct {
	redis *storage.RedisClient
}

func NewRedisStore(redis *storage.RedisClient) *RedisStore {
	return &RedisStore{redis: redis}
}

func (r *RedisStore) IncrementIfBelow(ctx context.Context, toolSlug, requesterKey string, period Period, ceiling int) (int, bool, error) {
	key := counterKey(toolSlug, requesterKey, period)
	resetAt := period.ResetTime(time.Now()).UnixMilli()

	res, err := incrementIfBelow.Run(ctx, r.redis.Client, []string{key}, ceiling, resetAt).Slice()
	if err != nil {
		return 0, false, fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) != 2 {
		return 0, false, fmt.Errorf("rate limit script: unexpected reply %v", res)
	}

	count, _ := res[0].(int64)
	allowed, _ := res[1].(int64)
	return int(count), allowed == 1, nil
}

func (r *RedisStore) Count(ctx context.Context, toolSlug, requesterKey string, period Period) (int, error) {
	val, err := r.redis.Client.Get(ctx, counterKey(toolSlug, requesterKey, period)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return val, nil
}

func (r *RedisStore) Cleanup(ctx context.Context, now time.Time) (int64, error) {
	// Keys carry a PEXPIREAT at the window boundary; Redis evicts them.
	return 0, nil
}

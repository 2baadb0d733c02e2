package redis

import (
	"context"
	"fmt"
	"time"
)

// RateLimiter is a fixed-window counter. The counter and its expiry are set in
// one script, and a key found without an expiry gets one on the next hit.
type RateLimiter struct {
	client RedisClient
}

func NewRateLimiter(client RedisClient) *RateLimiter {
	return &RateLimiter{client: client}
}

const luaIncrWindow = `
local n = redis.call("INCR", KEYS[1])
if redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n`

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	ms := window.Milliseconds()
	if ms <= 0 {
		ms = 1
	}
	res, err := r.client.Eval(ctx, luaIncrWindow, []string{key}, ms)
	if err != nil {
		return false, err
	}
	count, ok := res.(int64)
	if !ok {
		return false, fmt.Errorf("rate limiter: unexpected reply %T", res)
	}
	return count <= int64(limit), nil
}

func ChatKey(ownerID string) string {
	return fmt.Sprintf("ratelimit:chat:%s", ownerID)
}

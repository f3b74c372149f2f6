package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/cinehall/cinema-booking/internal/config"
)

// rateLimitPrefix namespaces per-client bucket keys in Redis.
const rateLimitPrefix = "cinehall:bucket:"

// tokenBucketScript refills and drains one client's bucket atomically.
// State is a hash of {tokens, stamp_ms}; a missing hash means a full
// bucket.  Token counts are stored as strings because redis.call
// truncates Lua numbers, which would drop fractional refills.
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill_per_sec = tonumber(ARGV[3])
local ttl_sec = tonumber(ARGV[4])

local state = redis.call('HMGET', key, 'tokens', 'stamp_ms')
local tokens = tonumber(state[1])
local stamp = tonumber(state[2])
if tokens == nil or stamp == nil then
  tokens = capacity
  stamp = now_ms
end

local elapsed = now_ms - stamp
if elapsed > 0 then
  tokens = math.min(capacity, tokens + elapsed * refill_per_sec / 1000)
end

local allowed = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
end

redis.call('HSET', key, 'tokens', tostring(tokens), 'stamp_ms', tostring(now_ms))
redis.call('EXPIRE', key, ttl_sec)
return allowed
`)

// NewTokenBucket rate-limits the mutating endpoints with a Redis token
// bucket per client address.  GET, HEAD and OPTIONS pass through
// untouched, and so does everything when Redis is absent or errors:
// the limiter fails open rather than taking the box office down.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch c.Request().Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			ip := c.RealIP()
			if ip == "" {
				ip = "unknown"
			}
			args := []interface{}{
				time.Now().UnixMilli(),
				cfg.Capacity,
				cfg.RefillPerSecond,
				int64(cfg.TTL / time.Second),
			}
			allowed, err := tokenBucketScript.Run(c.Request().Context(), rdb,
				[]string{rateLimitPrefix + ip}, args...).Int64()
			if err != nil {
				c.Logger().Warnf("rate limiter unavailable: %v", err)
				return next(c)
			}
			if allowed != 1 {
				// RefillPerSecond is at least 1, so one second always
				// buys another token.
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "too many requests"})
			}
			return next(c)
		}
	}
}

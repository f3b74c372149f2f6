package config

import (
	"os"
	"strconv"
	"time"
)

// RateLimitConfig controls the Redis token bucket in front of the
// mutating endpoints.  Reads are never limited, so browsing the program
// and polling a reservation stay cheap while reservation churn is
// bounded per client.
type RateLimitConfig struct {
	Enabled         bool
	Capacity        int           // bucket size, which is also the burst allowance
	RefillPerSecond int           // tokens added back per second
	TTL             time.Duration // idle time before a client's bucket key expires
}

// LoadRateLimitConfig reads the rate-limit settings from the
// environment, falling back to defaults sized for a single box office.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:         envBool("RATE_LIMIT_ENABLED", true),
		Capacity:        envInt("RATE_LIMIT_CAPACITY", 30),
		RefillPerSecond: envInt("RATE_LIMIT_REFILL_PER_SECOND", 5),
		TTL:             envDur("RATE_LIMIT_TTL", 10*time.Minute),
	}
	if cfg.Capacity < 1 {
		cfg.Capacity = 1
	}
	if cfg.RefillPerSecond < 1 {
		cfg.RefillPerSecond = 1
	}
	if cfg.TTL < time.Minute {
		cfg.TTL = time.Minute
	}
	return cfg
}

// envStr and friends are the optional-variable counterparts of must():
// unset or unparsable values fall back to the given default.

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

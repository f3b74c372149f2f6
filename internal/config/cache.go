package config

import "time"

// CacheConfig controls the browse cache sitting in front of the public
// catalog endpoints: the show program, seat maps and the concession
// menu.  The default TTL is short because a seat map goes stale the
// moment someone reserves.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	MaxBodyBytes int64 // responses larger than this are served but not cached
}

// LoadCacheConfig reads the browse-cache settings from the environment.
func LoadCacheConfig() CacheConfig {
	cfg := CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		TTL:          envDur("CACHE_TTL", 10*time.Second),
		MaxBodyBytes: int64(envInt("CACHE_MAX_BODY_BYTES", 1<<20)),
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Second
	}
	return cfg
}

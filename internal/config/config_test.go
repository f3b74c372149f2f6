package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBcryptCostIsOptional(t *testing.T) {
	t.Setenv("BCRYPT_COST", "")
	assert.Equal(t, 12, BcryptCost())

	t.Setenv("BCRYPT_COST", "8")
	assert.Equal(t, 8, BcryptCost())

	t.Setenv("BCRYPT_COST", "not-a-number")
	assert.Equal(t, 12, BcryptCost())
}

func TestRateLimitConfigEnforcesFloors(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_PER_SECOND", "-3")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillPerSecond)
	assert.Equal(t, time.Minute, cfg.TTL)
}

func TestCacheConfigDefaults(t *testing.T) {
	t.Setenv("CACHE_ENABLED", "")
	t.Setenv("CACHE_TTL", "")
	t.Setenv("CACHE_MAX_BODY_BYTES", "")

	cfg := LoadCacheConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 10*time.Second, cfg.TTL)
	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
}

package config

import (
	"time"
)

// CacheConfig defines settings for the catalogue response cache.  Only GET
// responses are cached; the privileged POST surface always reaches the
// database.  When Enabled is false or no Redis client is available the
// middleware is a no-op.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads the CACHE_* environment variables with defaults
// tuned for a slowly changing book catalogue.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		TTL:          envDur("CACHE_TTL", time.Minute),
		Prefix:       envStr("CACHE_PREFIX", "cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}

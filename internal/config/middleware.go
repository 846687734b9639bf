package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// CacheConfig defines settings for the response cache middleware.  When
// Enabled is false or no Redis client is available, caching is disabled.
// Cached entries are dropped by the change feed when a table they were
// built from changes, so TTL only bounds staleness when the feed is down.
type CacheConfig struct {
	Enabled      bool          `envconfig:"CACHE_ENABLED" default:"false"`
	Methods      []string      `envconfig:"CACHE_METHODS" default:"GET"`
	TTL          time.Duration `envconfig:"CACHE_TTL" default:"30s"`
	Prefix       string        `envconfig:"CACHE_PREFIX" default:"cache"`
	MaxBodyBytes int           `envconfig:"CACHE_MAX_BODY_BYTES" default:"1048576"`
}

// LoadCacheConfig reads the CACHE_* variables.  Invalid values fall back
// to the defaults.
func LoadCacheConfig() CacheConfig {
	var c CacheConfig
	if err := envconfig.Process("", &c); err != nil {
		c = CacheConfig{Methods: []string{"GET"}, TTL: 30 * time.Second, Prefix: "cache", MaxBodyBytes: 1 << 20}
	}
	for i, m := range c.Methods {
		c.Methods[i] = strings.ToUpper(strings.TrimSpace(m))
	}
	return c
}

// MethodSet returns the cacheable methods as a lookup set.
func (c CacheConfig) MethodSet() map[string]bool {
	m := make(map[string]bool, len(c.Methods))
	for _, v := range c.Methods {
		if v != "" {
			m[v] = true
		}
	}
	return m
}

// RateLimitConfig bounds the requests a client may make per window on the
// write endpoints (bookings, carts).
type RateLimitConfig struct {
	Enabled bool          `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	Limit   int           `envconfig:"RATE_LIMIT_LIMIT" default:"20"`
	Window  time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
	Prefix  string        `envconfig:"RATE_LIMIT_PREFIX" default:"rl"`
}

// LoadRateLimitConfig reads the RATE_LIMIT_* variables and clamps
// nonsensical values.
func LoadRateLimitConfig() RateLimitConfig {
	var c RateLimitConfig
	if err := envconfig.Process("", &c); err != nil {
		c = RateLimitConfig{Enabled: true, Limit: 20, Window: time.Minute, Prefix: "rl"}
	}
	if c.Limit < 1 {
		c.Limit = 1
	}
	if c.Window < time.Second {
		c.Window = time.Second
	}
	return c
}

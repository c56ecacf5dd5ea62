package config

import (
	"strings"
	"time"
)

// RateLimitConfig configures one token bucket limiter.  The same shape is
// used for the site-wide limiter (RATE_LIMIT_*) and the booking submission
// limiter (SUBMIT_RATE_LIMIT_*).
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string
	Prefix         string
	Debug          bool
}

// LoadRateLimitConfig returns the site-wide limiter settings.
func LoadRateLimitConfig() RateLimitConfig {
	def := loadRateLimit("RATE_LIMIT_", RateLimitConfig{
		Enabled:        true,
		Capacity:       60,
		RefillTokens:   1,
		RefillInterval: time.Second,
		TTL:            10 * time.Minute,
		KeyStrategy:    "ip_route",
		Prefix:         "rl",
	})
	if b := envInt("RATE_LIMIT_BURST", -1); b > 0 {
		def.Capacity = b
	}
	if every := envDur("RATE_LIMIT_REFILL_EVERY", 0); every > 0 {
		def.RefillTokens = 1
		def.RefillInterval = every
	}
	return normalise(def)
}

// LoadSubmitRateLimitConfig returns the booking submission limiter: five
// submissions per client IP, refilled every fifteen minutes.
func LoadSubmitRateLimitConfig() RateLimitConfig {
	return normalise(loadRateLimit("SUBMIT_RATE_LIMIT_", RateLimitConfig{
		Enabled:        true,
		Capacity:       5,
		RefillTokens:   5,
		RefillInterval: 15 * time.Minute,
		TTL:            30 * time.Minute,
		KeyStrategy:    "ip",
		Prefix:         "rl:submit",
	}))
}

func loadRateLimit(prefix string, def RateLimitConfig) RateLimitConfig {
	return RateLimitConfig{
		Enabled:        envBool(prefix+"ENABLED", def.Enabled),
		Capacity:       envInt(prefix+"CAPACITY", def.Capacity),
		RefillTokens:   envInt(prefix+"REFILL_TOKENS", def.RefillTokens),
		RefillInterval: envDur(prefix+"REFILL_INTERVAL", def.RefillInterval),
		TTL:            envDur(prefix+"TTL", def.TTL),
		KeyStrategy:    strings.ToLower(getenv(prefix+"KEY_STRATEGY", def.KeyStrategy)),
		Prefix:         getenv(prefix+"PREFIX", def.Prefix),
		Debug:          envBool(prefix+"DEBUG", def.Debug),
	}
}

func normalise(c RateLimitConfig) RateLimitConfig {
	if c.Capacity < 1 {
		c.Capacity = 1
	}
	if c.RefillTokens < 1 {
		c.RefillTokens = 1
	}
	if c.RefillInterval <= 0 {
		c.RefillInterval = time.Second
	}
	if minTTL := 2 * c.RefillInterval; c.TTL < minTTL {
		c.TTL = minTTL
	}
	return c
}

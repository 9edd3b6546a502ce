package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Config holds rate limiting configuration
type Config struct {
	RequestsPerSecond int `json:"requestsPerSecond"`
	MaxRetries        int `json:"maxRetries"`
	InitialBackoffMs  int `json:"initialBackoffMs"`
	MaxBackoffMs      int `json:"maxBackoffMs"`
}

// DefaultConfig returns the default rate limit configuration
func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 10,
		MaxRetries:        2,
		InitialBackoffMs:  100,
		MaxBackoffMs:      2000,
	}
}

// WithOverrides returns the default config with the given overrides applied
func WithOverrides(overrides PartialConfig) Config {
	cfg := DefaultConfig()
	if overrides.RequestsPerSecond != nil {
		cfg.RequestsPerSecond = *overrides.RequestsPerSecond
	}
	if overrides.MaxRetries != nil {
		cfg.MaxRetries = *overrides.MaxRetries
	}
	if overrides.InitialBackoffMs != nil {
		cfg.InitialBackoffMs = *overrides.InitialBackoffMs
	}
	if overrides.MaxBackoffMs != nil {
		cfg.MaxBackoffMs = *overrides.MaxBackoffMs
	}
	return cfg
}

// PartialConfig allows partial configuration overrides
type PartialConfig struct {
	RequestsPerSecond *int `json:"requestsPerSecond,omitempty"`
	MaxRetries        *int `json:"maxRetries,omitempty"`
	InitialBackoffMs  *int `json:"initialBackoffMs,omitempty"`
	MaxBackoffMs      *int `json:"maxBackoffMs,omitempty"`
}

// RateLimiter paces outgoing requests with a token bucket
type RateLimiter struct {
	config  Config
	limiter *rate.Limiter
}

// NewRateLimiter creates a new rate limiter with the given config.
// A non-positive RequestsPerSecond disables limiting.
func NewRateLimiter(config Config) *RateLimiter {
	return &RateLimiter{
		config:  config,
		limiter: rate.NewLimiter(limitFor(config), 1),
	}
}

// NewRateLimiterDefault creates a rate limiter with default config
func NewRateLimiterDefault() *RateLimiter {
	return NewRateLimiter(DefaultConfig())
}

// GetConfig returns the current configuration
func (r *RateLimiter) GetConfig() Config {
	return r.config
}

// SetConfig updates the configuration
func (r *RateLimiter) SetConfig(config Config) {
	r.config = config
	r.limiter.SetLimit(limitFor(config))
}

// Throttle waits for a request slot or until ctx is done.
// Call this before making a request.
func (r *RateLimiter) Throttle(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

func limitFor(config Config) rate.Limit {
	if config.RequestsPerSecond <= 0 {
		return rate.Inf
	}
	return rate.Limit(config.RequestsPerSecond)
}

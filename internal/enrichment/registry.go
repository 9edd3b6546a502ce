package enrichment

import (
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	apphttp "github.com/kosarica/catalog-import/internal/http"
	"github.com/kosarica/catalog-import/internal/http/ratelimit"
)

// RegistryOptions configures the registry-backed enrichment stack
type RegistryOptions struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	MaxRetries        int
	InitialBackoffMs  int
	MaxBackoffMs      int
	// RedisAddr enables the lookup cache when set
	RedisAddr       string
	CacheTTL        time.Duration
	BreakerFailures int
	BreakerReset    time.Duration
}

// NewRegistryAdapter assembles HTTP lookup, optional Redis cache and circuit
// breaker into an Adapter. The returned close function releases the cache
// connection.
func NewRegistryAdapter(opts RegistryOptions, backfiller ProductBackfiller, logger *zerolog.Logger) (*Adapter, func() error) {
	client := apphttp.NewClient(ratelimit.Config{
		RequestsPerSecond: int(math.Ceil(opts.RequestsPerSecond)),
		MaxRetries:        opts.MaxRetries,
		InitialBackoffMs:  opts.InitialBackoffMs,
		MaxBackoffMs:      opts.MaxBackoffMs,
	})

	var lookup Lookup = NewHTTPLookup(client, opts.BaseURL, opts.Timeout)
	closeFn := func() error { return nil }

	if opts.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: opts.RedisAddr})
		lookup = NewCachedLookup(lookup, rdb, opts.CacheTTL, logger)
		closeFn = rdb.Close
	}

	breakerConfig := DefaultCircuitBreakerConfig()
	if opts.BreakerFailures > 0 {
		breakerConfig.MaxFailures = opts.BreakerFailures
	}
	if opts.BreakerReset > 0 {
		breakerConfig.ResetTimeout = opts.BreakerReset
	}
	breaker := NewCircuitBreaker("registry", breakerConfig, logger)

	return NewAdapter(lookup, backfiller, breaker, logger), closeFn
}

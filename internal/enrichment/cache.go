package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/kosarica/catalog-import/internal/types"
)

const (
	// DefaultCacheTTL is how long lookups (including misses) are cached
	DefaultCacheTTL = 24 * time.Hour

	cacheKeyPrefix = "catalog-import:enrichment:"
)

// redisCmd is the subset of redis.Cmdable used by the cache
type redisCmd interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

type cacheEntry struct {
	Found      bool                     `json:"found"`
	Attributes *types.ProductAttributes `json:"attributes,omitempty"`
}

// CachedLookup caches registry answers in Redis. Hits and not-found
// answers are cached; transient failures are not. Redis errors fall through
// to the wrapped lookup.
type CachedLookup struct {
	next   Lookup
	redis  redisCmd
	ttl    time.Duration
	logger *zerolog.Logger
}

// NewCachedLookup wraps next with a Redis cache
func NewCachedLookup(next Lookup, client redis.Cmdable, ttl time.Duration, logger *zerolog.Logger) *CachedLookup {
	return newCachedLookup(next, client, ttl, logger)
}

func newCachedLookup(next Lookup, client redisCmd, ttl time.Duration, logger *zerolog.Logger) *CachedLookup {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		nopLogger := zerolog.Nop()
		logger = &nopLogger
	}
	return &CachedLookup{next: next, redis: client, ttl: ttl, logger: logger}
}

// FetchAttributes implements Lookup
func (c *CachedLookup) FetchAttributes(ctx context.Context, gtin string) (*types.ProductAttributes, error) {
	key := cacheKeyPrefix + gtin

	raw, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var entry cacheEntry
		if jsonErr := json.Unmarshal(raw, &entry); jsonErr == nil {
			recordCache(true)
			if !entry.Found || entry.Attributes == nil {
				return nil, ErrNotFound
			}
			return entry.Attributes, nil
		}
		c.logger.Warn().Str("key", key).Msg("Discarding undecodable enrichment cache entry")
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn().Err(err).Str("key", key).Msg("Enrichment cache read failed")
	}
	recordCache(false)

	attrs, err := c.next.FetchAttributes(ctx, gtin)
	switch {
	case err == nil:
		c.store(ctx, key, cacheEntry{Found: true, Attributes: attrs})
	case errors.Is(err, ErrNotFound):
		c.store(ctx, key, cacheEntry{Found: false})
	}
	return attrs, err
}

func (c *CachedLookup) store(ctx context.Context, key string, entry cacheEntry) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Enrichment cache write failed")
	}
}

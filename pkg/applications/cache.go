package applications

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-applyform/internal/logger"
)

// DefaultCacheTTL bounds how long a form definition is served from redis.
const DefaultCacheTTL = 10 * time.Minute

const cacheKeyPrefix = "applyform:form:"

// CachedFetcher serves forms from redis and falls back to the wrapped
// fetcher on a miss. Redis failures are logged and never fail the fetch.
type CachedFetcher struct {
	next   FormFetcher
	client redis.UniversalClient
	ttl    time.Duration
	logger logger.Logger
}

// CacheOption customises a CachedFetcher.
type CacheOption func(*CachedFetcher)

// WithTTL overrides DefaultCacheTTL.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *CachedFetcher) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithCacheLogger sets the logger used for redis failures.
func WithCacheLogger(l logger.Logger) CacheOption {
	return func(c *CachedFetcher) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCachedFetcher caches next in client.
func NewCachedFetcher(next FormFetcher, client redis.UniversalClient, opts ...CacheOption) *CachedFetcher {
	c := &CachedFetcher{
		next:   next,
		client: client,
		ttl:    DefaultCacheTTL,
		logger: logger.NewNoOpLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Form returns the cached form or fetches and stores it.
func (c *CachedFetcher) Form(ctx context.Context, formID string) (Form, error) {
	key := cacheKeyPrefix + formID

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var form Form
		if decodeErr := json.Unmarshal(raw, &form); decodeErr == nil {
			return form, nil
		}
		c.logger.Warn("discarding undecodable cached form", map[string]any{"form_id": formID})
	case !errors.Is(err, redis.Nil):
		c.logger.WithError(err).Warn("form cache read failed", map[string]any{"form_id": formID})
	}

	form, err := c.next.Form(ctx, formID)
	if err != nil {
		return Form{}, err
	}

	encoded, err := json.Marshal(form)
	if err != nil {
		return form, nil
	}
	if err := c.client.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
		c.logger.WithError(err).Warn("form cache write failed", map[string]any{"form_id": formID})
	}
	return form, nil
}

// Invalidate drops formID from the cache.
func (c *CachedFetcher) Invalidate(ctx context.Context, formID string) error {
	return c.client.Del(ctx, cacheKeyPrefix+formID).Err()
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// catalog.go provides a Valkey-backed cache for serialized catalog
// responses. Product listings and detail pages are read-heavy and change
// only on catalog mutations, so the handlers store the encoded JSON here and
// invalidate the whole prefix whenever a product, category, or order
// mutation touches the catalog.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// catalogKeyPrefix is the Valkey key prefix for cached catalog responses.
	catalogKeyPrefix = "catalog:"

	// DefaultCatalogTTL is how long a cached response stays valid.
	DefaultCatalogTTL = 5 * time.Minute
)

// CatalogCache manages catalog response caching in Valkey. A nil
// *CatalogCache is valid and behaves as a cache that always misses, so the
// server runs unchanged when Valkey is not configured.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCatalogCache creates a catalog cache backed by the given Valkey client.
func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	if ttl == 0 {
		ttl = DefaultCatalogTTL
	}
	return &CatalogCache{client: client, ttl: ttl}
}

// Get retrieves a cached response body. Returns false on miss.
func (c *CatalogCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	val, err := c.client.Get(ctx, catalogKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("catalog cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("catalog cache hit", "key", key)
	return val, true
}

// Set stores an encoded response body with the configured TTL.
func (c *CatalogCache) Set(ctx context.Context, key string, body []byte) {
	if c == nil {
		return
	}
	if err := c.client.Set(ctx, catalogKeyPrefix+key, body, c.ttl).Err(); err != nil {
		slog.Warn("catalog cache set error", "key", key, "error", err)
	}
}

// Invalidate removes all cached catalog responses by scanning the prefix.
// Any product mutation can affect listings, filters, and related-product
// blocks, so partial invalidation is not worth the bookkeeping.
func (c *CatalogCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, catalogKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("catalog cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("catalog cache delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Debug("catalog cache cleared", "deleted", deleted)
	}
}

// ListKey returns the cache key for a product listing request, derived from
// the raw query string so each filter combination caches separately.
func ListKey(rawQuery string) string {
	if rawQuery == "" {
		return "list"
	}
	return "list?" + rawQuery
}

// DetailKey returns the cache key for a product detail page.
func DetailKey(slug string) string {
	return "detail:" + slug
}

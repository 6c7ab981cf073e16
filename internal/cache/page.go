// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// page.go provides a Valkey-backed cache for rendered topic pages.
// A hit skips loading the document and executing the template. The JSON
// API is never cached: it must always reflect the latest committed document.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// pageKeyPrefix is the Valkey key prefix for cached pages.
	pageKeyPrefix = "topicpress:page:"

	// DefaultPageTTL is how long a rendered page stays cached.
	DefaultPageTTL = 5 * time.Minute
)

// PageCache manages full-page HTML caching in Valkey. A nil *PageCache is
// valid and behaves as an always-missing cache, so callers need no checks
// when Valkey is not configured.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration

	// mu orders SetIfCurrent against InvalidateAll: a page rendered from a
	// document read before an invalidation is never stored after it.
	mu         sync.RWMutex
	generation uint64
}

// NewPageCache creates a new page cache backed by the given Valkey client.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	if ttl <= 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{client: client, ttl: ttl}
}

// Get retrieves cached HTML for a page key.
func (pc *PageCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if pc == nil {
		return nil, false
	}
	val, err := pc.client.Get(ctx, pageKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("page cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("page cache hit", "key", key)
	return val, true
}

// Set stores rendered HTML for a page key with the configured TTL.
func (pc *PageCache) Set(ctx context.Context, key string, html []byte) {
	if pc == nil {
		return
	}
	if err := pc.client.Set(ctx, pageKeyPrefix+key, html, pc.ttl).Err(); err != nil {
		slog.Warn("page cache set error", "key", key, "error", err)
	}
}

// Generation returns the current invalidation generation. Read it before
// loading the data a page is rendered from and pass it to SetIfCurrent.
func (pc *PageCache) Generation() uint64 {
	if pc == nil {
		return 0
	}
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return pc.generation
}

// SetIfCurrent stores html like Set unless InvalidateAll ran since gen was
// read, in which case the page may be stale and is dropped. It reports
// whether the page was handed to Valkey.
func (pc *PageCache) SetIfCurrent(ctx context.Context, key string, html []byte, gen uint64) bool {
	if pc == nil {
		return false
	}
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	if pc.generation != gen {
		slog.Debug("page cache skipped stale page", "key", key)
		return false
	}
	pc.Set(ctx, key, html)
	return true
}

// InvalidateAll removes all cached pages by scanning for the prefix.
// Pages are addressed by id or slug, and a slug lookup resolves to the first
// matching topic, so any mutation may change what a key should render.
func (pc *PageCache) InvalidateAll(ctx context.Context) {
	if pc == nil {
		return
	}
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.generation++

	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := pc.client.Scan(ctx, cursor, pageKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("page cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := pc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("page cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("page cache cleared", "deleted", deleted)
	}
}

// TopicKey returns the cache key for a topic page requested by id or slug.
func TopicKey(idOrSlug string) string {
	return "topic:" + idOrSlug
}

// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"mock_trader/internal/feature/universe/domain/entity"
	"mock_trader/internal/feature/universe/usecase"
)

// UniverseRepository is the store the decorator wraps: the reconciliation
// port plus the listing read.
type UniverseRepository interface {
	usecase.UniverseStore
	usecase.UniverseLister
}

// CachingUniverseRepository decorates a UniverseRepository with Redis caching
// of ListActive. Writes go straight to the inner store and then invalidate
// the cached listings of every exchange they touched.
type CachingUniverseRepository struct {
	inner     UniverseRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ UniverseRepository = (*CachingUniverseRepository)(nil)

// NewCachingUniverseRepository decorates inner with Redis caching.
// If ttl is 0, it defaults to 10 minutes. If namespace is empty, it uses "universe".
// A nil rdb disables caching.
func NewCachingUniverseRepository(rdb *redis.Client, ttl time.Duration, inner UniverseRepository, namespace string) *CachingUniverseRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if namespace == "" {
		namespace = "universe"
	}
	return &CachingUniverseRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// FindByTickers is never cached: reconciliation must see the committed rows.
func (c *CachingUniverseRepository) FindByTickers(ctx context.Context, tickers []string) ([]entity.StoredEntry, error) {
	return c.inner.FindByTickers(ctx, tickers)
}

// UpsertBatch updates entries and invalidates the affected listings.
func (c *CachingUniverseRepository) UpsertBatch(ctx context.Context, entries []entity.UniverseEntry) error {
	if err := c.inner.UpsertBatch(ctx, entries); err != nil {
		return err
	}
	c.invalidate(ctx, entries)
	return nil
}

// InsertBatch inserts entries and invalidates the affected listings.
func (c *CachingUniverseRepository) InsertBatch(ctx context.Context, entries []entity.UniverseEntry) error {
	if err := c.inner.InsertBatch(ctx, entries); err != nil {
		return err
	}
	c.invalidate(ctx, entries)
	return nil
}

// ListActive checks the cache first then falls back to the inner store.
func (c *CachingUniverseRepository) ListActive(ctx context.Context, exchange string) ([]entity.UniverseEntry, error) {
	if c.rdb == nil {
		return c.inner.ListActive(ctx, exchange)
	}

	key := c.cacheKey(exchange)

	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.UniverseEntry
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// 破損したキャッシュは削除
		_ = c.rdb.Del(ctx, key).Err()
	}

	out, err := c.inner.ListActive(ctx, exchange)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return out, nil
}

// invalidate drops cached listings for every exchange in entries. Best effort.
func (c *CachingUniverseRepository) invalidate(ctx context.Context, entries []entity.UniverseEntry) {
	if c.rdb == nil || len(entries) == 0 {
		return
	}
	seen := map[string]struct{}{}
	for _, e := range entries {
		prefix := c.cacheKeyPrefix(e.Exchange)
		if _, ok := seen[prefix]; ok {
			continue
		}
		seen[prefix] = struct{}{}
		if err := c.deleteByPattern(ctx, prefix+"*"); err != nil {
			slog.Warn("failed to invalidate universe cache", "prefix", prefix, "error", err)
		}
	}
}

func (c *CachingUniverseRepository) cacheKey(exchange string) string {
	return c.cacheKeyPrefix(exchange) + "active"
}

func (c *CachingUniverseRepository) cacheKeyPrefix(exchange string) string {
	return fmt.Sprintf("%s:%s:", c.namespace, safe(exchange))
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingUniverseRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			return nil
		}
	}
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}

// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"plantsight_backend/internal/feature/taxonomy/domain/entity"
	"plantsight_backend/internal/feature/taxonomy/usecase"
)

// CachingEntryRepository decorates an EntryRepository with Redis caching.
// It implements the decorator pattern, transparently adding caching without
// modifying the underlying repository.
type CachingEntryRepository struct {
	inner     usecase.EntryRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// CachingEntryRepositoryがEntryRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.EntryRepository = (*CachingEntryRepository)(nil)

// NewCachingEntryRepository decorates an EntryRepository with Redis caching.
// If ttl is 0, it defaults to 24 hours. If namespace is empty, it uses "taxonomy".
func NewCachingEntryRepository(rdb *redis.Client, ttl time.Duration, inner usecase.EntryRepository, namespace string) *CachingEntryRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if namespace == "" {
		namespace = "taxonomy"
	}
	return &CachingEntryRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// cacheKey is the single key holding the full taxonomy listing.
func (c *CachingEntryRepository) cacheKey() string {
	return c.namespace + ":all"
}

// FindAll retrieves taxonomy entries, checking cache first then falling back to the database.
func (c *CachingEntryRepository) FindAll(ctx context.Context) ([]entity.Entry, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.FindAll(ctx)
	}

	key := c.cacheKey()

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.Entry
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := c.inner.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

// UpsertBatch writes entries to the underlying repository and invalidates the cache.
func (c *CachingEntryRepository) UpsertBatch(ctx context.Context, entries []entity.Entry) error {
	if err := c.inner.UpsertBatch(ctx, entries); err != nil {
		return err
	}
	if c.rdb == nil || len(entries) == 0 {
		return nil
	}
	// Best effort: don't fail the upsert if cache invalidation fails
	_ = c.rdb.Del(ctx, c.cacheKey()).Err()
	return nil
}

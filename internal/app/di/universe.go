package di

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	universeadapters "mock_trader/internal/feature/universe/adapters"
	"mock_trader/internal/platform/cache"
)

// NewUniverseRepository creates the Stock_Universe store. When Redis is
// available the store is wrapped so list reads are cached and batch writes
// invalidate the affected exchange.
func NewUniverseRepository(rdb *redis.Client, db *gorm.DB) cache.UniverseRepository {
	repo := universeadapters.NewUniverseRepository(db)
	if rdb == nil {
		return repo
	}
	return cache.NewCachingUniverseRepository(rdb, 0, repo, "universe")
}

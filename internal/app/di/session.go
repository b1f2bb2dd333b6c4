package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	authadapters "mock_trader/internal/feature/auth/adapters"
	"mock_trader/internal/feature/auth/usecase"
	"mock_trader/internal/platform/session"
)

// NewSessionRepository creates a SessionRepository implementation.
// If Redis is available, it returns a Redis-backed implementation whose
// entries live as long as the access token. Otherwise, it falls back to Postgres.
func NewSessionRepository(rdb *redis.Client, db *gorm.DB, tokenTTL time.Duration) usecase.SessionRepository {
	if rdb != nil {
		return session.NewSessionRedis(rdb, "session", tokenTTL)
	}
	return authadapters.NewSessionRepository(db)
}

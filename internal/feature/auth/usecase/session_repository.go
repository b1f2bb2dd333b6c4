package usecase

import (
	"context"

	"mock_trader/internal/feature/auth/domain/entity"
)

// SessionRepository abstracts the persistence layer for session entities.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type SessionRepository interface {
	// Create persists a new session.
	Create(ctx context.Context, session *entity.Session) error

	// DeactivateAllByUserID marks every session of the user inactive.
	DeactivateAllByUserID(ctx context.Context, userID uint) error

	// HasActive reports whether the user has at least one active session.
	HasActive(ctx context.Context, userID uint) (bool, error)
}

package adapters

import (
	"context"

	"gorm.io/gorm"

	"mock_trader/internal/feature/auth/domain/entity"
	"mock_trader/internal/feature/auth/usecase"
)

// sessionGorm is a GORM implementation of the SessionRepository interface.
type sessionGorm struct {
	db *gorm.DB
}

// Compile-time check to ensure sessionGorm implements SessionRepository.
var _ usecase.SessionRepository = (*sessionGorm)(nil)

// NewSessionRepository creates a new instance of sessionGorm.
func NewSessionRepository(db *gorm.DB) *sessionGorm {
	return &sessionGorm{db: db}
}

// Create persists a new session and writes the generated ID back to session.
func (r *sessionGorm) Create(ctx context.Context, session *entity.Session) error {
	model := SessionModelFromEntity(session)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	session.ID = model.ID
	return nil
}

// DeactivateAllByUserID marks every active session of the user inactive.
func (r *sessionGorm) DeactivateAllByUserID(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).
		Model(&SessionModel{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Update("is_active", false).Error
}

// HasActive reports whether the user has at least one active session.
func (r *sessionGorm) HasActive(ctx context.Context, userID uint) (bool, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).
		Model(&SessionModel{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Limit(1).
		Pluck("id", &ids).Error; err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}

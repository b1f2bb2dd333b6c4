package adapters

import (
	"time"

	"mock_trader/internal/feature/auth/domain/entity"
)

// SessionModel is the GORM model for the Sessions table.
type SessionModel struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"index:idx_sessions_user_active,priority:1;not null"`
	Token     string    `gorm:"type:text;not null"`
	IPAddress string    `gorm:"size:45"` // IPv6 max length
	IsActive  bool      `gorm:"index:idx_sessions_user_active,priority:2;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM.
func (SessionModel) TableName() string {
	return "Sessions"
}

// ToEntity converts the GORM model to a domain entity.
func (m *SessionModel) ToEntity() *entity.Session {
	return &entity.Session{
		ID:        m.ID,
		UserID:    m.UserID,
		Token:     m.Token,
		IPAddress: m.IPAddress,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
	}
}

// SessionModelFromEntity converts a domain entity to a GORM model.
func SessionModelFromEntity(s *entity.Session) *SessionModel {
	return &SessionModel{
		ID:        s.ID,
		UserID:    s.UserID,
		Token:     s.Token,
		IPAddress: s.IPAddress,
		IsActive:  s.IsActive,
		CreatedAt: s.CreatedAt,
	}
}

package entity

import "time"

// Session records one successful login. A user has at most one active
// session: logging in deactivates the previous ones.
type Session struct {
	ID        uint
	UserID    uint
	Token     string // Access token issued at login
	IPAddress string // Client's IP address
	IsActive  bool
	CreatedAt time.Time
}

// Package dto はusersフィーチャーのHTTPレスポンスを定義します。
package dto

import "time"

// UserItem は公開可能なユーザー情報です。パスワードハッシュは含みません。
type UserItem struct {
	ID        uint      `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

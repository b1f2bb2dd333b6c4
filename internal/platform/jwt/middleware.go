package jwtmw

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ContextUserID   = "userID"
	ContextUsername = "username"
)

// SessionChecker reports whether a user still holds an active session.
type SessionChecker interface {
	HasActiveSession(ctx context.Context, userID uint) (bool, error)
}

// AuthRequired returns a Gin middleware function that validates JWT tokens
// and restricts access to users with an active session.
// A nil sessions skips the session check.
func AuthRequired(secret string, sessions SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Authorizationヘッダーを取得
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenStr := strings.TrimPrefix(auth, "Bearer ")

		if secret == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server misconfigured"})
			return
		}

		// 2. 署名を検証（HMACのみ許可）
		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		}, jwt.WithExpirationRequired())
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		// 3. クレームからユーザーIDを取り出す
		claims, _ := token.Claims.(jwt.MapClaims)
		sub, ok := claims["sub"].(float64) // JWT numbers are decoded as float64
		if !ok || sub < 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token payload"})
			return
		}
		userID := uint(sub)

		// 4. アクティブなセッションがあるか確認
		if sessions != nil {
			active, err := sessions.HasActiveSession(c.Request.Context(), userID)
			if err != nil {
				slog.Error("failed to check session", "error", err, "user_id", userID)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to check session"})
				return
			}
			if !active {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no active session"})
				return
			}
		}

		c.Set(ContextUserID, userID)
		if username, ok := claims["username"].(string); ok {
			c.Set(ContextUsername, username)
		}
		c.Next()
	}
}

// UserIDFrom returns the authenticated user's ID set by AuthRequired.
func UserIDFrom(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// UsernameFrom returns the username claim set by AuthRequired, or "" when absent.
func UsernameFrom(c *gin.Context) string {
	return c.GetString(ContextUsername)
}

// Package jwtmw はアクセストークンの発行とGin用の認証ミドルウェアを提供します。
package jwtmw

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Generator defines the interface for JWT token generation.
type Generator interface {
	// GenerateToken creates a signed JWT token for the given user.
	GenerateToken(userID uint, username, firstName, lastName string) (string, error)
}

// generator implements the Generator interface.
type generator struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewGenerator creates a new JWT generator with the provided secret and expiration duration.
func NewGenerator(secret string, expiration time.Duration) Generator {
	return &generator{
		secret:     []byte(secret),
		expiration: expiration,
		now:        time.Now,
	}
}

// GenerateToken creates a signed HS256 token. Each token carries a random jti
// so two logins within the same second still yield distinct session tokens.
func (g *generator) GenerateToken(userID uint, username, firstName, lastName string) (string, error) {
	now := g.now()
	claims := jwt.MapClaims{
		"sub":        userID,
		"username":   username,
		"first_name": firstName,
		"last_name":  lastName,
		"jti":        uuid.NewString(),
		"exp":        now.Add(g.expiration).Unix(),
		"iat":        now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

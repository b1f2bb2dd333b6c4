// Package session はRedisを使ったセッションストアを提供します。
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"mock_trader/internal/feature/auth/domain/entity"
	"mock_trader/internal/feature/auth/usecase"
)

// SessionRedis implements usecase.SessionRepository using Redis.
//
// Keys:
//   - <prefix>:seq            session ID counter
//   - <prefix>:<id>           session JSON, expires after ttl
//   - <prefix>:user:<userID>  set of the user's session IDs
type SessionRedis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ usecase.SessionRepository = (*SessionRedis)(nil)

// NewSessionRedis creates a new SessionRedis instance. ttl should match the
// access token lifetime; a session is useless once its token has expired.
func NewSessionRedis(client *redis.Client, prefix string, ttl time.Duration) *SessionRedis {
	if prefix == "" {
		prefix = "session"
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionRedis{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// sessionKey returns the Redis key for a session.
func (r *SessionRedis) sessionKey(id uint) string {
	return fmt.Sprintf("%s:%d", r.prefix, id)
}

// userSessionsKey returns the Redis key for a user's session set.
func (r *SessionRedis) userSessionsKey(userID uint) string {
	return fmt.Sprintf("%s:user:%d", r.prefix, userID)
}

// Create persists a new session and assigns it an ID.
func (r *SessionRedis) Create(ctx context.Context, session *entity.Session) error {
	id, err := r.client.Incr(ctx, r.prefix+":seq").Result()
	if err != nil {
		return err
	}
	session.ID = uint(id)

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	userKey := r.userSessionsKey(session.UserID)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.sessionKey(session.ID), data, r.ttl)
		pipe.SAdd(ctx, userKey, session.ID)
		pipe.Expire(ctx, userKey, r.ttl)
		return nil
	})
	return err
}

// DeactivateAllByUserID marks every session of the user inactive, keeping
// each session's remaining TTL.
func (r *SessionRedis) DeactivateAllByUserID(ctx context.Context, userID uint) error {
	sessions, err := r.load(ctx, userID)
	if err != nil {
		return err
	}
	for _, s := range sessions {
		if !s.IsActive {
			continue
		}
		s.IsActive = false
		data, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("failed to marshal session: %w", err)
		}
		if err := r.client.SetArgs(ctx, r.sessionKey(s.ID), data, redis.SetArgs{KeepTTL: true, Mode: "XX"}).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
	}
	return nil
}

// HasActive reports whether the user has at least one active session.
func (r *SessionRedis) HasActive(ctx context.Context, userID uint) (bool, error) {
	sessions, err := r.load(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, s := range sessions {
		if s.IsActive {
			return true, nil
		}
	}
	return false, nil
}

// load returns the user's sessions that have not expired, pruning expired IDs from the set.
func (r *SessionRedis) load(ctx context.Context, userID uint) ([]*entity.Session, error) {
	userKey := r.userSessionsKey(userID)
	ids, err := r.client.SMembers(ctx, userKey).Result()
	if err != nil {
		return nil, err
	}

	var sessions []*entity.Session
	for _, id := range ids {
		data, err := r.client.Get(ctx, r.prefix+":"+id).Bytes()
		if errors.Is(err, redis.Nil) {
			// 期限切れのセッションはセットから削除
			r.client.SRem(ctx, userKey, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		var s entity.Session
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to unmarshal session: %w", err)
		}
		sessions = append(sessions, &s)
	}
	return sessions, nil
}

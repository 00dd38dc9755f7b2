// services/session_store.go
package services

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/salus-app/salus_backend/apierror"
)

const sessionKeyPrefix = "session:"

// ErrNoSession is returned by Lookup for unknown or expired session ids.
var ErrNoSession = errors.New("session not found")

// SessionStore keeps federated login sessions in Redis, keyed by an opaque id
// that travels to the client in a signed cookie.
type SessionStore struct {
	rdb    *redis.Client
	maxAge time.Duration
}

func NewSessionStore(rdb *redis.Client, maxAge time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, maxAge: maxAge}
}

func (s *SessionStore) Enabled() bool          { return s != nil && s.rdb != nil }
func (s *SessionStore) MaxAge() time.Duration { return s.maxAge }

// Open stores userID under a new session id and returns the id.
func (s *SessionStore) Open(ctx context.Context, userID string) (string, error) {
	if !s.Enabled() {
		return "", apierror.Persistence("Session store is unavailable", errors.New("redis not configured"))
	}
	sid := uuid.NewString()
	if err := s.rdb.Set(ctx, sessionKeyPrefix+sid, userID, s.maxAge).Err(); err != nil {
		return "", apierror.Persistence("Failed to open session", err)
	}
	return sid, nil
}

// Lookup returns the user id bound to sid.
func (s *SessionStore) Lookup(ctx context.Context, sid string) (string, error) {
	if !s.Enabled() {
		return "", ErrNoSession
	}
	userID, err := s.rdb.Get(ctx, sessionKeyPrefix+sid).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoSession
	}
	if err != nil {
		return "", apierror.Persistence("Failed to read session", err)
	}
	return userID, nil
}

func (s *SessionStore) Close(ctx context.Context, sid string) error {
	if !s.Enabled() || sid == "" {
		return nil
	}
	if err := s.rdb.Del(ctx, sessionKeyPrefix+sid).Err(); err != nil {
		return apierror.Persistence("Failed to close session", err)
	}
	return nil
}

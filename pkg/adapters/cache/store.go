// Package cache provides a SessionStore that forgets idle sessions, backed by go-cache.
package cache

import (
	"context"
	"time"

	"github.com/aretw0/parley/pkg/domain"
	gocache "github.com/patrickmn/go-cache"
)

// Store implements ports.SessionStore with per-session expiry.
// Every Save refreshes the session's TTL, so only idle conversations expire.
type Store struct {
	cache *gocache.Cache
	ttl   time.Duration
}

// NewStore creates a store whose sessions expire after ttl of inactivity.
// Expired sessions are purged every cleanup interval.
func NewStore(ttl, cleanup time.Duration) *Store {
	return &Store{
		cache: gocache.New(ttl, cleanup),
		ttl:   ttl,
	}
}

// Save stores a copy of the session and resets its expiry.
func (s *Store) Save(ctx context.Context, session *domain.Session) error {
	s.cache.Set(session.ID, *session, gocache.DefaultExpiration)
	return nil
}

// Load returns a copy of the session, or domain.ErrSessionNotFound once it expired.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	x, found := s.cache.Get(sessionID)
	if !found {
		return nil, domain.ErrSessionNotFound
	}
	session := x.(domain.Session)
	return &session, nil
}

// Delete removes the session.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.cache.Delete(sessionID)
	return nil
}

// List returns the sessions that have not expired yet.
func (s *Store) List(ctx context.Context) ([]string, error) {
	items := s.cache.Items()
	ids := make([]string, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	return ids, nil
}

// TTL returns the idle expiry.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

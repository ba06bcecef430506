package ports

import (
	"context"

	"github.com/aretw0/parley/pkg/domain"
)

// SessionStore defines the interface for keeping sessions between turns.
// Implementations must be safe for concurrent use; per-session serialisation is
// the session manager's job, not the store's.
type SessionStore interface {
	// Save persists the session under its ID.
	Save(ctx context.Context, session *domain.Session) error

	// Load retrieves the session for a given ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Session, error)

	// Delete removes the session. Deleting an unknown session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all stored sessions.
	List(ctx context.Context) ([]string, error)
}

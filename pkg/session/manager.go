package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/google/uuid"
)

// ErrMintExhausted is returned when no unused session identifier could be minted.
var ErrMintExhausted = errors.New("could not mint an unused session id")

const (
	maxMintAttempts = 5
	defaultLockTTL  = 30 * time.Second
)

var errIDTaken = errors.New("session id already in use")

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.SessionStore

	mu    sync.Mutex            // guards the map only, never held during a turn
	locks map[string]*lockEntry // active per-session locks

	locker  ports.DistributedLocker // optional, for multi-replica deployments
	lockTTL time.Duration
	mint    func() string
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets how long a distributed lock may be held before it expires.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithIDGenerator replaces the identifier generator (random UUIDs by default).
func WithIDGenerator(mint func() string) Option {
	return func(m *Manager) {
		if mint != nil {
			m.mint = mint
		}
	}
}

// NewManager creates a new Session Manager with the given persistence store.
func NewManager(store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: defaultLockTTL,
		mint:    uuid.NewString,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Advance runs one read-modify-write of a session under its lock and saves it once.
//
// If suppliedID names a stored session, fn mutates that session. Otherwise (empty or
// unknown identifier) a new session is created in the initial state under a freshly
// minted identifier, never the supplied one, and fn mutates it before the first save.
// created reports which of the two happened.
func (m *Manager) Advance(ctx context.Context, suppliedID string, fn func(*domain.Session) error) (sess *domain.Session, created bool, err error) {
	if suppliedID != "" {
		err := m.WithLock(ctx, suppliedID, func(ctx context.Context) error {
			loaded, err := m.store.Load(ctx, suppliedID)
			if err != nil {
				return err
			}
			if err := apply(loaded, fn); err != nil {
				return err
			}
			if err := m.store.Save(ctx, loaded); err != nil {
				return fmt.Errorf("failed to save session: %w", err)
			}
			sess = loaded
			return nil
		})
		if err == nil {
			return sess, false, nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return nil, false, err
		}
		m.logger.Debug("Discarding unknown session id", "session_id", suppliedID)
	}

	sess, err = m.create(ctx, suppliedID, fn)
	if err != nil {
		return nil, false, err
	}
	return sess, true, nil
}

// Resolve returns the session for suppliedID, creating a new one (under a new
// identifier) if it is empty or unknown. It does not count as a turn.
func (m *Manager) Resolve(ctx context.Context, suppliedID string) (*domain.Session, bool, error) {
	if suppliedID != "" {
		sess, err := m.Load(ctx, suppliedID)
		if err == nil {
			return sess, false, nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return nil, false, err
		}
	}

	sess, err := m.create(ctx, suppliedID, nil)
	if err != nil {
		return nil, false, err
	}
	return sess, true, nil
}

// create mints an identifier that differs from discarded and is not stored yet,
// then persists a new session under it.
func (m *Manager) create(ctx context.Context, discarded string, fn func(*domain.Session) error) (*domain.Session, error) {
	for attempt := 0; attempt < maxMintAttempts; attempt++ {
		id := m.mint()
		if id == "" || id == discarded {
			continue
		}

		var sess *domain.Session
		err := m.WithLock(ctx, id, func(ctx context.Context) error {
			if _, err := m.store.Load(ctx, id); err == nil {
				return errIDTaken
			} else if !errors.Is(err, domain.ErrSessionNotFound) {
				return fmt.Errorf("failed to check session existence: %w", err)
			}

			sess = domain.NewSession(id)
			if err := apply(sess, fn); err != nil {
				return err
			}
			if err := m.store.Save(ctx, sess); err != nil {
				return fmt.Errorf("failed to initialize session: %w", err)
			}
			return nil
		})
		if errors.Is(err, errIDTaken) {
			m.logger.Warn("Minted session id collided, retrying", "session_id", id)
			continue
		}
		if err != nil {
			return nil, err
		}
		return sess, nil
	}
	return nil, ErrMintExhausted
}

func apply(sess *domain.Session, fn func(*domain.Session) error) error {
	if fn == nil {
		return nil
	}
	if err := fn(sess); err != nil {
		return err
	}
	sess.UpdatedAt = time.Now().UTC()
	return nil
}

// Load retrieves an existing session from the store.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	var sess *domain.Session
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		sess, err = m.store.Load(ctx, sessionID)
		return err
	})
	return sess, err
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

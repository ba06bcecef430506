package parley

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/internal/runtime"
	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/aretw0/parley/pkg/rules"
	"github.com/aretw0/parley/pkg/rules/villagegp"
	"github.com/aretw0/parley/pkg/session"
)

// Engine is the high-level entry point for the Parley library.
// It binds a rule table to a session store and runs one turn per call.
// It is safe for concurrent use; turns for the same session are serialized.
type Engine struct {
	runtime  *runtime.Engine
	sessions *session.Manager

	table       *rules.Table
	rulesPath   string
	store       ports.SessionStore
	locker      ports.DistributedLocker
	fallback    string
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	sessionOpts []session.Option
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithRules sets the rule table. Defaults to the Old English Village GP rule set.
func WithRules(table *rules.Table) Option {
	return func(e *Engine) {
		e.table = table
	}
}

// WithRulesFile loads the rule table from a YAML or JSON file when the engine is created.
func WithRulesFile(path string) Option {
	return func(e *Engine) {
		e.rulesPath = path
	}
}

// WithStore sets the session store. Defaults to an in-memory store.
func WithStore(store ports.SessionStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithLocker enables cross-process locking of sessions, for stores shared by several replicas.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = locker
	}
}

// WithFallback overrides the response used when no rule matches.
func WithFallback(text string) Option {
	return func(e *Engine) {
		e.fallback = text
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks. Repeated calls add to the
// hooks already registered.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithSessionOptions passes options through to the session manager.
func WithSessionOptions(opts ...session.Option) Option {
	return func(e *Engine) {
		e.sessionOpts = append(e.sessionOpts, opts...)
	}
}

// New initializes a new Parley Engine.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}

	if eng.rulesPath != "" {
		if eng.table != nil {
			return nil, errors.New("WithRules and WithRulesFile are mutually exclusive")
		}
		table, err := rules.Load(eng.rulesPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load rules: %w", err)
		}
		eng.table = table
		eng.logger.Info("Loaded rules", "path", eng.rulesPath, "states", len(table.States()), "rules", table.Len())
	}
	if eng.table == nil {
		eng.table = villagegp.Table()
	}

	if eng.store == nil {
		eng.store = memory.NewStore()
	}

	eng.runtime = runtime.NewEngine(eng.table,
		runtime.WithFallback(eng.fallback),
		runtime.WithLogger(eng.logger),
	)

	sessionOpts := []session.Option{session.WithLogger(eng.logger)}
	if eng.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(eng.locker))
	}
	sessionOpts = append(sessionOpts, eng.sessionOpts...)
	eng.sessions = session.NewManager(eng.store, sessionOpts...)

	return eng, nil
}

// Turn runs one exchange: it resolves the session (creating one if sessionID is
// empty or unknown), matches input against the rules of the session's state,
// persists the next state and returns the response.
//
// Unmatched input is not an error: it yields the fallback response and returns
// the session to the initial state. Errors come only from the session store.
func (e *Engine) Turn(ctx context.Context, sessionID string, input string) (*domain.Reply, error) {
	var result runtime.StepResult
	sess, created, err := e.sessions.Advance(ctx, sessionID, func(s *domain.Session) error {
		result = e.runtime.Step(s.State, input)
		s.State = result.Next
		s.Turns++
		return nil
	})
	if err != nil {
		e.logger.Error("Turn failed", "session_id", sessionID, "err", err)
		return nil, fmt.Errorf("turn failed: %w", err)
	}

	now := time.Now().UTC()
	if created {
		e.logger.Debug("Session started", "session_id", sess.ID, "discarded", sessionID)
		if e.hooks.OnSessionStart != nil {
			e.hooks.OnSessionStart(ctx, &domain.SessionEvent{
				EventBase: domain.EventBase{Timestamp: now, Type: domain.EventSessionStart, SessionID: sess.ID},
				Discarded: sessionID,
			})
		}
	}

	e.emitTurn(ctx, sess.ID, result, now)

	e.logger.Info("Turn completed",
		"session_id", sess.ID,
		"state", result.From,
		"next_state", result.Next,
		"reason", result.Reason,
	)

	return &domain.Reply{
		Response:  result.Text,
		SessionID: sess.ID,
		State:     sess.State,
		Matched:   result.Matched,
	}, nil
}

func (e *Engine) emitTurn(ctx context.Context, sessionID string, result runtime.StepResult, now time.Time) {
	if e.hooks.OnTurn == nil && e.hooks.OnFallback == nil {
		return
	}
	evt := &domain.TurnEvent{
		EventBase: domain.EventBase{Timestamp: now, Type: domain.EventTurn, SessionID: sessionID},
		From:      result.From,
		To:        result.Next,
		Pattern:   result.Pattern,
		Matched:   result.Matched,
		Reason:    string(result.Reason),
	}
	if e.hooks.OnTurn != nil {
		e.hooks.OnTurn(ctx, evt)
	}
	if !result.Matched && e.hooks.OnFallback != nil {
		fb := *evt
		fb.Type = domain.EventFallback
		e.hooks.OnFallback(ctx, &fb)
	}
}

// Session returns a stored session without advancing it.
func (e *Engine) Session(ctx context.Context, sessionID string) (*domain.Session, error) {
	return e.sessions.Load(ctx, sessionID)
}

// EndSession deletes a session. Later turns with its identifier start afresh.
func (e *Engine) EndSession(ctx context.Context, sessionID string) error {
	return e.sessions.Delete(ctx, sessionID)
}

// Rules returns the rule table in use.
func (e *Engine) Rules() *rules.Table {
	return e.table
}

// Fallback returns the response used for unmatched input.
func (e *Engine) Fallback() string {
	return e.runtime.Fallback()
}

// Sessions returns the session manager.
func (e *Engine) Sessions() *session.Manager {
	return e.sessions
}

// Close releases the session store if it holds resources.
func (e *Engine) Close() error {
	if c, ok := e.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventSessionStart EventType = "session_start"
	EventTurn         EventType = "turn"
	EventFallback     EventType = "fallback"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// SessionEvent is emitted when a session is created.
type SessionEvent struct {
	EventBase
	// Discarded holds the stale identifier supplied by the caller, if any.
	Discarded string `json:"discarded,omitempty"`
}

// TurnEvent describes a completed turn.
type TurnEvent struct {
	EventBase
	From    State  `json:"from"`
	To      State  `json:"to"`
	Pattern string `json:"pattern,omitempty"`
	Matched bool   `json:"matched"`
	Reason  string `json:"reason"`
}

// LifecycleHooks defines callbacks for engine observability.
// OnFallback fires in addition to OnTurn whenever the fallback response is used.
type LifecycleHooks struct {
	OnSessionStart func(context.Context, *SessionEvent)
	OnTurn         func(context.Context, *TurnEvent)
	OnFallback     func(context.Context, *TurnEvent)
}

// Merge combines two sets of hooks; both callbacks run, h first.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnSessionStart: chain(h.OnSessionStart, other.OnSessionStart),
		OnTurn:         chain(h.OnTurn, other.OnTurn),
		OnFallback:     chain(h.OnFallback, other.OnFallback),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}

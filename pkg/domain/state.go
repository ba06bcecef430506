package domain

import "time"

// State names a point in the conversation. It selects which rules apply to the next input.
type State string

// StateInitial is both the start state of every session and the reset target after a fallback.
const StateInitial State = "initial"

// String implements fmt.Stringer.
func (s State) String() string {
	return string(s)
}

// Session is the per-conversation record owned by the session store.
type Session struct {
	// ID is the opaque identifier handed back to the caller.
	ID string `json:"id"`

	// State is the only field mutated by a turn.
	State State `json:"state"`

	// Turns counts completed turns (informational).
	Turns int `json:"turns"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates a session positioned at StateInitial.
func NewSession(id string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        id,
		State:     StateInitial,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns an independent copy of the session.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

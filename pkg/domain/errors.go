package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrUnknownState is returned when no rules are registered for a state.
var ErrUnknownState = errors.New("unknown state")

// ErrArityMismatch is returned when a generator's parameter count differs from the
// number of capture groups in its rule's pattern.
var ErrArityMismatch = errors.New("arity mismatch")

// ErrMissingInitial is returned when a rule table has no rules for StateInitial.
var ErrMissingInitial = errors.New("initial state has no rules")

// ErrDanglingState is returned when a rule transitions to a state with no rules.
var ErrDanglingState = errors.New("transition to unregistered state")

// ErrInvalidRule is returned for malformed rule definitions (bad pattern, empty state, ...).
var ErrInvalidRule = errors.New("invalid rule")

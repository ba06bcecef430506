/*
Package domain contains the core domain models shared by every Parley component.

It defines the conversation State, the Session record that carries it between turns,
the Reply returned to transports, and the lifecycle events emitted while a turn runs.
This package is kept pure and free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - State: A named point in the conversation; StateInitial is the hub and reset target.
  - Session: The per-conversation record, keyed by an opaque identifier.
  - Reply: The outcome of one turn (response text plus the session identifier to reuse).
  - LifecycleHooks: Callbacks for observability (session start, turn, fallback).
*/
package domain

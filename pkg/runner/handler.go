package runner

import (
	"context"

	"github.com/aretw0/parley/pkg/domain"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Output presents one reply to the user.
	Output(ctx context.Context, reply *domain.Reply) error

	// Input reads the next line from the user. It returns io.EOF when the stream ends.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message (greeting, status) distinct from replies.
	SystemOutput(ctx context.Context, msg string) error
}

// Engine is the part of parley.Engine the runner drives.
type Engine interface {
	Turn(ctx context.Context, sessionID string, input string) (*domain.Reply, error)
}

// ContentRenderer is a function that transforms the content before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

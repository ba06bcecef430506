package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/parley/internal/logging"
)

// ErrNoEngine is returned by Run when no engine was configured.
var ErrNoEngine = errors.New("runner: no engine configured")

// Runner handles the read-turn-write loop of a conversation.
// It uses an IOHandler strategy to abstract the interaction mode (Text vs JSON).
type Runner struct {
	// Handler is the strategy for IO. Defaults to a TextHandler on Stdin/Stdout.
	Handler IOHandler

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// SessionID is the conversation being continued. It is updated after every turn.
	SessionID string

	// Greeting is shown once, before the first read.
	Greeting string

	// Sanitizer cleans each line before it reaches the engine.
	Sanitizer Sanitizer

	engine Engine
}

// NewRunner creates a new Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	if r.Logger == nil {
		r.Logger = logging.NewNop()
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(os.Stdin, os.Stdout)
	}
	return r
}

// IsExitCommand reports whether a line ends the conversation.
func IsExitCommand(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "exit", "quit":
		return true
	}
	return false
}

// Run executes the loop until the input ends, the user types exit or quit, or ctx is done.
// Cancellation and end of input are a normal stop and return nil.
func (r *Runner) Run(ctx context.Context) error {
	if r.engine == nil {
		return ErrNoEngine
	}

	if r.Greeting != "" {
		if err := r.Handler.SystemOutput(ctx, r.Greeting); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}

	for {
		line, err := r.Handler.Input(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				r.Logger.Debug("Runner stopped", "session_id", r.SessionID, "cause", err)
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		clean, err := r.Sanitizer.Clean(line)
		if err != nil {
			r.Logger.Warn("Input rejected", "session_id", r.SessionID, "error", err)
			if err := r.Handler.SystemOutput(ctx, fmt.Sprintf("Input rejected: %v. Please try again.", err)); err != nil {
				return fmt.Errorf("output error: %w", err)
			}
			continue
		}

		if IsExitCommand(clean) {
			r.Logger.Debug("Exit requested", "session_id", r.SessionID)
			return nil
		}

		reply, err := r.engine.Turn(ctx, r.SessionID, clean)
		if err != nil {
			return fmt.Errorf("turn error: %w", err)
		}

		if r.SessionID != "" && reply.SessionID != r.SessionID {
			r.Logger.Warn("Session was replaced", "old_session_id", r.SessionID, "session_id", reply.SessionID)
		}
		r.SessionID = reply.SessionID

		if err := r.Handler.Output(ctx, reply); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}
}

package runner

import (
	"log/slog"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithEngine configures the engine the runner drives. Required.
func WithEngine(engine Engine) Option {
	return func(r *Runner) {
		r.engine = engine
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithSessionID resumes an existing session instead of starting a new one.
func WithSessionID(id string) Option {
	return func(r *Runner) {
		r.SessionID = id
	}
}

// WithGreeting sets a message shown once before the first read.
func WithGreeting(msg string) Option {
	return func(r *Runner) {
		r.Greeting = msg
	}
}

// WithMaxInputSize bounds the size of one line in bytes.
// Longer lines are refused and the user is asked again.
func WithMaxInputSize(n int) Option {
	return func(r *Runner) {
		r.Sanitizer = NewSanitizer(n)
	}
}

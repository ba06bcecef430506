package runtime

import (
	"errors"
	"log/slog"

	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/rules"
)

// Reason explains how a step produced its response.
type Reason string

const (
	ReasonMatched      Reason = "matched"
	ReasonNoMatch      Reason = "no_match"
	ReasonUnknownState Reason = "unknown_state"
	ReasonRenderFailed Reason = "render_failed"
)

// DefaultFallback is used when neither the engine nor the table declares one.
const DefaultFallback = "I'm sorry, I did not understand that. Could you put it another way?"

// StepResult is the outcome of evaluating one input against one state.
type StepResult struct {
	Text    string
	From    domain.State
	Next    domain.State
	Matched bool
	Reason  Reason
	Pattern string // source of the matched rule, empty on fallback
}

// Engine evaluates input against the rule table. It holds no session state and is
// safe for concurrent use.
type Engine struct {
	table    *rules.Table
	fallback string
	logger   *slog.Logger
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithFallback overrides the fallback text.
func WithFallback(text string) EngineOption {
	return func(e *Engine) {
		if text != "" {
			e.fallback = text
		}
	}
}

// WithLogger sets the logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine over a validated table.
func NewEngine(table *rules.Table, opts ...EngineOption) *Engine {
	e := &Engine{
		table:    table,
		fallback: table.Fallback(),
		logger:   logging.NewNop(),
	}
	if e.fallback == "" {
		e.fallback = DefaultFallback
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Table returns the rule table.
func (e *Engine) Table() *rules.Table {
	return e.table
}

// Fallback returns the text used for unmatched input.
func (e *Engine) Fallback() string {
	return e.fallback
}

// Step matches input in state and decides the response and next state.
// Every failure mode resolves to the fallback text and a reset to initial.
func (e *Engine) Step(state domain.State, input string) StepResult {
	m, ok, err := FindMatch(e.table, state, input)
	if err != nil {
		reason := ReasonUnknownState
		if !errors.Is(err, domain.ErrUnknownState) {
			reason = ReasonRenderFailed
		}
		e.logger.Warn("Resetting session from unusable state", "state", state, "reason", reason, "err", err)
		return e.fallbackResult(state, reason)
	}

	if !ok {
		e.logger.Debug("No rule matched", "state", state)
		return e.fallbackResult(state, ReasonNoMatch)
	}

	text, err := Render(m.Rule.Outcome, m.Captures)
	if err != nil {
		e.logger.Warn("Rendering failed, using fallback", "state", state, "pattern", m.Rule.Source, "err", err)
		return e.fallbackResult(state, ReasonRenderFailed)
	}

	next := m.Rule.Outcome.NextState()
	e.logger.Debug("Rule matched", "state", state, "pattern", m.Rule.Source, "next_state", next)
	return StepResult{
		Text:    text,
		From:    state,
		Next:    next,
		Matched: true,
		Reason:  ReasonMatched,
		Pattern: m.Rule.Source,
	}
}

func (e *Engine) fallbackResult(from domain.State, reason Reason) StepResult {
	return StepResult{
		Text:   e.fallback,
		From:   from,
		Next:   domain.StateInitial,
		Reason: reason,
	}
}

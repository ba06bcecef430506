package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/parley/pkg/domain"
)

// RuleError describes a single invalid rule.
type RuleError struct {
	State   domain.State
	Index   int    // position within the state, -1 for state-level errors
	Pattern string // pattern as declared
	Err     error
}

func (e *RuleError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("state %q: %v", e.State, e.Err)
	}
	return fmt.Sprintf("state %q rule #%d (%q): %v", e.State, e.Index, e.Pattern, e.Err)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d rule errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// ValidationErrors returns all validation errors if err is an AggregateError.
// Otherwise returns nil.
func ValidationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}

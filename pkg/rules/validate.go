package rules

import (
	"fmt"

	"github.com/aretw0/parley/pkg/domain"
)

// validate checks the structural invariants of a compiled table.
func validate(t *Table) []error {
	var errs []error

	if !t.Has(domain.StateInitial) {
		errs = append(errs, &RuleError{State: domain.StateInitial, Index: -1, Err: domain.ErrMissingInitial})
	}

	for _, state := range t.order {
		if len(t.rules[state]) == 0 && state != domain.StateInitial {
			errs = append(errs, &RuleError{State: state, Index: -1, Err: fmt.Errorf("%w: state has no rules", domain.ErrInvalidRule)})
		}

		for i, r := range t.rules[state] {
			if r.Outcome.Kind != OutcomeStatic && r.Outcome.Kind != OutcomeTransition {
				errs = append(errs, &RuleError{State: state, Index: i, Pattern: r.Source, Err: fmt.Errorf("%w: missing outcome", domain.ErrInvalidRule)})
				continue
			}

			if arity := r.Outcome.Arity(); arity >= 0 && arity != r.Groups() {
				errs = append(errs, &RuleError{
					State:   state,
					Index:   i,
					Pattern: r.Source,
					Err:     fmt.Errorf("%w: generator takes %d parameters, pattern has %d capture groups", domain.ErrArityMismatch, arity, r.Groups()),
				})
			}

			if r.Outcome.Kind == OutcomeTransition {
				next := r.Outcome.NextState()
				if next != domain.StateInitial && !t.Has(next) {
					errs = append(errs, &RuleError{
						State:   state,
						Index:   i,
						Pattern: r.Source,
						Err:     fmt.Errorf("%w: %q", domain.ErrDanglingState, next),
					})
				}
			}
		}
	}

	return errs
}

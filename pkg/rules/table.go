package rules

import (
	"fmt"

	"github.com/aretw0/parley/pkg/domain"
)

// Table is the immutable, process-wide rule configuration.
// It is safe for concurrent use: nothing mutates it after Build.
type Table struct {
	order    []domain.State
	rules    map[domain.State][]Rule
	fallback string
}

// RulesFor returns the rules registered for state, in declaration order.
// The returned slice is shared and must not be modified.
func (t *Table) RulesFor(state domain.State) ([]Rule, error) {
	rs, ok := t.rules[state]
	if !ok || len(rs) == 0 {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownState, state)
	}
	return rs, nil
}

// Has reports whether state has registered rules.
func (t *Table) Has(state domain.State) bool {
	return len(t.rules[state]) > 0
}

// States returns every registered state in declaration order, initial first.
func (t *Table) States() []domain.State {
	return append([]domain.State(nil), t.order...)
}

// Fallback returns the fallback text declared with the table, if any.
func (t *Table) Fallback() string {
	return t.fallback
}

// Len returns the total number of rules.
func (t *Table) Len() int {
	n := 0
	for _, rs := range t.rules {
		n += len(rs)
	}
	return n
}

package rules

import (
	"fmt"
	"regexp"

	"github.com/aretw0/parley/pkg/domain"
)

type pendingRule struct {
	source  string
	outcome Outcome
}

// Builder assembles a Table. States and rules keep the order they are declared in.
type Builder struct {
	order    []domain.State
	states   map[domain.State]*StateBuilder
	fallback string
	errs     []error
}

// New creates an empty builder.
func New() *Builder {
	return &Builder{
		states: make(map[domain.State]*StateBuilder),
	}
}

// State returns the builder for a state, creating it on first use.
// Calling State again with the same name appends to the existing rules.
func (b *Builder) State(name domain.State) *StateBuilder {
	if sb, ok := b.states[name]; ok {
		return sb
	}
	sb := &StateBuilder{name: name, builder: b}
	b.states[name] = sb
	b.order = append(b.order, name)
	return sb
}

// Fallback sets the text used when no rule matches.
func (b *Builder) Fallback(text string) *Builder {
	b.fallback = text
	return b
}

// Fail records an error discovered while assembling rules (e.g. by a file loader).
// Build reports it alongside validation errors.
func (b *Builder) Fail(err error) *Builder {
	b.errs = append(b.errs, err)
	return b
}

// Build compiles every pattern, validates the table and returns it.
// All problems are reported together in an *AggregateError.
func (b *Builder) Build() (*Table, error) {
	errs := append([]error(nil), b.errs...)
	t := &Table{
		rules:    make(map[domain.State][]Rule, len(b.states)),
		fallback: b.fallback,
	}

	// initial always leads, the rest keep declaration order
	if _, ok := b.states[domain.StateInitial]; ok {
		t.order = append(t.order, domain.StateInitial)
	}
	for _, name := range b.order {
		switch name {
		case domain.StateInitial:
		case "":
			errs = append(errs, &RuleError{State: name, Index: -1, Err: fmt.Errorf("%w: empty state name", domain.ErrInvalidRule)})
		default:
			t.order = append(t.order, name)
		}
	}

	for _, name := range t.order {
		sb := b.states[name]
		compiled := make([]Rule, 0, len(sb.rules))
		for i, p := range sb.rules {
			re, err := regexp.Compile("(?i)" + p.source)
			if err != nil {
				errs = append(errs, &RuleError{State: name, Index: i, Pattern: p.source, Err: fmt.Errorf("%w: %v", domain.ErrInvalidRule, err)})
				continue
			}
			compiled = append(compiled, Rule{
				State:   name,
				Source:  p.source,
				Pattern: re,
				Outcome: p.outcome,
			})
		}
		t.rules[name] = compiled
	}

	errs = append(errs, validate(t)...)
	if len(errs) > 0 {
		return nil, &AggregateError{Errors: errs}
	}
	return t, nil
}

// MustBuild is like Build but panics on error. Intended for static tables.
func (b *Builder) MustBuild() *Table {
	t, err := b.Build()
	if err != nil {
		panic(err)
	}
	return t
}

// StateBuilder provides a fluent API for the rules of one state.
type StateBuilder struct {
	name    domain.State
	rules   []pendingRule
	builder *Builder
}

// Rule appends a rule with an explicit outcome.
func (s *StateBuilder) Rule(pattern string, outcome Outcome) *StateBuilder {
	s.rules = append(s.rules, pendingRule{source: pattern, outcome: outcome})
	return s
}

// Static appends a rule that replies with text and returns to the initial state.
func (s *StateBuilder) Static(pattern, text string) *StateBuilder {
	return s.Rule(pattern, Static(text))
}

// Go appends a rule that replies with the generator's text and moves to next.
func (s *StateBuilder) Go(pattern string, g Generator, next domain.State) *StateBuilder {
	return s.Rule(pattern, Transition(g, next))
}

// State switches to another state of the same builder.
func (s *StateBuilder) State(name domain.State) *StateBuilder {
	return s.builder.State(name)
}

// Build builds the whole table.
func (s *StateBuilder) Build() (*Table, error) {
	return s.builder.Build()
}

// MustBuild is like Build but panics on error.
func (s *StateBuilder) MustBuild() *Table {
	return s.builder.MustBuild()
}

package rules

import "github.com/aretw0/parley/pkg/domain"

// RuleSummary is the serialisable view of one rule.
type RuleSummary struct {
	Pattern string       `json:"pattern"`
	Kind    string       `json:"kind"`
	Next    domain.State `json:"next"`
}

// StateSummary lists the rules of one state in match order.
type StateSummary struct {
	Name  domain.State  `json:"name"`
	Rules []RuleSummary `json:"rules"`
}

// Describe returns the table's states and rules in declaration order, for
// introspection endpoints and diagrams.
func (t *Table) Describe() []StateSummary {
	out := make([]StateSummary, 0, len(t.order))
	for _, state := range t.order {
		rs := t.rules[state]
		sum := StateSummary{Name: state, Rules: make([]RuleSummary, 0, len(rs))}
		for _, r := range rs {
			sum.Rules = append(sum.Rules, RuleSummary{
				Pattern: r.Source,
				Kind:    r.Outcome.Kind.String(),
				Next:    r.Outcome.NextState(),
			})
		}
		out = append(out, sum)
	}
	return out
}

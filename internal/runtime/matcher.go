package runtime

import (
	"strings"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/rules"
)

// Match is a rule hit together with the text captured by its groups.
type Match struct {
	Rule     rules.Rule
	Captures []string // left-to-right group order
}

// Normalize prepares raw input for matching. Only case is folded:
// punctuation and whitespace take part in matching exactly as typed.
func Normalize(text string) string {
	return strings.ToLower(text)
}

// FindMatch returns the first rule of state whose pattern occurs anywhere in text.
// ok is false when nothing matches, which is a normal outcome, not an error.
// The error wraps domain.ErrUnknownState when state has no rules.
func FindMatch(table *rules.Table, state domain.State, text string) (m Match, ok bool, err error) {
	candidates, err := table.RulesFor(state)
	if err != nil {
		return Match{}, false, err
	}

	normalized := Normalize(text)
	for _, r := range candidates {
		sub := r.Pattern.FindStringSubmatch(normalized)
		if sub == nil {
			continue
		}
		return Match{Rule: r, Captures: sub[1:]}, true, nil
	}
	return Match{}, false, nil
}

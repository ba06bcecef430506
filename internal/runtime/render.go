package runtime

import (
	"fmt"

	"github.com/aretw0/parley/pkg/rules"
)

// Render turns a matched outcome into response text. It is pure: no session access.
//
// Static outcomes and fixed generators ignore captures. Function and template
// generators receive the captures positionally; arity is checked when the table is
// built, so a mismatch here means the table bypassed validation.
func Render(outcome rules.Outcome, captures []string) (string, error) {
	switch outcome.Kind {
	case rules.OutcomeStatic:
		return outcome.Text, nil
	case rules.OutcomeTransition:
		if outcome.Generator.Fixed() {
			return outcome.Generator.Generate(nil)
		}
		return outcome.Generator.Generate(captures)
	default:
		return "", fmt.Errorf("unsupported outcome kind %d", outcome.Kind)
	}
}

/*
Package rules defines the immutable, per-state rule table that drives a Parley dialogue.

A Table maps every State to an ordered sequence of Rules. Each Rule pairs a
case-insensitive regular expression with an Outcome. Order is part of the contract:
the first rule whose pattern is found in the input wins, there is no scoring.

# Outcomes

  - Static: fixed text, the session returns to domain.StateInitial.
  - Transition: a Generator plus an explicit next state. Generators are either fixed
    text or a function of the pattern's capture groups, bound positionally.

Tables are built once, either in Go with the fluent Builder or from a YAML/JSON file
with Load, and are validated before use. A generator whose parameter count differs
from its pattern's capture groups fails the build with domain.ErrArityMismatch.

	table, err := rules.New().
		State(domain.StateInitial).
			Static(`\bhello\b`, "Good day.").
			Go(`headache`, rules.Text("How severe, 1 to 10?"), "headache_severity").
		State("headache_severity").
			Go(`(\d+)`, rules.Func1(func(n string) string { return "Severity " + n }), domain.StateInitial).
		Build()
*/
package rules

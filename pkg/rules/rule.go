package rules

import (
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/aretw0/parley/pkg/domain"
)

// OutcomeKind tags the variant held by an Outcome.
type OutcomeKind uint8

const (
	// OutcomeStatic replies with fixed text and returns to the initial state.
	OutcomeStatic OutcomeKind = iota + 1
	// OutcomeTransition replies with generated text and moves to Outcome.Next.
	OutcomeTransition
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeStatic:
		return "static"
	case OutcomeTransition:
		return "transition"
	}
	return "unknown"
}

// Outcome is what happens when a rule matches.
type Outcome struct {
	Kind      OutcomeKind
	Text      string       // OutcomeStatic
	Generator Generator    // OutcomeTransition
	Next      domain.State // OutcomeTransition
}

// Static builds an outcome that replies with text and resets to the initial state.
func Static(text string) Outcome {
	return Outcome{Kind: OutcomeStatic, Text: text}
}

// Transition builds an outcome that replies with the generator's text and moves to next.
func Transition(g Generator, next domain.State) Outcome {
	return Outcome{Kind: OutcomeTransition, Generator: g, Next: next}
}

// NextState returns the state the session moves to after this outcome.
func (o Outcome) NextState() domain.State {
	if o.Kind == OutcomeTransition && o.Next != "" {
		return o.Next
	}
	return domain.StateInitial
}

// Arity is the number of captures the outcome consumes, or -1 if it ignores them.
func (o Outcome) Arity() int {
	if o.Kind == OutcomeTransition {
		return o.Generator.Arity()
	}
	return -1
}

type generatorKind uint8

const (
	generatorText generatorKind = iota
	generatorFunc
	generatorTemplate
)

// Generator produces response text for a transition outcome.
// The zero value generates an empty string.
type Generator struct {
	kind   generatorKind
	text   string
	fn     func(captures []string) string
	tmpl   *template.Template
	params []string
	arity  int
}

// Text returns a generator that always yields s, whatever the captures.
func Text(s string) Generator {
	return Generator{kind: generatorText, text: s, arity: -1}
}

// FuncN returns a generator that receives exactly n captures in group order.
func FuncN(n int, fn func(captures []string) string) Generator {
	return Generator{kind: generatorFunc, fn: fn, arity: n}
}

// Func0 returns a generator computed without captures.
func Func0(fn func() string) Generator {
	return FuncN(0, func([]string) string { return fn() })
}

// Func1 returns a generator bound to a single capture group.
func Func1(fn func(string) string) Generator {
	return FuncN(1, func(c []string) string { return fn(c[0]) })
}

// Func2 returns a generator bound to two capture groups.
func Func2(fn func(a, b string) string) Generator {
	return FuncN(2, func(c []string) string { return fn(c[0], c[1]) })
}

// Template returns a generator that executes a text/template with one named
// parameter per capture group, e.g. params [severity] and "Level {{.severity}}".
// The template also gets an "int" function for numeric comparisons.
func Template(params []string, text string) (Generator, error) {
	seen := make(map[string]bool, len(params))
	for _, p := range params {
		if p == "" || seen[p] {
			return Generator{}, fmt.Errorf("%w: duplicate or empty template parameter %q", domain.ErrInvalidRule, p)
		}
		seen[p] = true
	}
	tmpl, err := template.New("response").
		Option("missingkey=error").
		Funcs(templateFuncs).
		Parse(text)
	if err != nil {
		return Generator{}, fmt.Errorf("%w: %v", domain.ErrInvalidRule, err)
	}
	return Generator{
		kind:   generatorTemplate,
		tmpl:   tmpl,
		text:   text,
		params: append([]string(nil), params...),
		arity:  len(params),
	}, nil
}

// Arity is the number of parameters the generator binds, or -1 for fixed text.
func (g Generator) Arity() int {
	if g.kind == generatorText {
		return -1
	}
	return g.arity
}

// Fixed reports whether the generator ignores captures.
func (g Generator) Fixed() bool {
	return g.kind == generatorText
}

// Generate renders the text for the given captures.
func (g Generator) Generate(captures []string) (string, error) {
	if g.kind != generatorText && len(captures) != g.arity {
		return "", fmt.Errorf("%w: generator takes %d parameters, got %d captures", domain.ErrArityMismatch, g.arity, len(captures))
	}

	switch g.kind {
	case generatorFunc:
		if g.fn == nil {
			return "", nil
		}
		return g.fn(captures), nil
	case generatorTemplate:
		data := make(map[string]string, len(g.params))
		for i, p := range g.params {
			data[p] = captures[i]
		}
		var sb strings.Builder
		if err := g.tmpl.Execute(&sb, data); err != nil {
			return "", fmt.Errorf("template execution failed: %w", err)
		}
		return sb.String(), nil
	default:
		return g.text, nil
	}
}

// Rule pairs a pattern with an outcome, scoped to one state.
type Rule struct {
	State   domain.State
	Source  string // pattern as declared
	Pattern *regexp.Regexp
	Outcome Outcome
}

// Groups returns the number of capture groups in the pattern.
func (r Rule) Groups() int {
	if r.Pattern == nil {
		return 0
	}
	return r.Pattern.NumSubexp()
}

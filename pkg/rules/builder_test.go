package rules_test

import (
	"errors"
	"testing"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_PreservesDeclarationOrder(t *testing.T) {
	table, err := rules.New().
		State("second").
		Static("b", "B").
		State(domain.StateInitial).
		Static("z", "Z").
		Static("a", "A").
		Go("go", rules.Text("going"), "second").
		Build()
	require.NoError(t, err)

	assert.Equal(t, []domain.State{domain.StateInitial, "second"}, table.States(), "initial always leads")

	rs, err := table.RulesFor(domain.StateInitial)
	require.NoError(t, err)
	require.Len(t, rs, 3)
	assert.Equal(t, "z", rs[0].Source)
	assert.Equal(t, "a", rs[1].Source)
	assert.Equal(t, "go", rs[2].Source)
	assert.Equal(t, 4, table.Len())
}

func TestBuilder_RulesForUnknownState(t *testing.T) {
	table := rules.New().State(domain.StateInitial).Static("x", "X").MustBuild()

	_, err := table.RulesFor("corrupted")
	assert.ErrorIs(t, err, domain.ErrUnknownState)
	assert.False(t, table.Has("corrupted"))
}

func TestBuilder_PatternsAreCaseInsensitive(t *testing.T) {
	table := rules.New().State(domain.StateInitial).Static("Hello", "hi").MustBuild()
	rs, _ := table.RulesFor(domain.StateInitial)

	assert.True(t, rs[0].Pattern.MatchString("hello"))
	assert.True(t, rs[0].Pattern.MatchString("HELLO there"))
}

func TestBuilder_Validation(t *testing.T) {
	tests := []struct {
		name    string
		build   func() *rules.Builder
		wantErr error
	}{
		{
			name: "Arity Mismatch Func1 Without Groups",
			build: func() *rules.Builder {
				b := rules.New()
				b.State(domain.StateInitial).Go("plain", rules.Func1(func(s string) string { return s }), domain.StateInitial)
				return b
			},
			wantErr: domain.ErrArityMismatch,
		},
		{
			name: "Arity Mismatch FuncN Too Few",
			build: func() *rules.Builder {
				b := rules.New()
				b.State(domain.StateInitial).Go(`(\d+)-(\d+)`, rules.FuncN(1, func(c []string) string { return c[0] }), domain.StateInitial)
				return b
			},
			wantErr: domain.ErrArityMismatch,
		},
		{
			name: "Missing Initial",
			build: func() *rules.Builder {
				b := rules.New()
				b.State("elsewhere").Static("x", "X")
				return b
			},
			wantErr: domain.ErrMissingInitial,
		},
		{
			name: "Dangling Transition",
			build: func() *rules.Builder {
				b := rules.New()
				b.State(domain.StateInitial).Go("x", rules.Text("X"), "nowhere")
				return b
			},
			wantErr: domain.ErrDanglingState,
		},
		{
			name: "Bad Pattern",
			build: func() *rules.Builder {
				b := rules.New()
				b.State(domain.StateInitial).Static("([", "X")
				return b
			},
			wantErr: domain.ErrInvalidRule,
		},
		{
			name: "Empty State Name",
			build: func() *rules.Builder {
				b := rules.New()
				b.State(domain.StateInitial).Static("x", "X")
				b.State("").Static("y", "Y")
				return b
			},
			wantErr: domain.ErrInvalidRule,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := tt.build().Build()
			assert.Nil(t, table)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var ruleErr *rules.RuleError
			assert.True(t, errors.As(err, &ruleErr), "failures are reported as RuleError")
		})
	}
}

func TestBuilder_ArityAccepted(t *testing.T) {
	_, err := rules.New().
		State(domain.StateInitial).
		Static(`(static) (ignores) (groups)`, "fine").
		Go(`(fixed) text`, rules.Text("fixed text ignores groups too"), domain.StateInitial).
		Go(`(\d+)x(\d+)`, rules.Func2(func(a, b string) string { return a + b }), domain.StateInitial).
		Go(`nothing`, rules.Func0(func() string { return "zero" }), domain.StateInitial).
		Build()
	assert.NoError(t, err)
}

func TestBuilder_ReportsAllErrors(t *testing.T) {
	_, err := rules.New().
		State(domain.StateInitial).
		Go("a", rules.Func1(func(s string) string { return s }), domain.StateInitial).
		Go("b", rules.Text("B"), "missing").
		Build()

	errs := rules.ValidationErrors(err)
	assert.Len(t, errs, 2)
	assert.Contains(t, err.Error(), "2 rule errors")
}

func TestOutcome_NextState(t *testing.T) {
	assert.Equal(t, domain.StateInitial, rules.Static("x").NextState())
	assert.Equal(t, domain.State("topic"), rules.Transition(rules.Text("x"), "topic").NextState())
	assert.Equal(t, -1, rules.Static("x").Arity())
	assert.Equal(t, 2, rules.Transition(rules.Func2(func(a, b string) string { return a }), "t").Arity())
}

func TestGenerator_Generate(t *testing.T) {
	t.Run("Fixed", func(t *testing.T) {
		out, err := rules.Text("same").Generate([]string{"ignored"})
		require.NoError(t, err)
		assert.Equal(t, "same", out)
	})

	t.Run("Func Positional", func(t *testing.T) {
		g := rules.Func2(func(a, b string) string { return b + "/" + a })
		out, err := g.Generate([]string{"1", "2"})
		require.NoError(t, err)
		assert.Equal(t, "2/1", out)
	})

	t.Run("Func Wrong Capture Count", func(t *testing.T) {
		_, err := rules.Func1(func(s string) string { return s }).Generate(nil)
		assert.ErrorIs(t, err, domain.ErrArityMismatch)
	})

	t.Run("Template", func(t *testing.T) {
		g, err := rules.Template([]string{"n"}, "{{if ge (int .n) 7}}high {{.n}}{{else}}low {{.n}}{{end}}")
		require.NoError(t, err)

		out, err := g.Generate([]string{"8"})
		require.NoError(t, err)
		assert.Equal(t, "high 8", out)

		out, err = g.Generate([]string{"2"})
		require.NoError(t, err)
		assert.Equal(t, "low 2", out)
	})

	t.Run("Template Rejects Duplicate Params", func(t *testing.T) {
		_, err := rules.Template([]string{"a", "a"}, "{{.a}}")
		assert.ErrorIs(t, err, domain.ErrInvalidRule)
	})

	t.Run("Template Syntax Error", func(t *testing.T) {
		_, err := rules.Template([]string{"a"}, "{{.a")
		assert.ErrorIs(t, err, domain.ErrInvalidRule)
	})

	t.Run("Template Only Knows Int", func(t *testing.T) {
		g, err := rules.Template([]string{"n"}, "{{int .n}} {{int .n | printf \"%03d\"}}")
		require.NoError(t, err)
		out, err := g.Generate([]string{" 7 "})
		require.NoError(t, err)
		assert.Equal(t, "7 007", out)

		for _, text := range []string{"{{upper .n}}", "{{title .n}}"} {
			_, err := rules.Template([]string{"n"}, text)
			assert.ErrorIs(t, err, domain.ErrInvalidRule, text)
		}
	})
}

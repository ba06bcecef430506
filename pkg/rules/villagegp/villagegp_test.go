package villagegp_test

import (
	"path/filepath"
	"regexp"
	"testing"

	"github.com/aretw0/parley/internal/runtime"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/rules"
	"github.com/aretw0/parley/pkg/rules/villagegp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_IsStarShaped(t *testing.T) {
	table := villagegp.Table()

	for _, state := range table.States() {
		rs, err := table.RulesFor(state)
		require.NoError(t, err)
		for _, r := range rs {
			next := r.Outcome.NextState()
			if state == domain.StateInitial {
				assert.True(t, table.Has(next), "hub rules lead to registered states")
				continue
			}
			assert.Equal(t, domain.StateInitial, next, "topic %s must return to the hub", state)
		}
	}
}

func TestTable_Shared(t *testing.T) {
	assert.Same(t, villagegp.Table(), villagegp.Table())
	assert.Equal(t, villagegp.Fallback, villagegp.Table().Fallback())
}

// Literal patterns must select their own rule, never a later one.
func TestTable_LiteralPatternsSelectThemselves(t *testing.T) {
	table := villagegp.Table()
	literal := regexp.MustCompile(`^[a-z ]+$`)

	for _, state := range table.States() {
		rs, _ := table.RulesFor(state)
		for i, r := range rs {
			if !literal.MatchString(r.Source) {
				continue
			}
			m, ok, err := runtime.FindMatch(table, state, "so, "+r.Source+" indeed")
			require.NoError(t, err)
			require.True(t, ok, "literal %q should match", r.Source)
			got := indexOf(rs, m.Rule.Source)
			assert.LessOrEqual(t, got, i, "literal %q resolved to a later rule", r.Source)
		}
	}
}

func indexOf(rs []rules.Rule, source string) int {
	for i, r := range rs {
		if r.Source == source {
			return i
		}
	}
	return -1
}

func TestScenario(t *testing.T) {
	engine := runtime.NewEngine(villagegp.Table())

	res := engine.Step(domain.StateInitial, "hi")
	assert.Equal(t, villagegp.Greeting, res.Text)
	assert.Equal(t, domain.StateInitial, res.Next)

	res = engine.Step(res.Next, "headache")
	assert.Contains(t, res.Text, "how severe")
	assert.Equal(t, villagegp.StateHeadacheSeverity, res.Next)

	res = engine.Step(res.Next, "5")
	assert.Contains(t, res.Text, "moderate")
	assert.Contains(t, res.Text, "5")
	assert.Equal(t, domain.StateInitial, res.Next)

	res = engine.Step(res.Next, "xyzzy")
	assert.Equal(t, villagegp.Fallback, res.Text)
	assert.Equal(t, domain.StateInitial, res.Next)
}

func TestHeadacheSeverity(t *testing.T) {
	engine := runtime.NewEngine(villagegp.Table())

	cases := map[string]string{
		"1":      "mild",
		"3":      "mild",
		"5":      "moderate",
		"7":      "severe",
		"10":     "severe",
		"mild":   "mild",
		"awful!": "severe",
	}
	for input, want := range cases {
		res := engine.Step(villagegp.StateHeadacheSeverity, input)
		assert.True(t, res.Matched, input)
		assert.Contains(t, res.Text, want, input)
		assert.Equal(t, domain.StateInitial, res.Next)
	}

	res := engine.Step(villagegp.StateHeadacheSeverity, "7")
	assert.Contains(t, res.Text, "7")
}

func TestFeverDuration(t *testing.T) {
	engine := runtime.NewEngine(villagegp.Table())

	cases := map[string]string{
		"2":               "A fever of 2 days is young yet.",
		"4 days":          "A fever of 4 days warrants a visit.",
		"2 weeks":         "A fever of 2 weeks must be seen in person.",
		"about 1 week":    "A fever of 1 week must be seen in person.",
		"3weeks":          "A fever of 3 weeks must be seen in person.",
		"a week or so":    "A fever lasting a week or more must be seen in person.",
		"some weeks":      "A fever lasting a week or more must be seen in person.",
		"since yesterday": "A young fever.",
	}
	for input, want := range cases {
		res := engine.Step(villagegp.StateFeverDuration, input)
		assert.True(t, res.Matched, input)
		assert.Contains(t, res.Text, want, input)
		assert.Equal(t, domain.StateInitial, res.Next, input)
	}
}

func TestCaseInsensitiveGreeting(t *testing.T) {
	engine := runtime.NewEngine(villagegp.Table())
	assert.Equal(t, engine.Step(domain.StateInitial, "hello").Pattern, engine.Step(domain.StateInitial, "HELLO").Pattern)
}

// The shipped YAML rendition must behave exactly like the Go table.
func TestYAMLParity(t *testing.T) {
	fromFile, err := rules.Load(filepath.Join("..", "..", "..", "examples", "rules", "village-gp.yaml"))
	require.NoError(t, err)

	goEngine := runtime.NewEngine(villagegp.Table())
	fileEngine := runtime.NewEngine(fromFile)

	conversations := [][]string{
		{"hi", "headache", "5", "xyzzy"},
		{"Good morning", "migraine", "9", "thanks"},
		{"head ache", "2"},
		{"I have a fever", "2"},
		{"fever", "4 days"},
		{"fever", "a week"},
		{"fever", "2 weeks"},
		{"fever", "1 week"},
		{"fever", "3weeks now"},
		{"fever", "since yesterday"},
		{"a nasty cough", "dry"},
		{"cough", "chesty"},
		{"I can't sleep", "5"},
		{"insomnia", "8"},
		{"headache", "severe"},
		{"headache", "moderate"},
		{"headache", "slight"},
		{"help", "bye"},
	}

	for _, conv := range conversations {
		goState, fileState := domain.StateInitial, domain.StateInitial
		for _, input := range conv {
			a := goEngine.Step(goState, input)
			b := fileEngine.Step(fileState, input)
			assert.Equal(t, a.Text, b.Text, "input %q", input)
			assert.Equal(t, a.Next, b.Next, "input %q", input)
			goState, fileState = a.Next, b.Next
		}
	}
}

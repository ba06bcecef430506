package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/parley/internal/presentation/graph"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/rules"
	"github.com/aretw0/parley/pkg/rules/villagegp"
	"github.com/stretchr/testify/assert"
)

func TestGenerateMermaid(t *testing.T) {
	table := rules.New().
		State(domain.StateInitial).
		Static(`hello`, "Hi.").
		Static(`bye`, "Bye.").
		Go(`pizza`, rules.Text("Which topping?"), "pizza-order").
		Go(`order (\w+)`, rules.Func1(func(s string) string { return s }), "pizza-order").
		State("pizza-order").
		Go(`"(\w+)"`, rules.Func1(func(s string) string { return s }), domain.StateInitial).
		MustBuild()

	out := graph.GenerateMermaid(table.Describe(), nil)

	for _, want := range []string{
		"graph TD\n",
		`initial(("initial"))`,
		`pizza_order[/"pizza-order"/]`,
		`initial -. "hello<br/>bye" .-> initial`,
		`initial -- "pizza<br/>order (\w+)" --> pizza_order`,
		`pizza_order -- "#quot;(\w+)#quot;" --> initial`,
		`pizza_order -. "fallback" .-> initial`,
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "classDef")
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	out := graph.GenerateMermaid(villagegp.Table().Describe(), &graph.GraphOverlay{CurrentState: villagegp.StateFeverDuration})

	assert.Contains(t, out, "classDef current")
	assert.Contains(t, out, "class fever_duration current;")
	// Every topic state hangs off the hub.
	for _, st := range []domain.State{villagegp.StateHeadacheSeverity, villagegp.StateFeverDuration, villagegp.StateCoughType, villagegp.StateSleepHours} {
		assert.Contains(t, out, "--> "+string(st)+"\n")
		assert.Equal(t, 1, strings.Count(out, string(st)+` -. "fallback" .-> initial`))
	}
}

package rules_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_YAML(t *testing.T) {
	table, err := rules.Load(filepath.Join("testdata", "clinic.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "Pardon? Say that again.", table.Fallback())
	assert.Equal(t, []domain.State{domain.StateInitial, "headache_severity"}, table.States())

	initial, err := table.RulesFor(domain.StateInitial)
	require.NoError(t, err)
	require.Len(t, initial, 2)
	assert.Equal(t, rules.OutcomeStatic, initial[0].Outcome.Kind)
	assert.Equal(t, rules.OutcomeTransition, initial[1].Outcome.Kind)
	assert.Equal(t, domain.State("headache_severity"), initial[1].Outcome.NextState())

	severity, err := table.RulesFor("headache_severity")
	require.NoError(t, err)
	require.Len(t, severity, 1)
	assert.Equal(t, domain.StateInitial, severity[0].Outcome.NextState(), "params without next default to initial")

	text, err := severity[0].Outcome.Generator.Generate([]string{"9"})
	require.NoError(t, err)
	assert.Equal(t, "Severe (9).", text)
}

func TestLoad_JSON(t *testing.T) {
	table, err := rules.Load(filepath.Join("testdata", "clinic.json"))
	require.NoError(t, err)

	rs, err := table.RulesFor("cough_type")
	require.NoError(t, err)
	text, err := rs[0].Outcome.Generator.Generate([]string{"dry"})
	require.NoError(t, err)
	assert.Equal(t, "A dry cough, noted.", text)
}

func TestLoad_ReportsEveryBrokenRule(t *testing.T) {
	_, err := rules.Load(filepath.Join("testdata", "broken.yaml"))
	require.Error(t, err)

	assert.ErrorIs(t, err, domain.ErrArityMismatch)
	assert.ErrorIs(t, err, domain.ErrDanglingState)
	assert.ErrorIs(t, err, domain.ErrInvalidRule)
	assert.Contains(t, err.Error(), "broken.yaml")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := rules.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestParse_InvalidDocument(t *testing.T) {
	_, err := rules.Parse([]byte("states: [unterminated"), rules.FormatYAML)
	assert.Error(t, err)

	_, err = rules.Parse([]byte("{"), rules.FormatJSON)
	assert.Error(t, err)
}

func TestLoad_TemplateBadSyntaxKeepsIndexes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	doc := `
states:
  - name: initial
    rules:
      - pattern: 'ok'
        response: fine
      - pattern: '(x)'
        params: [x]
        response: '{{.x'
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	_, err := rules.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rule #1")
}

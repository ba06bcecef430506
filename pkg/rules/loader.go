package rules

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/parley/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Format selects the encoding of a rule file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// File is the on-disk representation of a rule table.
// States are a sequence so that declaration order survives decoding.
type File struct {
	Fallback string      `yaml:"fallback,omitempty" json:"fallback,omitempty"`
	States   []StateSpec `yaml:"states" json:"states"`
}

// StateSpec lists the rules of one state.
type StateSpec struct {
	Name  string     `yaml:"name" json:"name"`
	Rules []RuleSpec `yaml:"rules" json:"rules"`
}

// RuleSpec is a single rule as written in a file.
//
// A rule without next and params is static. Params turn the response into a
// text/template with one named parameter per capture group; next defaults to initial.
type RuleSpec struct {
	Pattern  string   `yaml:"pattern" json:"pattern"`
	Response string   `yaml:"response" json:"response"`
	Next     string   `yaml:"next,omitempty" json:"next,omitempty"`
	Params   []string `yaml:"params,omitempty" json:"params,omitempty"`
}

// Load reads a rule file (YAML, or JSON for a .json extension) and builds its table.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	format := FormatYAML
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		format = FormatJSON
	}

	table, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return table, nil
}

// Parse decodes rule definitions and builds the table.
func Parse(data []byte, format Format) (*Table, error) {
	var f File
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to parse rules json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to parse rules yaml: %w", err)
		}
	}
	return f.Builder().Build()
}

// Builder converts the file into a Builder, so callers can extend it before building.
func (f File) Builder() *Builder {
	b := New().Fallback(f.Fallback)
	for _, st := range f.States {
		state := b.State(domain.State(st.Name))
		for i, rs := range st.Rules {
			outcome, err := rs.outcome()
			if err != nil {
				b.Fail(&RuleError{State: domain.State(st.Name), Index: i, Pattern: rs.Pattern, Err: err})
				// keep the slot so later indexes still line up
				outcome = Static(rs.Response)
			}
			state.Rule(rs.Pattern, outcome)
		}
	}
	return b
}

func (rs RuleSpec) outcome() (Outcome, error) {
	if rs.Next == "" && len(rs.Params) == 0 {
		return Static(rs.Response), nil
	}

	next := domain.State(rs.Next)
	if next == "" {
		next = domain.StateInitial
	}

	if len(rs.Params) == 0 {
		return Transition(Text(rs.Response), next), nil
	}

	g, err := Template(rs.Params, rs.Response)
	if err != nil {
		return Outcome{}, err
	}
	return Transition(g, next), nil
}

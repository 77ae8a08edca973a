package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/readex-eu/readex-ptf-sub000/pkg/models"
)

const threadsYAML = `
strategy:
  name: random
  sample_count: 4
  seed: 7
  timeout: 30s
objectives: [time]
search_spaces:
  - domain: compute
    entities: [main]
    parameters:
      - name: THREADS
        values: [1, 2, 4, 8]
      - name: FREQ
        range: {from: 1200, to: 2400, step: 200}
`

func TestParseTuningYAMLString(t *testing.T) {
	cfg, err := ParseTuningYAMLString(threadsYAML)
	if err != nil {
		t.Fatalf("ParseTuningYAMLString failed: %v", err)
	}
	if cfg.Strategy.Name != "random" || cfg.Strategy.SampleCount != 4 || cfg.Strategy.Seed != 7 {
		t.Fatalf("unexpected strategy section: %+v", cfg.Strategy)
	}
	if cfg.Strategy.Timeout != 30*time.Second {
		t.Fatalf("expected timeout 30s, got %s", cfg.Strategy.Timeout)
	}
	// Defaults survive the overlay.
	if cfg.Strategy.PopulationSize != 20 || cfg.LogLevel != "info" || cfg.Driver.Parallelism != 1 {
		t.Fatalf("expected defaults to be kept, got %+v", cfg)
	}

	spaces, err := cfg.BuildSearchSpaces()
	if err != nil {
		t.Fatalf("BuildSearchSpaces: %v", err)
	}
	if len(spaces) != 1 {
		t.Fatalf("expected 1 search space, got %d", len(spaces))
	}
	ss := spaces[0]
	if ss.Domain() != "compute" {
		t.Fatalf("expected domain compute, got %q", ss.Domain())
	}
	if ss.VariantSpace().Cardinality() != 4*7 {
		t.Fatalf("expected cardinality 28, got %d", ss.VariantSpace().Cardinality())
	}
	params := ss.Parameters()
	if params[0].ID != 1 || params[1].ID != 2 {
		t.Fatalf("expected sequential parameter ids, got %d and %d", params[0].ID, params[1].ID)
	}
	if params[1].Restriction.Kind() != models.KindStepRange {
		t.Fatalf("expected FREQ to be a range restriction")
	}
}

func TestParseTuningYAMLStringInvalid(t *testing.T) {
	tests := []struct {
		name     string
		yamlText string
		contains string
	}{
		{
			name:     "Missing search spaces",
			yamlText: `strategy: {name: exhaustive}`,
			contains: "at least one search space",
		},
		{
			name: "Unknown strategy",
			yamlText: `
strategy: {name: annealing}
search_spaces: [{parameters: [{name: A, values: [1]}]}]`,
			contains: "unknown strategy",
		},
		{
			name: "Bad log level",
			yamlText: `
log_level: verbose
search_spaces: [{parameters: [{name: A, values: [1]}]}]`,
			contains: "log_level",
		},
		{
			name:     "Empty parameters",
			yamlText: `search_spaces: [{domain: x, parameters: []}]`,
			contains: "at least one parameter",
		},
		{
			name:     "Zero step",
			yamlText: `search_spaces: [{parameters: [{name: A, range: {from: 0, to: 4, step: 0}}]}]`,
			contains: "step must be positive",
		},
		{
			name:     "Inverted range",
			yamlText: `search_spaces: [{parameters: [{name: A, range: {from: 5, to: 1, step: 1}}]}]`,
			contains: "greater than",
		},
		{
			name:     "Range too wide",
			yamlText: `search_spaces: [{parameters: [{name: A, range: {from: 0, to: 9223372036854775807, step: 1}}]}]`,
			contains: "too many values",
		},
		{
			name:     "Both values and range",
			yamlText: `search_spaces: [{parameters: [{name: A, values: [1], range: {from: 0, to: 1, step: 1}}]}]`,
			contains: "not both",
		},
		{
			name:     "Duplicate parameter names",
			yamlText: `search_spaces: [{parameters: [{name: A, values: [1]}, {name: A, values: [2]}]}]`,
			contains: "duplicate parameter",
		},
		{
			name: "History sampler without path",
			yamlText: `
strategy: {name: random, sampler: history}
search_spaces: [{parameters: [{name: A, values: [1]}]}]`,
			contains: "history.path",
		},
		{
			name: "Negative population",
			yamlText: `
strategy: {name: gde3, population_size: -1}
search_spaces: [{parameters: [{name: A, values: [1]}]}]`,
			contains: "population_size",
		},
		{
			name:     "Malformed yaml",
			yamlText: "search_spaces: [",
			contains: "failed to parse",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTuningYAMLString(tt.yamlText)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Fatalf("expected error containing %q, got %v", tt.contains, err)
			}
		})
	}
}

func TestRestrictionErrorsAreTyped(t *testing.T) {
	_, err := ParseTuningYAMLString(`search_spaces: [{parameters: [{name: A, values: [3, 3]}]}]`)
	if !errors.Is(err, models.ErrInvalidRestriction) {
		t.Fatalf("expected ErrInvalidRestriction in chain, got %v", err)
	}
}

func TestParameterIDsSpanSearchSpaces(t *testing.T) {
	cfg, err := ParseTuningYAMLString(`
search_spaces:
  - parameters: [{name: A, range: {from: 0, to: 4, step: 2}}]
  - parameters: [{name: B, range: {from: 1, to: 1, step: 1}}]
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	spaces, err := cfg.BuildSearchSpaces()
	if err != nil {
		t.Fatalf("BuildSearchSpaces: %v", err)
	}
	if got := spaces[1].Parameters()[0].ID; got != 2 {
		t.Fatalf("expected second space parameter id 2, got %d", got)
	}
	if spaces[1].VariantSpace().Cardinality() != 1 {
		t.Fatalf("zero-width range should hold exactly one value")
	}
}

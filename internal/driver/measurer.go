package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/readex-eu/readex-ptf-sub000/pkg/models"
)

// ErrNoMeasurement is returned by ReplayMeasurer for configurations missing
// from its table.
var ErrNoMeasurement = errors.New("no recorded measurement")

// Measurer runs, or looks up, one scenario and returns its properties.
// Implementations must be safe for concurrent use.
type Measurer interface {
	Measure(ctx context.Context, s *models.Scenario) ([]models.Property, error)
}

// MeasurerFunc adapts a function to Measurer.
type MeasurerFunc func(ctx context.Context, s *models.Scenario) ([]models.Property, error)

func (f MeasurerFunc) Measure(ctx context.Context, s *models.Scenario) ([]models.Property, error) {
	return f(ctx, s)
}

// Record is one row of a replay table
type Record struct {
	Values     map[string]int    `yaml:"values"`
	Properties []models.Property `yaml:"properties"`
}

type replayFile struct {
	Measurements []Record          `yaml:"measurements"`
	Default      []models.Property `yaml:"default,omitempty"`
}

// ReplayMeasurer serves previously recorded measurements keyed by the
// scenario's flattened parameter values. It never runs anything.
type ReplayMeasurer struct {
	table    map[string][]models.Property
	fallback []models.Property
}

// NewReplayMeasurer builds a measurer from records. fallback, if non-empty,
// is returned for configurations without a record.
func NewReplayMeasurer(records []Record, fallback []models.Property) (*ReplayMeasurer, error) {
	m := &ReplayMeasurer{
		table:    make(map[string][]models.Property, len(records)),
		fallback: append([]models.Property(nil), fallback...),
	}
	for i, r := range records {
		if len(r.Values) == 0 {
			return nil, fmt.Errorf("measurement %d: values cannot be empty", i)
		}
		if len(r.Properties) == 0 {
			return nil, fmt.Errorf("measurement %d: at least one property is required", i)
		}
		for j, p := range r.Properties {
			if strings.TrimSpace(p.Name) == "" {
				return nil, fmt.Errorf("measurement %d: property %d: name cannot be empty", i, j)
			}
		}
		key := valuesKey(r.Values)
		if _, dup := m.table[key]; dup {
			return nil, fmt.Errorf("measurement %d: duplicate configuration %s", i, key)
		}
		m.table[key] = append([]models.Property(nil), r.Properties...)
	}
	return m, nil
}

// ParseReplayYAML parses a replay table:
//
//	measurements:
//	  - values: {THREADS: 4}
//	    properties: [{name: Time, value: 4.0, unit: s}]
//	default: [{name: Time, value: 100}]
func ParseReplayYAML(data []byte) (*ReplayMeasurer, error) {
	var f replayFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse replay yaml: %w", err)
	}
	m, err := NewReplayMeasurer(f.Measurements, f.Default)
	if err != nil {
		return nil, fmt.Errorf("invalid replay table: %w", err)
	}
	return m, nil
}

// LoadReplay reads a replay table from path.
func LoadReplay(path string) (*ReplayMeasurer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read replay file %s: %w", path, err)
	}
	return ParseReplayYAML(data)
}

// Len returns the number of recorded configurations.
func (m *ReplayMeasurer) Len() int {
	return len(m.table)
}

func (m *ReplayMeasurer) Measure(ctx context.Context, s *models.Scenario) ([]models.Property, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := valuesKey(s.Values())
	if props, ok := m.table[key]; ok {
		return append([]models.Property(nil), props...), nil
	}
	if len(m.fallback) > 0 {
		return append([]models.Property(nil), m.fallback...), nil
	}
	return nil, fmt.Errorf("%w for %s", ErrNoMeasurement, key)
}

// valuesKey renders values sorted by parameter name.
func valuesKey(values map[string]int) string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(strconv.Itoa(values[name]))
	}
	return b.String()
}

package models

import (
	"strconv"
	"strings"
	"sync"
)

// ScenarioEntry is one variant together with the entities it applies to.
type ScenarioEntry struct {
	Variant  Variant
	Entities []Entity
}

// Scenario is one fully specified candidate configuration. The entry list
// is fixed at construction; the result map is filled in after measurement.
type Scenario struct {
	ID int

	entries []ScenarioEntry

	mu      sync.RWMutex
	results map[string]float64
}

// NewScenario builds a scenario with the given identifier.
func NewScenario(id int, entries ...ScenarioEntry) *Scenario {
	copied := make([]ScenarioEntry, len(entries))
	for i, e := range entries {
		copied[i] = ScenarioEntry{Variant: e.Variant, Entities: append([]Entity(nil), e.Entities...)}
	}
	return &Scenario{
		ID:      id,
		entries: copied,
		results: make(map[string]float64),
	}
}

// Entries returns the (variant, entities) pairs.
func (s *Scenario) Entries() []ScenarioEntry {
	return append([]ScenarioEntry(nil), s.entries...)
}

// Variants returns only the variants, in entry order.
func (s *Scenario) Variants() []Variant {
	out := make([]Variant, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Variant
	}
	return out
}

// Key concatenates the per-entry variant keys. Two scenarios with the same
// key assign identical values to every search space.
func (s *Scenario) Key() string {
	return ConfigurationKey(s.Variants())
}

// Feasible reports whether every variant is feasible.
func (s *Scenario) Feasible() bool {
	for _, e := range s.entries {
		if !e.Variant.Feasible() {
			return false
		}
	}
	return true
}

// Values flattens the scenario into parameter name → value. When several
// spaces share a parameter name the later entry wins.
func (s *Scenario) Values() map[string]int {
	out := make(map[string]int)
	for _, e := range s.entries {
		for _, a := range e.Variant.assignments {
			out[a.Parameter.Name] = a.Value
		}
	}
	return out
}

// SetResult records a measured value.
func (s *Scenario) SetResult(name string, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[name] = value
}

// Result returns a measured value.
func (s *Scenario) Result(name string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.results[name]
	return v, ok
}

// Results returns a copy of the result map.
func (s *Scenario) Results() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]float64, len(s.results))
	for k, v := range s.results {
		out[k] = v
	}
	return out
}

func (s *Scenario) String() string {
	return "scenario#" + strconv.Itoa(s.ID) + "[" + s.Key() + "]"
}

// ConfigurationKey joins variant keys with '|' so that per-space boundaries
// stay visible in the signature.
func ConfigurationKey(variants []Variant) string {
	parts := make([]string, len(variants))
	for i, v := range variants {
		parts[i] = v.Key()
	}
	return strings.Join(parts, "|")
}

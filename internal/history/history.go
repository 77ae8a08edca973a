// Package history looks up prior tuning runs by program signature. The
// random search uses the best configurations of earlier runs to bias its
// sampling. Runs are read only; recording them is someone else's job.
package history

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrNoHistory is returned when no run matches a signature.
var ErrNoHistory = errors.New("no tuning history")

// Run is one prior tuning run of a program.
type Run struct {
	Signature string `yaml:"signature"`
	Strategy  string `yaml:"strategy,omitempty"`
	Objective string `yaml:"objective,omitempty"`
	// Best holds the best configurations, best first, as parameter name to value.
	Best []map[string]int `yaml:"best"`
}

// Source returns the prior runs recorded for a program signature.
type Source interface {
	Lookup(signature string) ([]Run, error)
}

// MemorySource is an in-memory Source safe for concurrent use.
type MemorySource struct {
	mu   sync.RWMutex
	runs map[string][]Run
}

// NewMemorySource creates a source holding runs.
func NewMemorySource(runs ...Run) *MemorySource {
	s := &MemorySource{runs: make(map[string][]Run)}
	for _, r := range runs {
		s.Add(r)
	}
	return s
}

// Add records a run under its signature.
func (s *MemorySource) Add(run Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.Signature] = append(s.runs[run.Signature], run)
}

// Lookup returns the runs for signature in insertion order.
func (s *MemorySource) Lookup(signature string) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	runs, ok := s.runs[signature]
	if !ok || len(runs) == 0 {
		return nil, fmt.Errorf("%w for signature %q", ErrNoHistory, signature)
	}
	return append([]Run(nil), runs...), nil
}

// Signatures lists the known program signatures, sorted.
func (s *MemorySource) Signatures() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.runs))
	for sig := range s.runs {
		out = append(out, sig)
	}
	sort.Strings(out)
	return out
}

type fileFormat struct {
	Runs []Run `yaml:"runs"`
}

// ParseYAML reads a history document of the form {runs: [...]}.
func ParseYAML(data []byte) (*MemorySource, error) {
	var doc fileFormat
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse history yaml: %w", err)
	}
	for i, r := range doc.Runs {
		if r.Signature == "" {
			return nil, fmt.Errorf("history run %d: signature cannot be empty", i)
		}
	}
	return NewMemorySource(doc.Runs...), nil
}

// LoadFile reads a YAML history file.
func LoadFile(path string) (*MemorySource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read history file %s: %w", path, err)
	}
	src, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("history file %s: %w", path, err)
	}
	return src, nil
}

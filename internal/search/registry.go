package search

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Interface version the in-process hosts speak.
const (
	InterfaceMajor = 1
	InterfaceMinor = 0
)

// Factory describes a strategy for discovery and builds new instances.
type Factory struct {
	Name    string
	Summary string
	Major   int
	Minor   int
	New     func() Strategy
}

// Compatible reports whether a host speaking major.minor can drive this
// strategy: the major versions must match and the host must not expect a
// newer minor than the strategy provides.
func (f Factory) Compatible(major, minor int) bool {
	return major == f.Major && minor <= f.Minor
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

func init() {
	builtins := []Factory{
		{
			Name:    "exhaustive",
			Summary: "Enumerates the full cross product of all search spaces",
			Major:   1, Minor: 0,
			New: func() Strategy { return NewExhaustive() },
		},
		{
			Name:    "individual",
			Summary: "Tunes one group of search spaces at a time, keeping improvements",
			Major:   1, Minor: 0,
			New: func() Strategy { return NewIndividual() },
		},
		{
			Name:    "random",
			Summary: "Draws distinct scenarios from per-space sampling models",
			Major:   1, Minor: 1,
			New: func() Strategy { return NewRandom() },
		},
		{
			Name:    "gde3",
			Summary: "Multi-objective generalized differential evolution",
			Major:   1, Minor: 1,
			New: func() Strategy { return NewGDE3() },
		},
	}
	for _, f := range builtins {
		if err := Register(f); err != nil {
			panic(err)
		}
	}
}

// Register adds a factory. Names are case-insensitive and must be unique.
func Register(f Factory) error {
	name := strings.ToLower(strings.TrimSpace(f.Name))
	if name == "" || f.New == nil {
		return fmt.Errorf("strategy factory needs a name and a constructor")
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[name]; exists {
		return fmt.Errorf("strategy already registered: %s", name)
	}
	f.Name = name
	registry[name] = f
	return nil
}

// Lookup finds a factory by name.
func Lookup(name string) (Factory, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Factory{}, &UnknownStrategyError{Name: name}
	}
	return f, nil
}

// Factories lists every registered factory sorted by name.
func Factories() []Factory {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]Factory, 0, len(registry))
	for _, f := range registry {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

package search

import (
	"fmt"

	"github.com/readex-eu/readex-ptf-sub000/internal/history"
	"github.com/readex-eu/readex-ptf-sub000/pkg/config"
)

// Apply pushes the strategy knobs of cfg into s through whichever
// capability interfaces s implements. Zero values keep the defaults.
func Apply(s Strategy, cfg config.StrategyConfig) {
	if c, ok := s.(SampleCountSetter); ok && cfg.SampleCount > 0 {
		c.SetSampleCount(cfg.SampleCount)
	}
	if c, ok := s.(PopulationSizeSetter); ok && cfg.PopulationSize > 0 {
		c.SetPopulationSize(cfg.PopulationSize)
	}
	if c, ok := s.(GenerationLimitSetter); ok {
		c.SetGenerationLimits(cfg.MaxGenerations, cfg.MaxAttempts)
	}
	if c, ok := s.(TimerSetter); ok && cfg.Timeout > 0 {
		c.SetTimer(cfg.Timeout)
	}
	if c, ok := s.(SeedSetter); ok && cfg.Seed != 0 {
		c.SetSeed(cfg.Seed)
	}
}

// FromConfig builds, configures and initializes the strategy a tuning
// config names, registering its search spaces and objectives. hist is only
// consulted for the history sampler and may be nil otherwise.
func FromConfig(t *config.Tuning, host Host, hist history.Source) (Strategy, Factory, error) {
	f, err := Lookup(t.Strategy.Name)
	if err != nil {
		return nil, Factory{}, configError("FromConfig", "strategy lookup failed", err)
	}
	if !f.Compatible(InterfaceMajor, InterfaceMinor) {
		return nil, Factory{}, configError("FromConfig",
			fmt.Sprintf("strategy %s speaks %d.%d", f.Name, f.Major, f.Minor), nil)
	}

	s := f.New()
	Apply(s, t.Strategy)
	if err := s.Initialize(host); err != nil {
		return nil, Factory{}, err
	}

	spaces, err := t.BuildSearchSpaces()
	if err != nil {
		return nil, Factory{}, configError("FromConfig", "invalid search spaces", err)
	}
	for _, space := range spaces {
		if err := s.AddSearchSpace(space); err != nil {
			return nil, Factory{}, err
		}
	}

	objectives, err := NewObjectiveFunctions(t.Objectives)
	if err != nil {
		return nil, Factory{}, configError("FromConfig", "invalid objectives", err)
	}
	for _, obj := range objectives {
		s.AddObjectiveFunction(obj)
	}

	if t.Strategy.Sampler == "history" {
		setter, ok := s.(SamplerSetter)
		if !ok {
			return nil, Factory{}, configError("FromConfig",
				fmt.Sprintf("strategy %s has no sampling model", f.Name), nil)
		}
		if hist == nil {
			return nil, Factory{}, configError("FromConfig", "history sampler needs a history source", nil)
		}
		sampler, err := NewHistorySampler(hist, t.History.Signature, t.History.Top)
		if err != nil {
			return nil, Factory{}, configError("FromConfig", "history sampler", err)
		}
		setter.SetSampler(sampler)
	}
	return s, f, nil
}

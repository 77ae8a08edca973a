package search

import (
	"time"

	"github.com/readex-eu/readex-ptf-sub000/pkg/models"
)

// Strategy is the contract every search algorithm implements. Calls are
// synchronous and must not overlap; the host measures every queued scenario
// before calling SearchFinished.
type Strategy interface {
	Initialize(host Host) error
	AddSearchSpace(space *models.SearchSpace) error
	AddObjectiveFunction(obj ObjectiveFunction)
	CreateScenarios() error
	SearchFinished() (bool, error)
	Optimum() (int, error)
	Worst() (int, error)
	SearchPath() map[int]float64
	Clear()
	Terminate()
	Finalize()
}

// SampleCountSetter is implemented by strategies that draw a fixed number of samples.
type SampleCountSetter interface {
	SetSampleCount(n int)
}

// PopulationSizeSetter is implemented by population-based strategies.
type PopulationSizeSetter interface {
	SetPopulationSize(n int)
}

// TimerSetter is implemented by strategies with a wall-clock cap.
type TimerSetter interface {
	SetTimer(d time.Duration)
}

// GenerationLimitSetter is implemented by generational strategies.
type GenerationLimitSetter interface {
	SetGenerationLimits(maxGenerations, maxAttempts int)
}

// SeedSetter is implemented by randomized strategies.
type SeedSetter interface {
	SetSeed(seed int64)
}

// SamplerSetter is implemented by strategies with pluggable sampling models.
type SamplerSetter interface {
	SetSampler(s Sampler)
}

// OptimaReporter exposes the whole Pareto front of a multi-objective run.
type OptimaReporter interface {
	Optima() ([]int, error)
}

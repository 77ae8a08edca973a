package search

import "fmt"

// GenerationState is what a convergence check sees after each generation.
type GenerationState struct {
	Generation    int
	TotalAttempts int
	// Populations holds the scenario id sequence of every generation so far,
	// starting with the seeded population.
	Populations [][]int
	TimerFired  bool
}

// ConvergenceCheck decides whether a generational search should stop
type ConvergenceCheck interface {
	CheckConvergence(state GenerationState) (bool, string)
	Name() string
}

// RepeatedPopulationCheck stops when the population equals the one Lag
// generations earlier.
type RepeatedPopulationCheck struct {
	Lag int
}

func (c *RepeatedPopulationCheck) Name() string {
	return "repeated_population"
}

func (c *RepeatedPopulationCheck) CheckConvergence(state GenerationState) (bool, string) {
	n := len(state.Populations)
	if c.Lag <= 0 || n <= c.Lag {
		return false, ""
	}
	if equalIDs(state.Populations[n-1], state.Populations[n-1-c.Lag]) {
		return true, fmt.Sprintf("population unchanged for %d generations", c.Lag)
	}
	return false, ""
}

// GenerationLimitCheck stops after Max generations
type GenerationLimitCheck struct {
	Max int
}

func (c *GenerationLimitCheck) Name() string {
	return "generation_limit"
}

func (c *GenerationLimitCheck) CheckConvergence(state GenerationState) (bool, string) {
	if state.Generation >= c.Max {
		return true, fmt.Sprintf("reached %d generations", state.Generation)
	}
	return false, ""
}

// AttemptLimitCheck stops once Max reproduction attempts have been spent
type AttemptLimitCheck struct {
	Max int
}

func (c *AttemptLimitCheck) Name() string {
	return "attempt_limit"
}

func (c *AttemptLimitCheck) CheckConvergence(state GenerationState) (bool, string) {
	if state.TotalAttempts >= c.Max {
		return true, fmt.Sprintf("spent %d reproduction attempts", state.TotalAttempts)
	}
	return false, ""
}

// TimerCheck stops once the wall-clock timer has fired
type TimerCheck struct{}

func (c *TimerCheck) Name() string {
	return "timer"
}

func (c *TimerCheck) CheckConvergence(state GenerationState) (bool, string) {
	if state.TimerFired {
		return true, "time limit exceeded"
	}
	return false, ""
}

// CombinedCheck converges as soon as any of its checks does
type CombinedCheck struct {
	checks []ConvergenceCheck
}

// NewCombinedCheck creates a combined check
func NewCombinedCheck(checks ...ConvergenceCheck) *CombinedCheck {
	return &CombinedCheck{checks: checks}
}

func (c *CombinedCheck) Name() string {
	return "combined"
}

func (c *CombinedCheck) CheckConvergence(state GenerationState) (bool, string) {
	for _, check := range c.checks {
		if done, reason := check.CheckConvergence(state); done {
			return true, fmt.Sprintf("%s: %s", check.Name(), reason)
		}
	}
	return false, ""
}

// AddCheck appends a check
func (c *CombinedCheck) AddCheck(check ConvergenceCheck) {
	c.checks = append(c.checks, check)
}

func equalIDs(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

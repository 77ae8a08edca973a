package search

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSearchSpaces is returned when scenarios are requested before any
	// search space was registered.
	ErrNoSearchSpaces = errors.New("no search spaces registered")
	// ErrNotEvaluated is returned by Optimum and Worst before any scenario
	// has been evaluated.
	ErrNotEvaluated = errors.New("no scenario has been evaluated")
	// ErrNotInitialized is returned when a strategy is used before Initialize.
	ErrNotInitialized = errors.New("strategy not initialized")
	// ErrMeasurementGap is the errors.Is target of MeasurementGapError.
	ErrMeasurementGap = errors.New("measurement missing")
)

// ConfigError reports a caller or configuration mistake. These are fatal for
// the run and never retried.
type ConfigError struct {
	Op  string
	Msg string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func configError(op, msg string, err error) error {
	return &ConfigError{Op: op, Msg: msg, Err: err}
}

// MeasurementGapError means a queued scenario had no usable measurement when
// it was evaluated. Re-measuring is the host's job.
type MeasurementGapError struct {
	ScenarioID int
	Property   string
	Err        error
}

func (e *MeasurementGapError) Error() string {
	msg := fmt.Sprintf("measurement gap for scenario %d", e.ScenarioID)
	if e.Property != "" {
		msg += ": property " + e.Property + " missing"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MeasurementGapError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrMeasurementGap) hold for every gap.
func (e *MeasurementGapError) Is(target error) bool {
	return target == ErrMeasurementGap
}

// UnknownObjectiveError indicates an unknown objective name
type UnknownObjectiveError struct {
	Name string
}

func (e *UnknownObjectiveError) Error() string {
	return "unknown objective: " + e.Name
}

// UnknownStrategyError indicates a strategy name missing from the registry
type UnknownStrategyError struct {
	Name string
}

func (e *UnknownStrategyError) Error() string {
	return "unknown strategy: " + e.Name
}

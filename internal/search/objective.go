package search

import (
	"fmt"
	"strings"

	"github.com/readex-eu/readex-ptf-sub000/pkg/models"
)

// ObjectiveFunction reduces a scenario's measurements to one value.
// Lower values are better.
type ObjectiveFunction interface {
	// Name returns the name of the objective function.
	Name() string
	// Unit labels the value, e.g. "s" or "J".
	Unit() string
	// Evaluate computes the objective for one measured scenario.
	Evaluate(scenarioID int, results ResultsSource) (float64, error)
}

// ObjectiveType names a built-in objective
type ObjectiveType string

const (
	// ObjectiveTime minimizes execution time
	ObjectiveTime ObjectiveType = "time"
	// ObjectiveEnergy minimizes energy
	ObjectiveEnergy ObjectiveType = "energy"
	// ObjectiveEDP minimizes the energy-delay product
	ObjectiveEDP ObjectiveType = "edp"
	// ObjectiveED2P minimizes energy times delay squared
	ObjectiveED2P ObjectiveType = "ed2p"
	// ObjectivePassthrough uses the first measured property as is
	ObjectivePassthrough ObjectiveType = "passthrough"
)

// Measured property names the built-in objectives read.
const (
	PropertyTime   = "Time"
	PropertyEnergy = "Energy"
)

// NewObjectiveFunction creates a built-in objective from its name
func NewObjectiveFunction(name string) (ObjectiveFunction, error) {
	switch ObjectiveType(strings.ToLower(strings.TrimSpace(name))) {
	case ObjectiveTime:
		return &TimeObjective{}, nil
	case ObjectiveEnergy:
		return &EnergyObjective{}, nil
	case ObjectiveEDP:
		return &EDPObjective{}, nil
	case ObjectiveED2P:
		return &ED2PObjective{}, nil
	case ObjectivePassthrough:
		return &PassthroughObjective{}, nil
	default:
		return nil, &UnknownObjectiveError{Name: name}
	}
}

// NewObjectiveFunctions builds objectives in order from their names.
func NewObjectiveFunctions(names []string) ([]ObjectiveFunction, error) {
	out := make([]ObjectiveFunction, 0, len(names))
	for _, name := range names {
		obj, err := NewObjectiveFunction(name)
		if err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
	return out, nil
}

func fetch(scenarioID int, results ResultsSource) ([]models.Property, error) {
	props, err := results.Properties(scenarioID)
	if err != nil {
		return nil, &MeasurementGapError{ScenarioID: scenarioID, Err: err}
	}
	if len(props) == 0 {
		return nil, &MeasurementGapError{ScenarioID: scenarioID}
	}
	return props, nil
}

func lookup(scenarioID int, props []models.Property, name string) (float64, error) {
	for _, p := range props {
		if strings.EqualFold(p.Name, name) {
			return p.Value, nil
		}
	}
	return 0, &MeasurementGapError{ScenarioID: scenarioID, Property: name}
}

// TimeObjective minimizes the Time property
type TimeObjective struct{}

func (o *TimeObjective) Name() string { return string(ObjectiveTime) }

func (o *TimeObjective) Unit() string { return "s" }

func (o *TimeObjective) Evaluate(scenarioID int, results ResultsSource) (float64, error) {
	props, err := fetch(scenarioID, results)
	if err != nil {
		return 0, err
	}
	return lookup(scenarioID, props, PropertyTime)
}

// EnergyObjective minimizes the Energy property
type EnergyObjective struct{}

func (o *EnergyObjective) Name() string { return string(ObjectiveEnergy) }

func (o *EnergyObjective) Unit() string { return "J" }

func (o *EnergyObjective) Evaluate(scenarioID int, results ResultsSource) (float64, error) {
	props, err := fetch(scenarioID, results)
	if err != nil {
		return 0, err
	}
	return lookup(scenarioID, props, PropertyEnergy)
}

// EDPObjective minimizes Energy * Time
type EDPObjective struct{}

func (o *EDPObjective) Name() string { return string(ObjectiveEDP) }

func (o *EDPObjective) Unit() string { return "Js" }

func (o *EDPObjective) Evaluate(scenarioID int, results ResultsSource) (float64, error) {
	energy, delay, err := energyAndTime(scenarioID, results)
	if err != nil {
		return 0, err
	}
	return energy * delay, nil
}

// ED2PObjective minimizes Energy * Time^2
type ED2PObjective struct{}

func (o *ED2PObjective) Name() string { return string(ObjectiveED2P) }

func (o *ED2PObjective) Unit() string { return "Js2" }

func (o *ED2PObjective) Evaluate(scenarioID int, results ResultsSource) (float64, error) {
	energy, delay, err := energyAndTime(scenarioID, results)
	if err != nil {
		return 0, err
	}
	return energy * delay * delay, nil
}

func energyAndTime(scenarioID int, results ResultsSource) (float64, float64, error) {
	props, err := fetch(scenarioID, results)
	if err != nil {
		return 0, 0, err
	}
	energy, err := lookup(scenarioID, props, PropertyEnergy)
	if err != nil {
		return 0, 0, err
	}
	delay, err := lookup(scenarioID, props, PropertyTime)
	if err != nil {
		return 0, 0, err
	}
	return energy, delay, nil
}

// PassthroughObjective returns the first measured property unchanged. It is
// installed when a strategy runs without any registered objective.
type PassthroughObjective struct{}

func (o *PassthroughObjective) Name() string { return string(ObjectivePassthrough) }

func (o *PassthroughObjective) Unit() string { return "" }

func (o *PassthroughObjective) Evaluate(scenarioID int, results ResultsSource) (float64, error) {
	props, err := fetch(scenarioID, results)
	if err != nil {
		return 0, err
	}
	return props[0].Value, nil
}

// PropertyObjective adapts a function over the property list.
type PropertyObjective struct {
	name string
	unit string
	fn   func([]models.Property) float64
}

// NewPropertyObjective wraps fn as an objective.
func NewPropertyObjective(name, unit string, fn func([]models.Property) float64) *PropertyObjective {
	return &PropertyObjective{name: name, unit: unit, fn: fn}
}

func (o *PropertyObjective) Name() string { return o.name }

func (o *PropertyObjective) Unit() string { return o.unit }

func (o *PropertyObjective) Evaluate(scenarioID int, results ResultsSource) (float64, error) {
	props, err := fetch(scenarioID, results)
	if err != nil {
		return 0, err
	}
	return o.fn(props), nil
}

// evaluateAll computes every objective for one scenario.
func evaluateAll(objectives []ObjectiveFunction, scenarioID int, results ResultsSource) ([]float64, error) {
	values := make([]float64, len(objectives))
	for i, obj := range objectives {
		v, err := obj.Evaluate(scenarioID, results)
		if err != nil {
			return nil, fmt.Errorf("evaluate %s: %w", obj.Name(), err)
		}
		values[i] = v
	}
	return values, nil
}

package search

import (
	"errors"
	"testing"

	"github.com/readex-eu/readex-ptf-sub000/internal/pool"
	"github.com/readex-eu/readex-ptf-sub000/pkg/models"
)

func TestBuiltinObjectives(t *testing.T) {
	store := pool.NewResultStore()
	store.Put(1,
		models.Property{Name: "time", Value: 2, Unit: "s"},
		models.Property{Name: "ENERGY", Value: 10, Unit: "J"},
	)

	tests := []struct {
		name string
		want float64
	}{
		{"time", 2},
		{"Energy", 10},
		{"edp", 20},
		{"ED2P", 40},
		{"passthrough", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := NewObjectiveFunction(tt.name)
			if err != nil {
				t.Fatalf("NewObjectiveFunction: %v", err)
			}
			got, err := obj.Evaluate(1, store)
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			if got != tt.want {
				t.Fatalf("%s = %v, want %v", obj.Name(), got, tt.want)
			}
		})
	}
}

func TestUnknownObjective(t *testing.T) {
	_, err := NewObjectiveFunctions([]string{"time", "throughput"})
	var unknown *UnknownObjectiveError
	if !errors.As(err, &unknown) || unknown.Name != "throughput" {
		t.Fatalf("expected UnknownObjectiveError, got %v", err)
	}
}

func TestObjectiveMeasurementGaps(t *testing.T) {
	store := pool.NewResultStore()
	store.Put(1, models.Property{Name: PropertyTime, Value: 3})

	tests := []struct {
		name     string
		obj      ObjectiveFunction
		id       int
		property string
	}{
		{"unmeasured scenario", &TimeObjective{}, 2, ""},
		{"missing energy", &EnergyObjective{}, 1, PropertyEnergy},
		{"edp without energy", &EDPObjective{}, 1, PropertyEnergy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.obj.Evaluate(tt.id, store)
			if !errors.Is(err, ErrMeasurementGap) {
				t.Fatalf("expected measurement gap, got %v", err)
			}
			var gap *MeasurementGapError
			if !errors.As(err, &gap) || gap.ScenarioID != tt.id || gap.Property != tt.property {
				t.Fatalf("unexpected gap %+v", gap)
			}
		})
	}

	_, err := (&TimeObjective{}).Evaluate(2, store)
	if !errors.Is(err, pool.ErrNoResults) {
		t.Fatalf("gap must wrap the results source error, got %v", err)
	}
}

func TestPropertyObjective(t *testing.T) {
	store := pool.NewResultStore()
	store.Put(7,
		models.Property{Name: "Instructions", Value: 400},
		models.Property{Name: "Cycles", Value: 100},
	)
	cpi := NewPropertyObjective("cpi", "", func(props []models.Property) float64 {
		return props[1].Value / props[0].Value
	})
	got, err := cpi.Evaluate(7, store)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got != 0.25 || cpi.Name() != "cpi" {
		t.Fatalf("cpi = %v (%s)", got, cpi.Name())
	}
}

func TestEvaluateAll(t *testing.T) {
	store := pool.NewResultStore()
	store.Put(1, models.Property{Name: PropertyTime, Value: 2}, models.Property{Name: PropertyEnergy, Value: 5})
	values, err := evaluateAll([]ObjectiveFunction{&EnergyObjective{}, &TimeObjective{}}, 1, store)
	if err != nil {
		t.Fatalf("evaluateAll: %v", err)
	}
	if len(values) != 2 || values[0] != 5 || values[1] != 2 {
		t.Fatalf("evaluateAll = %v", values)
	}
}

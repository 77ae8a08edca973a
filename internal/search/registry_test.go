package search

import (
	"errors"
	"testing"
)

func TestLookupBuiltins(t *testing.T) {
	tests := []struct {
		name         string
		major, minor int
	}{
		{"exhaustive", 1, 0},
		{"individual", 1, 0},
		{"Random", 1, 1},
		{" GDE3 ", 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Lookup(tt.name)
			if err != nil {
				t.Fatalf("Lookup: %v", err)
			}
			if f.Major != tt.major || f.Minor != tt.minor {
				t.Fatalf("version = %d.%d, want %d.%d", f.Major, f.Minor, tt.major, tt.minor)
			}
			if f.New() == nil {
				t.Fatalf("factory returned nil strategy")
			}
			if !f.Compatible(InterfaceMajor, InterfaceMinor) {
				t.Fatalf("builtin %s must be compatible with the host", f.Name)
			}
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("simulated_annealing")
	var unknown *UnknownStrategyError
	if !errors.As(err, &unknown) || unknown.Name != "simulated_annealing" {
		t.Fatalf("expected UnknownStrategyError, got %v", err)
	}
}

func TestFactoryCompatible(t *testing.T) {
	f := Factory{Major: 1, Minor: 1}
	tests := []struct {
		major, minor int
		want         bool
	}{
		{1, 0, true},
		{1, 1, true},
		{1, 2, false},
		{2, 0, false},
		{0, 1, false},
	}
	for _, tt := range tests {
		if got := f.Compatible(tt.major, tt.minor); got != tt.want {
			t.Errorf("Compatible(%d, %d) = %v, want %v", tt.major, tt.minor, got, tt.want)
		}
	}
}

func TestRegister(t *testing.T) {
	if err := Register(Factory{Name: "exhaustive", New: func() Strategy { return NewExhaustive() }}); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
	if err := Register(Factory{Name: "", New: func() Strategy { return NewExhaustive() }}); err == nil {
		t.Fatalf("expected error for unnamed factory")
	}
	if err := Register(Factory{Name: "broken"}); err == nil {
		t.Fatalf("expected error for factory without constructor")
	}
}

func TestFactoriesSorted(t *testing.T) {
	factories := Factories()
	if len(factories) < 4 {
		t.Fatalf("expected at least 4 factories, got %d", len(factories))
	}
	for i := 1; i < len(factories); i++ {
		if factories[i-1].Name >= factories[i].Name {
			t.Fatalf("factories not sorted: %s before %s", factories[i-1].Name, factories[i].Name)
		}
	}
}

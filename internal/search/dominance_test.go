package search

import (
	"fmt"
	"math"
	"testing"
)

func TestDominance(t *testing.T) {
	tests := []struct {
		a, b         []float64
		weak, strict bool
	}{
		{[]float64{1, 1}, []float64{2, 2}, true, true},
		{[]float64{1, 2}, []float64{1, 3}, true, true},
		{[]float64{1, 1}, []float64{1, 1}, true, false},
		{[]float64{1, 3}, []float64{3, 1}, false, false},
		{[]float64{2, 2}, []float64{1, 1}, false, false},
	}
	for _, tt := range tests {
		if got := weaklyDominates(tt.a, tt.b); got != tt.weak {
			t.Errorf("weaklyDominates(%v, %v) = %v", tt.a, tt.b, got)
		}
		if got := strictlyDominates(tt.a, tt.b); got != tt.strict {
			t.Errorf("strictlyDominates(%v, %v) = %v", tt.a, tt.b, got)
		}
	}
}

func TestParetoFront(t *testing.T) {
	tests := []struct {
		name    string
		vectors [][]float64
		want    []int
	}{
		{"empty", nil, []int{}},
		{"single", [][]float64{{1, 1}}, []int{0}},
		{"tradeoff", [][]float64{{1, 3}, {2, 2}, {3, 1}, {3, 3}}, []int{0, 1, 2}},
		{"duplicates stay", [][]float64{{1, 1}, {1, 1}, {2, 0}}, []int{0, 1, 2}},
		{"one winner", [][]float64{{5, 5}, {0, 0}, {1, 4}}, []int{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := paretoFront(tt.vectors); fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Fatalf("paretoFront = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCrowdingDistances(t *testing.T) {
	inf := math.Inf(1)
	tests := []struct {
		name    string
		vectors [][]float64
		want    []float64
	}{
		{"pair", [][]float64{{0, 1}, {1, 0}}, []float64{inf, inf}},
		{"even front", [][]float64{{0, 3}, {1, 2}, {2, 1}, {3, 0}}, []float64{inf, 8.0 / 9, 8.0 / 9, inf}},
		{"uneven front", [][]float64{{0, 4}, {1, 3}, {3, 1}, {4, 0}}, []float64{inf, 1.125, 1.125, inf}},
		{"flat objective", [][]float64{{1, 0}, {1, 1}, {1, 2}}, []float64{inf, 1, inf}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := crowdingDistances(tt.vectors)
			for i := range tt.want {
				if math.IsInf(tt.want[i], 1) {
					if !math.IsInf(got[i], 1) {
						t.Fatalf("distance %d = %v, want +Inf", i, got[i])
					}
					continue
				}
				if math.Abs(got[i]-tt.want[i]) > 1e-9 {
					t.Fatalf("distance %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLowestIndex(t *testing.T) {
	if got := lowestIndex([]float64{3, 1, 2, 1}); got != 1 {
		t.Fatalf("lowestIndex = %d, want 1", got)
	}
}

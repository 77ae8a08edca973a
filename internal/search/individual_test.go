package search

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/readex-eu/readex-ptf-sub000/pkg/models"
)

func newIndividual(t *testing.T, h *testHost, spaces ...*models.SearchSpace) *Individual {
	t.Helper()
	s := NewIndividual()
	if err := s.Initialize(h.Host); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	for _, sp := range spaces {
		if err := s.AddSearchSpace(sp); err != nil {
			t.Fatalf("AddSearchSpace: %v", err)
		}
	}
	s.AddObjectiveFunction(&TimeObjective{})
	return s
}

func TestGroupSpaces(t *testing.T) {
	a := param(t, 1, "A", models.MustDiscreteSet(1, 2))
	tests := []struct {
		name    string
		domains []string
		want    [][]int
	}{
		{"all unlabeled", []string{"", "", ""}, [][]int{{0}, {1}, {2}}},
		{"shared domain", []string{"cpu", "", "cpu"}, [][]int{{0, 2}, {1}}},
		{"two domains", []string{"cpu", "mem", "mem", "cpu"}, [][]int{{0, 3}, {1, 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spaces := make([]*models.SearchSpace, len(tt.domains))
			for i, d := range tt.domains {
				spaces[i] = space(t, d, a)
			}
			got := groupSpaces(spaces)
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Fatalf("groupSpaces = %v, want %v", got, tt.want)
			}
		})
	}
}

// time = 10 + |A-2| - B + C, with B and C only contributing once their
// space is in the scenario.
func stagedTime(values map[string]int) float64 {
	v := 10 + math.Abs(float64(values["A"]-2))
	if b, ok := values["B"]; ok {
		v -= float64(b)
	}
	if c, ok := values["C"]; ok {
		v += float64(c)
	}
	return v
}

func TestIndividualKeepsAndDiscardsGroups(t *testing.T) {
	h := newTestHost()
	s := newIndividual(t, h,
		space(t, "", param(t, 1, "A", models.MustDiscreteSet(1, 2, 3))),
		space(t, "", param(t, 2, "B", models.MustDiscreteSet(1, 2))),
		space(t, "", param(t, 3, "C", models.MustDiscreteSet(1, 2))),
	)

	seen := h.run(t, s, func(values map[string]int) []models.Property {
		if _, ok := values["B"]; ok && values["A"] != 2 {
			t.Fatalf("A must be pinned to 2 once its group is kept, got %v", values)
		}
		if _, ok := values["C"]; ok && values["B"] != 2 {
			t.Fatalf("B must be pinned to 2 once its group is kept, got %v", values)
		}
		return timeProps(stagedTime)(values)
	})

	want := []float64{10, 8, 8}
	got := s.BestHistory()
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("BestHistory = %v, want %v", got, want)
	}
	if len(s.SearchPath()) != 3+2+2 {
		t.Fatalf("expected 7 evaluated scenarios, got %d", len(s.SearchPath()))
	}

	opt, err := s.Optimum()
	if err != nil {
		t.Fatalf("Optimum: %v", err)
	}
	values := seen[opt].Values()
	if values["A"] != 2 || values["B"] != 2 {
		t.Fatalf("unexpected optimum %s", seen[opt])
	}
	if _, ok := values["C"]; ok {
		t.Fatalf("optimum must come from before the discarded C step, got %s", seen[opt])
	}
}

func TestIndividualDomainGroupTunedTogether(t *testing.T) {
	h := newTestHost()
	s := newIndividual(t, h,
		space(t, "cpu", param(t, 1, "A", models.MustDiscreteSet(1, 2, 3))),
		space(t, "", param(t, 2, "B", models.MustDiscreteSet(1, 2))),
		space(t, "cpu", param(t, 3, "C", models.MustDiscreteSet(1, 2))),
	)
	if err := s.CreateScenarios(); err != nil {
		t.Fatalf("CreateScenarios: %v", err)
	}
	first := h.created.Drain()
	if len(first) != 6 {
		t.Fatalf("expected A x C = 6 scenarios in the first step, got %d", len(first))
	}
	for _, sc := range first {
		if _, ok := sc.Values()["B"]; ok {
			t.Fatalf("B must not be tuned in the first step: %s", sc)
		}
	}
	if fmt.Sprint(s.Groups()) != "[[0 2] [1]]" {
		t.Fatalf("unexpected groups %v", s.Groups())
	}
}

func TestIndividualAddAfterStart(t *testing.T) {
	h := newTestHost()
	s := newIndividual(t, h, threadsSpace(t))
	if err := s.CreateScenarios(); err != nil {
		t.Fatalf("CreateScenarios: %v", err)
	}
	if err := s.AddSearchSpace(threadsSpace(t)); err == nil {
		t.Fatalf("expected error adding a search space after start")
	}
}

func TestIndividualRepeatedCreate(t *testing.T) {
	h := newTestHost()
	s := newIndividual(t, h, threadsSpace(t))
	for i := 0; i < 2; i++ {
		if err := s.CreateScenarios(); err != nil {
			t.Fatalf("CreateScenarios: %v", err)
		}
	}
	if h.created.Size() != 4 {
		t.Fatalf("expected 4 scenarios, got %d", h.created.Size())
	}
}

// The best value after each step may never get worse, whatever the
// measurements.
func TestIndividualBestHistoryMonotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 25; trial++ {
		n := rng.Intn(4) + 1
		spaces := make([]*models.SearchSpace, n)
		for i := range spaces {
			domain := ""
			if rng.Intn(3) == 0 {
				domain = "shared"
			}
			r := models.MustStepRange(0, rng.Intn(4), 1)
			spaces[i] = space(t, domain, param(t, i+1, fmt.Sprintf("P%d", i), r))
		}

		times := make(map[string]float64)
		h := newTestHost()
		s := newIndividual(t, h, spaces...)
		h.run(t, s, timeProps(func(values map[string]int) float64 {
			key := fmt.Sprint(values)
			if _, ok := times[key]; !ok {
				times[key] = rng.Float64() * 100
			}
			return times[key]
		}))

		history := s.BestHistory()
		if len(history) != len(s.Groups()) {
			t.Fatalf("trial %d: expected one entry per group, got %v", trial, history)
		}
		for i := 1; i < len(history); i++ {
			if history[i] > history[i-1] {
				t.Fatalf("trial %d: best value got worse: %v", trial, history)
			}
		}
	}
}

func TestIndividualClearRepeatsOptimum(t *testing.T) {
	h := newTestHost()
	s := newIndividual(t, h)

	runOnce := func() (string, []float64) {
		for i, name := range []string{"A", "B", "C"} {
			sp := space(t, "", param(t, i+1, name, models.MustDiscreteSet(1, 2, 3)))
			if err := s.AddSearchSpace(sp); err != nil {
				t.Fatalf("AddSearchSpace(%s): %v", name, err)
			}
		}
		seen := h.run(t, s, timeProps(stagedTime))
		opt, err := s.Optimum()
		if err != nil {
			t.Fatalf("Optimum: %v", err)
		}
		return seen[opt].Key(), s.BestHistory()
	}

	firstKey, firstHistory := runOnce()
	s.Clear()
	if len(s.SearchPath()) != 0 || len(s.BestHistory()) != 0 || len(s.Groups()) != 0 {
		t.Fatalf("Clear must drop the path, best history and groups")
	}
	if _, err := s.Optimum(); !errors.Is(err, ErrNotEvaluated) {
		t.Fatalf("expected ErrNotEvaluated after Clear, got %v", err)
	}
	secondKey, secondHistory := runOnce()

	if firstKey != secondKey {
		t.Fatalf("optimum changed after Clear: %s vs %s", firstKey, secondKey)
	}
	if fmt.Sprint(firstHistory) != fmt.Sprint(secondHistory) {
		t.Fatalf("best history changed after Clear: %v vs %v", firstHistory, secondHistory)
	}
}

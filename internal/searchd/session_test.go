package searchd

import (
	"errors"
	"testing"

	"github.com/readex-eu/readex-ptf-sub000/internal/search"
	"github.com/readex-eu/readex-ptf-sub000/pkg/models"
)

const threadsConfig = `
strategy: {name: exhaustive}
objectives: [time]
search_spaces:
  - entities: [main]
    parameters:
      - {name: THREADS, values: [1, 2, 4, 8]}
`

var threadTimes = map[int]float64{1: 8, 2: 5, 4: 4, 8: 6}

func timeOf(sc *models.Scenario) []models.Property {
	return []models.Property{{Name: "Time", Value: threadTimes[sc.Values()["THREADS"]], Unit: "s"}}
}

func TestSessionLifecycle(t *testing.T) {
	store := NewSessionStore(nil)
	sess, err := store.Create("", threadsConfig)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sess.Strategy != "exhaustive" || sess.ID == "" {
		t.Fatalf("unexpected session %+v", sess)
	}

	if _, err := sess.Report(); !errors.Is(err, search.ErrNotEvaluated) {
		t.Fatalf("expected ErrNotEvaluated before any result, got %v", err)
	}

	scenarios, err := sess.CreateScenarios()
	if err != nil {
		t.Fatalf("CreateScenarios: %v", err)
	}
	if len(scenarios) != 4 {
		t.Fatalf("expected 4 scenarios, got %d", len(scenarios))
	}
	for _, sc := range scenarios {
		if err := sess.ReportResults(sc.ID, timeOf(sc)); err != nil {
			t.Fatalf("ReportResults(%d): %v", sc.ID, err)
		}
	}
	done, err := sess.SearchFinished()
	if err != nil || !done {
		t.Fatalf("SearchFinished = %v, %v", done, err)
	}
	if !sess.Finished() {
		t.Fatalf("expected session to be finished")
	}

	report, err := sess.Report()
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if report.Optimum.Values()["THREADS"] != 4 || report.Worst.Values()["THREADS"] != 1 {
		t.Fatalf("unexpected optimum %s / worst %s", report.Optimum, report.Worst)
	}
	if len(report.Path) != 4 {
		t.Fatalf("expected 4 path entries, got %v", report.Path)
	}

	if err := store.Close(sess.ID); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := store.Get(sess.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after close, got %v", err)
	}
	if _, err := sess.CreateScenarios(); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}
}

func TestSessionReportUnknownScenario(t *testing.T) {
	store := NewSessionStore(nil)
	sess, err := store.Create("", threadsConfig)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	err = sess.ReportResults(12345, []models.Property{{Name: "Time", Value: 1}})
	if !errors.Is(err, ErrScenarioNotFound) {
		t.Fatalf("expected ErrScenarioNotFound, got %v", err)
	}
}

func TestSessionStoreCreateErrors(t *testing.T) {
	store := NewSessionStore(nil)

	if _, err := store.Create("", "strategy: [unclosed"); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	var unknown *search.UnknownStrategyError
	if _, err := store.Create("annealing", threadsConfig); !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownStrategyError, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("failed creates must not leave sessions behind")
	}
}

func TestSessionStoreOverrideAndList(t *testing.T) {
	store := NewSessionStore(nil)
	a, err := store.Create("", threadsConfig)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	b, err := store.Create("random", threadsConfig)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if b.Strategy != "random" {
		t.Fatalf("expected strategy override, got %s", b.Strategy)
	}

	list := store.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(list))
	}
	seen := map[string]bool{list[0].ID: true, list[1].ID: true}
	if !seen[a.ID] || !seen[b.ID] {
		t.Fatalf("List is missing a session")
	}

	// Scenario ids come from one allocator, so sessions never collide.
	sa, _ := a.CreateScenarios()
	sb, _ := b.CreateScenarios()
	ids := map[int]bool{}
	for _, sc := range append(sa, sb...) {
		if ids[sc.ID] {
			t.Fatalf("duplicate scenario id %d across sessions", sc.ID)
		}
		ids[sc.ID] = true
	}

	store.CloseAll()
	if store.Len() != 0 {
		t.Fatalf("expected CloseAll to empty the store")
	}
	if err := store.Close(a.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound closing twice, got %v", err)
	}
}

package search

import (
	"testing"
	"time"

	"github.com/readex-eu/readex-ptf-sub000/internal/pool"
	"github.com/readex-eu/readex-ptf-sub000/pkg/logger"
	"github.com/readex-eu/readex-ptf-sub000/pkg/models"
	"github.com/readex-eu/readex-ptf-sub000/pkg/utils"
)

type testHost struct {
	Host
	created *pool.ScenarioPool
	results *pool.ResultStore
	timer   *fakeTimer
}

func newTestHost() *testHost {
	h := &testHost{
		created: pool.NewScenarioPool(),
		results: pool.NewResultStore(),
		timer:   &fakeTimer{},
	}
	h.Host = Host{
		Created: h.created,
		Results: h.results,
		Timer:   h.timer,
		IDs:     utils.NewIDAllocator(),
		Logger:  logger.Discard(),
	}
	return h
}

// measure drains the created pool and records a Time property computed
// from each scenario's flattened values.
func (h *testHost) measure(timeOf func(values map[string]int) float64) []*models.Scenario {
	scenarios := h.created.Drain()
	for _, s := range scenarios {
		h.results.Put(s.ID, models.Property{Name: PropertyTime, Value: timeOf(s.Values()), Unit: "s"})
	}
	return scenarios
}

// measureProps is measure for arbitrary property lists.
func (h *testHost) measureProps(propsOf func(values map[string]int) []models.Property) []*models.Scenario {
	scenarios := h.created.Drain()
	for _, s := range scenarios {
		h.results.Put(s.ID, propsOf(s.Values())...)
	}
	return scenarios
}

// run drives s until SearchFinished reports true and returns every
// measured scenario by id.
func (h *testHost) run(t *testing.T, s Strategy, propsOf func(values map[string]int) []models.Property) map[int]*models.Scenario {
	t.Helper()
	seen := make(map[int]*models.Scenario)
	for step := 0; step < 10000; step++ {
		if err := s.CreateScenarios(); err != nil {
			t.Fatalf("CreateScenarios: %v", err)
		}
		for _, sc := range h.measureProps(propsOf) {
			seen[sc.ID] = sc
		}
		done, err := s.SearchFinished()
		if err != nil {
			t.Fatalf("SearchFinished: %v", err)
		}
		if done {
			return seen
		}
	}
	t.Fatalf("search did not finish")
	return nil
}

func timeProps(timeOf func(values map[string]int) float64) func(map[string]int) []models.Property {
	return func(values map[string]int) []models.Property {
		return []models.Property{{Name: PropertyTime, Value: timeOf(values), Unit: "s"}}
	}
}

type fakeTimer struct {
	d       time.Duration
	fn      func()
	stopped bool
}

func (f *fakeTimer) AfterFunc(d time.Duration, fn func()) func() bool {
	f.d, f.fn = d, fn
	return func() bool {
		pending := !f.stopped && f.fn != nil
		f.stopped = true
		return pending
	}
}

func (f *fakeTimer) fire() {
	if f.fn != nil && !f.stopped {
		f.fn()
	}
}

func param(t *testing.T, id int, name string, r models.Restriction) models.TuningParameter {
	t.Helper()
	p, err := models.NewTuningParameter(id, name, r)
	if err != nil {
		t.Fatalf("NewTuningParameter(%s): %v", name, err)
	}
	return p
}

func space(t *testing.T, domain string, params ...models.TuningParameter) *models.SearchSpace {
	t.Helper()
	vs, err := models.NewVariantSpace(params...)
	if err != nil {
		t.Fatalf("NewVariantSpace: %v", err)
	}
	ss, err := models.NewSearchSpace(vs, models.Entity("region:"+params[0].Name))
	if err != nil {
		t.Fatalf("NewSearchSpace: %v", err)
	}
	return ss.WithDomain(domain)
}

func threadsSpace(t *testing.T) *models.SearchSpace {
	return space(t, "", param(t, 1, "THREADS", models.MustDiscreteSet(1, 2, 4, 8)))
}

var threadTimes = map[int]float64{1: 8, 2: 5, 4: 4, 8: 6}

func threadTime(values map[string]int) float64 {
	return threadTimes[values["THREADS"]]
}

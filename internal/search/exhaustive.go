package search

import (
	"fmt"
	"log/slog"

	"github.com/readex-eu/readex-ptf-sub000/pkg/models"
)

// Exhaustive enumerates the full cross product of every registered search
// space and evaluates each combination once.
type Exhaustive struct {
	host        Host
	log         *slog.Logger
	initialized bool

	spaces     []*models.SearchSpace
	objectives []ObjectiveFunction

	pending   []int
	scenarios map[int]*models.Scenario
	generated map[string]bool
	track     *tracker
}

// NewExhaustive creates an exhaustive search.
func NewExhaustive() *Exhaustive {
	return &Exhaustive{
		scenarios: make(map[int]*models.Scenario),
		generated: make(map[string]bool),
		track:     newTracker(),
	}
}

func (e *Exhaustive) Initialize(host Host) error {
	h, err := host.withDefaults("exhaustive")
	if err != nil {
		return err
	}
	e.host = h
	e.log = h.Logger
	e.initialized = true
	return nil
}

func (e *Exhaustive) AddSearchSpace(space *models.SearchSpace) error {
	if space == nil {
		return configError("AddSearchSpace", "search space is nil", nil)
	}
	e.spaces = append(e.spaces, space)
	return nil
}

func (e *Exhaustive) AddObjectiveFunction(obj ObjectiveFunction) {
	if obj != nil {
		e.objectives = append(e.objectives, obj)
	}
}

// CreateScenarios queues one scenario per combination not generated before
// in this run.
func (e *Exhaustive) CreateScenarios() error {
	if !e.initialized {
		return ErrNotInitialized
	}
	if len(e.spaces) == 0 {
		return configError("CreateScenarios", "exhaustive search needs a search space", ErrNoSearchSpaces)
	}

	perSpace := make([][]models.Variant, len(e.spaces))
	for i, space := range e.spaces {
		perSpace[i] = enumerateVariants(space.VariantSpace())
	}

	created := 0
	chosen := make([]models.Variant, len(e.spaces))
	var walk func(depth int)
	walk = func(depth int) {
		if depth == len(e.spaces) {
			key := models.ConfigurationKey(chosen)
			if e.generated[key] {
				return
			}
			e.generated[key] = true
			e.queue(chosen)
			created++
			return
		}
		for _, v := range perSpace[depth] {
			chosen[depth] = v
			walk(depth + 1)
		}
	}
	walk(0)

	e.log.Info("scenarios created", "count", created, "search_spaces", len(e.spaces))
	return nil
}

func (e *Exhaustive) queue(variants []models.Variant) {
	entries := make([]models.ScenarioEntry, len(variants))
	for i, v := range variants {
		entries[i] = models.ScenarioEntry{Variant: v, Entities: e.spaces[i].Entities()}
	}
	s := models.NewScenario(e.host.IDs.Next(), entries...)
	e.scenarios[s.ID] = s
	e.pending = append(e.pending, s.ID)
	e.host.Created.Push(s)
	e.log.Debug("scenario queued", "id", s.ID, "config", s.Key())
}

// SearchFinished evaluates the first objective for every queued scenario.
// Exhaustive search is a single pass, so it reports true once all pending
// scenarios have been evaluated.
func (e *Exhaustive) SearchFinished() (bool, error) {
	if !e.initialized {
		return false, ErrNotInitialized
	}
	if len(e.objectives) == 0 {
		e.log.Info("no objective registered, using passthrough")
		e.objectives = append(e.objectives, &PassthroughObjective{})
	}
	objective := e.objectives[0]

	for len(e.pending) > 0 {
		id := e.pending[0]
		v, err := objective.Evaluate(id, e.host.Results)
		if err != nil {
			return false, fmt.Errorf("evaluate scenario %d: %w", id, err)
		}
		if s, ok := e.scenarios[id]; ok {
			s.SetResult(objective.Name(), v)
		}
		e.track.record(id, v)
		e.pending = e.pending[1:]
	}
	return true, nil
}

func (e *Exhaustive) Optimum() (int, error) {
	return e.track.Optimum()
}

func (e *Exhaustive) Worst() (int, error) {
	return e.track.Worst()
}

func (e *Exhaustive) SearchPath() map[int]float64 {
	return e.track.SearchPath()
}

// Scenario returns a scenario generated by this instance.
func (e *Exhaustive) Scenario(id int) (*models.Scenario, bool) {
	s, ok := e.scenarios[id]
	return s, ok
}

// Clear drops the registered search spaces and all running state. Objectives
// stay registered, so the same instance can run another independent pass.
func (e *Exhaustive) Clear() {
	e.spaces = nil
	e.pending = nil
	e.scenarios = make(map[int]*models.Scenario)
	e.generated = make(map[string]bool)
	e.track.reset()
}

func (e *Exhaustive) Terminate() {
	e.pending = nil
}

func (e *Exhaustive) Finalize() {
	e.Clear()
	e.objectives = nil
}

// enumerateVariants lists every variant of vs; the first parameter varies slowest.
func enumerateVariants(vs *models.VariantSpace) []models.Variant {
	params := vs.Parameters()
	values := make([][]int, len(params))
	for i, p := range params {
		values[i] = p.Restriction.Values()
	}

	var out []models.Variant
	current := make([]models.Assignment, len(params))
	var walk func(depth int)
	walk = func(depth int) {
		if depth == len(params) {
			out = append(out, models.NewVariant(current...))
			return
		}
		for _, v := range values[depth] {
			current[depth] = models.Assignment{Parameter: params[depth], Value: v}
			walk(depth + 1)
		}
	}
	walk(0)
	return out
}

package search

import (
	"fmt"
	"log/slog"

	"github.com/readex-eu/readex-ptf-sub000/pkg/models"
	"github.com/readex-eu/readex-ptf-sub000/pkg/utils"
)

// DefaultSampleCount is the number of scenarios Random draws per call.
const DefaultSampleCount = 10

// Random draws distinct scenarios by sampling every search space
// independently.
type Random struct {
	host        Host
	log         *slog.Logger
	initialized bool

	spaces     []*models.SearchSpace
	samplers   []Sampler
	custom     []bool
	sampler    Sampler
	objectives []ObjectiveFunction

	sampleCount int
	seed        int64
	rng         *utils.RandSource

	seen    map[string]bool
	pending []int
	track   *tracker
}

// NewRandom creates a random search with the uniform sampling model.
func NewRandom() *Random {
	return &Random{
		sampler:     UniformSampler{},
		sampleCount: DefaultSampleCount,
		seen:        make(map[string]bool),
		track:       newTracker(),
	}
}

func (r *Random) Initialize(host Host) error {
	h, err := host.withDefaults("random")
	if err != nil {
		return err
	}
	r.host = h
	r.log = h.Logger
	r.rng = utils.NewRandSource(r.seed)
	r.initialized = true
	r.log.Debug("random source seeded", "seed", r.rng.Seed())
	return nil
}

func (r *Random) SetSampleCount(n int) {
	if n > 0 {
		r.sampleCount = n
	}
}

func (r *Random) SetSeed(seed int64) {
	r.seed = seed
	if r.initialized {
		r.rng = utils.NewRandSource(seed)
	}
}

// SetSampler replaces the default sampling model. It applies to every
// search space without its own model, including spaces registered later.
func (r *Random) SetSampler(s Sampler) {
	if s == nil {
		return
	}
	for i := range r.samplers {
		if !r.custom[i] {
			r.samplers[i] = s
		}
	}
	r.sampler = s
}

// SetSpaceSampler sets the sampling model of the i-th registered search space.
func (r *Random) SetSpaceSampler(i int, s Sampler) error {
	if i < 0 || i >= len(r.samplers) || s == nil {
		return configError("SetSpaceSampler", fmt.Sprintf("no search space %d", i), nil)
	}
	r.samplers[i] = s
	r.custom[i] = true
	return nil
}

func (r *Random) AddSearchSpace(space *models.SearchSpace) error {
	if space == nil {
		return configError("AddSearchSpace", "search space is nil", nil)
	}
	r.spaces = append(r.spaces, space)
	r.samplers = append(r.samplers, r.sampler)
	r.custom = append(r.custom, false)
	return nil
}

func (r *Random) AddObjectiveFunction(obj ObjectiveFunction) {
	if obj != nil {
		r.objectives = append(r.objectives, obj)
	}
}

// CreateScenarios queues up to sampleCount scenarios never queued before in
// this run. It gives up after 3*sampleCount draws.
func (r *Random) CreateScenarios() error {
	if !r.initialized {
		return ErrNotInitialized
	}
	if len(r.spaces) == 0 {
		return configError("CreateScenarios", "random search needs a search space", ErrNoSearchSpaces)
	}

	maxDraws := 3 * r.sampleCount
	kept, draws, infeasible := 0, 0, 0
	for kept < r.sampleCount && draws < maxDraws {
		draws++
		variants := make([]models.Variant, len(r.spaces))
		feasible := true
		for i, space := range r.spaces {
			variants[i] = r.samplers[i].Sample(space, r.rng)
			if !variants[i].Feasible() {
				feasible = false
			}
		}
		if !feasible {
			infeasible++
			continue
		}
		key := models.ConfigurationKey(variants)
		if r.seen[key] {
			continue
		}
		r.seen[key] = true
		r.queue(variants)
		kept++
	}

	if kept < r.sampleCount {
		r.log.Warn("sample came up short",
			"requested", r.sampleCount, "created", kept, "draws", draws, "infeasible", infeasible)
	} else {
		r.log.Info("scenarios created", "count", kept, "draws", draws)
	}
	return nil
}

func (r *Random) queue(variants []models.Variant) {
	entries := make([]models.ScenarioEntry, len(variants))
	for i, v := range variants {
		entries[i] = models.ScenarioEntry{Variant: v, Entities: r.spaces[i].Entities()}
	}
	s := models.NewScenario(r.host.IDs.Next(), entries...)
	r.pending = append(r.pending, s.ID)
	r.host.Created.Push(s)
	r.log.Debug("scenario queued", "id", s.ID, "config", s.Key())
}

// SearchFinished evaluates the first objective of every queued scenario.
func (r *Random) SearchFinished() (bool, error) {
	if !r.initialized {
		return false, ErrNotInitialized
	}
	if len(r.objectives) == 0 {
		r.log.Info("no objective registered, using passthrough")
		r.objectives = append(r.objectives, &PassthroughObjective{})
	}
	objective := r.objectives[0]

	for len(r.pending) > 0 {
		id := r.pending[0]
		v, err := objective.Evaluate(id, r.host.Results)
		if err != nil {
			return false, fmt.Errorf("evaluate scenario %d: %w", id, err)
		}
		r.track.record(id, v)
		r.pending = r.pending[1:]
	}
	return true, nil
}

func (r *Random) Optimum() (int, error) {
	return r.track.Optimum()
}

func (r *Random) Worst() (int, error) {
	return r.track.Worst()
}

func (r *Random) SearchPath() map[int]float64 {
	return r.track.SearchPath()
}

// Clear drops search spaces and running state and reseeds the source, so
// a seeded run can be repeated.
func (r *Random) Clear() {
	r.spaces = nil
	r.samplers = nil
	r.custom = nil
	r.seen = make(map[string]bool)
	r.pending = nil
	r.track.reset()
	if r.initialized {
		r.rng = utils.NewRandSource(r.rng.Seed())
	}
}

func (r *Random) Terminate() {
	r.pending = nil
}

func (r *Random) Finalize() {
	r.Clear()
	r.objectives = nil
}

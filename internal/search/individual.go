package search

import (
	"fmt"
	"log/slog"

	"github.com/readex-eu/readex-ptf-sub000/pkg/models"
)

// Individual tunes one group of search spaces at a time. Each step runs a
// delegate exhaustive search over the current group with every previously
// kept group pinned to its best values. A group is kept only if its step
// improved on the best value so far.
type Individual struct {
	host        Host
	log         *slog.Logger
	initialized bool

	spaces     []*models.SearchSpace
	objectives []ObjectiveFunction

	groups [][]int
	step   int

	frozen     map[int]*models.SearchSpace
	stepSpaces []int
	delegate   *Exhaustive

	track       *tracker
	bestValue   float64
	haveBest    bool
	bestHistory []float64
}

// NewIndividual creates an individual search.
func NewIndividual() *Individual {
	return &Individual{
		frozen: make(map[int]*models.SearchSpace),
		track:  newTracker(),
	}
}

func (s *Individual) Initialize(host Host) error {
	h, err := host.withDefaults("individual")
	if err != nil {
		return err
	}
	s.host = h
	s.log = h.Logger
	s.initialized = true
	return nil
}

func (s *Individual) AddSearchSpace(space *models.SearchSpace) error {
	if space == nil {
		return configError("AddSearchSpace", "search space is nil", nil)
	}
	if s.groups != nil {
		return configError("AddSearchSpace", "search already started", nil)
	}
	s.spaces = append(s.spaces, space)
	return nil
}

func (s *Individual) AddObjectiveFunction(obj ObjectiveFunction) {
	if obj != nil {
		s.objectives = append(s.objectives, obj)
	}
}

// CreateScenarios queues the scenarios of the current step. Calling it again
// before SearchFinished queues nothing new.
func (s *Individual) CreateScenarios() error {
	if !s.initialized {
		return ErrNotInitialized
	}
	if len(s.spaces) == 0 {
		return configError("CreateScenarios", "individual search needs a search space", ErrNoSearchSpaces)
	}
	if s.groups == nil {
		s.groups = groupSpaces(s.spaces)
		s.log.Info("search groups built", "groups", len(s.groups), "search_spaces", len(s.spaces))
	}
	if s.step >= len(s.groups) {
		return nil
	}

	if s.delegate == nil {
		if err := s.startStep(); err != nil {
			return err
		}
	}
	return s.delegate.CreateScenarios()
}

func (s *Individual) startStep() error {
	current := make(map[int]bool, len(s.groups[s.step]))
	for _, idx := range s.groups[s.step] {
		current[idx] = true
	}

	d := NewExhaustive()
	host := s.host
	host.Logger = s.log.With("step", s.step)
	if err := d.Initialize(host); err != nil {
		return err
	}
	for _, obj := range s.objectives {
		d.AddObjectiveFunction(obj)
	}

	s.stepSpaces = s.stepSpaces[:0]
	for idx, space := range s.spaces {
		switch {
		case current[idx]:
			if err := d.AddSearchSpace(space); err != nil {
				return err
			}
		case s.frozen[idx] != nil:
			if err := d.AddSearchSpace(s.frozen[idx]); err != nil {
				return err
			}
		default:
			continue
		}
		s.stepSpaces = append(s.stepSpaces, idx)
	}
	s.delegate = d
	return nil
}

// SearchFinished evaluates the current step and decides whether to keep its
// group. It reports true once every group has been visited.
func (s *Individual) SearchFinished() (bool, error) {
	if !s.initialized {
		return false, ErrNotInitialized
	}
	if s.delegate == nil {
		return s.groups != nil && s.step >= len(s.groups), nil
	}

	if _, err := s.delegate.SearchFinished(); err != nil {
		return false, err
	}
	if len(s.objectives) == 0 {
		s.objectives = append(s.objectives, s.delegate.objectives[0])
	}
	for _, id := range s.delegate.track.order {
		s.track.record(id, s.delegate.track.path[id])
	}

	bestID, err := s.delegate.Optimum()
	if err != nil {
		return false, fmt.Errorf("step %d: %w", s.step, err)
	}
	stepBest := s.delegate.track.path[bestID]

	if !s.haveBest || stepBest < s.bestValue {
		if err := s.freeze(bestID); err != nil {
			return false, err
		}
		s.log.Info("group kept", "step", s.step, "best", stepBest, "scenario", bestID)
		s.bestValue, s.haveBest = stepBest, true
	} else {
		s.log.Info("group discarded", "step", s.step, "step_best", stepBest, "best", s.bestValue)
	}
	s.bestHistory = append(s.bestHistory, s.bestValue)

	s.delegate = nil
	s.step++
	return s.step >= len(s.groups), nil
}

func (s *Individual) freeze(bestID int) error {
	scenario, ok := s.delegate.Scenario(bestID)
	if !ok {
		return fmt.Errorf("step %d: best scenario %d unknown", s.step, bestID)
	}
	entries := scenario.Entries()
	if len(entries) != len(s.stepSpaces) {
		return fmt.Errorf("step %d: scenario %d has %d entries, want %d", s.step, bestID, len(entries), len(s.stepSpaces))
	}
	for _, idx := range s.groups[s.step] {
		for k, spaceIdx := range s.stepSpaces {
			if spaceIdx != idx {
				continue
			}
			pinned, err := s.spaces[idx].Pin(entries[k].Variant)
			if err != nil {
				return fmt.Errorf("step %d: pin search space %d: %w", s.step, idx, err)
			}
			s.frozen[idx] = pinned
		}
	}
	return nil
}

func (s *Individual) Optimum() (int, error) {
	return s.track.Optimum()
}

func (s *Individual) Worst() (int, error) {
	return s.track.Worst()
}

// SearchPath covers every step.
func (s *Individual) SearchPath() map[int]float64 {
	return s.track.SearchPath()
}

// BestHistory returns the best value known after each completed step.
func (s *Individual) BestHistory() []float64 {
	return append([]float64(nil), s.bestHistory...)
}

// Groups returns the search space indices of each group in visiting order.
func (s *Individual) Groups() [][]int {
	out := make([][]int, len(s.groups))
	for i, g := range s.groups {
		out[i] = append([]int(nil), g...)
	}
	return out
}

func (s *Individual) Clear() {
	s.spaces = nil
	s.groups = nil
	s.step = 0
	s.frozen = make(map[int]*models.SearchSpace)
	s.stepSpaces = nil
	s.delegate = nil
	s.track.reset()
	s.bestValue, s.haveBest = 0, false
	s.bestHistory = nil
}

func (s *Individual) Terminate() {
	if s.delegate != nil {
		s.delegate.Terminate()
	}
	s.delegate = nil
}

func (s *Individual) Finalize() {
	s.Clear()
	s.objectives = nil
}

// groupSpaces groups spaces sharing a non-empty domain label. A group sits at
// the position of its first member; unlabeled spaces form their own group.
func groupSpaces(spaces []*models.SearchSpace) [][]int {
	var groups [][]int
	byDomain := make(map[string]int)
	for i, space := range spaces {
		domain := space.Domain()
		if domain == "" {
			groups = append(groups, []int{i})
			continue
		}
		if g, ok := byDomain[domain]; ok {
			groups[g] = append(groups[g], i)
			continue
		}
		byDomain[domain] = len(groups)
		groups = append(groups, []int{i})
	}
	return groups
}

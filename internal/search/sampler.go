package search

import (
	"errors"
	"fmt"

	"github.com/readex-eu/readex-ptf-sub000/internal/history"
	"github.com/readex-eu/readex-ptf-sub000/pkg/models"
	"github.com/readex-eu/readex-ptf-sub000/pkg/utils"
)

// Sampler draws one variant for a search space.
type Sampler interface {
	Name() string
	Sample(space *models.SearchSpace, rng *utils.RandSource) models.Variant
}

// UniformSampler picks every parameter value uniformly from its feasible set.
type UniformSampler struct{}

func (UniformSampler) Name() string { return "uniform" }

func (UniformSampler) Sample(space *models.SearchSpace, rng *utils.RandSource) models.Variant {
	params := space.Parameters()
	assignments := make([]models.Assignment, len(params))
	for i, p := range params {
		idx := rng.Intn(p.Restriction.Cardinality())
		assignments[i] = models.Assignment{Parameter: p, Value: p.Restriction.ValueAt(idx)}
	}
	return models.NewVariant(assignments...)
}

// HistorySampler weights each feasible value by how often it appears among
// the best configurations of prior runs of the same program. Every value
// keeps a weight of at least one, and values never seen before stay
// reachable.
type HistorySampler struct {
	counts map[string]map[int]int
}

// NewHistorySampler reads up to top best configurations of every run for
// signature. A signature without history yields a sampler that behaves
// like UniformSampler.
func NewHistorySampler(src history.Source, signature string, top int) (*HistorySampler, error) {
	s := &HistorySampler{counts: make(map[string]map[int]int)}
	runs, err := src.Lookup(signature)
	if errors.Is(err, history.ErrNoHistory) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("history lookup %s: %w", signature, err)
	}
	for _, run := range runs {
		for i, best := range run.Best {
			if top > 0 && i >= top {
				break
			}
			for name, value := range best {
				if s.counts[name] == nil {
					s.counts[name] = make(map[int]int)
				}
				s.counts[name][value]++
			}
		}
	}
	return s, nil
}

func (s *HistorySampler) Name() string { return "history" }

// Weights returns the sampling weight of every feasible value of p.
func (s *HistorySampler) Weights(p models.TuningParameter) []float64 {
	values := p.Restriction.Values()
	weights := make([]float64, len(values))
	seen := s.counts[p.Name]
	for i, v := range values {
		weights[i] = 1 + float64(seen[v])
	}
	return weights
}

func (s *HistorySampler) Sample(space *models.SearchSpace, rng *utils.RandSource) models.Variant {
	params := space.Parameters()
	assignments := make([]models.Assignment, len(params))
	for i, p := range params {
		idx := rng.WeightedIndex(s.Weights(p))
		assignments[i] = models.Assignment{Parameter: p, Value: p.Restriction.ValueAt(idx)}
	}
	return models.NewVariant(assignments...)
}

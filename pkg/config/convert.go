package config

import (
	"fmt"

	"github.com/readex-eu/readex-ptf-sub000/pkg/models"
)

// BuildSearchSpaces converts the search_spaces section into validated search
// spaces. Parameter IDs are assigned in file order starting at 1.
func (t *Tuning) BuildSearchSpaces() ([]*models.SearchSpace, error) {
	spaces := make([]*models.SearchSpace, 0, len(t.SearchSpaces))
	nextID := 1
	for i, sc := range t.SearchSpaces {
		if len(sc.Parameters) == 0 {
			return nil, fmt.Errorf("search space %d: at least one parameter must be defined", i)
		}
		params := make([]models.TuningParameter, 0, len(sc.Parameters))
		for _, pc := range sc.Parameters {
			r, err := pc.restriction()
			if err != nil {
				return nil, fmt.Errorf("search space %d, parameter %s: %w", i, pc.Name, err)
			}
			p, err := models.NewTuningParameter(nextID, pc.Name, r)
			if err != nil {
				return nil, fmt.Errorf("search space %d: %w", i, err)
			}
			nextID++
			params = append(params, p)
		}
		vs, err := models.NewVariantSpace(params...)
		if err != nil {
			return nil, fmt.Errorf("search space %d: %w", i, err)
		}
		entities := make([]models.Entity, len(sc.Entities))
		for j, e := range sc.Entities {
			entities[j] = models.Entity(e)
		}
		ss, err := models.NewSearchSpace(vs, entities...)
		if err != nil {
			return nil, fmt.Errorf("search space %d: %w", i, err)
		}
		spaces = append(spaces, ss.WithDomain(sc.Domain))
	}
	return spaces, nil
}

func (p ParameterConfig) restriction() (models.Restriction, error) {
	switch {
	case p.Range != nil && len(p.Values) > 0:
		return models.Restriction{}, fmt.Errorf("%w: set either values or range, not both", models.ErrInvalidRestriction)
	case p.Range != nil:
		return models.NewStepRange(p.Range.From, p.Range.To, p.Range.Step)
	case len(p.Values) > 0:
		return models.NewDiscreteSet(p.Values...)
	default:
		return models.Restriction{}, fmt.Errorf("%w: values or range is required", models.ErrInvalidRestriction)
	}
}

package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidParameter is returned for malformed tuning parameters or variant spaces.
var ErrInvalidParameter = errors.New("invalid tuning parameter")

// Entity is an opaque handle to the thing a variant is applied to: a code
// region, a call-path node, or a domain tag.
type Entity string

// Property is one measured record produced by running a scenario.
type Property struct {
	Name  string  `json:"name" yaml:"name"`
	Value float64 `json:"value" yaml:"value"`
	Unit  string  `json:"unit,omitempty" yaml:"unit,omitempty"`
}

// TuningParameter is an adjustable knob with an ordered feasible domain.
type TuningParameter struct {
	ID          int
	Name        string
	Restriction Restriction
}

// NewTuningParameter validates and builds a tuning parameter.
func NewTuningParameter(id int, name string, restriction Restriction) (TuningParameter, error) {
	p := TuningParameter{ID: id, Name: name, Restriction: restriction}
	if err := p.Validate(); err != nil {
		return TuningParameter{}, err
	}
	return p, nil
}

// Validate checks the name and restriction.
func (p TuningParameter) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name cannot be empty (id %d)", ErrInvalidParameter, p.ID)
	}
	if err := p.Restriction.Validate(); err != nil {
		return fmt.Errorf("parameter %s: %w", p.Name, err)
	}
	return nil
}

// WithRestriction returns a copy of p with its restriction replaced.
func (p TuningParameter) WithRestriction(r Restriction) TuningParameter {
	p.Restriction = r
	return p
}

func (p TuningParameter) String() string {
	return p.Name + p.Restriction.String()
}

// VariantSpace is an ordered, non-empty collection of parameters varied together.
type VariantSpace struct {
	params []TuningParameter
}

// NewVariantSpace validates params and builds a variant space. Names must be unique.
func NewVariantSpace(params ...TuningParameter) (*VariantSpace, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("%w: variant space needs at least one parameter", ErrInvalidParameter)
	}
	names := make(map[string]bool, len(params))
	for _, p := range params {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if names[p.Name] {
			return nil, fmt.Errorf("%w: duplicate parameter name %s", ErrInvalidParameter, p.Name)
		}
		names[p.Name] = true
	}
	return &VariantSpace{params: append([]TuningParameter(nil), params...)}, nil
}

// Len returns the number of parameters.
func (vs *VariantSpace) Len() int {
	return len(vs.params)
}

// Parameter returns the i-th parameter.
func (vs *VariantSpace) Parameter(i int) TuningParameter {
	return vs.params[i]
}

// Parameters returns a copy of the parameter list.
func (vs *VariantSpace) Parameters() []TuningParameter {
	return append([]TuningParameter(nil), vs.params...)
}

// Cardinality is the product of the parameters' cardinalities, saturating
// at math.MaxInt.
func (vs *VariantSpace) Cardinality() int {
	total := 1
	for _, p := range vs.params {
		n := p.Restriction.Cardinality()
		if n == 0 {
			return 0
		}
		if total > math.MaxInt/n {
			return math.MaxInt
		}
		total *= n
	}
	return total
}

// SearchSpace pairs a variant space with the entities its variants apply to.
type SearchSpace struct {
	space    *VariantSpace
	entities []Entity
	domain   string
}

// NewSearchSpace builds a search space. entities may be empty when the
// variant applies program-wide.
func NewSearchSpace(space *VariantSpace, entities ...Entity) (*SearchSpace, error) {
	if space == nil || space.Len() == 0 {
		return nil, fmt.Errorf("%w: search space needs a non-empty variant space", ErrInvalidParameter)
	}
	return &SearchSpace{space: space, entities: append([]Entity(nil), entities...)}, nil
}

// WithDomain sets the grouping label and returns s.
func (s *SearchSpace) WithDomain(domain string) *SearchSpace {
	s.domain = domain
	return s
}

// Domain is the optional label used to group related search spaces.
func (s *SearchSpace) Domain() string {
	return s.domain
}

// VariantSpace returns the parameters varied by this space.
func (s *SearchSpace) VariantSpace() *VariantSpace {
	return s.space
}

// Parameters is shorthand for VariantSpace().Parameters().
func (s *SearchSpace) Parameters() []TuningParameter {
	return s.space.Parameters()
}

// Entities returns a copy of the target entities.
func (s *SearchSpace) Entities() []Entity {
	return append([]Entity(nil), s.entities...)
}

// Pin returns a copy of s where every parameter is restricted to the single
// value it takes in v. The original is left untouched.
func (s *SearchSpace) Pin(v Variant) (*SearchSpace, error) {
	pinned := make([]TuningParameter, 0, s.space.Len())
	for _, p := range s.space.params {
		value, ok := v.Value(p.Name)
		if !ok {
			return nil, fmt.Errorf("%w: variant has no value for %s", ErrInvalidParameter, p.Name)
		}
		if !p.Restriction.Contains(value) {
			return nil, fmt.Errorf("%w: value %d infeasible for %s", ErrInvalidParameter, value, p)
		}
		pinned = append(pinned, p.WithRestriction(Singleton(value)))
	}
	vs, err := NewVariantSpace(pinned...)
	if err != nil {
		return nil, err
	}
	return &SearchSpace{space: vs, entities: s.Entities(), domain: s.domain}, nil
}

// Assignment is one parameter's chosen value inside a variant.
type Assignment struct {
	Parameter TuningParameter
	Value     int
}

// Variant is an immutable parameter-to-value mapping for one variant space.
type Variant struct {
	assignments []Assignment
}

// NewVariant builds a variant. The order of assignments is kept.
func NewVariant(assignments ...Assignment) Variant {
	return Variant{assignments: append([]Assignment(nil), assignments...)}
}

// Len returns the number of assigned parameters.
func (v Variant) Len() int {
	return len(v.assignments)
}

// Assignments returns a copy of the assignment list.
func (v Variant) Assignments() []Assignment {
	return append([]Assignment(nil), v.assignments...)
}

// Value looks up the value assigned to the named parameter.
func (v Variant) Value(name string) (int, bool) {
	for _, a := range v.assignments {
		if a.Parameter.Name == name {
			return a.Value, true
		}
	}
	return 0, false
}

// Feasible reports whether every value satisfies its parameter's restriction.
func (v Variant) Feasible() bool {
	for _, a := range v.assignments {
		if !a.Parameter.Restriction.Contains(a.Value) {
			return false
		}
	}
	return true
}

// Key is a deterministic signature of the assignment, e.g. "THREADS=4,FREQ=1200".
func (v Variant) Key() string {
	var b strings.Builder
	for i, a := range v.assignments {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(a.Parameter.Name)
		b.WriteByte('=')
		b.WriteString(strconv.Itoa(a.Value))
	}
	return b.String()
}

func (v Variant) String() string {
	return "{" + v.Key() + "}"
}

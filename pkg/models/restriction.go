package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidRestriction is returned when a restriction cannot describe a
// non-empty feasible domain.
var ErrInvalidRestriction = errors.New("invalid restriction")

// RestrictionKind tags the variant held by a Restriction.
type RestrictionKind int

const (
	// KindStepRange is a stepped numeric range [from, to] with a positive step.
	KindStepRange RestrictionKind = iota + 1
	// KindDiscreteSet is an explicit ordered list of values.
	KindDiscreteSet
)

func (k RestrictionKind) String() string {
	switch k {
	case KindStepRange:
		return "range"
	case KindDiscreteSet:
		return "set"
	default:
		return "unknown"
	}
}

// Restriction is the feasibility domain of a tuning parameter. The zero
// value is invalid; build one with NewStepRange or NewDiscreteSet.
type Restriction struct {
	kind   RestrictionKind
	from   int
	to     int
	step   int
	values []int
}

// NewStepRange builds a range restriction. from == to is allowed and yields
// a single value.
func NewStepRange(from, to, step int) (Restriction, error) {
	if step <= 0 {
		return Restriction{}, fmt.Errorf("%w: step must be positive, got %d", ErrInvalidRestriction, step)
	}
	if from > to {
		return Restriction{}, fmt.Errorf("%w: from %d is greater than to %d", ErrInvalidRestriction, from, to)
	}
	// The width and the value count must both fit in an int.
	width := uint64(to) - uint64(from)
	if width > math.MaxInt || width/uint64(step) >= math.MaxInt {
		return Restriction{}, fmt.Errorf("%w: range [%d, %d] step %d has too many values", ErrInvalidRestriction, from, to, step)
	}
	return Restriction{kind: KindStepRange, from: from, to: to, step: step}, nil
}

// NewDiscreteSet builds a set restriction over values, preserving order.
func NewDiscreteSet(values ...int) (Restriction, error) {
	if len(values) == 0 {
		return Restriction{}, fmt.Errorf("%w: discrete set is empty", ErrInvalidRestriction)
	}
	seen := make(map[int]bool, len(values))
	for _, v := range values {
		if seen[v] {
			return Restriction{}, fmt.Errorf("%w: duplicate value %d in discrete set", ErrInvalidRestriction, v)
		}
		seen[v] = true
	}
	return Restriction{kind: KindDiscreteSet, values: append([]int(nil), values...)}, nil
}

// MustStepRange is NewStepRange that panics on error. Intended for literals.
func MustStepRange(from, to, step int) Restriction {
	r, err := NewStepRange(from, to, step)
	if err != nil {
		panic(err)
	}
	return r
}

// MustDiscreteSet is NewDiscreteSet that panics on error. Intended for literals.
func MustDiscreteSet(values ...int) Restriction {
	r, err := NewDiscreteSet(values...)
	if err != nil {
		panic(err)
	}
	return r
}

// Singleton returns a restriction admitting only v.
func Singleton(v int) Restriction {
	return Restriction{kind: KindDiscreteSet, values: []int{v}}
}

// Kind reports which variant r holds.
func (r Restriction) Kind() RestrictionKind {
	return r.kind
}

// Bounds returns from, to and step of a range restriction.
func (r Restriction) Bounds() (from, to, step int) {
	return r.from, r.to, r.step
}

// Validate reports whether r describes a non-empty domain.
func (r Restriction) Validate() error {
	switch r.kind {
	case KindStepRange:
		_, err := NewStepRange(r.from, r.to, r.step)
		return err
	case KindDiscreteSet:
		_, err := NewDiscreteSet(r.values...)
		return err
	default:
		return fmt.Errorf("%w: restriction has no kind", ErrInvalidRestriction)
	}
}

// Contains reports whether v is feasible under r.
func (r Restriction) Contains(v int) bool {
	switch r.kind {
	case KindStepRange:
		return v >= r.from && v <= r.to && (v-r.from)%r.step == 0
	case KindDiscreteSet:
		for _, x := range r.values {
			if x == v {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Cardinality is the number of feasible values.
func (r Restriction) Cardinality() int {
	switch r.kind {
	case KindStepRange:
		return (r.to-r.from)/r.step + 1
	case KindDiscreteSet:
		return len(r.values)
	default:
		return 0
	}
}

// ValueAt returns the i-th feasible value in iteration order.
func (r Restriction) ValueAt(i int) int {
	switch r.kind {
	case KindStepRange:
		return r.from + i*r.step
	case KindDiscreteSet:
		return r.values[i]
	default:
		panic("models: ValueAt on invalid restriction")
	}
}

// IndexOf returns the iteration index of v.
func (r Restriction) IndexOf(v int) (int, bool) {
	switch r.kind {
	case KindStepRange:
		if !r.Contains(v) {
			return 0, false
		}
		return (v - r.from) / r.step, true
	case KindDiscreteSet:
		for i, x := range r.values {
			if x == v {
				return i, true
			}
		}
		return 0, false
	default:
		return 0, false
	}
}

// Values lists every feasible value in iteration order: from, from+step, ...
// for ranges and the declared order for sets.
func (r Restriction) Values() []int {
	n := r.Cardinality()
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = r.ValueAt(i)
	}
	return out
}

// Nearest rounds x to the closest feasible value. Ties go to the earlier
// value in iteration order.
func (r Restriction) Nearest(x float64) int {
	switch r.kind {
	case KindStepRange:
		k := math.Round((x - float64(r.from)) / float64(r.step))
		maxK := float64(r.Cardinality() - 1)
		if k < 0 || math.IsNaN(k) {
			k = 0
		}
		if k > maxK {
			k = maxK
		}
		return r.from + int(k)*r.step
	case KindDiscreteSet:
		best := r.values[0]
		bestDist := math.Abs(x - float64(best))
		for _, v := range r.values[1:] {
			if d := math.Abs(x - float64(v)); d < bestDist {
				best, bestDist = v, d
			}
		}
		return best
	default:
		panic("models: Nearest on invalid restriction")
	}
}

func (r Restriction) String() string {
	switch r.kind {
	case KindStepRange:
		return fmt.Sprintf("[%d..%d step %d]", r.from, r.to, r.step)
	case KindDiscreteSet:
		parts := make([]string, len(r.values))
		for i, v := range r.values {
			parts[i] = strconv.Itoa(v)
		}
		return "{" + strings.Join(parts, ",") + "}"
	default:
		return "<invalid>"
	}
}

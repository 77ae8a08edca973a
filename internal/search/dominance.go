package search

import (
	"math"
	"sort"
)

// weaklyDominates reports whether a is no worse than b on every objective.
// Objectives are minimized.
func weaklyDominates(a, b []float64) bool {
	for k := range a {
		if a[k] > b[k] {
			return false
		}
	}
	return true
}

// strictlyDominates reports whether a is no worse than b everywhere and
// better on at least one objective.
func strictlyDominates(a, b []float64) bool {
	better := false
	for k := range a {
		if a[k] > b[k] {
			return false
		}
		if a[k] < b[k] {
			better = true
		}
	}
	return better
}

// paretoFront returns the indices of the vectors no other vector strictly
// dominates, in input order.
func paretoFront(vectors [][]float64) []int {
	front := make([]int, 0)
	for i, candidate := range vectors {
		isDominated := false
		for j, other := range vectors {
			if i == j {
				continue
			}
			if strictlyDominates(other, candidate) {
				isDominated = true
				break
			}
		}
		if !isDominated {
			front = append(front, i)
		}
	}
	return front
}

// crowdingDistances computes, for each vector, the sum over objectives of
// the squared normalized gap between its two neighbors when the set is
// sorted by that objective (ties broken by the remaining objectives in
// order, then by position). Boundary vectors get +Inf.
func crowdingDistances(vectors [][]float64) []float64 {
	n := len(vectors)
	dist := make([]float64, n)
	if n == 0 {
		return dist
	}
	if n <= 2 {
		for i := range dist {
			dist[i] = math.Inf(1)
		}
		return dist
	}

	m := len(vectors[0])
	order := make([]int, n)
	for k := 0; k < m; k++ {
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return lexLess(vectors[order[a]], vectors[order[b]], k)
		})

		lo := vectors[order[0]][k]
		hi := vectors[order[n-1]][k]
		dist[order[0]] = math.Inf(1)
		dist[order[n-1]] = math.Inf(1)
		span := hi - lo
		if span == 0 {
			continue
		}
		for pos := 1; pos < n-1; pos++ {
			gap := (vectors[order[pos+1]][k] - vectors[order[pos-1]][k]) / span
			dist[order[pos]] += gap * gap
		}
	}
	return dist
}

// lexLess orders a before b by objective first, then by the other
// objectives in index order.
func lexLess(a, b []float64, first int) bool {
	if a[first] != b[first] {
		return a[first] < b[first]
	}
	for k := range a {
		if k == first {
			continue
		}
		if a[k] != b[k] {
			return a[k] < b[k]
		}
	}
	return false
}

// lowestIndex returns the first position holding the smallest value.
func lowestIndex(values []float64) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] < values[best] {
			best = i
		}
	}
	return best
}

package utils

import (
	"math"
)

// Clamp clamps a value between min and max
func Clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// RoundIndex rounds x to the nearest integer and clamps it into [0, n-1].
func RoundIndex(x float64, n int) int {
	if n <= 0 {
		return 0
	}
	if math.IsNaN(x) {
		return 0
	}
	return Clamp(int(math.Round(x)), 0, n-1)
}

// StepCount returns the number of values in the stepped range [from, to].
// It returns 0 for an empty range or a non-positive step.
func StepCount(from, to, step int) int {
	if step <= 0 || from > to {
		return 0
	}
	return (to-from)/step + 1
}

// Mean calculates the mean of a slice of float64 values
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Sum calculates the sum of a slice of float64 values
func Sum(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum
}

// MinMax returns the smallest and largest value of a non-empty slice.
func MinMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

package testutil

import "math"

// NaiveWindowMax returns, for every index n, the maximum of
// input[max(0, n-hold) .. n]. It rescans the window each step and serves as
// the reference for sliding-window trackers.
func NaiveWindowMax(input []float64, hold int) []float64 {
	out := make([]float64, len(input))
	for n := range input {
		start := n - hold
		if start < 0 {
			start = 0
		}
		m := math.Inf(-1)
		for _, v := range input[start : n+1] {
			if v > m {
				m = v
			}
		}
		out[n] = m
	}
	return out
}

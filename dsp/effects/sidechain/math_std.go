//go:build !fastmath

package sidechain

import "math"

// log10 computes log10(x) using standard library math.
func log10(x float64) float64 {
	return math.Log10(x)
}

//go:build fastmath

package sidechain

import "github.com/meko-christian/algo-approx"

// ln10 is the natural logarithm of 10.
const ln10 = 2.302585092994045684017991454684

// log10 computes log10(x) using fast approximation. Only display paths use
// it.
func log10(x float64) float64 {
	return approx.FastLog(x) / ln10
}

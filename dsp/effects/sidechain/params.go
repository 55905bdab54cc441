package sidechain

import "github.com/cwbudde/algo-esc/dsp/param"

const (
	// GainSmoothingMs is the ramp time of the sidechain gain.
	GainSmoothingMs = 50.0
)

var (
	// GainRange is the sidechain gain in dB.
	GainRange = param.Range{Min: -120, Max: 24, Default: 0}
	// LookaheadRange is the program delay in milliseconds.
	LookaheadRange = param.Range{Min: 0, Max: 15, Default: 0, Step: 0.1}
)

// Smoothed yields one parameter value per call. param.Smoother satisfies
// it.
type Smoothed interface {
	Next() float64
}

// Constant is a Smoothed that never changes.
type Constant float64

// Next returns c.
func (c Constant) Next() float64 { return float64(c) }

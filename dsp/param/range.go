package param

import (
	"fmt"
	"math"
)

// Range describes a plain parameter value range.
type Range struct {
	Min     float64
	Max     float64
	Default float64
	// Step quantizes values relative to Min. Zero disables snapping.
	Step float64
}

// Validate checks that the range is well formed.
func (r Range) Validate() error {
	if math.IsNaN(r.Min) || math.IsNaN(r.Max) || r.Min > r.Max {
		return fmt.Errorf("param range [%f, %f] is invalid", r.Min, r.Max)
	}
	if r.Default < r.Min || r.Default > r.Max {
		return fmt.Errorf("param default %f outside [%f, %f]", r.Default, r.Min, r.Max)
	}
	if r.Step < 0 || math.IsNaN(r.Step) {
		return fmt.Errorf("param step must be >= 0: %f", r.Step)
	}
	return nil
}

// Clamp limits v to [Min, Max]. NaN maps to Default.
func (r Range) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return r.Default
	}
	return math.Max(r.Min, math.Min(r.Max, v))
}

// Snap clamps v and rounds it to the nearest step.
func (r Range) Snap(v float64) float64 {
	v = r.Clamp(v)
	if r.Step <= 0 {
		return v
	}
	return r.Clamp(r.Min + math.Round((v-r.Min)/r.Step)*r.Step)
}

// Normalize maps v to [0, 1].
func (r Range) Normalize(v float64) float64 {
	if r.Max == r.Min {
		return 0
	}
	return (r.Clamp(v) - r.Min) / (r.Max - r.Min)
}

// Denormalize maps a normalized value back to the plain range and snaps it.
func (r Range) Denormalize(n float64) float64 {
	n = math.Max(0, math.Min(1, n))
	return r.Snap(r.Min + n*(r.Max-r.Min))
}

package core

import (
	"errors"
	"fmt"
	"math"
)

const defaultEpsilon = 1e-12

var (
	// ErrInvalidSampleRate reports a sample rate that is not positive and finite.
	ErrInvalidSampleRate = errors.New("sample rate must be positive and finite")
	// ErrInvalidChannels reports a channel count below one.
	ErrInvalidChannels = errors.New("channel count must be >= 1")
)

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// IsFinite reports whether v is neither NaN nor an infinity.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ValidateSampleRate returns ErrInvalidSampleRate wrapped with the offending
// value when sampleRate cannot drive a processor.
func ValidateSampleRate(sampleRate float64) error {
	if sampleRate <= 0 || !IsFinite(sampleRate) {
		return fmt.Errorf("%w: %f", ErrInvalidSampleRate, sampleRate)
	}

	return nil
}

// ValidateChannels returns ErrInvalidChannels wrapped with the offending
// value when channels < 1.
func ValidateChannels(channels int) error {
	if channels < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidChannels, channels)
	}

	return nil
}

// MaxSamples is the largest count MsToSamples returns.
const MaxSamples = math.MaxInt32

// MsToSamples converts a duration in milliseconds to the nearest whole
// number of samples. Negative, NaN and infinite durations map to 0; finite
// durations longer than MaxSamples saturate.
func MsToSamples(ms, sampleRate float64) int {
	n := math.Round(ms / 1000 * sampleRate)
	if !(n > 0) || math.IsInf(n, 0) {
		return 0
	}
	if n > MaxSamples {
		return MaxSamples
	}

	return int(n)
}

// NearlyEqual reports whether a and b are equal within eps.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// FlushDenormals converts tiny denormal-like values to exact zero.
// This can reduce denormal-related CPU slowdowns in hot DSP loops.
func FlushDenormals(x float64) float64 {
	const epsilon = 1e-30
	if x > -epsilon && x < epsilon {
		return 0
	}

	return x
}

// DBToLinear converts dB to linear amplitude (20*log10 convention).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}

	if linear == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(linear)
}

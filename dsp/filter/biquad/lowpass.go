package biquad

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-esc/dsp/core"
)

// DefaultQ is the Butterworth quality factor.
var DefaultQ = 1 / math.Sqrt2

var (
	// ErrInvalidCutoff is returned when a cutoff is not inside (0, Nyquist).
	ErrInvalidCutoff = errors.New("cutoff must be between 0 and Nyquist")
	// ErrUnstable is returned when a design rounds to poles on or outside
	// the unit circle.
	ErrUnstable = errors.New("filter design is unstable")
)

// LowpassCoefficients designs an RBJ cookbook lowpass at freq (Hz) with
// quality factor q. Invalid frequencies yield zero coefficients; a
// non-positive q falls back to DefaultQ.
func LowpassCoefficients(freq, q, sampleRate float64) Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return Coefficients{}
	}

	q = normalizedQ(q)
	cw := math.Cos(w0)
	sw := math.Sin(w0)
	alpha := sw / (2 * q)

	b1 := 1 - cw
	b0 := b1 / 2
	b2 := b0
	a0 := 1 + alpha
	a1 := -2 * cw
	a2 := 1 - alpha

	return normalize(b0, b1, b2, a0, a1, a2)
}

// Lowpass is a single-section resonant lowpass filter.
type Lowpass struct {
	section    Section
	sampleRate float64
	cutoff     float64
	q          float64
}

// NewLowpass designs a lowpass at cutoff Hz with resonance q.
func NewLowpass(sampleRate, cutoff, q float64) (*Lowpass, error) {
	lp := &Lowpass{}
	if err := lp.Configure(sampleRate, cutoff, q); err != nil {
		return nil, err
	}
	return lp, nil
}

// Configure recomputes the coefficients and scales them to exactly unity
// gain at DC. The filter state is kept so a running envelope does not jump.
// On error the previous design is left untouched.
func (l *Lowpass) Configure(sampleRate, cutoff, q float64) error {
	if err := core.ValidateSampleRate(sampleRate); err != nil {
		return fmt.Errorf("biquad lowpass %w", err)
	}
	if _, ok := normalizedW0(cutoff, sampleRate); !ok {
		return fmt.Errorf("biquad lowpass %w: %f Hz at %f Hz", ErrInvalidCutoff, cutoff, sampleRate)
	}
	if q <= 0 || !core.IsFinite(q) {
		return fmt.Errorf("biquad lowpass resonance must be > 0: %f", q)
	}

	c := LowpassCoefficients(cutoff, q, sampleRate)
	if !c.Stable() {
		return fmt.Errorf("biquad lowpass %w: %f Hz, Q %f at %f Hz", ErrUnstable, cutoff, q, sampleRate)
	}
	// Very low cutoffs lose a little DC gain to rounding in the design.
	g := c.DCGain()
	c.B0 /= g
	c.B1 /= g
	c.B2 /= g

	l.section.Coefficients = c
	l.sampleRate = sampleRate
	l.cutoff = cutoff
	l.q = q

	return nil
}

// ProcessSample filters one sample.
func (l *Lowpass) ProcessSample(x float64) float64 {
	return l.section.ProcessSample(x)
}

// ProcessBlock filters buf in place.
func (l *Lowpass) ProcessBlock(buf []float64) {
	l.section.ProcessBlock(buf)
}

// Reset clears the filter state.
func (l *Lowpass) Reset() {
	l.section.Reset()
}

// Coefficients returns the current design.
func (l *Lowpass) Coefficients() Coefficients { return l.section.Coefficients }

// Cutoff returns the cutoff frequency in Hz.
func (l *Lowpass) Cutoff() float64 { return l.cutoff }

// Q returns the resonance.
func (l *Lowpass) Q() float64 { return l.q }

// SampleRate returns the sample rate of the current design.
func (l *Lowpass) SampleRate() float64 { return l.sampleRate }

func normalizedW0(freq, sampleRate float64) (float64, bool) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return 0, false
	}

	nyquist := sampleRate / 2
	if freq <= 0 || freq >= nyquist || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return 0, false
	}

	return 2 * math.Pi * freq / sampleRate, true
}

func normalizedQ(q float64) float64 {
	if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		return DefaultQ
	}

	return q
}

func normalize(b0, b1, b2, a0, a1, a2 float64) Coefficients {
	if a0 == 0 || math.IsNaN(a0) || math.IsInf(a0, 0) {
		return Coefficients{}
	}

	return Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}
}

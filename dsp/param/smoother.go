package param

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-esc/dsp/core"
)

// Style selects how a Smoother moves towards its target.
type Style int

const (
	// None jumps to the target immediately.
	None Style = iota
	// Linear ramps with a constant step.
	Linear
	// Logarithmic ramps with a constant ratio. Values must be positive;
	// anything below MinLogValue is clamped.
	Logarithmic
)

// MinLogValue is the floor applied to logarithmically smoothed values.
const MinLogValue = 1e-9

func (s Style) String() string {
	switch s {
	case None:
		return "none"
	case Linear:
		return "linear"
	case Logarithmic:
		return "logarithmic"
	default:
		return fmt.Sprintf("Style(%d)", int(s))
	}
}

// Smoother ramps a parameter value to a new target over a fixed time.
// It is not safe for concurrent use; the audio thread owns it.
type Smoother struct {
	style      Style
	timeMs     float64
	sampleRate float64

	current float64
	target  float64
	step    float64
	steps   int
}

// NewSmoother returns a smoother that reaches each new target after
// timeMs milliseconds.
func NewSmoother(style Style, timeMs float64) (*Smoother, error) {
	if style < None || style > Logarithmic {
		return nil, fmt.Errorf("param smoother: unknown style %d", int(style))
	}
	if timeMs < 0 || !core.IsFinite(timeMs) {
		return nil, fmt.Errorf("param smoother time must be finite and >= 0: %f", timeMs)
	}
	return &Smoother{style: style, timeMs: timeMs}, nil
}

// SetSampleRate sets the rate used to convert the smoothing time to
// samples. A ramp in progress finishes at the old rate.
func (s *Smoother) SetSampleRate(sampleRate float64) error {
	if err := core.ValidateSampleRate(sampleRate); err != nil {
		return fmt.Errorf("param smoother %w", err)
	}
	s.sampleRate = sampleRate
	return nil
}

// Reset jumps to v and stops any ramp.
func (s *Smoother) Reset(v float64) {
	v = s.floor(v)
	s.current = v
	s.target = v
	s.steps = 0
}

// SetTarget starts a ramp from the current value to v.
func (s *Smoother) SetTarget(v float64) {
	v = s.floor(v)
	s.target = v

	n := int(math.Round(s.timeMs / 1000 * s.sampleRate))
	if s.style == None || n <= 0 || s.current == v {
		s.current = v
		s.steps = 0
		return
	}

	s.steps = n
	switch s.style {
	case Logarithmic:
		s.step = math.Exp((math.Log(v) - math.Log(s.current)) / float64(n))
	default:
		s.step = (v - s.current) / float64(n)
	}
}

// Next advances the ramp by one sample and returns the new value.
func (s *Smoother) Next() float64 {
	if s.steps == 0 {
		return s.current
	}

	s.steps--
	if s.steps == 0 {
		s.current = s.target
		return s.current
	}

	if s.style == Logarithmic {
		s.current *= s.step
	} else {
		s.current += s.step
	}
	return s.current
}

// Skip advances the ramp by n samples.
func (s *Smoother) Skip(n int) {
	if n <= 0 || s.steps == 0 {
		return
	}
	if n >= s.steps {
		s.current = s.target
		s.steps = 0
		return
	}

	s.steps -= n
	if s.style == Logarithmic {
		s.current *= math.Pow(s.step, float64(n))
	} else {
		s.current += s.step * float64(n)
	}
}

// Current returns the latest value without advancing.
func (s *Smoother) Current() float64 { return s.current }

// Target returns the value the ramp is heading to.
func (s *Smoother) Target() float64 { return s.target }

// IsSmoothing reports whether a ramp is in progress.
func (s *Smoother) IsSmoothing() bool { return s.steps > 0 }

// Style returns the smoothing style.
func (s *Smoother) Style() Style { return s.style }

func (s *Smoother) floor(v float64) float64 {
	if s.style == Logarithmic && !(v >= MinLogValue) {
		return MinLogValue
	}
	return v
}

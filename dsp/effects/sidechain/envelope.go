package sidechain

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-esc/dsp/core"
	"github.com/cwbudde/algo-esc/dsp/filter/biquad"
)

// Filter smooths the rectified sidechain. Implementations keep state
// between ProcessSample calls; one instance serves one channel.
type Filter interface {
	Configure(sampleRate, cutoffHz, resonance float64) error
	ProcessSample(x float64) float64
	Reset()
}

// FilterFactory creates one unconfigured Filter per channel.
type FilterFactory func() Filter

// DefaultFilterFactory returns an RBJ biquad lowpass.
func DefaultFilterFactory() Filter {
	return &biquad.Lowpass{}
}

// Envelope turns sidechain samples into control values in [-1, 1]:
// SoftClip(filter(|x|) * gain).
type Envelope struct {
	factory   FilterFactory
	cutoff    float64
	resonance float64
	filters   []Filter
}

// NewEnvelope returns an envelope that builds its filters with factory.
// A nil factory selects DefaultFilterFactory.
func NewEnvelope(factory FilterFactory, cutoffHz, resonance float64) *Envelope {
	if factory == nil {
		factory = DefaultFilterFactory
	}
	return &Envelope{
		factory:   factory,
		cutoff:    cutoffHz,
		resonance: resonance,
	}
}

// Init creates or reconfigures one filter per channel for sampleRate.
// Existing filters are kept when the channel count is unchanged, so only
// their coefficients move; their state is cleared.
func (e *Envelope) Init(channels int, sampleRate float64) error {
	if err := core.ValidateChannels(channels); err != nil {
		return fmt.Errorf("sidechain envelope %w", err)
	}
	if err := core.ValidateSampleRate(sampleRate); err != nil {
		return fmt.Errorf("sidechain envelope %w", err)
	}

	filters := e.filters
	if len(filters) != channels {
		filters = make([]Filter, channels)
		for ch := range filters {
			f := e.factory()
			if f == nil {
				return fmt.Errorf("sidechain envelope: filter factory returned nil")
			}
			filters[ch] = f
		}
	}

	for ch, f := range filters {
		if err := f.Configure(sampleRate, e.cutoff, e.resonance); err != nil {
			return fmt.Errorf("sidechain envelope channel %d: %w", ch, err)
		}
		f.Reset()
	}

	e.filters = filters
	return nil
}

// Process returns the control value for one sidechain sample of channel ch.
// Out-of-range channels yield 0.
func (e *Envelope) Process(ch int, x, gain float64) float64 {
	if ch < 0 || ch >= len(e.filters) {
		return 0
	}
	return SoftClip(e.filters[ch].ProcessSample(math.Abs(x)) * gain)
}

// Reset clears every channel's filter state.
func (e *Envelope) Reset() {
	for _, f := range e.filters {
		f.Reset()
	}
}

// Channels returns the number of configured filters.
func (e *Envelope) Channels() int { return len(e.filters) }

// Cutoff returns the filter cutoff in Hz.
func (e *Envelope) Cutoff() float64 { return e.cutoff }

// Resonance returns the filter resonance.
func (e *Envelope) Resonance() float64 { return e.resonance }

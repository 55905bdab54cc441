package sidechain

import (
	"fmt"
	"math"
)

const (
	// DefaultCutoffHz is the sidechain envelope lowpass cutoff.
	DefaultCutoffHz = 5.0
	// DefaultResonance is the sidechain envelope lowpass Q.
	DefaultResonance = 0.72
	// DefaultReductionHoldSeconds is the hold time of the gain-reduction
	// readout.
	DefaultReductionHoldSeconds = 0.5

	maxReductionHoldSeconds = 10.0
)

// Option mutates processor construction parameters.
type Option func(*config) error

type config struct {
	factory       FilterFactory
	cutoffHz      float64
	resonance     float64
	reductionHold float64
}

func defaultConfig() config {
	return config{
		factory:       DefaultFilterFactory,
		cutoffHz:      DefaultCutoffHz,
		resonance:     DefaultResonance,
		reductionHold: DefaultReductionHoldSeconds,
	}
}

// WithFilter replaces the envelope lowpass. The factory is called once per
// channel on Init.
func WithFilter(factory FilterFactory) Option {
	return func(cfg *config) error {
		if factory == nil {
			return fmt.Errorf("sidechain filter factory must not be nil")
		}
		cfg.factory = factory
		return nil
	}
}

// WithCutoff sets the envelope filter cutoff in Hz. It must stay below
// Nyquist of every sample rate passed to Init.
func WithCutoff(hz float64) Option {
	return func(cfg *config) error {
		if hz <= 0 || math.IsNaN(hz) || math.IsInf(hz, 0) {
			return fmt.Errorf("sidechain cutoff must be > 0 and finite: %f", hz)
		}
		cfg.cutoffHz = hz
		return nil
	}
}

// WithResonance sets the envelope filter Q.
func WithResonance(q float64) Option {
	return func(cfg *config) error {
		if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
			return fmt.Errorf("sidechain resonance must be > 0 and finite: %f", q)
		}
		cfg.resonance = q
		return nil
	}
}

// WithReductionHold sets how long the gain-reduction readout holds its
// peak, in seconds.
func WithReductionHold(seconds float64) Option {
	return func(cfg *config) error {
		if seconds < 0 || seconds > maxReductionHoldSeconds || math.IsNaN(seconds) {
			return fmt.Errorf("sidechain reduction hold must be in [0, %f]: %f",
				maxReductionHoldSeconds, seconds)
		}
		cfg.reductionHold = seconds
		return nil
	}
}

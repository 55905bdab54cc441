// Package peak tracks the running maximum of a signal over a sliding window
// of recent samples.
package peak

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-esc/dsp/buffer"
	"github.com/cwbudde/algo-esc/dsp/core"
)

// Tracker reports, per channel, the largest input seen within the current
// sample and the HoldSamples samples before it.
//
// Each channel keeps a monotonic deque of candidate maxima (non-increasing
// from front to back) and a FIFO of the raw inputs still inside the window.
// Both live in rings sized by Init, so Process is O(1) amortized and never
// allocates.
type Tracker struct {
	sampleRate  float64
	holdSeconds float64
	holdSamples int

	candidates []*buffer.Ring
	window     []*buffer.Ring
}

// New returns an empty Tracker. Call Init before processing.
func New() *Tracker {
	return &Tracker{}
}

// Init sizes the tracker for floor(sampleRate*holdSeconds) samples of hold
// and clears all history.
func (t *Tracker) Init(channels int, sampleRate, holdSeconds float64) error {
	if err := core.ValidateChannels(channels); err != nil {
		return fmt.Errorf("peak tracker %w", err)
	}
	if err := core.ValidateSampleRate(sampleRate); err != nil {
		return fmt.Errorf("peak tracker %w", err)
	}
	if holdSeconds < 0 || math.IsNaN(holdSeconds) || math.IsInf(holdSeconds, 0) {
		return fmt.Errorf("peak tracker hold must be finite and >= 0: %f", holdSeconds)
	}

	hold := int(sampleRate * holdSeconds)
	// One extra slot for the value pushed before eviction.
	capacity := hold + 2

	t.candidates = make([]*buffer.Ring, channels)
	t.window = make([]*buffer.Ring, channels)
	for ch := range channels {
		t.candidates[ch] = buffer.NewRing(capacity)
		t.window[ch] = buffer.NewRing(capacity)
	}

	t.sampleRate = sampleRate
	t.holdSeconds = holdSeconds
	t.holdSamples = hold

	return nil
}

// Process feeds x into channel ch and returns the maximum of the window
// ending at x. Out-of-range channels return 0.
func (t *Tracker) Process(ch int, x float64) float64 {
	if ch < 0 || ch >= len(t.candidates) {
		return 0
	}

	cand := t.candidates[ch]
	win := t.window[ch]

	for {
		back, ok := cand.Back()
		if !ok || back >= x {
			break
		}
		cand.PopBack()
	}
	cand.PushBack(x)
	win.PushBack(x)

	if win.Len() > t.holdSamples+1 {
		old, _ := win.PopFront()
		if front, ok := cand.Front(); ok && front == old {
			cand.PopFront()
		}
	}

	front, _ := cand.Front()
	return front
}

// Current returns the maximum of the present window of channel ch without
// consuming input. It is 0 before the first Process call.
func (t *Tracker) Current(ch int) float64 {
	if ch < 0 || ch >= len(t.candidates) {
		return 0
	}
	v, _ := t.candidates[ch].Front()
	return v
}

// Reset empties every channel's history.
func (t *Tracker) Reset() {
	for ch := range t.candidates {
		t.candidates[ch].Clear()
		t.window[ch].Clear()
	}
}

// Channels returns the number of initialized channels.
func (t *Tracker) Channels() int { return len(t.candidates) }

// HoldSamples returns the number of past samples kept in the window.
func (t *Tracker) HoldSamples() int { return t.holdSamples }

// HoldSeconds returns the hold time passed to Init.
func (t *Tracker) HoldSeconds() float64 { return t.holdSeconds }

// SampleRate returns the sample rate passed to Init.
func (t *Tracker) SampleRate() float64 { return t.sampleRate }

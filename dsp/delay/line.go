// Package delay provides a multichannel circular delay line whose delay time
// may change on every sample.
package delay

import (
	"fmt"

	"github.com/cwbudde/algo-esc/dsp/core"
)

// CapacitySeconds is the amount of audio each channel buffer can hold.
const CapacitySeconds = 0.1

// Line is a per-channel circular delay line with one shared read/write
// cursor per channel. Each call to Process writes the input d samples ahead
// of the cursor and reads at the cursor, so a steady delay of d samples
// returns the input from d calls ago.
//
// A delay whose sample count reaches the buffer length wraps around and
// aliases to d mod Len(). Callers must keep delays below MaxDelayMs.
type Line struct {
	sampleRate float64
	buffers    [][]float64
	cursors    []int
}

// New returns a zero-length Line. Call Init before processing.
func New() *Line {
	return &Line{}
}

// Init (re)allocates one zeroed buffer of CapacitySeconds per channel and
// rewinds all cursors. It must not run concurrently with Process.
func (l *Line) Init(channels int, sampleRate float64) error {
	if err := core.ValidateChannels(channels); err != nil {
		return fmt.Errorf("delay line %w", err)
	}
	if err := core.ValidateSampleRate(sampleRate); err != nil {
		return fmt.Errorf("delay line %w", err)
	}

	size := int(sampleRate * CapacitySeconds)
	if size < 1 {
		return fmt.Errorf("delay line capacity must be >= 1 sample at %f Hz", sampleRate)
	}

	l.buffers = core.NewPlanar(channels, size)
	l.cursors = make([]int, channels)
	l.sampleRate = sampleRate

	return nil
}

// Reset zeroes all buffers and rewinds the cursors without reallocating.
func (l *Line) Reset() {
	for ch, buf := range l.buffers {
		core.Zero(buf)
		l.cursors[ch] = 0
	}
}

// Process runs one sample of channel ch through the line with a delay of
// delayMs milliseconds, rounded to whole samples.
func (l *Line) Process(ch int, input, delayMs float64) float64 {
	return l.ProcessSamples(ch, input, core.MsToSamples(delayMs, l.sampleRate))
}

// ProcessSamples runs one sample of channel ch through the line with an
// integer delay. Negative delays are treated as zero. Out-of-range channels
// return 0.
func (l *Line) ProcessSamples(ch int, input float64, delay int) float64 {
	if ch < 0 || ch >= len(l.buffers) {
		return 0
	}

	buf := l.buffers[ch]
	size := len(buf)
	if delay < 0 {
		delay = 0
	}

	pos := l.cursors[ch]
	buf[(pos+delay%size)%size] = input
	out := buf[pos]

	pos++
	if pos == size {
		pos = 0
	}
	l.cursors[ch] = pos

	return out
}

// Len returns the per-channel buffer length in samples.
func (l *Line) Len() int {
	if len(l.buffers) == 0 {
		return 0
	}
	return len(l.buffers[0])
}

// Channels returns the number of initialized channels.
func (l *Line) Channels() int { return len(l.buffers) }

// SampleRate returns the sample rate passed to Init.
func (l *Line) SampleRate() float64 { return l.sampleRate }

// MaxDelayMs returns the longest delay that does not alias.
func (l *Line) MaxDelayMs() float64 {
	if l.sampleRate <= 0 || l.Len() == 0 {
		return 0
	}
	return float64(l.Len()-1) / l.sampleRate * 1000
}

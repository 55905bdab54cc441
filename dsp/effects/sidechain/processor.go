package sidechain

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-esc/dsp/core"
	"github.com/cwbudde/algo-esc/dsp/delay"
	"github.com/cwbudde/algo-esc/dsp/peak"
)

// Processor ducks a main signal by a sidechain envelope and delays the
// main signal by a lookahead time.
//
// ProcessBlock, Init and Reset must be called from a single goroutine.
// Meter, Latency, SampleRate, Reduction and SetEditorOpen are safe to call
// concurrently with processing.
type Processor struct {
	cfg config

	channels    int
	decayWeight float64

	delay     *delay.Line
	envelope  *Envelope
	reduction *peak.Tracker

	sampleRate    atomic.Uint64
	latency       atomic.Int64
	editorOpen    atomic.Bool
	reductionPeak atomic.Uint64
	meter         Meter
}

// New creates an uninitialized processor. Call Init before processing.
func New(opts ...Option) (*Processor, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	return &Processor{
		cfg:       cfg,
		delay:     delay.New(),
		envelope:  NewEnvelope(cfg.factory, cfg.cutoffHz, cfg.resonance),
		reduction: peak.New(),
	}, nil
}

// Init sizes all state for channels main/sidechain pairs at sampleRate and
// clears the meter and latency. It must not run during ProcessBlock.
// After an error the processor must be initialized again before use.
func (p *Processor) Init(channels int, sampleRate float64) error {
	if err := core.ValidateChannels(channels); err != nil {
		return fmt.Errorf("sidechain processor %w", err)
	}
	if err := core.ValidateSampleRate(sampleRate); err != nil {
		return fmt.Errorf("sidechain processor %w", err)
	}

	if err := p.envelope.Init(channels, sampleRate); err != nil {
		return fmt.Errorf("sidechain processor: %w", err)
	}
	if err := p.delay.Init(channels, sampleRate); err != nil {
		return fmt.Errorf("sidechain processor: %w", err)
	}
	if err := p.reduction.Init(1, sampleRate, p.cfg.reductionHold); err != nil {
		return fmt.Errorf("sidechain processor: %w", err)
	}

	p.channels = channels
	p.decayWeight = MeterDecayWeight(sampleRate, MeterDecayMs)
	p.sampleRate.Store(math.Float64bits(sampleRate))
	p.latency.Store(0)
	p.reductionPeak.Store(0)
	p.meter.Store(0)

	return nil
}

// Reset clears delay, filter and meter state without reallocating.
func (p *Processor) Reset() {
	p.delay.Reset()
	p.envelope.Reset()
	p.reduction.Reset()
	p.reductionPeak.Store(0)
	p.meter.Store(0)
}

// ProcessBlock processes one block in place and returns the latency in
// samples that applies to it.
//
// main and side are planar: one slice per channel. main[ch] is overwritten
// with the ducked, delayed signal and side[ch] with the control signal.
// Sidechain channels or frames that are missing read as silence; main
// channels beyond the initialized count are left untouched. The frame
// count is the shortest processed main channel.
//
// delayMs is read once per block and gain once per frame. A nil delayMs
// means no lookahead; a nil gain means unity.
func (p *Processor) ProcessBlock(main, side [][]float64, delayMs, gain Smoothed) int {
	channels := min(p.channels, len(main))
	if channels == 0 {
		return int(p.latency.Load())
	}

	sr := p.SampleRate()
	ms := 0.0
	if delayMs != nil {
		ms = delayMs.Next()
	}
	delaySamples := core.MsToSamples(ms, sr)
	p.latency.Store(int64(delaySamples))

	frames := core.Frames(main[:channels])
	metering := p.editorOpen.Load()

	for i := range frames {
		g := 1.0
		if gain != nil {
			g = gain.Next()
		}

		amplitude := 0.0
		control := 0.0
		for ch := range channels {
			var sc float64
			var sideCh []float64
			if ch < len(side) && i < len(side[ch]) {
				sideCh = side[ch]
				sc = sideCh[i]
			}

			c := p.envelope.Process(ch, sc, g)
			if sideCh != nil {
				sideCh[i] = c
			}

			delayed := p.delay.ProcessSamples(ch, main[ch][i], delaySamples)
			out := delayed - delayed*c
			main[ch][i] = out

			amplitude += math.Abs(out)
			control = max(control, c)
		}

		if metering {
			p.meter.Update(amplitude/float64(channels), p.decayWeight)
			p.reductionPeak.Store(math.Float64bits(p.reduction.Process(0, control)))
		}
	}

	return delaySamples
}

// Latency returns the latency in samples reported by the last block.
func (p *Processor) Latency() int { return int(p.latency.Load()) }

// LatencyFor returns the latency a block with the given lookahead would
// report at the current sample rate.
func (p *Processor) LatencyFor(delayMs float64) int {
	return core.MsToSamples(delayMs, p.SampleRate())
}

// SampleRate returns the sample rate passed to Init, or 0.
func (p *Processor) SampleRate() float64 {
	return math.Float64frombits(p.sampleRate.Load())
}

// Channels returns the initialized channel count.
func (p *Processor) Channels() int { return p.channels }

// MaxDelayMs returns the longest lookahead the delay line holds without
// aliasing.
func (p *Processor) MaxDelayMs() float64 { return p.delay.MaxDelayMs() }

// Meter returns the output level meter. It only moves while the editor is
// open.
func (p *Processor) Meter() *Meter { return &p.meter }

// DecayWeight returns the per-frame meter decay weight.
func (p *Processor) DecayWeight() float64 { return p.decayWeight }

// SetEditorOpen enables or disables metering.
func (p *Processor) SetEditorOpen(open bool) { p.editorOpen.Store(open) }

// EditorOpen reports whether metering is enabled.
func (p *Processor) EditorOpen() bool { return p.editorOpen.Load() }

// Reduction returns the held peak control value in [0, 1]: the largest
// fraction by which the main signal was attenuated within the hold time.
func (p *Processor) Reduction() float64 {
	return core.Clamp(math.Float64frombits(p.reductionPeak.Load()), 0, 1)
}

// ReductionDB returns Reduction as a gain change in dB (<= 0).
func (p *Processor) ReductionDB() float64 {
	return gainToDB(1 - p.Reduction())
}

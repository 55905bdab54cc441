// Package host drives a sidechain processor the way a plugin host would:
// it splits audio into blocks, feeds smoothed parameters, and reports
// latency. Offline rendering and real-time streaming share one Driver.
package host

import (
	"context"
	"fmt"
	"io"
	"math"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-esc/dsp/core"
	"github.com/cwbudde/algo-esc/dsp/effects/sidechain"
	"github.com/cwbudde/algo-esc/dsp/param"
)

// Driver owns a Processor and its parameter smoothers. Process must be
// called from one goroutine; the Set* methods may be called from any.
type Driver struct {
	log  *log.Logger
	cfg  core.ProcessorConfig
	proc *sidechain.Processor

	gain      *param.Smoother
	lookahead *param.Smoother

	gainDB      atomic.Uint64
	lookaheadMs atomic.Uint64
	trim        atomic.Uint64

	// Reused per-block channel headers.
	mainViews [][]float64
	sideViews [][]float64
}

// NewDriver initializes a processor for cfg. A nil logger discards output.
func NewDriver(cfg core.ProcessorConfig, logger *log.Logger, opts ...sidechain.Option) (*Driver, error) {
	if cfg.BlockSize <= 0 {
		return nil, fmt.Errorf("host driver block size must be > 0: %d", cfg.BlockSize)
	}

	proc, err := sidechain.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("host driver: %w", err)
	}
	if err := proc.Init(cfg.Channels, cfg.SampleRate); err != nil {
		return nil, fmt.Errorf("host driver: %w", err)
	}

	gain, err := param.NewSmoother(param.Logarithmic, sidechain.GainSmoothingMs)
	if err != nil {
		return nil, err
	}
	lookahead, err := param.NewSmoother(param.None, 0)
	if err != nil {
		return nil, err
	}
	for _, s := range []*param.Smoother{gain, lookahead} {
		if err := s.SetSampleRate(cfg.SampleRate); err != nil {
			return nil, fmt.Errorf("host driver: %w", err)
		}
	}
	gain.Reset(core.DBToLinear(sidechain.GainRange.Default))
	lookahead.Reset(sidechain.LookaheadRange.Default)

	if logger == nil {
		logger = log.New(io.Discard)
	}

	d := &Driver{
		log:       logger.With("component", "host"),
		cfg:       cfg,
		proc:      proc,
		gain:      gain,
		lookahead: lookahead,
		mainViews: make([][]float64, cfg.Channels),
		sideViews: make([][]float64, cfg.Channels),
	}
	d.gainDB.Store(math.Float64bits(sidechain.GainRange.Default))
	d.lookaheadMs.Store(math.Float64bits(sidechain.LookaheadRange.Default))
	d.trim.Store(math.Float64bits(1))

	d.log.Debug("driver ready",
		"sample_rate", cfg.SampleRate,
		"channels", cfg.Channels,
		"block_size", cfg.BlockSize,
		"max_lookahead_ms", proc.MaxDelayMs())

	return d, nil
}

// SetGainDB sets the sidechain gain target, clamped to sidechain.GainRange.
func (d *Driver) SetGainDB(db float64) {
	d.gainDB.Store(math.Float64bits(sidechain.GainRange.Clamp(db)))
}

// GainDB returns the gain target in dB.
func (d *Driver) GainDB() float64 { return math.Float64frombits(d.gainDB.Load()) }

// SetLookaheadMs sets the lookahead, snapped to sidechain.LookaheadRange.
func (d *Driver) SetLookaheadMs(ms float64) {
	d.lookaheadMs.Store(math.Float64bits(sidechain.LookaheadRange.Snap(ms)))
}

// LookaheadMs returns the lookahead target in milliseconds.
func (d *Driver) LookaheadMs() float64 { return math.Float64frombits(d.lookaheadMs.Load()) }

// SetInputTrimDB scales the main input before processing.
func (d *Driver) SetInputTrimDB(db float64) {
	d.trim.Store(math.Float64bits(core.DBToLinear(db)))
}

// Processor returns the driven processor for metering.
func (d *Driver) Processor() *sidechain.Processor { return d.proc }

// Config returns the processing configuration.
func (d *Driver) Config() core.ProcessorConfig { return d.cfg }

// Process runs main and side through the processor in place, in blocks of
// at most BlockSize frames. It returns the latency of the last block.
// It does not allocate.
func (d *Driver) Process(main, side [][]float64) int {
	frames := core.Frames(main)
	latency := d.proc.Latency()
	for start := 0; start < frames; start += d.cfg.BlockSize {
		latency = d.processBlock(main, side, start, min(start+d.cfg.BlockSize, frames))
	}
	return latency
}

func (d *Driver) processBlock(main, side [][]float64, start, end int) int {
	d.updateTargets()

	trim := math.Float64frombits(d.trim.Load())
	for ch := range d.mainViews {
		d.mainViews[ch] = nil
		if ch < len(main) {
			d.mainViews[ch] = main[ch][start:end]
			if trim != 1 {
				vecmath.ScaleBlockInPlace(d.mainViews[ch], trim)
			}
		}
		d.sideViews[ch] = nil
		if ch < len(side) && start < len(side[ch]) {
			d.sideViews[ch] = side[ch][start:min(end, len(side[ch]))]
		}
	}

	return d.proc.ProcessBlock(d.mainViews[:min(len(main), len(d.mainViews))], d.sideViews, d.lookahead, d.gain)
}

func (d *Driver) updateTargets() {
	gain := core.DBToLinear(d.GainDB())
	if gain != d.gain.Target() {
		d.gain.SetTarget(gain)
	}
	if ms := d.LookaheadMs(); ms != d.lookahead.Target() {
		d.lookahead.SetTarget(ms)
	}
}

// Stats summarizes an offline render.
type Stats struct {
	Frames     int
	Blocks     int
	Latency    int
	InputPeak  float64
	OutputPeak float64
	Elapsed    time.Duration
}

// RealtimeFactor returns how many times faster than real time the render
// ran.
func (s Stats) RealtimeFactor(sampleRate float64) float64 {
	if s.Elapsed <= 0 || sampleRate <= 0 {
		return 0
	}
	return float64(s.Frames) / sampleRate / s.Elapsed.Seconds()
}

// Render processes whole clips in place and collects statistics. It checks
// ctx between blocks and logs latency changes.
func (d *Driver) Render(ctx context.Context, main, side [][]float64) (Stats, error) {
	begin := time.Now()
	frames := core.Frames(main)
	stats := Stats{Frames: frames, Latency: d.proc.Latency()}

	for _, ch := range main {
		stats.InputPeak = max(stats.InputPeak, vecmath.MaxAbs(ch[:frames]))
	}

	for start := 0; start < frames; start += d.cfg.BlockSize {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("host render: %w", err)
		}

		latency := d.processBlock(main, side, start, min(start+d.cfg.BlockSize, frames))
		if latency != stats.Latency {
			d.log.Debug("latency changed", "from", stats.Latency, "to", latency, "frame", start)
			stats.Latency = latency
		}
		stats.Blocks++
	}

	for _, ch := range main {
		stats.OutputPeak = max(stats.OutputPeak, vecmath.MaxAbs(ch[:frames]))
	}
	stats.Elapsed = time.Since(begin)

	d.log.Info("render done",
		"frames", stats.Frames,
		"blocks", stats.Blocks,
		"latency", stats.Latency,
		"input_peak_db", core.LinearToDB(stats.InputPeak),
		"output_peak_db", core.LinearToDB(stats.OutputPeak))

	return stats, nil
}

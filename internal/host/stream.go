package host

import (
	"encoding/binary"
	"io"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-esc/dsp/core"
)

// BytesPerSample is the size of one float32 little-endian sample.
const BytesPerSample = 4

// Stream renders a source clip through a Driver on demand and serves it as
// interleaved float32 little-endian PCM, the layout oto consumes. The
// source slices are never modified.
type Stream struct {
	driver   *Driver
	main     [][]float64
	side     [][]float64
	frames   int
	channels int
	loop     bool

	scratchMain [][]float64
	scratchSide [][]float64
	mainViews   [][]float64
	sideViews   [][]float64

	pos atomic.Int64
}

// NewStream prepares a stream over main and side. With loop set the
// source repeats forever.
func NewStream(d *Driver, main, side [][]float64, loop bool) *Stream {
	cfg := d.Config()
	// Four blocks per read keeps the callback count low.
	capacity := cfg.BlockSize * 4

	return &Stream{
		driver:      d,
		main:        main,
		side:        side,
		frames:      core.Frames(main),
		channels:    cfg.Channels,
		loop:        loop,
		scratchMain: core.NewPlanar(cfg.Channels, capacity),
		scratchSide: core.NewPlanar(cfg.Channels, capacity),
		mainViews:   make([][]float64, cfg.Channels),
		sideViews:   make([][]float64, cfg.Channels),
	}
}

// Read fills p with whole frames. It returns io.EOF once a non-looping
// source is exhausted.
func (s *Stream) Read(p []byte) (int, error) {
	frameBytes := s.channels * BytesPerSample
	pos := int(s.pos.Load())

	if pos >= s.frames {
		if !s.loop || s.frames == 0 {
			return 0, io.EOF
		}
		pos = 0
	}

	n := min(len(p)/frameBytes, len(s.scratchMain[0]), s.frames-pos)
	if n == 0 {
		return 0, io.ErrShortBuffer
	}

	for ch := range s.channels {
		s.mainViews[ch] = s.scratchMain[ch][:n]
		s.sideViews[ch] = s.scratchSide[ch][:n]
		fill(s.mainViews[ch], s.main, ch, pos)
		fill(s.sideViews[ch], s.side, ch, pos)
	}

	s.driver.Process(s.mainViews, s.sideViews)

	off := 0
	for i := range n {
		for ch := range s.channels {
			binary.LittleEndian.PutUint32(p[off:], math.Float32bits(float32(s.mainViews[ch][i])))
			off += BytesPerSample
		}
	}

	s.pos.Store(int64(pos + n))
	return off, nil
}

// Position returns the next source frame to be rendered.
func (s *Stream) Position() int { return int(s.pos.Load()) }

// Frames returns the source length.
func (s *Stream) Frames() int { return s.frames }

// Progress returns the rendered fraction of the source in [0, 1].
func (s *Stream) Progress() float64 {
	if s.frames == 0 {
		return 1
	}
	return math.Min(1, float64(s.Position())/float64(s.frames))
}

// Channels returns the number of interleaved output channels.
func (s *Stream) Channels() int { return s.channels }

// fill copies src[ch][pos:] into dst, padding with silence.
func fill(dst []float64, src [][]float64, ch, pos int) {
	if ch >= len(src) || pos >= len(src[ch]) {
		core.Zero(dst)
		return
	}
	n := copy(dst, src[ch][pos:])
	core.Zero(dst[n:])
}

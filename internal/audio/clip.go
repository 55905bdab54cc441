// Package audio reads and writes WAV files as planar float64 clips.
package audio

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
)

// MaxChannels is the widest layout WAV I/O supports.
const MaxChannels = 2

// ErrUnsupportedChannels is returned for clips wider than MaxChannels.
var ErrUnsupportedChannels = errors.New("audio: only mono and stereo clips are supported")

// Clip is decoded audio in planar layout: Data[ch][frame].
type Clip struct {
	SampleRate int
	Data       [][]float64
}

// NewClip allocates a silent clip.
func NewClip(sampleRate, channels, frames int) (*Clip, error) {
	if channels < 1 || channels > MaxChannels {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedChannels, channels)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("audio: sample rate must be > 0: %d", sampleRate)
	}
	data := make([][]float64, channels)
	for ch := range data {
		data[ch] = make([]float64, frames)
	}
	return &Clip{SampleRate: sampleRate, Data: data}, nil
}

// Channels returns the channel count.
func (c *Clip) Channels() int { return len(c.Data) }

// Frames returns the length of the shortest channel.
func (c *Clip) Frames() int {
	if len(c.Data) == 0 {
		return 0
	}
	n := len(c.Data[0])
	for _, ch := range c.Data[1:] {
		n = min(n, len(ch))
	}
	return n
}

// Duration returns the clip length in seconds.
func (c *Clip) Duration() float64 {
	if c.SampleRate <= 0 {
		return 0
	}
	return float64(c.Frames()) / float64(c.SampleRate)
}

// Decode reads a whole WAV stream.
func Decode(r io.Reader) (*Clip, error) {
	s, format, err := wav.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("audio: decode wav: %w", err)
	}
	defer s.Close()

	channels := format.NumChannels
	if channels < 1 || channels > MaxChannels {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedChannels, channels)
	}

	clip, err := NewClip(int(format.SampleRate), channels, 0)
	if err != nil {
		return nil, err
	}
	if n := s.Len(); n > 0 {
		for ch := range clip.Data {
			clip.Data[ch] = make([]float64, 0, n)
		}
	}

	buf := make([][2]float64, 4096)
	for {
		n, ok := s.Stream(buf)
		for _, frame := range buf[:n] {
			for ch := range clip.Data {
				clip.Data[ch] = append(clip.Data[ch], frame[ch])
			}
		}
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("audio: decode wav: %w", err)
	}

	return clip, nil
}

// ReadFile decodes the WAV file at path.
func ReadFile(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Decode(f)
}

// Encode writes c as PCM WAV with bitDepth 8, 16 or 24.
func Encode(w io.WriteSeeker, c *Clip, bitDepth int) error {
	if c.Channels() < 1 || c.Channels() > MaxChannels {
		return fmt.Errorf("%w: %d", ErrUnsupportedChannels, c.Channels())
	}
	if bitDepth != 8 && bitDepth != 16 && bitDepth != 24 {
		return fmt.Errorf("audio: unsupported bit depth %d", bitDepth)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("audio: sample rate must be > 0: %d", c.SampleRate)
	}

	format := beep.Format{
		SampleRate:  beep.SampleRate(c.SampleRate),
		NumChannels: c.Channels(),
		Precision:   bitDepth / 8,
	}
	if err := wav.Encode(w, c.Streamer(), format); err != nil {
		return fmt.Errorf("audio: encode wav: %w", err)
	}
	return nil
}

// WriteFile encodes c to a new WAV file at path.
func WriteFile(path string, c *Clip, bitDepth int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	return Encode(f, c, bitDepth)
}

// Streamer plays the clip once as a beep stream. Mono clips are sent to
// both sides; samples are clamped to [-1, 1].
func (c *Clip) Streamer() beep.Streamer {
	pos := 0
	frames := c.Frames()
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= frames {
			return 0, false
		}
		n := min(len(samples), frames-pos)
		for i := range n {
			l := clamp(c.Data[0][pos+i])
			r := l
			if len(c.Data) > 1 {
				r = clamp(c.Data[1][pos+i])
			}
			samples[i] = [2]float64{l, r}
		}
		pos += n
		return n, true
	})
}

func clamp(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	case v != v:
		return 0
	default:
		return v
	}
}

package host

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/cwbudde/algo-esc/dsp/core"
	"github.com/cwbudde/algo-esc/internal/testutil"
)

func decodeFloat32LE(p []byte) []float32 {
	out := make([]float32, len(p)/BytesPerSample)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(p[i*BytesPerSample:]))
	}
	return out
}

func TestStreamMatchesOfflineRender(t *testing.T) {
	cfg := core.ApplyProcessorOptions(core.WithChannels(2), core.WithBlockSize(64))

	main := [][]float64{
		testutil.DeterministicNoise(1, 0.5, 1000),
		testutil.DeterministicNoise(2, 0.5, 1000),
	}
	side := [][]float64{
		testutil.DeterministicSine(3, 48000, 1, 1000),
		testutil.DeterministicSine(3, 48000, 1, 1000),
	}
	source := [][]float64{append([]float64(nil), main[0]...), append([]float64(nil), main[1]...)}

	offline, err := NewDriver(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	offline.SetLookaheadMs(2)
	wantMain := [][]float64{append([]float64(nil), main[0]...), append([]float64(nil), main[1]...)}
	wantSide := [][]float64{append([]float64(nil), side[0]...), append([]float64(nil), side[1]...)}
	offline.Process(wantMain, wantSide)

	live, err := NewDriver(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	live.SetLookaheadMs(2)
	s := NewStream(live, main, side, false)

	var pcm []byte
	buf := make([]byte, 333*2*BytesPerSample+3)
	for {
		n, err := s.Read(buf)
		pcm = append(pcm, buf[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
	}

	got := decodeFloat32LE(pcm)
	if len(got) != 2000 {
		t.Fatalf("decoded %d samples, want 2000", len(got))
	}
	for i := range 1000 {
		for ch := range 2 {
			want := float32(wantMain[ch][i])
			if got[i*2+ch] != want {
				t.Fatalf("frame %d ch %d = %v, want %v", i, ch, got[i*2+ch], want)
			}
		}
	}

	testutil.RequireSliceNearlyEqual(t, main[0], source[0], 0)
	testutil.RequireSliceNearlyEqual(t, main[1], source[1], 0)
	if s.Progress() != 1 || s.Position() != 1000 || s.Frames() != 1000 {
		t.Fatalf("Progress/Position/Frames = %v/%d/%d", s.Progress(), s.Position(), s.Frames())
	}
}

func TestStreamLoopsAndPadsChannels(t *testing.T) {
	d := newTestDriver(t, core.WithChannels(2), core.WithBlockSize(16))
	// Mono source into a stereo driver: the second channel reads silence.
	s := NewStream(d, [][]float64{testutil.DC(0.25, 10)}, nil, true)

	buf := make([]byte, 8*2*BytesPerSample)
	total := 0
	for range 5 {
		n, err := s.Read(buf)
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		samples := decodeFloat32LE(buf[:n])
		for i := 0; i < len(samples); i += 2 {
			if samples[i] != 0.25 || samples[i+1] != 0 {
				t.Fatalf("frame = %v/%v, want 0.25/0", samples[i], samples[i+1])
			}
		}
		total += n / (2 * BytesPerSample)
	}
	// Reads stop at the loop point: 8, 2, 8, 2, 8.
	if total != 28 {
		t.Fatalf("looped %d frames, want 28", total)
	}
	if s.Channels() != 2 {
		t.Fatalf("Channels() = %d", s.Channels())
	}
}

func TestStreamShortBufferAndEmpty(t *testing.T) {
	d := newTestDriver(t)
	s := NewStream(d, core.NewPlanar(2, 10), nil, false)
	if _, err := s.Read(make([]byte, 3)); !errors.Is(err, io.ErrShortBuffer) {
		t.Fatalf("Read() error = %v, want io.ErrShortBuffer", err)
	}

	empty := NewStream(d, nil, nil, true)
	if _, err := empty.Read(make([]byte, 64)); !errors.Is(err, io.EOF) {
		t.Fatalf("empty Read() error = %v, want io.EOF", err)
	}
	if empty.Progress() != 1 {
		t.Fatalf("empty Progress() = %v", empty.Progress())
	}
}

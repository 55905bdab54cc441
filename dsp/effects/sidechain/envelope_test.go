package sidechain

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-esc/dsp/core"
	"github.com/cwbudde/algo-esc/dsp/filter/biquad"
)

// passFilter is an identity filter that records how it was configured.
type passFilter struct {
	sampleRate float64
	cutoff     float64
	resonance  float64
	resets     int
	err        error
}

func (f *passFilter) Configure(sampleRate, cutoff, resonance float64) error {
	if f.err != nil {
		return f.err
	}
	f.sampleRate, f.cutoff, f.resonance = sampleRate, cutoff, resonance
	return nil
}

func (f *passFilter) ProcessSample(x float64) float64 { return x }

func (f *passFilter) Reset() { f.resets++ }

func passFactory(created *[]*passFilter) FilterFactory {
	return func() Filter {
		f := &passFilter{}
		if created != nil {
			*created = append(*created, f)
		}
		return f
	}
}

func TestEnvelopeInit(t *testing.T) {
	var created []*passFilter
	e := NewEnvelope(passFactory(&created), 5, 0.72)

	if err := e.Init(2, 48000); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if len(created) != 2 || e.Channels() != 2 {
		t.Fatalf("created %d filters, Channels() = %d", len(created), e.Channels())
	}
	for _, f := range created {
		if f.sampleRate != 48000 || f.cutoff != 5 || f.resonance != 0.72 {
			t.Fatalf("filter configured with %+v", *f)
		}
	}

	// Same channel count keeps the filters and only reconfigures them.
	if err := e.Init(2, 96000); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if len(created) != 2 || created[0].sampleRate != 96000 {
		t.Fatalf("re-init created %d filters, rate %v", len(created), created[0].sampleRate)
	}
}

func TestEnvelopeInitErrors(t *testing.T) {
	if err := NewEnvelope(nil, 5, 0.72).Init(0, 48000); !errors.Is(err, core.ErrInvalidChannels) {
		t.Fatalf("zero channels: %v", err)
	}
	if err := NewEnvelope(nil, 5, 0.72).Init(1, math.NaN()); !errors.Is(err, core.ErrInvalidSampleRate) {
		t.Fatalf("NaN rate: %v", err)
	}
	// 5 Hz is above Nyquist at 8 Hz.
	if err := NewEnvelope(nil, 5, 0.72).Init(1, 8); !errors.Is(err, biquad.ErrInvalidCutoff) {
		t.Fatalf("cutoff above Nyquist: %v", err)
	}

	nilFactory := func() Filter { return nil }
	if err := NewEnvelope(nilFactory, 5, 0.72).Init(1, 48000); err == nil {
		t.Fatal("nil filter should fail")
	}

	boom := errors.New("boom")
	failing := func() Filter { return &passFilter{err: boom} }
	if err := NewEnvelope(failing, 5, 0.72).Init(1, 48000); !errors.Is(err, boom) {
		t.Fatalf("filter error not wrapped: %v", err)
	}
}

func TestEnvelopeProcess(t *testing.T) {
	e := NewEnvelope(passFactory(nil), 5, 0.72)
	if err := e.Init(2, 48000); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	tests := []struct {
		name    string
		ch      int
		x, gain float64
		want    float64
	}{
		{"rectifies", 0, -0.5, 1, 0.6875},
		{"positive", 1, 0.5, 1, 0.6875},
		{"gain scales", 0, 0.25, 2, 0.6875},
		{"clips", 0, 0.9, 4, 1},
		{"zero gain", 0, 1, 0, 0},
		{"negative gain", 0, 0.5, -1, -0.6875},
		{"out of range", 2, 1, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Process(tt.ch, tt.x, tt.gain); math.Abs(got-tt.want) > 1e-12 {
				t.Fatalf("Process() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnvelopeDefaultFilterSettles(t *testing.T) {
	e := NewEnvelope(nil, DefaultCutoffHz, DefaultResonance)
	if err := e.Init(1, 48000); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	var c float64
	for range 48000 {
		c = e.Process(0, -0.5, 1)
	}
	if math.Abs(c-0.6875) > 1e-6 {
		t.Fatalf("settled control = %v, want 0.6875", c)
	}

	e.Reset()
	if got := e.Process(0, 0, 1); got != 0 {
		t.Fatalf("control after Reset = %v, want 0", got)
	}
}

func TestEnvelopeChannelsIndependent(t *testing.T) {
	e := NewEnvelope(nil, DefaultCutoffHz, DefaultResonance)
	if err := e.Init(2, 48000); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	for range 1000 {
		e.Process(0, 1, 1)
	}
	if got := e.Process(1, 0, 1); got != 0 {
		t.Fatalf("silent channel picked up %v", got)
	}
}

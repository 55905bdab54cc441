package biquad

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/cwbudde/algo-esc/dsp/core"
)

// response evaluates H(e^jw) of c at freqHz.
func response(c Coefficients, freqHz, sampleRate float64) complex128 {
	w := 2 * math.Pi * freqHz / sampleRate
	z1 := cmplx.Exp(complex(0, -w))
	z2 := cmplx.Exp(complex(0, -2*w))

	num := complex(c.B0, 0) + complex(c.B1, 0)*z1 + complex(c.B2, 0)*z2
	den := 1 + complex(c.A1, 0)*z1 + complex(c.A2, 0)*z2
	return num / den
}

func TestLowpassCoefficientsResponse(t *testing.T) {
	tests := []struct {
		name       string
		freq, q    float64
		sampleRate float64
	}{
		{"envelope 5Hz", 5, 0.72, 48000},
		{"envelope 5Hz at 44.1k", 5, 0.72, 44100},
		{"butterworth 1k", 1000, DefaultQ, 48000},
		{"resonant 2k", 2000, 4, 96000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := LowpassCoefficients(tt.freq, tt.q, tt.sampleRate)
			if !c.Stable() {
				t.Fatalf("unstable design: %+v", c)
			}
			if got := c.DCGain(); !almostEqual(got, 1, 1e-6) {
				t.Fatalf("DC gain = %v, want 1", got)
			}
			// The RBJ lowpass has magnitude Q at its cutoff.
			if got := cmplx.Abs(response(c, tt.freq, tt.sampleRate)); !almostEqual(got, tt.q, 1e-6) {
				t.Fatalf("|H(fc)| = %v, want %v", got, tt.q)
			}
			// Near Nyquist the response must be far below unity.
			if got := cmplx.Abs(response(c, 0.45*tt.sampleRate, tt.sampleRate)); got > 0.1 {
				t.Fatalf("stopband = %v, want < 0.1", got)
			}
		})
	}
}

func TestStable(t *testing.T) {
	tests := []struct {
		name string
		c    Coefficients
		want bool
	}{
		{"passthrough", Coefficients{B0: 1}, true},
		{"poles at 0.5", Coefficients{B0: 1, A1: -1, A2: 0.25}, true},
		{"pole on unit circle", Coefficients{B0: 1, A1: -2, A2: 1}, false},
		{"pole outside", Coefficients{B0: 1, A1: -2.1, A2: 1.1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.Stable(); got != tt.want {
				t.Fatalf("Stable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLowpassCoefficientsInvalid(t *testing.T) {
	zero := Coefficients{}
	if c := LowpassCoefficients(0, 0.7, 48000); c != zero {
		t.Fatalf("zero frequency: %+v", c)
	}
	if c := LowpassCoefficients(30000, 0.7, 48000); c != zero {
		t.Fatalf("above Nyquist: %+v", c)
	}
	if a, b := LowpassCoefficients(100, -1, 48000), LowpassCoefficients(100, DefaultQ, 48000); a != b {
		t.Fatalf("invalid q should fall back to DefaultQ: %+v vs %+v", a, b)
	}
}

func TestLowpassConfigure(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate float64
		cutoff     float64
		q          float64
		wantErr    bool
		errIs      error
	}{
		{"default envelope", 48000, 5, 0.72, false, nil},
		{"zero sample rate", 0, 5, 0.72, true, core.ErrInvalidSampleRate},
		{"cutoff at Nyquist", 48000, 24000, 0.72, true, ErrInvalidCutoff},
		{"negative cutoff", 48000, -5, 0.72, true, ErrInvalidCutoff},
		{"zero resonance", 48000, 5, 0, true, nil},
		{"infinite resonance", 48000, 5, math.Inf(1), true, nil},
		{"poles round onto unit circle", 48000, 1e-6, 1e8, true, ErrUnstable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLowpass(tt.sampleRate, tt.cutoff, tt.q)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewLowpass() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.errIs != nil && !errors.Is(err, tt.errIs) {
				t.Fatalf("NewLowpass() error = %v, want %v", err, tt.errIs)
			}
		})
	}
}

func TestLowpassReconfigureKeepsDesignOnError(t *testing.T) {
	lp, err := NewLowpass(48000, 5, 0.72)
	if err != nil {
		t.Fatalf("NewLowpass() error = %v", err)
	}
	before := lp.Coefficients()

	if err := lp.Configure(-1, 5, 0.72); err == nil {
		t.Fatal("Configure() with invalid rate should fail")
	}
	if lp.Coefficients() != before || lp.SampleRate() != 48000 {
		t.Fatal("failed Configure changed the design")
	}

	if err := lp.Configure(96000, 5, 0.72); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	if lp.Coefficients() == before {
		t.Fatal("sample-rate change did not redesign the filter")
	}
	if lp.Cutoff() != 5 || lp.Q() != 0.72 || lp.SampleRate() != 96000 {
		t.Fatalf("accessors = %v %v %v", lp.Cutoff(), lp.Q(), lp.SampleRate())
	}
}

func TestLowpassUnityDCGain(t *testing.T) {
	for _, sampleRate := range []float64{44100, 48000, 192000} {
		lp, err := NewLowpass(sampleRate, 5, 0.72)
		if err != nil {
			t.Fatalf("NewLowpass() error = %v", err)
		}
		c := lp.Coefficients()
		if got := c.DCGain(); !almostEqual(got, 1, eps) {
			t.Fatalf("%v Hz: DC gain = %v, want 1", sampleRate, got)
		}
	}
}

func TestLowpassSettlesOnDC(t *testing.T) {
	lp, err := NewLowpass(48000, 5, 0.72)
	if err != nil {
		t.Fatalf("NewLowpass() error = %v", err)
	}

	var y float64
	// One second is many time constants at 5 Hz.
	for range 48000 {
		y = lp.ProcessSample(0.5)
	}
	if !almostEqual(y, 0.5, 1e-6) {
		t.Fatalf("settled value = %v, want 0.5", y)
	}

	lp.Reset()
	if got := lp.ProcessSample(0); got != 0 {
		t.Fatalf("output after Reset = %v, want 0", got)
	}
}

package param

import (
	"math"
	"testing"
)

func newTestSmoother(t *testing.T, style Style, timeMs, sampleRate float64) *Smoother {
	t.Helper()
	s, err := NewSmoother(style, timeMs)
	if err != nil {
		t.Fatalf("NewSmoother() error = %v", err)
	}
	if err := s.SetSampleRate(sampleRate); err != nil {
		t.Fatalf("SetSampleRate() error = %v", err)
	}
	return s
}

func TestNewSmootherValidation(t *testing.T) {
	tests := []struct {
		name    string
		style   Style
		timeMs  float64
		wantErr bool
	}{
		{"linear", Linear, 10, false},
		{"zero time", Logarithmic, 0, false},
		{"negative time", Linear, -1, true},
		{"NaN time", Linear, math.NaN(), true},
		{"unknown style", Style(9), 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSmoother(tt.style, tt.timeMs)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewSmoother() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSmoother(t *testing.T) {
	t.Run("Linear", func(t *testing.T) {
		// 10 ms at 1 kHz is 10 samples.
		s := newTestSmoother(t, Linear, 10, 1000)
		s.Reset(0)
		s.SetTarget(1)

		for i := range 10 {
			got := s.Next()
			want := float64(i+1) * 0.1
			if math.Abs(got-want) > 1e-12 {
				t.Fatalf("sample %d: got %v, want %v", i, got, want)
			}
		}
		if s.IsSmoothing() {
			t.Fatal("should not be smoothing after reaching target")
		}
		if s.Next() != 1 {
			t.Fatal("should stay at target")
		}
	})

	t.Run("Logarithmic", func(t *testing.T) {
		s := newTestSmoother(t, Logarithmic, 4, 1000)
		s.Reset(1)
		s.SetTarget(16)

		for i, want := range []float64{2, 4, 8, 16} {
			if got := s.Next(); math.Abs(got-want) > 1e-9 {
				t.Fatalf("sample %d: got %v, want %v", i, got, want)
			}
		}
	})

	t.Run("LogarithmicClampsToFloor", func(t *testing.T) {
		s := newTestSmoother(t, Logarithmic, 1, 1000)
		s.Reset(0)
		if s.Current() != MinLogValue {
			t.Fatalf("Current() = %v, want %v", s.Current(), MinLogValue)
		}
	})

	t.Run("None", func(t *testing.T) {
		s := newTestSmoother(t, None, 50, 48000)
		s.Reset(3)
		s.SetTarget(7)
		if s.IsSmoothing() || s.Next() != 7 {
			t.Fatal("None should jump to the target")
		}
	})

	t.Run("RetargetMidRamp", func(t *testing.T) {
		s := newTestSmoother(t, Linear, 4, 1000)
		s.Reset(0)
		s.SetTarget(4)
		s.Next()
		s.Next() // 2

		s.SetTarget(0)
		for i, want := range []float64{1.5, 1, 0.5, 0} {
			if got := s.Next(); math.Abs(got-want) > 1e-12 {
				t.Fatalf("sample %d: got %v, want %v", i, got, want)
			}
		}
	})

	t.Run("Skip", func(t *testing.T) {
		a := newTestSmoother(t, Logarithmic, 50, 48000)
		b := newTestSmoother(t, Logarithmic, 50, 48000)
		a.Reset(0.001)
		b.Reset(0.001)
		a.SetTarget(2)
		b.SetTarget(2)

		for range 100 {
			a.Next()
		}
		b.Skip(100)
		if math.Abs(a.Current()-b.Current()) > 1e-9 {
			t.Fatalf("Skip = %v, Next x100 = %v", b.Current(), a.Current())
		}

		b.Skip(1 << 20)
		if b.Current() != 2 || b.IsSmoothing() {
			t.Fatalf("Skip past end = %v", b.Current())
		}
	})
}

func TestSmootherWithoutSampleRateJumps(t *testing.T) {
	s, err := NewSmoother(Linear, 10)
	if err != nil {
		t.Fatal(err)
	}
	s.SetTarget(5)
	if s.Next() != 5 {
		t.Fatal("smoother without sample rate should jump")
	}
	if err := s.SetSampleRate(0); err == nil {
		t.Fatal("SetSampleRate(0) should fail")
	}
}

func TestSmootherNextDoesNotAllocate(t *testing.T) {
	s := newTestSmoother(t, Logarithmic, 50, 48000)
	s.Reset(1)
	allocs := testing.AllocsPerRun(100, func() {
		s.SetTarget(0.5)
		for range 512 {
			s.Next()
		}
	})
	if allocs != 0 {
		t.Fatalf("Next allocated %v times per run", allocs)
	}
}

func TestStyleString(t *testing.T) {
	if Logarithmic.String() != "logarithmic" || Style(7).String() != "Style(7)" {
		t.Fatalf("unexpected String(): %q %q", Logarithmic, Style(7))
	}
}

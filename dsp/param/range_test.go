package param

import (
	"math"
	"testing"
)

func TestRangeValidate(t *testing.T) {
	tests := []struct {
		name    string
		r       Range
		wantErr bool
	}{
		{"lookahead", Range{Min: 0, Max: 15, Step: 0.1}, false},
		{"inverted", Range{Min: 1, Max: 0}, true},
		{"default outside", Range{Min: 0, Max: 1, Default: 2}, true},
		{"negative step", Range{Min: 0, Max: 1, Step: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.r.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRangeSnap(t *testing.T) {
	r := Range{Min: 0, Max: 15, Step: 0.1}

	tests := []struct {
		in, want float64
	}{
		{3.14, 3.1},
		{3.16, 3.2},
		{-2, 0},
		{99, 15},
		{math.NaN(), 0},
	}

	for _, tt := range tests {
		if got := r.Snap(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Snap(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRangeNormalize(t *testing.T) {
	r := Range{Min: -120, Max: 24}

	if got := r.Normalize(-48); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("Normalize(-48) = %v, want 0.5", got)
	}
	if got := r.Denormalize(0.5); math.Abs(got+48) > 1e-12 {
		t.Fatalf("Denormalize(0.5) = %v, want -48", got)
	}
	if got := r.Denormalize(2); got != 24 {
		t.Fatalf("Denormalize(2) = %v, want 24", got)
	}
	if got := (Range{Min: 1, Max: 1}).Normalize(1); got != 0 {
		t.Fatalf("degenerate Normalize = %v, want 0", got)
	}
}

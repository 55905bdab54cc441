package sidechain

import (
	"math"
	"sync/atomic"
)

const (
	// MeterDecayMs is the time the meter needs to fall by MeterDecayDB on
	// silence.
	MeterDecayMs = 150.0
	// MeterDecayDB is the fall over MeterDecayMs.
	MeterDecayDB = 12.0
	// MinusInfinityDB is reported for silent meters.
	MinusInfinityDB = -100.0
)

// MeterDecayWeight returns the per-frame weight w with which
// w^(sampleRate*decayMs/1000) == 0.25, i.e. a 12 dB fall after decayMs.
func MeterDecayWeight(sampleRate, decayMs float64) float64 {
	frames := sampleRate * decayMs / 1000
	if !(frames > 0) || math.IsInf(frames, 0) {
		return 0
	}
	return math.Pow(0.25, 1/frames)
}

// Meter is a lock-free float cell holding a linear amplitude. One goroutine
// updates it while any number of readers Load it.
type Meter struct {
	bits atomic.Uint64
}

// Load returns the current amplitude.
func (m *Meter) Load() float64 {
	return math.Float64frombits(m.bits.Load())
}

// Store replaces the amplitude.
func (m *Meter) Store(v float64) {
	m.bits.Store(math.Float64bits(v))
}

// Update folds one frame amplitude into the meter: rises are taken
// immediately, falls decay with weight w. It returns the new value.
func (m *Meter) Update(amplitude, w float64) float64 {
	cur := m.Load()
	next := amplitude
	if amplitude <= cur {
		next = cur*w + amplitude*(1-w)
	}
	m.Store(next)
	return next
}

// DB returns the amplitude in dBFS, floored at MinusInfinityDB.
func (m *Meter) DB() float64 {
	return gainToDB(m.Load())
}

func gainToDB(v float64) float64 {
	if !(v > 0) {
		return MinusInfinityDB
	}
	db := 20 * log10(v)
	if db < MinusInfinityDB {
		return MinusInfinityDB
	}
	return db
}

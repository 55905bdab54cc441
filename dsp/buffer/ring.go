package buffer

// Ring is a fixed-capacity double-ended queue of samples.
//
// All operations are O(1). Pushing onto a full ring reports false and leaves
// the ring unchanged; popping or peeking an empty ring returns 0 and false.
type Ring struct {
	data []float64
	head int
	size int
}

// NewRing returns an empty ring able to hold capacity samples.
func NewRing(capacity int) *Ring {
	if capacity < 0 {
		capacity = 0
	}
	return &Ring{data: make([]float64, capacity)}
}

// Len returns the number of stored samples.
func (r *Ring) Len() int { return r.size }

// Cap returns the fixed capacity.
func (r *Ring) Cap() int { return len(r.data) }

// Empty reports whether the ring holds no samples.
func (r *Ring) Empty() bool { return r.size == 0 }

// Full reports whether another push would fail.
func (r *Ring) Full() bool { return r.size == len(r.data) }

// Clear drops all samples without releasing storage.
func (r *Ring) Clear() {
	r.head = 0
	r.size = 0
}

// PushBack appends v behind the last sample.
func (r *Ring) PushBack(v float64) bool {
	if r.size == len(r.data) {
		return false
	}
	r.data[r.index(r.size)] = v
	r.size++
	return true
}

// PopFront removes and returns the first sample.
func (r *Ring) PopFront() (float64, bool) {
	if r.size == 0 {
		return 0, false
	}
	v := r.data[r.head]
	r.head++
	if r.head == len(r.data) {
		r.head = 0
	}
	r.size--
	return v, true
}

// PopBack removes and returns the last sample.
func (r *Ring) PopBack() (float64, bool) {
	if r.size == 0 {
		return 0, false
	}
	r.size--
	return r.data[r.index(r.size)], true
}

// Front returns the first sample without removing it.
func (r *Ring) Front() (float64, bool) {
	if r.size == 0 {
		return 0, false
	}
	return r.data[r.head], true
}

// Back returns the last sample without removing it.
func (r *Ring) Back() (float64, bool) {
	if r.size == 0 {
		return 0, false
	}
	return r.data[r.index(r.size-1)], true
}

// At returns the i-th sample counted from the front. It panics if i is out
// of range, like slice indexing.
func (r *Ring) At(i int) float64 {
	if i < 0 || i >= r.size {
		panic("buffer: ring index out of range")
	}
	return r.data[r.index(i)]
}

func (r *Ring) index(i int) int {
	j := r.head + i
	if j >= len(r.data) {
		j -= len(r.data)
	}
	return j
}

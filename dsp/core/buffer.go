package core

// NewPlanar allocates channels x frames of zeroed samples backed by a single
// contiguous slice. Each channel slice has its capacity capped to frames so
// appends cannot spill into the neighbouring channel.
func NewPlanar(channels, frames int) [][]float64 {
	if channels <= 0 {
		return nil
	}
	if frames < 0 {
		frames = 0
	}

	backing := make([]float64, channels*frames)
	out := make([][]float64, channels)
	for ch := range out {
		out[ch] = backing[ch*frames : (ch+1)*frames : (ch+1)*frames]
	}
	return out
}

// Zero sets all values in buf to 0.
func Zero(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
}

// Frames returns the shortest channel length of a planar block, or 0 when
// the block has no channels.
func Frames(block [][]float64) int {
	if len(block) == 0 {
		return 0
	}
	n := len(block[0])
	for _, ch := range block[1:] {
		if len(ch) < n {
			n = len(ch)
		}
	}
	return n
}

package sidechain

// SoftClip is a cubic soft clipper. It is odd, continuous, maps 0 to 0 and
// saturates at exactly -1 and 1 for |x| >= 1, where its slope is zero.
func SoftClip(x float64) float64 {
	switch {
	case x < -1:
		return -1
	case x > 1:
		return 1
	default:
		return 1.5 * (x - x*x*x/3)
	}
}

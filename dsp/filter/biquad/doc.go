// Package biquad provides second-order IIR filter sections and the RBJ
// lowpass design used to smooth control envelopes.
//
// A [Section] implements Direct Form II Transposed processing for a single
// second-order section defined by [Coefficients]. [Lowpass] wraps a section
// with a cutoff and resonance that can be reconfigured when the sample rate
// changes.
package biquad

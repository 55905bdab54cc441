// Package sidechain implements a ducking processor with a variable
// lookahead delay on the program path.
//
// The sidechain input is rectified, smoothed by a lowpass [Filter], scaled
// by a gain and soft clipped into a control value. The main input runs
// through a [delay.Line] and is attenuated by that control:
//
//	out = delayed - delayed*control
//
// A control of 0 leaves the delayed signal untouched; 1 silences it.
//
// [Processor] is the block-level entry point. It reads the lookahead once
// per block and the gain once per frame from [Smoothed] sources, reports
// the resulting latency, and maintains a decaying output [Meter] plus a
// held gain-reduction readout for display while an editor is attached.
// ProcessBlock never allocates; all state is sized by Init.
//
// [delay.Line]: https://pkg.go.dev/github.com/cwbudde/algo-esc/dsp/delay#Line
package sidechain

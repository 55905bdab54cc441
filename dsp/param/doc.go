// Package param provides host-side parameter handling: value ranges with
// step snapping and per-sample smoothers that remove zipper noise from
// automated values.
package param

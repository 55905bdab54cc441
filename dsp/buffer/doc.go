// Package buffer provides fixed-capacity sample containers for real-time
// processing.
//
// [Ring] is a double-ended queue backed by a slice that is allocated once.
// Pushing, popping and peeking at either end never allocate, which makes it
// suitable for state that is sized during initialization and mutated inside
// an audio callback.
package buffer

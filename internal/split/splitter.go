// Package split generates expanding walk-forward train/test index pairs.
package split

import (
	"errors"
	"fmt"
)

// ErrInsufficientData is returned when not even one split can be emitted.
var ErrInsufficientData = errors.New("insufficient rows for walk-forward split")

// Split is one train/test index pair over a frame of length N.
// Train covers [0, TrainEnd); test covers [TrainEnd, TestEnd).
// By construction TrainEnd == test start and test slices are disjoint,
// covering the frame tail contiguously.
type Split struct {
	TrainEnd int
	TestEnd  int
}

// Splitter is configured by the number of splits and the test slice size.
type Splitter struct {
	NSplits  int
	TestSize int
}

// New creates a splitter.
func New(nSplits, testSize int) *Splitter {
	return &Splitter{NSplits: nSplits, TestSize: testSize}
}

// Split emits up to NSplits expanding splits over a frame of n rows, with
// the final test slice ending exactly at n. When n is below the natural
// budget (NSplits+1)*TestSize, fewer splits are emitted; a test slice never
// has fewer than 1 row. Returns ErrInsufficientData when not even one split
// fits.
func (s *Splitter) Split(n int) ([]Split, error) {
	if s.NSplits < 1 || s.TestSize < 1 {
		return nil, fmt.Errorf("%w: n_splits=%d test_size=%d", ErrInsufficientData, s.NSplits, s.TestSize)
	}

	// Shrink the split count until the first training window is at least one
	// test slice long.
	splits := s.NSplits
	for splits > 1 && n-(splits*s.TestSize) < s.TestSize {
		splits--
	}
	if n-(splits*s.TestSize) < 1 {
		return nil, fmt.Errorf("%w: %d rows, need at least %d", ErrInsufficientData, n, s.TestSize+1)
	}

	out := make([]Split, 0, splits)
	for k := 0; k < splits; k++ {
		trainEnd := n - (splits-k)*s.TestSize
		out = append(out, Split{TrainEnd: trainEnd, TestEnd: trainEnd + s.TestSize})
	}
	return out, nil
}

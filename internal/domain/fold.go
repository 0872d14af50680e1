package domain

import (
	"errors"
	"fmt"
)

// Fold represents a single walk-forward validation fold.
// Train is an expanding window: everything before TestStart. Indices use
// half-open interval semantics [start, end) against the underlying series.
// A fold is constructed by the splitter, consumed once, and discarded;
// it never mutates shared state.
type Fold struct {
	Number     int
	TrainStart int // training window start index (inclusive)
	TrainEnd   int // training window end index (exclusive)
	TestStart  int // test window start index (inclusive)
	TestEnd    int // test window end index (exclusive)
}

// ErrFoldOverlap indicates a fold whose train range leaks into its test range.
var ErrFoldOverlap = errors.New("fold train window overlaps test window")

// Validate enforces fold non-overlap and ordering invariants.
func (f Fold) Validate() error {
	if f.TrainStart < 0 || f.TrainEnd < f.TrainStart {
		return fmt.Errorf("fold %d: invalid train range [%d, %d)", f.Number, f.TrainStart, f.TrainEnd)
	}
	if f.TestStart >= f.TestEnd {
		return fmt.Errorf("fold %d: empty test range [%d, %d)", f.Number, f.TestStart, f.TestEnd)
	}
	if f.TrainEnd > f.TestStart {
		return fmt.Errorf("%w: fold %d (train_end=%d > test_start=%d)",
			ErrFoldOverlap, f.Number, f.TrainEnd, f.TestStart)
	}
	return nil
}

package strategy

import (
	"strategy-validation-lab/internal/asof"
)

// Strategy maps visible price history to a desired position for the
// current decision bar.
type Strategy interface {
	// WantLong reports whether the strategy wants to hold a long
	// position for the decision at the cursor's current index. It may
	// only read history through the cursor, which exposes nothing at or
	// after the decision bar.
	WantLong(cur *asof.Cursor) (bool, error)

	// ID returns the strategy identifier (includes parameters).
	ID() string

	// Warmup returns the number of bars the strategy needs before its
	// first meaningful signal.
	Warmup() int
}

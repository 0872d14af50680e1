package validation

import "errors"

// Harness errors.
var (
	// ErrInsufficientData means the time range produced zero walk-forward
	// folds or the trade set is empty. It is never downgraded to an
	// empty result.
	ErrInsufficientData = errors.New("validation: insufficient data")

	// ErrNumericDegeneracy means every Monte Carlo iteration compounded
	// past the sanity bound, leaving nothing to aggregate.
	ErrNumericDegeneracy = errors.New("validation: all simulations numerically degenerate")
)

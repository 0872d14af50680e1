package domain

// Regime is a discrete market-condition label derived from trend
// indicators of a reference series, used to gate strategy aggressiveness.
type Regime int

// Regime states, ordered from most to least favorable.
const (
	RegimeStrongBull Regime = iota
	RegimeWeakBull
	RegimeBear
)

// String returns the canonical label.
func (r Regime) String() string {
	switch r {
	case RegimeStrongBull:
		return "STRONG_BULL"
	case RegimeWeakBull:
		return "WEAK_BULL"
	case RegimeBear:
		return "BEAR"
	default:
		return "UNKNOWN"
	}
}

// Bullish reports whether the regime permits new long exposure.
func (r Regime) Bullish() bool {
	return r == RegimeStrongBull || r == RegimeWeakBull
}

// AllocationScale returns the position weight multiplier for the regime.
func (r Regime) AllocationScale() float64 {
	switch r {
	case RegimeStrongBull:
		return 1.0
	case RegimeWeakBull:
		return 0.5
	default:
		return 0.0
	}
}

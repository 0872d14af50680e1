// Package metrics provides the descriptive statistics shared by the
// walk-forward evaluator and the Monte Carlo resampler.
package metrics

import (
	"math"
	"sort"
)

// Mean calculates the arithmetic mean. Returns 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Median returns the middle value (average of the two middle values for
// even counts). The input is not mutated.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// SampleStddev calculates sample standard deviation (n-1 denominator).
// Uses the sample formula for an unbiased estimator; returns 0 for n < 2.
func SampleStddev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	mean := Mean(values)
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// Percentile uses linear interpolation between order statistics.
// sorted must be pre-sorted ASC; p is a fraction (0.05 = 5th percentile).
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	idx := p * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// SortedCopy returns an ascending copy, leaving the input untouched.
func SortedCopy(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	sort.Float64s(out)
	return out
}

// MaxDrawdownFromReturns builds a compounded equity path from sequential
// fractional returns and reports the worst peak-to-trough decline as a
// fraction of peak. Returns must be in chronological order.
func MaxDrawdownFromReturns(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	equity := 1.0
	peak := 1.0
	maxDD := 0.0

	for _, r := range returns {
		equity *= 1.0 + r
		if equity > peak {
			peak = equity
		}
		dd := (peak - equity) / peak
		if dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// CompoundLog compounds fractional returns through log space:
// exp(sum(log1p(r))). A single accumulated sum avoids the overflow and
// rounding drift of repeated multiplication when returns are extreme.
// A return <= -100% collapses the path to zero.
func CompoundLog(returns []float64) float64 {
	sumLog := 0.0
	for _, r := range returns {
		if r <= -1.0 {
			return 0
		}
		sumLog += math.Log1p(r)
	}
	return math.Exp(sumLog)
}

// Package indicators has the rolling series math used by the regime
// classifier and the strategies. All functions return a slice aligned to
// the input length with NaNs for warmup, so callers can index by bar
// without offset bookkeeping.
package indicators

import "math"

// SMA over the last p points.
func SMA(x []float64, p int) []float64 {
	if p <= 0 {
		return nil
	}
	out := make([]float64, len(x))
	var sum float64
	for i := range x {
		sum += x[i]
		if i < p-1 {
			out[i] = math.NaN()
			continue
		}
		if i >= p {
			sum -= x[i-p]
		}
		out[i] = sum / float64(p)
	}
	return out
}

// EMA with standard smoothing 2/(p+1), seeded with SMA(p).
func EMA(x []float64, p int) []float64 {
	if p <= 0 {
		return nil
	}
	out := make([]float64, len(x))
	k := 2.0 / float64(p+1)

	if len(x) < p {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}
	var seed float64
	for i := 0; i < p; i++ {
		seed += x[i]
	}
	seed /= float64(p)
	for i := 0; i < p-1; i++ {
		out[i] = math.NaN()
	}
	out[p-1] = seed
	for i := p; i < len(x); i++ {
		out[i] = (x[i]-out[i-1])*k + out[i-1]
	}
	return out
}

// ROC is the rate of change over p bars: (x[i] - x[i-p]) / x[i-p].
func ROC(x []float64, p int) []float64 {
	if p <= 0 {
		return nil
	}
	out := make([]float64, len(x))
	for i := range x {
		if i < p || x[i-p] == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = (x[i] - x[i-p]) / x[i-p]
	}
	return out
}

// RollingMax over window p; NaNs for warmup. O(n*p), fine at the scales
// the harness works at.
func RollingMax(x []float64, p int) []float64 {
	if p <= 0 {
		return nil
	}
	out := make([]float64, len(x))
	for i := range x {
		if i < p-1 {
			out[i] = math.NaN()
			continue
		}
		m := x[i]
		for j := i - p + 1; j < i; j++ {
			if x[j] > m {
				m = x[j]
			}
		}
		out[i] = m
	}
	return out
}

// ATR over window p from high/low/close series, Wilder smoothing.
func ATR(high, low, cls []float64, p int) []float64 {
	n := len(cls)
	if p <= 0 || len(high) != n || len(low) != n {
		return nil
	}
	out := make([]float64, n)
	tr := make([]float64, n)
	for i := 0; i < n; i++ {
		r := high[i] - low[i]
		if i > 0 {
			if d := math.Abs(high[i] - cls[i-1]); d > r {
				r = d
			}
			if d := math.Abs(low[i] - cls[i-1]); d > r {
				r = d
			}
		}
		tr[i] = r
	}
	var seed float64
	for i := 0; i < n; i++ {
		if i < p-1 {
			out[i] = math.NaN()
			seed += tr[i]
			continue
		}
		if i == p-1 {
			seed += tr[i]
			out[i] = seed / float64(p)
			continue
		}
		out[i] = (out[i-1]*float64(p-1) + tr[i]) / float64(p)
	}
	return out
}

// ADX over window p, Wilder's directional movement index. Warmup is
// 2p-1 bars: p for the smoothed DM/TR seeds, another p-1 for the DX
// average.
func ADX(high, low, cls []float64, p int) []float64 {
	n := len(cls)
	if p <= 0 || len(high) != n || len(low) != n {
		return nil
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	if n < 2*p {
		return out
	}

	dx := make([]float64, n)
	var smTR, smPlus, smMinus float64
	for i := 1; i < n; i++ {
		upMove := high[i] - high[i-1]
		downMove := low[i-1] - low[i]
		var plusDM, minusDM float64
		if upMove > downMove && upMove > 0 {
			plusDM = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM = downMove
		}

		tr := high[i] - low[i]
		if d := math.Abs(high[i] - cls[i-1]); d > tr {
			tr = d
		}
		if d := math.Abs(low[i] - cls[i-1]); d > tr {
			tr = d
		}

		if i <= p {
			smTR += tr
			smPlus += plusDM
			smMinus += minusDM
			if i < p {
				continue
			}
		} else {
			smTR = smTR - smTR/float64(p) + tr
			smPlus = smPlus - smPlus/float64(p) + plusDM
			smMinus = smMinus - smMinus/float64(p) + minusDM
		}

		if smTR == 0 {
			dx[i] = 0
			continue
		}
		plusDI := 100 * smPlus / smTR
		minusDI := 100 * smMinus / smTR
		if sum := plusDI + minusDI; sum > 0 {
			dx[i] = 100 * math.Abs(plusDI-minusDI) / sum
		}
	}

	// First ADX value is the simple average of the first p DX values,
	// then Wilder smoothing.
	var seed float64
	for i := p; i < 2*p; i++ {
		seed += dx[i]
	}
	out[2*p-1] = seed / float64(p)
	for i := 2 * p; i < n; i++ {
		out[i] = (out[i-1]*float64(p-1) + dx[i]) / float64(p)
	}
	return out
}

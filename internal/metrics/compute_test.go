package metrics

import (
	"math"
	"testing"
)

func TestMean_Empty(t *testing.T) {
	if got := Mean(nil); got != 0 {
		t.Errorf("expected 0 for empty input, got %f", got)
	}
}

func TestMedian_OddAndEven(t *testing.T) {
	odd := []float64{3, 1, 2}
	if got := Median(odd); got != 2 {
		t.Errorf("odd median: expected 2, got %f", got)
	}

	even := []float64{4, 1, 3, 2}
	if got := Median(even); got != 2.5 {
		t.Errorf("even median: expected 2.5, got %f", got)
	}

	// Input must not be mutated
	if odd[0] != 3 || odd[1] != 1 || odd[2] != 2 {
		t.Errorf("Median mutated its input: %v", odd)
	}
}

func TestSampleStddev(t *testing.T) {
	// Known sample: {2, 4, 4, 4, 5, 5, 7, 9} has sample stddev ~2.138
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	got := SampleStddev(values)
	want := 2.1380899
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("expected %f, got %f", want, got)
	}

	if got := SampleStddev([]float64{1}); got != 0 {
		t.Errorf("n<2 should give 0, got %f", got)
	}
}

func TestPercentile_Interpolation(t *testing.T) {
	sorted := []float64{10, 20, 30, 40, 50}

	if got := Percentile(sorted, 0.50); got != 30 {
		t.Errorf("p50: expected 30, got %f", got)
	}
	// p25 of 5 points: idx = 0.25*4 = 1.0 -> exactly 20
	if got := Percentile(sorted, 0.25); got != 20 {
		t.Errorf("p25: expected 20, got %f", got)
	}
	// p10: idx = 0.4 -> 10 + 0.4*(20-10) = 14
	if got := Percentile(sorted, 0.10); got != 14 {
		t.Errorf("p10: expected 14, got %f", got)
	}
	if got := Percentile(sorted, 1.0); got != 50 {
		t.Errorf("p100: expected 50, got %f", got)
	}
}

func TestPercentile_Ordering(t *testing.T) {
	sorted := SortedCopy([]float64{0.3, -0.1, 2.5, 0.0, 1.1, -0.4, 0.9})
	ps := []float64{0.05, 0.25, 0.50, 0.75, 0.95}
	prev := math.Inf(-1)
	for _, p := range ps {
		v := Percentile(sorted, p)
		if v < prev {
			t.Fatalf("percentile ordering violated at p=%.2f: %f < %f", p, v, prev)
		}
		prev = v
	}
}

func TestMaxDrawdownFromReturns(t *testing.T) {
	// +10%, -50%, +20%: peak 1.1, trough 0.55 -> DD 50%
	returns := []float64{0.10, -0.50, 0.20}
	got := MaxDrawdownFromReturns(returns)
	if math.Abs(got-0.50) > 1e-12 {
		t.Errorf("expected 0.50, got %f", got)
	}

	if got := MaxDrawdownFromReturns([]float64{0.1, 0.1}); got != 0 {
		t.Errorf("all-gains path should have zero drawdown, got %f", got)
	}
}

func TestCompoundLog_MatchesDirectProduct(t *testing.T) {
	returns := []float64{0.05, -0.02, 0.10, -0.07}
	direct := 1.0
	for _, r := range returns {
		direct *= 1 + r
	}
	got := CompoundLog(returns)
	if math.Abs(got-direct) > 1e-12 {
		t.Errorf("expected %f, got %f", direct, got)
	}
}

func TestCompoundLog_TotalLoss(t *testing.T) {
	if got := CompoundLog([]float64{0.5, -1.0, 0.3}); got != 0 {
		t.Errorf("total loss should collapse to 0, got %f", got)
	}
}

func TestCompoundLog_ExtremeOutlierStaysFinite(t *testing.T) {
	// A +10000% trade repeated many times must not overflow to Inf
	// within a realistic resample length.
	returns := make([]float64, 100)
	for i := range returns {
		returns[i] = 100.0
	}
	got := CompoundLog(returns)
	if math.IsNaN(got) {
		t.Errorf("expected finite or +Inf, got NaN")
	}
}

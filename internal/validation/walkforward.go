package validation

import (
	"context"
	"fmt"
	"time"

	"strategy-validation-lab/internal/domain"
	"strategy-validation-lab/internal/metrics"
	"strategy-validation-lab/internal/simulation"
)

// FoldResult holds one fold's out-of-sample outcome.
type FoldResult struct {
	Fold        domain.Fold
	Return      float64 // compounded return over the test window
	MaxDrawdown float64
	Trades      int
	WinRate     float64 // winning trades / trades, 0 when no trades
}

// WalkForwardReport aggregates per-fold out-of-sample results. Every
// point estimate travels with its dispersion and sample size.
type WalkForwardReport struct {
	Folds       []FoldResult
	OOSTrades   []*domain.Trade // all out-of-sample trades, fold order
	Mean        float64
	Median      float64
	Stddev      float64
	FoldWinRate float64 // folds with positive return / folds
	TradeCount  int

	// LowConfidence is set when fewer folds were produced than the
	// configured floor. Non-fatal: the numbers remain inspectable, the
	// flag keeps them from being mistaken for robust ones.
	LowConfidence bool
}

// BuildFolds produces expanding-train walk-forward folds over the series.
// Fold i tests the half-open window starting at T0 + i*step with the
// configured duration, and trains on everything before it. Produces
// ErrInsufficientData when the range admits no fold.
func BuildFolds(series *domain.Series, testWindow, step time.Duration) ([]domain.Fold, error) {
	if testWindow <= 0 || step <= 0 {
		return nil, fmt.Errorf("validation: %w", domain.ErrInvalidWindow)
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}

	t0 := series.Candles[0].TimestampMs
	tn := series.Candles[series.Len()-1].TimestampMs
	windowMs := testWindow.Milliseconds()
	stepMs := step.Milliseconds()

	var folds []domain.Fold
	for i := 1; ; i++ {
		testStartMs := t0 + int64(i)*stepMs
		testEndMs := testStartMs + windowMs
		if testEndMs > tn+1 {
			break
		}

		testStart := series.IndexAtOrAfter(testStartMs)
		testEnd := series.IndexAtOrAfter(testEndMs)
		if testStart >= testEnd {
			// Gap in the data swallowed this window.
			continue
		}

		fold := domain.Fold{
			Number:     len(folds) + 1,
			TrainStart: 0,
			TrainEnd:   testStart,
			TestStart:  testStart,
			TestEnd:    testEnd,
		}
		if err := fold.Validate(); err != nil {
			return nil, err
		}
		folds = append(folds, fold)
	}

	if len(folds) == 0 {
		return nil, fmt.Errorf("%w: range %s shorter than one test window %s",
			ErrInsufficientData, time.Duration(tn-t0)*time.Millisecond, testWindow)
	}
	return folds, nil
}

// EvaluateWalkForward replays the simulator over every fold's test
// window and aggregates the out-of-sample results. The simulator's
// as-of cursor gives each test window the full expanding train history
// for indicator warmup without exposing anything inside the window
// ahead of time.
func EvaluateWalkForward(ctx context.Context, cfg domain.ValidationConfig, sim *simulation.Simulator, series *domain.Series) (*WalkForwardReport, error) {
	folds, err := BuildFolds(series, cfg.TestWindow, cfg.Step)
	if err != nil {
		return nil, err
	}

	report := &WalkForwardReport{
		Folds:         make([]FoldResult, 0, len(folds)),
		LowConfidence: len(folds) < cfg.MinFoldsFloor,
	}

	for _, fold := range folds {
		res, err := sim.Run(ctx, series, fold.TestStart, fold.TestEnd)
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", fold.Number, err)
		}

		terminal := res.Equity.Terminal(cfg.InitialCapital)
		wins := 0
		for _, t := range res.Trades {
			if t.PnL > 0 {
				wins++
			}
		}
		winRate := 0.0
		if len(res.Trades) > 0 {
			winRate = float64(wins) / float64(len(res.Trades))
		}

		report.Folds = append(report.Folds, FoldResult{
			Fold:        fold,
			Return:      terminal/cfg.InitialCapital - 1,
			MaxDrawdown: res.Equity.MaxDrawdown(),
			Trades:      len(res.Trades),
			WinRate:     winRate,
		})
		report.OOSTrades = append(report.OOSTrades, res.Trades...)
	}

	returns := make([]float64, len(report.Folds))
	positive := 0
	for i, f := range report.Folds {
		returns[i] = f.Return
		if f.Return > 0 {
			positive++
		}
		report.TradeCount += f.Trades
	}
	report.Mean = metrics.Mean(returns)
	report.Median = metrics.Median(returns)
	report.Stddev = metrics.SampleStddev(returns)
	report.FoldWinRate = float64(positive) / float64(len(report.Folds))

	return report, nil
}

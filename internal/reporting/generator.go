package reporting

import (
	"context"
	"sort"
	"time"

	"strategy-validation-lab/internal/storage"
	"strategy-validation-lab/internal/validation"
)

// Generator produces reports from harness output and stored runs.
type Generator struct {
	runStore storage.ValidationRunStore
	now      func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator. The run store may be nil
// when only BuildRunReport is needed.
func NewGenerator(runStore storage.ValidationRunStore) *Generator {
	return &Generator{
		runStore: runStore,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// BuildRunReport flattens one harness execution into its render model.
func (g *Generator) BuildRunReport(res *validation.Report) *RunReport {
	folds := make([]FoldRow, 0, len(res.WalkForward.Folds))
	for _, f := range res.WalkForward.Folds {
		folds = append(folds, FoldRow{
			Fold:        f.Fold.Number,
			TrainBars:   f.Fold.TrainEnd - f.Fold.TrainStart,
			TestStart:   f.Fold.TestStart,
			TestEnd:     f.Fold.TestEnd,
			Return:      f.Return,
			MaxDrawdown: f.MaxDrawdown,
			Trades:      f.Trades,
			WinRate:     f.WinRate,
		})
	}

	mc := res.MonteCarlo
	return &RunReport{
		GeneratedAt: g.now(),
		RunID:       res.Run.RunID,
		Instrument:  res.Run.Instrument,
		StrategyID:  res.Run.StrategyID,
		Mode:        res.Run.Mode,
		CreatedAt:   res.Run.CreatedAt,

		Folds:        folds,
		FoldMean:     res.WalkForward.Mean,
		FoldMedian:   res.WalkForward.Median,
		FoldStddev:   res.WalkForward.Stddev,
		FoldWinRate:  res.WalkForward.FoldWinRate,
		TradeCount:   res.WalkForward.TradeCount,
		FoldsLowConf: res.WalkForward.LowConfidence,

		MonteCarlo: MonteCarloSection{
			Simulations:   mc.Simulations,
			Included:      mc.Included,
			Excluded:      mc.Excluded,
			Mean:          mc.Mean,
			Median:        mc.Median,
			Stddev:        mc.Stddev,
			P5:            mc.P5,
			P25:           mc.P25,
			P50:           mc.P50,
			P75:           mc.P75,
			P95:           mc.P95,
			ProbProfit:    mc.ProbProfit,
			RiskOfRuin:    mc.RiskOfRuin,
			Terminals:     mc.Terminals,
			TradesLowConf: mc.LowConfidence,
		},
	}
}

// Generate produces a summary report over every persisted run.
func (g *Generator) Generate(ctx context.Context) (*SummaryReport, error) {
	runs, err := g.runStore.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]RunSummaryRow, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, RunSummaryRow{
			RunID:      r.RunID,
			Instrument: r.Instrument,
			StrategyID: r.StrategyID,
			Mode:       r.Mode,
			CreatedAt:  r.CreatedAt,

			FoldCount:   r.FoldCount,
			FoldMean:    r.FoldMean,
			FoldStddev:  r.FoldStddev,
			FoldWinRate: r.FoldWinRate,
			TradeCount:  r.TradeCount,

			TerminalMean: r.TerminalMean,
			TerminalP5:   r.TerminalP5,
			TerminalP95:  r.TerminalP95,
			ProbProfit:   r.ProbProfit,
			RiskOfRuin:   r.RiskOfRuin,

			LowConfidence: r.FoldsLowConf || r.TradesLowConf,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Instrument != rows[j].Instrument {
			return rows[i].Instrument < rows[j].Instrument
		}
		if rows[i].StrategyID != rows[j].StrategyID {
			return rows[i].StrategyID < rows[j].StrategyID
		}
		return rows[i].CreatedAt < rows[j].CreatedAt
	})

	return &SummaryReport{
		GeneratedAt: g.now(),
		RunCount:    len(rows),
		Runs:        rows,
	}, nil
}

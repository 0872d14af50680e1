package reporting

import "time"

// RunReport is the full render model for a single harness execution.
// It is built from the live validation output, because fold rows and
// per-simulation terminals are not persisted in validation_runs.
type RunReport struct {
	// Metadata
	GeneratedAt time.Time
	RunID       string
	Instrument  string
	StrategyID  string
	Mode        string
	CreatedAt   int64 // Unix ms

	// Walk-forward
	Folds        []FoldRow
	FoldMean     float64
	FoldMedian   float64
	FoldStddev   float64
	FoldWinRate  float64
	TradeCount   int
	FoldsLowConf bool

	// Monte Carlo
	MonteCarlo MonteCarloSection
}

// FoldRow is one walk-forward fold's out-of-sample outcome.
type FoldRow struct {
	Fold        int
	TrainBars   int
	TestStart   int // series index, inclusive
	TestEnd     int // series index, exclusive
	Return      float64
	MaxDrawdown float64
	Trades      int
	WinRate     float64
}

// MonteCarloSection holds the resampled terminal-multiple distribution.
type MonteCarloSection struct {
	Simulations int
	Included    int
	Excluded    int

	Mean   float64
	Median float64
	Stddev float64
	P5     float64
	P25    float64
	P50    float64
	P75    float64
	P95    float64

	ProbProfit float64
	RiskOfRuin float64

	// Terminals in iteration order, for the per-simulation CSV dump.
	Terminals []float64

	TradesLowConf bool
}

// SummaryReport lists every persisted validation run.
type SummaryReport struct {
	GeneratedAt time.Time
	RunCount    int

	// Runs sorted by instrument, then strategy_id, then created_at.
	Runs []RunSummaryRow
}

// RunSummaryRow is one row in the stored-runs summary table.
type RunSummaryRow struct {
	RunID      string
	Instrument string
	StrategyID string
	Mode       string
	CreatedAt  int64

	FoldCount   int
	FoldMean    float64
	FoldStddev  float64
	FoldWinRate float64
	TradeCount  int

	TerminalMean float64
	TerminalP5   float64
	TerminalP95  float64
	ProbProfit   float64
	RiskOfRuin   float64

	LowConfidence bool // either floor tripped
}

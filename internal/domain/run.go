package domain

// ValidationRun is the persisted summary of one harness execution.
// Corresponds to the validation_runs table in PostgreSQL.
type ValidationRun struct {
	RunID      string // deterministic hash
	Instrument string
	StrategyID string
	Mode       string // resample mode used
	CreatedAt  int64  // Unix ms

	// Walk-forward
	FoldCount    int
	FoldMean     float64
	FoldMedian   float64
	FoldStddev   float64
	FoldWinRate  float64
	FoldsLowConf bool
	TradeCount   int

	// Monte Carlo
	Simulations   int
	Included      int
	Excluded      int
	TerminalMean  float64
	TerminalP5    float64
	TerminalP95   float64
	ProbProfit    float64
	RiskOfRuin    float64
	TradesLowConf bool
}

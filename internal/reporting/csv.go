package reporting

import (
	"fmt"
	"strings"
)

// RenderFoldsCSV renders walk-forward fold rows as CSV string.
func RenderFoldsCSV(folds []FoldRow) string {
	var sb strings.Builder

	sb.WriteString("fold,train_bars,test_start,test_end,return,max_drawdown,trades,win_rate\n")
	for _, f := range folds {
		sb.WriteString(fmt.Sprintf("%d,%d,%d,%d,%.6f,%.6f,%d,%.6f\n",
			f.Fold,
			f.TrainBars,
			f.TestStart,
			f.TestEnd,
			f.Return,
			f.MaxDrawdown,
			f.Trades,
			f.WinRate,
		))
	}

	return sb.String()
}

// RenderSimulationsCSV renders per-simulation terminal multiples as CSV
// string, in iteration order.
func RenderSimulationsCSV(terminals []float64) string {
	var sb strings.Builder

	sb.WriteString("simulation,terminal_multiple\n")
	for i, t := range terminals {
		sb.WriteString(fmt.Sprintf("%d,%.6f\n", i, t))
	}

	return sb.String()
}

// RenderRunsCSV renders stored-run summary rows as CSV string.
func RenderRunsCSV(rows []RunSummaryRow) string {
	var sb strings.Builder

	sb.WriteString("run_id,instrument,strategy_id,mode,created_at,fold_count,fold_mean,fold_stddev,fold_win_rate,")
	sb.WriteString("trade_count,terminal_mean,terminal_p5,terminal_p95,prob_profit,risk_of_ruin,low_confidence\n")
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%d,%d,%.6f,%.6f,%.6f,%d,%.6f,%.6f,%.6f,%.6f,%.6f,%t\n",
			r.RunID,
			r.Instrument,
			r.StrategyID,
			r.Mode,
			r.CreatedAt,
			r.FoldCount,
			r.FoldMean,
			r.FoldStddev,
			r.FoldWinRate,
			r.TradeCount,
			r.TerminalMean,
			r.TerminalP5,
			r.TerminalP95,
			r.ProbProfit,
			r.RiskOfRuin,
			r.LowConfidence,
		))
	}

	return sb.String()
}

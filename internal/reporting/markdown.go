package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders a single-run report as Markdown string.
func RenderMarkdown(r *RunReport) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Validation Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	// Run metadata
	sb.WriteString("## Run\n\n")
	sb.WriteString("| Field | Value |\n")
	sb.WriteString("|-------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Run ID | %s |\n", r.RunID))
	sb.WriteString(fmt.Sprintf("| Instrument | %s |\n", r.Instrument))
	sb.WriteString(fmt.Sprintf("| Strategy | %s |\n", r.StrategyID))
	sb.WriteString(fmt.Sprintf("| Resample Mode | %s |\n", r.Mode))
	sb.WriteString(fmt.Sprintf("| Created (ms) | %d |\n", r.CreatedAt))
	sb.WriteString("\n")

	// Walk-forward folds
	sb.WriteString("## Walk-Forward\n\n")
	if r.FoldsLowConf {
		sb.WriteString(fmt.Sprintf("**LOW CONFIDENCE: only %d folds.** Aggregates below are inspectable but not robust.\n\n", len(r.Folds)))
	}
	if len(r.Folds) > 0 {
		sb.WriteString("| Fold | Train Bars | Test Range | Return | MaxDD | Trades | WinRate |\n")
		sb.WriteString("|------|------------|------------|--------|-------|--------|--------|\n")
		for _, f := range r.Folds {
			sb.WriteString(fmt.Sprintf("| %d | %d | [%d, %d) | %.4f | %.4f | %d | %.4f |\n",
				f.Fold, f.TrainBars, f.TestStart, f.TestEnd, f.Return, f.MaxDrawdown, f.Trades, f.WinRate))
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("No folds produced.\n\n")
	}

	// Aggregates always travel with dispersion and sample size.
	sb.WriteString(fmt.Sprintf("Fold return: mean %.4f, median %.4f, stddev %.4f (n=%d folds)\n\n",
		r.FoldMean, r.FoldMedian, r.FoldStddev, len(r.Folds)))
	sb.WriteString(fmt.Sprintf("Fold win rate: %.4f | Out-of-sample trades: %d\n\n",
		r.FoldWinRate, r.TradeCount))

	// Monte Carlo
	mc := r.MonteCarlo
	sb.WriteString("## Monte Carlo\n\n")
	if mc.TradesLowConf {
		sb.WriteString(fmt.Sprintf("**LOW CONFIDENCE: only %d out-of-sample trades.** Resampled distribution is inspectable but not robust.\n\n", r.TradeCount))
	}
	sb.WriteString(fmt.Sprintf("Simulations: %d (included %d, excluded %d degenerate)\n\n",
		mc.Simulations, mc.Included, mc.Excluded))
	sb.WriteString("| Statistic | Terminal Multiple |\n")
	sb.WriteString("|-----------|-------------------|\n")
	sb.WriteString(fmt.Sprintf("| Mean | %.4f |\n", mc.Mean))
	sb.WriteString(fmt.Sprintf("| Median | %.4f |\n", mc.Median))
	sb.WriteString(fmt.Sprintf("| Stddev | %.4f |\n", mc.Stddev))
	sb.WriteString(fmt.Sprintf("| P5 | %.4f |\n", mc.P5))
	sb.WriteString(fmt.Sprintf("| P25 | %.4f |\n", mc.P25))
	sb.WriteString(fmt.Sprintf("| P50 | %.4f |\n", mc.P50))
	sb.WriteString(fmt.Sprintf("| P75 | %.4f |\n", mc.P75))
	sb.WriteString(fmt.Sprintf("| P95 | %.4f |\n", mc.P95))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Probability of profit: %.4f (n=%d included)\n\n", mc.ProbProfit, mc.Included))
	sb.WriteString(fmt.Sprintf("Risk of ruin: %.4f (n=%d included)\n", mc.RiskOfRuin, mc.Included))

	return sb.String()
}

// RenderSummaryMarkdown renders the stored-runs summary as Markdown string.
func RenderSummaryMarkdown(r *SummaryReport) string {
	var sb strings.Builder

	sb.WriteString("# Validation Runs\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Runs: %d\n\n", r.RunCount))

	if len(r.Runs) == 0 {
		sb.WriteString("No runs stored.\n")
		return sb.String()
	}

	sb.WriteString("| Instrument | Strategy | Mode | Folds | FoldMean | FoldStddev | Trades | TermMean | P5 | P95 | ProbProfit | RiskOfRuin | Confidence |\n")
	sb.WriteString("|------------|----------|------|-------|----------|------------|--------|----------|----|-----|------------|------------|------------|\n")
	for _, row := range r.Runs {
		confidence := "OK"
		if row.LowConfidence {
			confidence = "LOW"
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %d | %.4f | %.4f | %d | %.4f | %.4f | %.4f | %.4f | %.4f | %s |\n",
			row.Instrument, row.StrategyID, row.Mode,
			row.FoldCount, row.FoldMean, row.FoldStddev, row.TradeCount,
			row.TerminalMean, row.TerminalP5, row.TerminalP95,
			row.ProbProfit, row.RiskOfRuin, confidence))
	}

	return sb.String()
}

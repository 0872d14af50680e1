// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingestion metrics
	CandlesIngested  *prometheus.CounterVec
	CandlesRejected  *prometheus.CounterVec
	FeedReconnects   prometheus.Counter
	FeedLastCandleMs prometheus.Gauge

	// Validation metrics
	FoldsEvaluated       prometheus.Counter
	TradesSimulated      prometheus.Counter
	SimulationsRun       *prometheus.CounterVec
	DegenerateExclusions prometheus.Counter
	LowConfidenceRuns    *prometheus.CounterVec

	// Latency metrics
	MonteCarloDuration prometheus.Histogram
	RunDuration        *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Reporting metrics
	ReportsGenerated prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "strategy_validation_lab"
	}

	return &Metrics{
		// Ingestion metrics
		CandlesIngested: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "candles_ingested_total",
			Help:      "Total number of candles written to storage",
		}, []string{"instrument", "source"}),
		CandlesRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "candles_rejected_total",
			Help:      "Total number of candles rejected by reason",
		}, []string{"instrument", "reason"}),
		FeedReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "feed_reconnects_total",
			Help:      "Total number of WebSocket feed reconnections",
		}),
		FeedLastCandleMs: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "feed_last_candle_timestamp_ms",
			Help:      "Timestamp of the last closed bar received from the feed",
		}),

		// Validation metrics
		FoldsEvaluated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "folds_evaluated_total",
			Help:      "Total number of walk-forward folds evaluated",
		}),
		TradesSimulated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "trades_simulated_total",
			Help:      "Total number of trades produced by bar replay",
		}),
		SimulationsRun: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "simulations_run_total",
			Help:      "Total number of Monte Carlo iterations by resample mode",
		}, []string{"mode"}),
		DegenerateExclusions: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "degenerate_exclusions_total",
			Help:      "Total number of Monte Carlo iterations excluded as degenerate",
		}),
		LowConfidenceRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "low_confidence_runs_total",
			Help:      "Total number of runs flagged below a statistical floor",
		}, []string{"floor"}),

		// Latency metrics
		MonteCarloDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "monte_carlo_duration_seconds",
			Help:      "Monte Carlo resampling duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		RunDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "run_duration_seconds",
			Help:      "Full harness run duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		}, []string{"strategy"}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Reporting metrics
		ReportsGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reporting",
			Name:      "reports_generated_total",
			Help:      "Total number of reports generated",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordCandlesIngested adds to the candles ingested counter.
func RecordCandlesIngested(instrument, source string, n int) {
	DefaultMetrics.CandlesIngested.WithLabelValues(instrument, source).Add(float64(n))
}

// RecordCandleRejected increments the rejected counter for a reason.
func RecordCandleRejected(instrument, reason string) {
	DefaultMetrics.CandlesRejected.WithLabelValues(instrument, reason).Inc()
}

// RecordFoldsEvaluated adds to the evaluated folds counter.
func RecordFoldsEvaluated(n int) {
	DefaultMetrics.FoldsEvaluated.Add(float64(n))
}

// RecordTradesSimulated adds to the simulated trades counter.
func RecordTradesSimulated(n int) {
	DefaultMetrics.TradesSimulated.Add(float64(n))
}

// RecordMonteCarlo records one resampling pass.
func RecordMonteCarlo(mode string, simulations, excluded int, seconds float64) {
	DefaultMetrics.SimulationsRun.WithLabelValues(mode).Add(float64(simulations))
	DefaultMetrics.DegenerateExclusions.Add(float64(excluded))
	DefaultMetrics.MonteCarloDuration.Observe(seconds)
}

// RecordLowConfidence increments the low-confidence counter for a floor.
func RecordLowConfidence(floor string) {
	DefaultMetrics.LowConfidenceRuns.WithLabelValues(floor).Inc()
}

// RecordRunDuration records a full harness run duration.
func RecordRunDuration(strategyID string, seconds float64) {
	DefaultMetrics.RunDuration.WithLabelValues(strategyID).Observe(seconds)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordReportGenerated increments the reports generated counter.
func RecordReportGenerated() {
	DefaultMetrics.ReportsGenerated.Inc()
}

package validation

import (
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sync"

	"strategy-validation-lab/internal/domain"
	"strategy-validation-lab/internal/metrics"
)

// MonteCarloResult holds the resampled terminal-multiple distribution.
// Excluded counts degenerate iterations dropped from the aggregates;
// Included + Excluded always equals Simulations.
type MonteCarloResult struct {
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

	// ProbProfit is the fraction of included iterations ending above
	// the starting capital. RiskOfRuin is the fraction whose resampled
	// path drew down past the configured ruin threshold.
	ProbProfit float64
	RiskOfRuin float64

	// Terminals holds the included terminal multiples in iteration
	// order, for per-simulation dumps.
	Terminals []float64

	// LowConfidence is set when the trade set is below the statistical
	// floor. The numbers remain inspectable under the flag.
	LowConfidence bool
}

// simOutcome is one iteration's reduction. Ephemeral by design: the
// resampled sequence itself is never retained.
type simOutcome struct {
	terminal   float64
	ruined     bool
	degenerate bool
}

// RunMonteCarlo resamples the trade set's fractional returns N times and
// reduces each draw to a terminal equity multiple via log-return
// compounding. Shuffle mode permutes the original multiset; bootstrap
// mode draws with replacement at the original cardinality.
//
// Iterations are independent, so they fan out across workers; each
// iteration gets its own RNG seeded from the configured seed plus its
// index, which keeps results identical regardless of worker count.
func RunMonteCarlo(cfg domain.ValidationConfig, trades []*domain.Trade) (*MonteCarloResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	n := len(trades)
	if n == 0 {
		return nil, fmt.Errorf("%w: no trades to resample", ErrInsufficientData)
	}

	returns := domain.Returns(trades)
	outcomes := make([]simOutcome, cfg.Simulations)

	// The compounded terminal multiple is mathematically order-invariant,
	// so shuffle mode computes it once from the original sequence.
	// Recomputing per permutation would leak float-summation noise into a
	// distribution that must have zero variance.
	shuffleTerminal := math.NaN()
	if cfg.Mode == domain.ModeShuffle {
		shuffleTerminal = metrics.CompoundLog(returns)
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > cfg.Simulations {
		workers = cfg.Simulations
	}

	var wg sync.WaitGroup
	jobs := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			draw := make([]float64, n)
			for i := range jobs {
				rng := rand.New(rand.NewSource(cfg.Seed + int64(i)))
				resample(cfg.Mode, rng, returns, draw)
				terminal := shuffleTerminal
				if cfg.Mode == domain.ModeBootstrap {
					terminal = metrics.CompoundLog(draw)
				}
				outcomes[i] = reduce(cfg, terminal, draw)
			}
		}()
	}
	for i := 0; i < cfg.Simulations; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return aggregate(cfg, n, outcomes)
}

// resample fills dst with one draw from returns under the given mode.
func resample(mode domain.ResampleMode, rng *rand.Rand, returns, dst []float64) {
	n := len(returns)
	if mode == domain.ModeShuffle {
		for i, j := range rng.Perm(n) {
			dst[i] = returns[j]
		}
		return
	}
	for i := 0; i < n; i++ {
		dst[i] = returns[rng.Intn(n)]
	}
}

// reduce collapses one resampled sequence to its outcome record.
func reduce(cfg domain.ValidationConfig, terminal float64, draw []float64) simOutcome {
	if math.IsNaN(terminal) || math.IsInf(terminal, 0) || terminal > cfg.DegenerateThreshold {
		return simOutcome{degenerate: true}
	}
	dd := metrics.MaxDrawdownFromReturns(draw)
	return simOutcome{
		terminal: terminal,
		ruined:   dd > cfg.RuinThreshold,
	}
}

func aggregate(cfg domain.ValidationConfig, tradeCount int, outcomes []simOutcome) (*MonteCarloResult, error) {
	res := &MonteCarloResult{
		Simulations:   len(outcomes),
		LowConfidence: tradeCount < cfg.MinTradesFloor,
	}

	terminals := make([]float64, 0, len(outcomes))
	profitable := 0
	ruined := 0
	for _, o := range outcomes {
		if o.degenerate {
			res.Excluded++
			continue
		}
		res.Included++
		terminals = append(terminals, o.terminal)
		if o.terminal > 1 {
			profitable++
		}
		if o.ruined {
			ruined++
		}
	}

	if res.Included == 0 {
		return nil, fmt.Errorf("%w: %d of %d iterations exceeded threshold %g",
			ErrNumericDegeneracy, res.Excluded, res.Simulations, cfg.DegenerateThreshold)
	}

	res.Terminals = terminals
	sorted := metrics.SortedCopy(terminals)
	res.Mean = metrics.Mean(terminals)
	res.Median = metrics.Median(terminals)
	res.Stddev = metrics.SampleStddev(terminals)
	res.P5 = metrics.Percentile(sorted, 0.05)
	res.P25 = metrics.Percentile(sorted, 0.25)
	res.P50 = metrics.Percentile(sorted, 0.50)
	res.P75 = metrics.Percentile(sorted, 0.75)
	res.P95 = metrics.Percentile(sorted, 0.95)
	res.ProbProfit = float64(profitable) / float64(res.Included)
	res.RiskOfRuin = float64(ruined) / float64(res.Included)

	return res, nil
}

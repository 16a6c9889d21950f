package backtest

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/models"
)

// MonteCarloConfig configures the bootstrap resampling of graded bets.
type MonteCarloConfig struct {
	Iterations int
	// Seed fixes the RNG for reproducible reports. Zero picks a fixed
	// default rather than wall clock, so reruns stay comparable.
	Seed int64
}

// MonteCarloResult describes the resampled ROI distribution. It answers how
// fragile the observed ROI is to the particular sequence of results.
type MonteCarloResult struct {
	Iterations          int                `json:"iterations"`
	MeanROI             float64            `json:"mean_roi"`
	StdROI              float64            `json:"std_roi"`
	ProbabilityOfProfit float64            `json:"probability_of_profit"`
	Percentiles         map[string]float64 `json:"percentiles"`
}

// RunMonteCarlo bootstrap-resamples the settled bets with replacement and
// recomputes ROI per iteration.
func RunMonteCarlo(bets []models.BetResult, cfg MonteCarloConfig) (MonteCarloResult, error) {
	settled := make([]models.BetResult, 0, len(bets))
	for _, bet := range bets {
		if bet.Settled() {
			settled = append(settled, bet)
		}
	}
	if len(settled) == 0 {
		return MonteCarloResult{}, fmt.Errorf("no settled bets to resample")
	}
	if cfg.Iterations <= 0 {
		cfg.Iterations = 1000
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = 1
	}

	rng := rand.New(rand.NewSource(seed))
	rois := make([]float64, cfg.Iterations)
	for i := 0; i < cfg.Iterations; i++ {
		profit, wagered := 0.0, 0.0
		for range settled {
			bet := settled[rng.Intn(len(settled))]
			profit += bet.Profit
			wagered += bet.Wager
		}
		if wagered > 0 {
			rois[i] = profit / wagered
		}
	}

	mean, std := meanStd(rois)
	profitable := 0
	for _, roi := range rois {
		if roi > 0 {
			profitable++
		}
	}

	return MonteCarloResult{
		Iterations:          cfg.Iterations,
		MeanROI:             mean,
		StdROI:              std,
		ProbabilityOfProfit: float64(profitable) / float64(cfg.Iterations),
		Percentiles: map[string]float64{
			"p05": percentile(rois, 0.05),
			"p25": percentile(rois, 0.25),
			"p50": percentile(rois, 0.50),
			"p75": percentile(rois, 0.75),
			"p95": percentile(rois, 0.95),
		},
	}, nil
}

func meanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}

func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64{}, values...)
	sort.Float64s(sorted)
	idx := int(math.Floor(p * float64(len(sorted)-1)))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

package backtest

import (
	"fmt"

	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/models"
)

// Config carries the run parameters for one backtest.
type Config struct {
	// Markets to evaluate per game, in a fixed order.
	Markets []models.Market
	// MinEdge is the per-market minimum edge, in market-native points,
	// required to place a bet. Predictions under the threshold are logged
	// as no-bets.
	MinEdge map[models.Market]float64
	// Wager is the flat stake per bet in units.
	Wager float64
	// Workers shards games across goroutines. Zero or one keeps the run
	// single-threaded.
	Workers int
	// MinTrainSeasons gates walk-forward splits.
	MinTrainSeasons int
}

// DefaultConfig returns the standard run parameters: all four markets, a
// two-point edge gate, flat one-unit staking.
func DefaultConfig() Config {
	return Config{
		Markets: models.AllMarkets(),
		MinEdge: map[models.Market]float64{
			models.MarketSpread:   2.0,
			models.MarketTotal:    3.0,
			models.MarketH1Spread: 1.5,
			models.MarketH1Total:  2.0,
		},
		Wager:           1.0,
		Workers:         1,
		MinTrainSeasons: 2,
	}
}

// Validate checks run parameters.
func (c Config) Validate() error {
	if len(c.Markets) == 0 {
		return fmt.Errorf("at least one market is required")
	}
	for _, market := range c.Markets {
		if !market.Valid() {
			return fmt.Errorf("unknown market %q", market)
		}
	}
	if c.Wager <= 0 {
		return fmt.Errorf("wager must be positive")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers cannot be negative")
	}
	if c.MinTrainSeasons < 1 {
		return fmt.Errorf("min train seasons must be at least 1")
	}
	for market, edge := range c.MinEdge {
		if edge < 0 {
			return fmt.Errorf("min edge for %s cannot be negative", market)
		}
	}
	return nil
}

// minEdgeFor returns the edge gate for a market, zero when unset.
func (c Config) minEdgeFor(market models.Market) float64 {
	return c.MinEdge[market]
}

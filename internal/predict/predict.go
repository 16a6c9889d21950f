// Package predict turns two rating snapshots into market-native predicted
// lines. The backtest engine treats predictors as injected functions so model
// variants can be swapped without touching the pipeline.
package predict

import (
	"fmt"

	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/models"
)

// Predictor produces a predicted line for one market from the two teams'
// prior-season snapshots. Lines follow market convention: spreads from the
// home perspective (negative = home favored), totals as combined points.
type Predictor interface {
	PredictLine(market models.Market, home, away models.RatingSnapshot) (float64, error)
}

// Model coefficients fit on historical efficiency data. The first-half
// numbers come from regressing half scores on full-game predictions.
const (
	homeCourtMargin = 5.8
	totalAdjustment = 7.0

	h1SpreadFactor    = 0.50
	h1SpreadIntercept = 3.6
	h1TotalFactor     = 0.469
	h1TotalIntercept  = 2.7
)

// EfficiencyModel predicts lines from adjusted offensive/defensive efficiency
// and tempo.
type EfficiencyModel struct{}

// NewEfficiencyModel returns the default rating-based predictor.
func NewEfficiencyModel() *EfficiencyModel {
	return &EfficiencyModel{}
}

// PredictLine implements Predictor for all four supported markets.
func (m *EfficiencyModel) PredictLine(market models.Market, home, away models.RatingSnapshot) (float64, error) {
	switch market {
	case models.MarketSpread:
		return m.spread(home, away), nil
	case models.MarketTotal:
		return m.total(home, away), nil
	case models.MarketH1Spread:
		return m.h1Spread(home, away), nil
	case models.MarketH1Total:
		return m.h1Total(home, away), nil
	}
	return 0, fmt.Errorf("no model for market %q", market)
}

// neutralMargin is the expected home margin on a neutral floor: half the net
// efficiency gap, since both teams contribute to the same possessions.
func neutralMargin(home, away models.RatingSnapshot) float64 {
	return (home.NetRating() - away.NetRating()) / 2.0
}

func (m *EfficiencyModel) spread(home, away models.RatingSnapshot) float64 {
	return -(neutralMargin(home, away) + homeCourtMargin)
}

func (m *EfficiencyModel) total(home, away models.RatingSnapshot) float64 {
	avgTempo := (home.Tempo + away.Tempo) / 2.0
	homePoints := home.AdjOffense * avgTempo / 100.0
	awayPoints := away.AdjOffense * avgTempo / 100.0
	return homePoints + awayPoints + totalAdjustment
}

func (m *EfficiencyModel) h1Spread(home, away models.RatingSnapshot) float64 {
	return -(neutralMargin(home, away)*h1SpreadFactor + h1SpreadIntercept)
}

func (m *EfficiencyModel) h1Total(home, away models.RatingSnapshot) float64 {
	return m.total(home, away)*h1TotalFactor + h1TotalIntercept
}

// Func adapts a plain function to the Predictor interface, mirroring
// http.HandlerFunc. Useful for fixture predictors in tests.
type Func func(market models.Market, home, away models.RatingSnapshot) (float64, error)

// PredictLine implements Predictor.
func (f Func) PredictLine(market models.Market, home, away models.RatingSnapshot) (float64, error) {
	return f(market, home, away)
}

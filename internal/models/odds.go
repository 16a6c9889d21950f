package models

import (
	"fmt"
	"time"
)

// Market identifies a betting market. Lines are quoted in market-native
// points: spreads from the home perspective (negative = home favored),
// totals as combined points.
type Market string

const (
	MarketSpread   Market = "spread"
	MarketTotal    Market = "total"
	MarketH1Spread Market = "h1_spread"
	MarketH1Total  Market = "h1_total"
)

// AllMarkets lists every supported market in a fixed order.
func AllMarkets() []Market {
	return []Market{MarketSpread, MarketTotal, MarketH1Spread, MarketH1Total}
}

// IsSpread reports whether the market is a point-spread market.
func (m Market) IsSpread() bool {
	return m == MarketSpread || m == MarketH1Spread
}

// Valid reports whether the market is one of the closed set.
func (m Market) Valid() bool {
	switch m {
	case MarketSpread, MarketTotal, MarketH1Spread, MarketH1Total:
		return true
	}
	return false
}

// PickSide is the side of a market a bet is placed on.
type PickSide string

const (
	PickHome  PickSide = "home"
	PickAway  PickSide = "away"
	PickOver  PickSide = "over"
	PickUnder PickSide = "under"
)

// OddsQuote is a single bookmaker's line for one game and market at one
// capture time. PriceHome/PriceAway carry American odds for the home/over and
// away/under sides respectively.
type OddsQuote struct {
	Home         CanonicalTeam `json:"home"`
	Away         CanonicalTeam `json:"away"`
	Date         time.Time     `json:"date"`
	CommenceTime time.Time     `json:"commence_time"`
	Bookmaker    string        `json:"bookmaker"`
	Market       Market        `json:"market"`
	Line         float64       `json:"line"`
	PriceHome    float64       `json:"price_home"`
	PriceAway    float64       `json:"price_away"`
	CapturedAt   time.Time     `json:"captured_at"`
}

// Swapped returns the quote re-oriented so home and away are exchanged. Some
// sources record the same fixture with swapped labels; spread lines flip sign,
// totals are orientation-independent.
func (q OddsQuote) Swapped() OddsQuote {
	swapped := q
	swapped.Home, swapped.Away = q.Away, q.Home
	swapped.PriceHome, swapped.PriceAway = q.PriceAway, q.PriceHome
	if q.Market.IsSpread() {
		swapped.Line = -q.Line
	}
	return swapped
}

// Price returns the American price for the given side of this quote.
func (q OddsQuote) Price(side PickSide) (float64, bool) {
	switch side {
	case PickHome, PickOver:
		return q.PriceHome, q.PriceHome != 0
	case PickAway, PickUnder:
		return q.PriceAway, q.PriceAway != 0
	}
	return 0, false
}

// PayoutMultiplier converts an American price to the profit earned per unit
// wagered on a win. Missing prices must be skipped by the caller, so a zero
// price is an error here rather than a default.
func PayoutMultiplier(americanPrice float64) (float64, error) {
	if americanPrice == 0 {
		return 0, fmt.Errorf("american price is zero")
	}
	if americanPrice > 0 {
		return americanPrice / 100.0, nil
	}
	return 100.0 / -americanPrice, nil
}

package models

import "time"

// GameRecord is one historical game with final and first-half scores. Records
// are created once during dataset build and read-only during backtesting.
type GameRecord struct {
	GameID    string    `json:"game_id"`
	Date      time.Time `json:"date"`
	Season    int       `json:"season"`
	HomeRaw   string    `json:"home_raw"`
	AwayRaw   string    `json:"away_raw"`
	HomeScore int       `json:"home_score"`
	AwayScore int       `json:"away_score"`
	H1Home    int       `json:"h1_home"`
	H1Away    int       `json:"h1_away"`
	Source    string    `json:"source,omitempty"`
}

// Margin returns the full-game home margin (positive = home won).
func (g GameRecord) Margin() float64 {
	return float64(g.HomeScore - g.AwayScore)
}

// Total returns the full-game combined score.
func (g GameRecord) Total() float64 {
	return float64(g.HomeScore + g.AwayScore)
}

// H1Margin returns the first-half home margin.
func (g GameRecord) H1Margin() float64 {
	return float64(g.H1Home - g.H1Away)
}

// H1Total returns the first-half combined score.
func (g GameRecord) H1Total() float64 {
	return float64(g.H1Home + g.H1Away)
}

// HasH1 reports whether first-half scores are present.
func (g GameRecord) HasH1() bool {
	return g.H1Home > 0 || g.H1Away > 0
}

// ActualResult returns the game outcome in the given market's native units.
func (g GameRecord) ActualResult(market Market) (float64, bool) {
	switch market {
	case MarketSpread:
		return g.Margin(), true
	case MarketTotal:
		return g.Total(), true
	case MarketH1Spread:
		if !g.HasH1() {
			return 0, false
		}
		return g.H1Margin(), true
	case MarketH1Total:
		if !g.HasH1() {
			return 0, false
		}
		return g.H1Total(), true
	}
	return 0, false
}

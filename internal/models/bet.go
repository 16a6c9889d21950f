package models

// Outcome is the graded result of a bet.
type Outcome string

const (
	OutcomeWin  Outcome = "WIN"
	OutcomeLoss Outcome = "LOSS"
	OutcomePush Outcome = "PUSH"
	OutcomeSkip Outcome = "SKIP"
)

// BetResult is one graded (game, market) decision. It is created by the
// orchestrator once the game clears the minimum-edge and data-availability
// gates, and never mutated afterwards. NoBet marks predictions that were
// logged for calibration without a wager.
type BetResult struct {
	GameID        string   `json:"game_id"`
	Season        int      `json:"season"`
	Market        Market   `json:"market"`
	Home          string   `json:"home"`
	Away          string   `json:"away"`
	PredictedLine float64  `json:"predicted_line"`
	OpeningLine   float64  `json:"opening_line"`
	ClosingLine   float64  `json:"closing_line"`
	Edge          float64  `json:"edge"`
	PickSide      PickSide `json:"pick_side,omitempty"`
	Price         float64  `json:"price,omitempty"`
	Wager         float64  `json:"wager,omitempty"`
	Outcome       Outcome  `json:"outcome"`
	Profit        float64  `json:"profit"`
	CLV           float64  `json:"clv"`
	CLVPercent    float64  `json:"clv_percent"`
	NoBet         bool     `json:"no_bet,omitempty"`
}

// Settled reports whether the bet carries a win/loss/push grade.
func (b BetResult) Settled() bool {
	switch b.Outcome {
	case OutcomeWin, OutcomeLoss, OutcomePush:
		return !b.NoBet
	}
	return false
}

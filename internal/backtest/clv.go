package backtest

import (
	"fmt"
	"math"

	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/models"
)

// CLV computes closing line value for a bet placed at the opening line. The
// sign convention: positive when the market moved toward the bettor's side
// after the open, meaning the opening price was better than the close.
//
// Spread lines are home-perspective: the market moving toward the home side
// pushes the closing number further negative, so home CLV is opening minus
// closing. An opening of -3 that closes -5 gives the home bettor +2 points of
// value. The away side, and over/under on totals, mirror accordingly.
//
// CLV is independent of whether the bet won. It is a market-efficiency
// signal, not an outcome signal.
func CLV(side models.PickSide, openingLine, closingLine float64) (points, percent float64, err error) {
	switch side {
	case models.PickHome:
		points = openingLine - closingLine
	case models.PickAway:
		points = closingLine - openingLine
	case models.PickOver:
		points = closingLine - openingLine
	case models.PickUnder:
		points = openingLine - closingLine
	default:
		return 0, 0, fmt.Errorf("unknown pick side %q", side)
	}

	if openingLine != 0 {
		percent = points / math.Abs(openingLine) * 100.0
	}
	return points, percent, nil
}

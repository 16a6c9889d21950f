package backtest

import (
	"fmt"

	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/models"
)

// gradeEpsilon separates a push from a half-point decision. Lines are quoted
// in half-point increments, so any |cover| below this is an exact landing.
const gradeEpsilon = 0.25

// Grade returns the outcome of a settled bet. The line is always quoted from
// the home perspective for spreads; actual is the game result in the
// market's native units (home margin for spreads, combined points for
// totals). Grading is a pure function: the same inputs always produce the
// same outcome.
func Grade(side models.PickSide, line, actual float64) (models.Outcome, error) {
	var cover float64
	switch side {
	case models.PickHome:
		cover = actual + line
	case models.PickAway:
		cover = -actual - line
	case models.PickOver:
		cover = actual - line
	case models.PickUnder:
		cover = line - actual
	default:
		return "", fmt.Errorf("unknown pick side %q", side)
	}

	switch {
	case cover > gradeEpsilon:
		return models.OutcomeWin, nil
	case cover < -gradeEpsilon:
		return models.OutcomeLoss, nil
	}
	return models.OutcomePush, nil
}

// SettleProfit converts a graded outcome into profit for one wager at the
// quoted American price. The real price is mandatory: assuming a standard
// juice would silently corrupt ROI across the whole run.
func SettleProfit(outcome models.Outcome, price, wager float64) (float64, error) {
	switch outcome {
	case models.OutcomePush:
		return 0, nil
	case models.OutcomeLoss:
		return -wager, nil
	case models.OutcomeWin:
		multiplier, err := models.PayoutMultiplier(price)
		if err != nil {
			return 0, err
		}
		return wager * multiplier, nil
	}
	return 0, fmt.Errorf("cannot settle outcome %q", outcome)
}

package backtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/models"
)

func TestGrade(t *testing.T) {
	tests := []struct {
		name   string
		side   models.PickSide
		line   float64
		actual float64
		want   models.Outcome
	}{
		// Home laying 5, wins by 10: cover = 10 + (-5) = 5.
		{"home favorite covers", models.PickHome, -5.0, 10, models.OutcomeWin},
		{"home favorite fails to cover", models.PickHome, -5.0, 3, models.OutcomeLoss},
		{"home favorite exact push", models.PickHome, -5.0, 5, models.OutcomePush},
		{"home dog covers outright loss", models.PickHome, 7.5, -3, models.OutcomeWin},
		{"away side mirrors home", models.PickAway, -5.0, 3, models.OutcomeWin},
		{"away push", models.PickAway, -5.0, 5, models.OutcomePush},
		{"half point never pushes", models.PickHome, -4.5, 5, models.OutcomeWin},
		{"over hits", models.PickOver, 148.5, 152, models.OutcomeWin},
		{"over misses", models.PickOver, 148.5, 140, models.OutcomeLoss},
		{"total push", models.PickOver, 148.0, 148, models.OutcomePush},
		{"under hits", models.PickUnder, 148.5, 140, models.OutcomeWin},
		{"under push", models.PickUnder, 148.0, 148, models.OutcomePush},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, err := Grade(tt.side, tt.line, tt.actual)
			require.NoError(t, err)
			assert.Equal(t, tt.want, outcome)
		})
	}
}

func TestGradeIdempotent(t *testing.T) {
	for i := 0; i < 3; i++ {
		outcome, err := Grade(models.PickHome, -5.0, 10)
		require.NoError(t, err)
		assert.Equal(t, models.OutcomeWin, outcome)
	}
}

func TestGradeUnknownSide(t *testing.T) {
	_, err := Grade(models.PickSide("middle"), -5.0, 10)
	assert.Error(t, err)
}

func TestSettleProfit(t *testing.T) {
	tests := []struct {
		name    string
		outcome models.Outcome
		price   float64
		wager   float64
		want    float64
	}{
		{"win at -110", models.OutcomeWin, -110, 1.0, 100.0 / 110.0},
		{"win at +150", models.OutcomeWin, 150, 1.0, 1.5},
		{"loss forfeits wager", models.OutcomeLoss, -110, 1.0, -1.0},
		{"push returns stake", models.OutcomePush, -110, 1.0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profit, err := SettleProfit(tt.outcome, tt.price, tt.wager)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, profit, 1e-9)
		})
	}
}

func TestSettleProfitRequiresRealPrice(t *testing.T) {
	_, err := SettleProfit(models.OutcomeWin, 0, 1.0)
	assert.Error(t, err)
}

func TestSettleProfitRejectsSkip(t *testing.T) {
	_, err := SettleProfit(models.OutcomeSkip, -110, 1.0)
	assert.Error(t, err)
}

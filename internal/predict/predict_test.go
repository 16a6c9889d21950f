package predict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/models"
)

func ratingFor(name string, adjO, adjD, tempo float64) models.RatingSnapshot {
	return models.RatingSnapshot{
		Team:       models.CanonicalTeam{Name: name},
		Season:     2023,
		AdjOffense: adjO,
		AdjDefense: adjD,
		Tempo:      tempo,
	}
}

func TestSpreadFavorsStrongerHome(t *testing.T) {
	model := NewEfficiencyModel()
	home := ratingFor("Duke", 120, 95, 68)     // net +25
	away := ratingFor("Furman", 105, 100, 66)  // net +5

	line, err := model.PredictLine(models.MarketSpread, home, away)
	require.NoError(t, err)

	// Neutral margin (25-5)/2 = 10, plus home court 5.8.
	assert.InDelta(t, -15.8, line, 1e-9)
}

func TestSpreadHomeCourtOnlyWhenEven(t *testing.T) {
	model := NewEfficiencyModel()
	home := ratingFor("Duke", 115, 95, 68)
	away := ratingFor("Kansas", 115, 95, 68)

	line, err := model.PredictLine(models.MarketSpread, home, away)
	require.NoError(t, err)
	assert.InDelta(t, -homeCourtMargin, line, 1e-9)
}

func TestSpreadUnderdogHome(t *testing.T) {
	model := NewEfficiencyModel()
	home := ratingFor("Furman", 105, 100, 66)
	away := ratingFor("Duke", 125, 90, 68)

	line, err := model.PredictLine(models.MarketSpread, home, away)
	require.NoError(t, err)
	assert.Greater(t, line, 0.0)
}

func TestTotal(t *testing.T) {
	model := NewEfficiencyModel()
	home := ratingFor("Duke", 120, 95, 70)
	away := ratingFor("Kansas", 110, 95, 66)

	line, err := model.PredictLine(models.MarketTotal, home, away)
	require.NoError(t, err)

	// avg tempo 68: 120*0.68 + 110*0.68 + 7.0
	assert.InDelta(t, 163.4, line, 1e-9)
}

func TestH1Spread(t *testing.T) {
	model := NewEfficiencyModel()
	home := ratingFor("Duke", 120, 95, 68) // net +25
	away := ratingFor("Furman", 105, 100, 66)

	line, err := model.PredictLine(models.MarketH1Spread, home, away)
	require.NoError(t, err)

	// Half of the neutral margin plus the first-half home edge.
	assert.InDelta(t, -(10*h1SpreadFactor + h1SpreadIntercept), line, 1e-9)
}

func TestH1TotalTracksFullGameTotal(t *testing.T) {
	model := NewEfficiencyModel()
	home := ratingFor("Duke", 120, 95, 70)
	away := ratingFor("Kansas", 110, 95, 66)

	fg, err := model.PredictLine(models.MarketTotal, home, away)
	require.NoError(t, err)
	h1, err := model.PredictLine(models.MarketH1Total, home, away)
	require.NoError(t, err)

	assert.InDelta(t, fg*h1TotalFactor+h1TotalIntercept, h1, 1e-9)
}

func TestUnknownMarket(t *testing.T) {
	model := NewEfficiencyModel()
	_, err := model.PredictLine(models.Market("moneyline"), models.RatingSnapshot{}, models.RatingSnapshot{})
	assert.Error(t, err)
}

func TestPredictorFuncAdapter(t *testing.T) {
	fixed := Func(func(models.Market, models.RatingSnapshot, models.RatingSnapshot) (float64, error) {
		return -7.5, nil
	})
	line, err := fixed.PredictLine(models.MarketSpread, models.RatingSnapshot{}, models.RatingSnapshot{})
	require.NoError(t, err)
	assert.InDelta(t, -7.5, line, 1e-9)
}

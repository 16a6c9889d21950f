package backtest

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/audit"
	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/models"
	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/odds"
	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/predict"
	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/ratings"
	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/resolver"
)

var (
	testDate   = time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	testTipoff = time.Date(2024, time.January, 15, 19, 0, 0, 0, time.UTC)
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	return logger
}

func fixtureResolver(t *testing.T) *resolver.TeamResolver {
	t.Helper()
	teams := []models.CanonicalTeam{
		{Name: "Duke"},
		{Name: "North Carolina"},
		{Name: "Houston"},
	}
	aliases := []models.Alias{
		{RawText: "duke blue devils", Canonical: "Duke", Source: "test"},
		{RawText: "north carolina tar heels", Canonical: "North Carolina", Source: "test"},
	}
	idx, err := resolver.BuildIndex(teams, aliases, resolver.IndexOptions{Logger: quietLogger()})
	require.NoError(t, err)
	return resolver.NewTeamResolver(idx, resolver.ResolverOptions{
		NonMembers: []string{"Team USA"},
		Logger:     quietLogger(),
	})
}

func fixtureRatings(t *testing.T) *ratings.Store {
	t.Helper()
	snap := func(name string, adjO, adjD float64) models.RatingSnapshot {
		return models.RatingSnapshot{
			Team:       models.CanonicalTeam{Name: name},
			Season:     2023,
			AdjOffense: adjO,
			AdjDefense: adjD,
			Tempo:      68,
		}
	}
	store, err := ratings.NewStore(ratings.NewStaticSource(map[int][]models.RatingSnapshot{
		2023: {
			snap("Duke", 120, 95),
			snap("North Carolina", 115, 96),
		},
	}), ratings.StoreOptions{Logger: quietLogger()})
	require.NoError(t, err)
	return store
}

func fixtureOdds(t *testing.T) *odds.Store {
	t.Helper()
	store := odds.NewStore(odds.StoreOptions{
		BookmakerOrder: []string{"pinnacle"},
		Logger:         quietLogger(),
	})
	add := func(bookmaker string, line float64, captured time.Time) {
		require.NoError(t, store.Add(models.OddsQuote{
			Home:         models.CanonicalTeam{Name: "Duke"},
			Away:         models.CanonicalTeam{Name: "North Carolina"},
			Date:         testDate,
			CommenceTime: testTipoff,
			Bookmaker:    bookmaker,
			Market:       models.MarketSpread,
			Line:         line,
			PriceHome:    -110,
			PriceAway:    -105,
			CapturedAt:   captured,
		}))
	}
	// Opening -3 moves to a -5 close; the preferred book carries the open.
	add("pinnacle", -3.0, testTipoff.Add(-72*time.Hour))
	add("fanduel", -5.0, testTipoff.Add(-1*time.Hour))
	return store
}

// fixedPredictor always sees Duke eight points better than the market.
func fixedPredictor(line float64) predict.Predictor {
	return predict.Func(func(models.Market, models.RatingSnapshot, models.RatingSnapshot) (float64, error) {
		return line, nil
	})
}

func spreadOnlyConfig() Config {
	cfg := DefaultConfig()
	cfg.Markets = []models.Market{models.MarketSpread}
	return cfg
}

func newTestEngine(t *testing.T, cfg Config, predicted float64) *Engine {
	t.Helper()
	engine, err := NewEngine(cfg, fixtureResolver(t), fixtureRatings(t), fixtureOdds(t),
		fixedPredictor(predicted), quietLogger())
	require.NoError(t, err)
	return engine
}

func dukeGame() models.GameRecord {
	return models.GameRecord{
		GameID:    "duke-unc",
		Date:      testDate,
		Season:    2024,
		HomeRaw:   "Duke Blue Devils",
		AwayRaw:   "North Carolina Tar Heels",
		HomeScore: 85,
		AwayScore: 75,
	}
}

func TestEngineCompleteGame(t *testing.T) {
	engine := newTestEngine(t, spreadOnlyConfig(), -8.0)

	result, err := engine.Run(context.Background(), []models.GameRecord{dukeGame()})
	require.NoError(t, err)

	require.Len(t, result.Bets, 1)
	bet := result.Bets[0]
	assert.False(t, bet.NoBet)
	assert.Equal(t, models.PickHome, bet.PickSide)
	// Margin +10 against the -3 pinnacle line: cover = 10 + (-3) = 7.
	assert.Equal(t, models.OutcomeWin, bet.Outcome)
	assert.InDelta(t, 100.0/110.0, bet.Profit, 1e-9)
	assert.InDelta(t, -3.0, bet.OpeningLine, 1e-9)
	assert.InDelta(t, -5.0, bet.ClosingLine, 1e-9)
	assert.InDelta(t, 2.0, bet.CLV, 1e-9)

	records := result.Log.Records()
	require.Len(t, records, 1)
	assert.Equal(t, audit.FinalComplete, records[0].Final)
	assert.Equal(t, 1, result.Summary.Completed)
}

func TestEngineSkipReasons(t *testing.T) {
	games := []models.GameRecord{
		{GameID: "g1", Date: testDate, Season: 2024, HomeRaw: "Mystery Team", AwayRaw: "Duke", HomeScore: 70, AwayScore: 60},
		{GameID: "g2", Date: testDate, Season: 2024, HomeRaw: "Team USA", AwayRaw: "Duke", HomeScore: 70, AwayScore: 60},
		{GameID: "g3", Date: testDate, Season: 2024, HomeRaw: "Houston", AwayRaw: "Duke", HomeScore: 70, AwayScore: 60},
		{GameID: "g4", Date: testDate.AddDate(0, 0, 3), Season: 2024, HomeRaw: "North Carolina", AwayRaw: "Duke", HomeScore: 70, AwayScore: 60},
	}

	engine := newTestEngine(t, spreadOnlyConfig(), -8.0)
	result, err := engine.Run(context.Background(), games)
	require.NoError(t, err)

	skips := result.Summary.SkipByWhy
	assert.Equal(t, 1, skips[SkipTeamUnresolved], "g1")
	assert.Equal(t, 1, skips[SkipNonMember], "g2")
	assert.Equal(t, 1, skips[SkipRatingsMissing], "g3: Houston has no 2023 snapshot")
	assert.Equal(t, 1, skips[SkipOddsMissing], "g4: no quote on that date")
	assert.Equal(t, 4, result.Summary.Skipped)
	assert.Empty(t, result.Bets)
}

func TestEngineAuditStages(t *testing.T) {
	games := []models.GameRecord{
		dukeGame(),
		{GameID: "g1", Date: testDate, Season: 2024, HomeRaw: "Mystery Team", AwayRaw: "Duke", HomeScore: 70, AwayScore: 60},
		{GameID: "g3", Date: testDate, Season: 2024, HomeRaw: "Houston", AwayRaw: "Duke", HomeScore: 70, AwayScore: 60},
		{GameID: "g4", Date: testDate.AddDate(0, 0, 3), Season: 2024, HomeRaw: "North Carolina", AwayRaw: "Duke", HomeScore: 70, AwayScore: 60},
	}

	engine := newTestEngine(t, spreadOnlyConfig(), -8.0)
	result, err := engine.Run(context.Background(), games)
	require.NoError(t, err)

	stages := make(map[string]string)
	for _, record := range result.Log.Records() {
		stages[record.GameID] = record.Stage
	}
	assert.Equal(t, StageGraded, stages["duke-unc"])
	assert.Equal(t, StageStart, stages["g1"], "unresolved name never passes resolution")
	assert.Equal(t, StageTeamsResolved, stages["g3"], "Houston resolves but has no snapshot")
	assert.Equal(t, StageRatingsLooked, stages["g4"], "no quote on that date")
}

func TestEngineNoBetStage(t *testing.T) {
	// Predicted -3.5 against the -3 market: under the gate, so the game stops
	// at the prediction stage.
	engine := newTestEngine(t, spreadOnlyConfig(), -3.5)

	result, err := engine.Run(context.Background(), []models.GameRecord{dukeGame()})
	require.NoError(t, err)

	records := result.Log.Records()
	require.Len(t, records, 1)
	assert.Equal(t, StagePredicted, records[0].Stage)
	assert.Equal(t, audit.FinalComplete, records[0].Final)
}

func TestEngineNoBetUnderEdgeThreshold(t *testing.T) {
	// Predicted -3.5 against the -3 market line: edge 0.5, under the gate.
	engine := newTestEngine(t, spreadOnlyConfig(), -3.5)

	result, err := engine.Run(context.Background(), []models.GameRecord{dukeGame()})
	require.NoError(t, err)

	require.Len(t, result.Bets, 1)
	assert.True(t, result.Bets[0].NoBet)
	assert.Equal(t, models.OutcomeSkip, result.Bets[0].Outcome)
	// A no-bet is still a fully processed game.
	assert.Equal(t, 1, result.Summary.Completed)
	assert.Equal(t, 1, result.Summary.Overall.NoBets)
	assert.Equal(t, 0, result.Summary.Overall.Bets)
}

func TestEngineSwappedOrientationQuote(t *testing.T) {
	game := dukeGame()
	// The game file has the fixture flipped relative to the odds feed.
	game.HomeRaw, game.AwayRaw = game.AwayRaw, game.HomeRaw
	game.HomeScore, game.AwayScore = game.AwayScore, game.HomeScore

	engine := newTestEngine(t, spreadOnlyConfig(), 8.0)
	result, err := engine.Run(context.Background(), []models.GameRecord{game})
	require.NoError(t, err)

	require.Len(t, result.Bets, 1)
	bet := result.Bets[0]
	assert.Equal(t, "North Carolina", bet.Home)
	// The stored -3 home line flips to +3 for the swapped orientation.
	assert.InDelta(t, 3.0, bet.OpeningLine, 1e-9)
	assert.Equal(t, models.PickAway, bet.PickSide)
}

func TestEngineDeterministicAcrossWorkers(t *testing.T) {
	games := make([]models.GameRecord, 0, 8)
	for i := 0; i < 8; i++ {
		game := dukeGame()
		game.GameID = dukeGameID(i)
		games = append(games, game)
	}

	serial := newTestEngine(t, spreadOnlyConfig(), -8.0)
	serialResult, err := serial.Run(context.Background(), games)
	require.NoError(t, err)

	cfg := spreadOnlyConfig()
	cfg.Workers = 4
	sharded := newTestEngine(t, cfg, -8.0)
	shardedResult, err := sharded.Run(context.Background(), games)
	require.NoError(t, err)

	assert.Equal(t, serialResult.Bets, shardedResult.Bets)
	require.Equal(t, serialResult.Log.Len(), shardedResult.Log.Len())
	for i, record := range serialResult.Log.Records() {
		assert.Equal(t, record.GameID, shardedResult.Log.Records()[i].GameID)
	}
}

func dukeGameID(i int) string {
	return string(rune('a'+i)) + "-duke-unc"
}

func TestEngineCancelledContext(t *testing.T) {
	engine := newTestEngine(t, spreadOnlyConfig(), -8.0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Run(ctx, []models.GameRecord{dukeGame()})
	assert.Error(t, err)
}

func TestEngineValidatesDependencies(t *testing.T) {
	_, err := NewEngine(spreadOnlyConfig(), nil, fixtureRatings(t), fixtureOdds(t), fixedPredictor(-8), quietLogger())
	assert.Error(t, err)

	bad := spreadOnlyConfig()
	bad.Wager = 0
	_, err = NewEngine(bad, fixtureResolver(t), fixtureRatings(t), fixtureOdds(t), fixedPredictor(-8), quietLogger())
	assert.Error(t, err)
}

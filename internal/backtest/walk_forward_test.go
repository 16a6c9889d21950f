package backtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/models"
)

func TestSplitForOrdersSeasonsStrictly(t *testing.T) {
	splitter, err := NewWalkForwardSplitter([]int{2021, 2022, 2023, 2024}, 2)
	require.NoError(t, err)

	split, err := splitter.SplitFor(2024)
	require.NoError(t, err)
	assert.Equal(t, []int{2021, 2022, 2023}, split.TrainSeasons)
	assert.Equal(t, 2024, split.TestSeason)

	for _, train := range split.TrainSeasons {
		assert.Less(t, train, split.TestSeason)
	}
}

func TestSplitForRejectsThinTraining(t *testing.T) {
	splitter, err := NewWalkForwardSplitter([]int{2021, 2022, 2023}, 2)
	require.NoError(t, err)

	_, err = splitter.SplitFor(2022)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInsufficientTrain)

	_, err = splitter.SplitFor(2021)
	assert.ErrorIs(t, err, models.ErrInsufficientTrain)
}

func TestSplitForUnknownSeason(t *testing.T) {
	splitter, err := NewWalkForwardSplitter([]int{2021, 2022, 2023}, 1)
	require.NoError(t, err)

	_, err = splitter.SplitFor(2030)
	assert.Error(t, err)
}

func TestSplitsSkipEarlySeasons(t *testing.T) {
	splitter, err := NewWalkForwardSplitter([]int{2024, 2021, 2022, 2023}, 2)
	require.NoError(t, err)

	splits := splitter.Splits()
	require.Len(t, splits, 2)
	assert.Equal(t, 2023, splits[0].TestSeason)
	assert.Equal(t, 2024, splits[1].TestSeason)

	for _, split := range splits {
		for _, train := range split.TrainSeasons {
			assert.Less(t, train, split.TestSeason)
		}
	}
}

func TestSplitterDeduplicatesSeasons(t *testing.T) {
	splitter, err := NewWalkForwardSplitter([]int{2022, 2022, 2023}, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{2022, 2023}, splitter.Seasons())
}

func TestSplitterValidation(t *testing.T) {
	_, err := NewWalkForwardSplitter(nil, 1)
	assert.Error(t, err)

	_, err = NewWalkForwardSplitter([]int{2022}, 0)
	assert.Error(t, err)
}

func TestRunWalkForwardExcludesThinSeasons(t *testing.T) {
	early := dukeGame()
	early.GameID = "duke-unc-2023"
	early.Season = 2023
	early.Date = testDate.AddDate(-1, 0, 0)
	games := []models.GameRecord{early, dukeGame()}

	cfg := spreadOnlyConfig()
	cfg.MinTrainSeasons = 1
	engine := newTestEngine(t, cfg, -8.0)

	result, err := engine.RunWalkForward(context.Background(), games)
	require.NoError(t, err)

	// 2023 has no prior season in the slate, so it is training data only.
	assert.Equal(t, []int{2023}, result.Excluded)
	require.Len(t, result.Splits, 1)
	assert.Equal(t, Split{TrainSeasons: []int{2023}, TestSeason: 2024}, result.Splits[0].Split)
	assert.Equal(t, 1, result.Splits[0].Summary.Completed)

	require.Len(t, result.Bets, 1)
	assert.Equal(t, "duke-unc", result.Bets[0].GameID)
	assert.Equal(t, 1, result.Log.Len())
}

func TestRunWalkForwardNoEvaluableSeasons(t *testing.T) {
	cfg := spreadOnlyConfig()
	cfg.MinTrainSeasons = 2
	engine := newTestEngine(t, cfg, -8.0)

	result, err := engine.RunWalkForward(context.Background(), []models.GameRecord{dukeGame()})
	require.NoError(t, err)

	assert.Empty(t, result.Splits)
	assert.Equal(t, []int{2024}, result.Excluded)
	assert.Empty(t, result.Bets)
}

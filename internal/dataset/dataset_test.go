package dataset

import (
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/models"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	return logger
}

func TestPrepareName(t *testing.T) {
	tests := []struct {
		source DataSource
		in     string
		want   string
	}{
		{SourceESPN, "(3) Duke", "Duke"},
		{SourceESPN, "Duke", "Duke"},
		{SourceESPN, "(not a rank) Duke", "(not a rank) Duke"},
		{SourceOddsAPI, "Duke Blue Devils", "Duke Blue Devils"},
		{SourceBarttorvik, "Connecticut 1 seed", "Connecticut"},
		{SourceBarttorvik, "Connecticut", "Connecticut"},
		{SourceKaggle, " Duke ", "Duke"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PrepareName(tt.source, tt.in), "%s %q", tt.source, tt.in)
	}
}

func TestParseSource(t *testing.T) {
	source, err := ParseSource(" ESPN ")
	require.NoError(t, err)
	assert.Equal(t, SourceESPN, source)

	_, err = ParseSource("mystery")
	assert.Error(t, err)
}

func TestLoadGamesCSV(t *testing.T) {
	input := strings.Join([]string{
		"date,home,away,home_score,away_score,h1_home,h1_away",
		"2024-01-15,(3) Duke,North Carolina,85,75,40,38",
		"2024-01-16,Houston,Kansas,70,68,,",
		"bad-date,Duke,UNC,1,2,,",
	}, "\n")

	games, err := LoadGamesCSV(strings.NewReader(input), SourceESPN, quietLogger())
	require.NoError(t, err)
	require.Len(t, games, 2)

	duke := games[0]
	assert.Equal(t, "Duke", duke.HomeRaw)
	assert.Equal(t, 2024, duke.Season)
	assert.Equal(t, 85, duke.HomeScore)
	assert.True(t, duke.HasH1())
	assert.Equal(t, "espn", duke.Source)
	assert.NotEmpty(t, duke.GameID)

	assert.False(t, games[1].HasH1())
}

func TestGameIDDeterministic(t *testing.T) {
	date := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	a := GameID(date, "Duke", "North Carolina")
	b := GameID(date, " duke ", "NORTH CAROLINA")
	c := GameID(date, "North Carolina", "Duke")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func game(source, home, away string, homeScore, awayScore int) models.GameRecord {
	date := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	return models.GameRecord{
		GameID:    GameID(date, home, away),
		Date:      date,
		Season:    2024,
		HomeRaw:   home,
		AwayRaw:   away,
		HomeScore: homeScore,
		AwayScore: awayScore,
		Source:    source,
	}
}

func TestMergeGamesDeduplicatesExactMatches(t *testing.T) {
	report, err := MergeGames([][]models.GameRecord{
		{game("espn", "Duke", "North Carolina", 85, 75)},
		{game("kaggle", "Duke", "North Carolina", 85, 75)},
	}, quietLogger())
	require.NoError(t, err)

	assert.Len(t, report.Games, 1)
	assert.Equal(t, 1, report.Deduped)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, SeverityInfo, report.Issues[0].Severity)
	assert.Equal(t, "espn", report.Games[0].Source)
}

func TestMergeGamesScoreMismatchIsCritical(t *testing.T) {
	report, err := MergeGames([][]models.GameRecord{
		{game("espn", "Duke", "North Carolina", 85, 75)},
		{game("kaggle", "Duke", "North Carolina", 85, 77)},
	}, quietLogger())

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrScoreMismatch)
	require.Len(t, report.Critical(), 1)
	assert.Equal(t, "score_mismatch", report.Critical()[0].Kind)
}

func TestMergeGamesSortsByDate(t *testing.T) {
	early := game("espn", "Houston", "Kansas", 70, 68)
	early.Date = early.Date.AddDate(0, 0, -10)
	late := game("espn", "Duke", "North Carolina", 85, 75)

	report, err := MergeGames([][]models.GameRecord{{late, early}}, quietLogger())
	require.NoError(t, err)
	require.Len(t, report.Games, 2)
	assert.Equal(t, "Houston", report.Games[0].HomeRaw)
}

package backtest

// Stage names for the per-game pipeline. Every game moves through these in
// order or exits early through a skip.
const (
	StageStart         = "START"
	StageTeamsResolved = "TEAMS_RESOLVED"
	StageRatingsLooked = "RATINGS_LOOKED_UP"
	StageOddsLooked    = "ODDS_LOOKED_UP"
	StagePredicted     = "PREDICTED"
	StageGraded        = "GRADED"
)

// stageRank orders stages for furthest-reached comparisons; a game's audit
// record carries the last stage it got through before sealing.
var stageRank = map[string]int{
	StageStart:         0,
	StageTeamsResolved: 1,
	StageRatingsLooked: 2,
	StageOddsLooked:    3,
	StagePredicted:     4,
	StageGraded:        5,
}

// furthestStage returns the later of two pipeline stages.
func furthestStage(a, b string) string {
	if stageRank[b] > stageRank[a] {
		return b
	}
	return a
}

// Categorized skip reasons. These feed the audit log and the run summary;
// a game is never dropped without one.
const (
	SkipTeamUnresolved = "team_unresolved"
	SkipNonMember      = "non_member"
	SkipRatingsMissing = "ratings_missing"
	SkipOddsMissing    = "odds_missing"
)

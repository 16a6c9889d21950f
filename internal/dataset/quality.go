package dataset

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/models"
)

// Severity ranks a data-quality finding.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// Issue is one finding from a quality pass.
type Issue struct {
	Severity Severity `json:"severity"`
	Kind     string   `json:"kind"`
	GameKey  string   `json:"game_key"`
	Message  string   `json:"message"`
}

// QualityReport is the outcome of merging per-source game tables. Promotion
// of the merged dataset is blocked while any CRITICAL issue is open.
type QualityReport struct {
	Games   []models.GameRecord `json:"-"`
	Issues  []Issue             `json:"issues"`
	Deduped int                 `json:"deduped"`
}

// Critical returns the blocking issues.
func (r *QualityReport) Critical() []Issue {
	var critical []Issue
	for _, issue := range r.Issues {
		if issue.Severity == SeverityCritical {
			critical = append(critical, issue)
		}
	}
	return critical
}

func fixtureKey(g models.GameRecord) string {
	return fmt.Sprintf("%s|%s|%s",
		g.Date.Format("2006-01-02"),
		strings.ToLower(strings.TrimSpace(g.HomeRaw)),
		strings.ToLower(strings.TrimSpace(g.AwayRaw)))
}

// MergeGames combines game tables from multiple sources into one dataset.
// Exact duplicates of a fixture are dropped with an INFO finding. Two sources
// disagreeing on the final score of the same fixture is a CRITICAL finding
// and fails the merge, because silently picking either score corrupts every
// grade downstream.
func MergeGames(batches [][]models.GameRecord, logger *logrus.Logger) (*QualityReport, error) {
	if logger == nil {
		logger = logrus.New()
	}

	report := &QualityReport{}
	seen := make(map[string]models.GameRecord)
	var order []string

	for _, batch := range batches {
		for _, game := range batch {
			key := fixtureKey(game)
			existing, ok := seen[key]
			if !ok {
				seen[key] = game
				order = append(order, key)
				continue
			}

			if existing.HomeScore == game.HomeScore && existing.AwayScore == game.AwayScore {
				report.Deduped++
				report.Issues = append(report.Issues, Issue{
					Severity: SeverityInfo,
					Kind:     "duplicate_game",
					GameKey:  key,
					Message:  fmt.Sprintf("duplicate from %s dropped, kept %s", game.Source, existing.Source),
				})
				continue
			}

			report.Issues = append(report.Issues, Issue{
				Severity: SeverityCritical,
				Kind:     "score_mismatch",
				GameKey:  key,
				Message: fmt.Sprintf("%s reports %d-%d, %s reports %d-%d",
					existing.Source, existing.HomeScore, existing.AwayScore,
					game.Source, game.HomeScore, game.AwayScore),
			})
			logger.WithFields(logrus.Fields{
				"game":     key,
				"source_a": existing.Source,
				"source_b": game.Source,
			}).Error("CRITICAL: cross-source score mismatch")
		}
	}

	report.Games = make([]models.GameRecord, 0, len(order))
	for _, key := range order {
		report.Games = append(report.Games, seen[key])
	}
	sort.SliceStable(report.Games, func(i, j int) bool {
		if !report.Games[i].Date.Equal(report.Games[j].Date) {
			return report.Games[i].Date.Before(report.Games[j].Date)
		}
		return fixtureKey(report.Games[i]) < fixtureKey(report.Games[j])
	})

	if critical := report.Critical(); len(critical) > 0 {
		return report, fmt.Errorf("%d conflicting fixture(s) block dataset promotion: %w",
			len(critical), models.ErrScoreMismatch)
	}

	logger.WithFields(logrus.Fields{
		"games":   len(report.Games),
		"deduped": report.Deduped,
	}).Info("Merged game dataset")
	return report, nil
}

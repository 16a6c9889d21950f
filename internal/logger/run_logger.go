// Package logger provides run-scoped logging for backtest executions.
package logger

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RunLogger tags every entry with the backtest run id so parallel or
// repeated runs can be separated in aggregated logs.
type RunLogger struct {
	*logrus.Entry
	runID string
}

// NewRunLogger creates a logger for one backtest run.
func NewRunLogger(baseLogger *logrus.Logger) *RunLogger {
	runID := uuid.New().String()
	return &RunLogger{
		Entry: baseLogger.WithFields(logrus.Fields{
			"component": "backtest",
			"run_id":    runID,
		}),
		runID: runID,
	}
}

// RunID returns the generated run identifier.
func (rl *RunLogger) RunID() string {
	return rl.runID
}

// LogRunStart logs the run parameters.
func (rl *RunLogger) LogRunStart(games int, markets []string, workers int) {
	rl.WithFields(logrus.Fields{
		"games":   games,
		"markets": markets,
		"workers": workers,
	}).Info("Backtest run starting")
}

// LogDatasetLoaded logs the merged dataset shape.
func (rl *RunLogger) LogDatasetLoaded(games, deduped, sources int) {
	rl.WithFields(logrus.Fields{
		"games":   games,
		"deduped": deduped,
		"sources": sources,
	}).Info("Dataset loaded")
}

// LogResolutionFailures surfaces unresolved names for alias-table upkeep.
func (rl *RunLogger) LogResolutionFailures(unresolved map[string]int) {
	for rawName, count := range unresolved {
		rl.WithFields(logrus.Fields{
			"raw_name": rawName,
			"games":    count,
		}).Warn("Unresolved team name")
	}
}

// LogRunComplete logs the headline summary numbers.
func (rl *RunLogger) LogRunComplete(completed, skipped, bets int, roi float64) {
	rl.WithFields(logrus.Fields{
		"completed": completed,
		"skipped":   skipped,
		"bets":      bets,
		"roi":       roi,
	}).Info("Backtest run complete")
}

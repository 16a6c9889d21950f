package backtest

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/audit"
	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/models"
)

// Split is one walk-forward partition: every training season is strictly
// earlier than the test season.
type Split struct {
	TrainSeasons []int `json:"train_seasons"`
	TestSeason   int   `json:"test_season"`
}

// WalkForwardSplitter partitions a fixed season set into walk-forward
// splits. It is the only place in the system seasons are partitioned for
// evaluation; everything downstream takes a Split as given.
type WalkForwardSplitter struct {
	seasons         []int
	minTrainSeasons int
}

// NewWalkForwardSplitter builds a splitter over the full season set.
func NewWalkForwardSplitter(seasons []int, minTrainSeasons int) (*WalkForwardSplitter, error) {
	if len(seasons) == 0 {
		return nil, fmt.Errorf("season set is empty")
	}
	if minTrainSeasons < 1 {
		return nil, fmt.Errorf("min train seasons must be at least 1, got %d", minTrainSeasons)
	}

	unique := make(map[int]struct{}, len(seasons))
	for _, s := range seasons {
		unique[s] = struct{}{}
	}
	sorted := make([]int, 0, len(unique))
	for s := range unique {
		sorted = append(sorted, s)
	}
	sort.Ints(sorted)

	return &WalkForwardSplitter{seasons: sorted, minTrainSeasons: minTrainSeasons}, nil
}

// SplitFor returns the partition for one target test season. Every season in
// the set strictly before the target becomes training data; too few of them
// rejects the split with models.ErrInsufficientTrain.
func (w *WalkForwardSplitter) SplitFor(testSeason int) (Split, error) {
	found := false
	train := make([]int, 0, len(w.seasons))
	for _, s := range w.seasons {
		if s < testSeason {
			train = append(train, s)
		}
		if s == testSeason {
			found = true
		}
	}
	if !found {
		return Split{}, fmt.Errorf("season %d is not in the season set", testSeason)
	}
	if len(train) < w.minTrainSeasons {
		return Split{}, fmt.Errorf("test season %d has %d training season(s), need %d: %w",
			testSeason, len(train), w.minTrainSeasons, models.ErrInsufficientTrain)
	}
	return Split{TrainSeasons: train, TestSeason: testSeason}, nil
}

// Splits returns every valid partition in ascending test-season order. The
// earliest seasons never qualify as test seasons because they cannot satisfy
// the training minimum.
func (w *WalkForwardSplitter) Splits() []Split {
	var splits []Split
	for _, testSeason := range w.seasons {
		split, err := w.SplitFor(testSeason)
		if err != nil {
			continue
		}
		splits = append(splits, split)
	}
	return splits
}

// Seasons returns the full ordered season set.
func (w *WalkForwardSplitter) Seasons() []int {
	out := make([]int, len(w.seasons))
	copy(out, w.seasons)
	return out
}

// SplitResult is one evaluated split: the partition plus the summary of the
// test season's games.
type SplitResult struct {
	Split   Split   `json:"split"`
	Summary Summary `json:"summary"`
}

// WalkForwardResult aggregates a walk-forward evaluation. Excluded lists the
// seasons that could not satisfy the training minimum; their games are never
// evaluated.
type WalkForwardResult struct {
	Splits   []SplitResult
	Excluded []int
	Bets     []models.BetResult
	Log      *audit.Log
}

// RunWalkForward partitions the slate's seasons into walk-forward splits and
// runs the test games of each qualifying split. Seasons with fewer prior
// seasons than the configured training minimum are excluded rather than
// evaluated on thin history.
func (e *Engine) RunWalkForward(ctx context.Context, games []models.GameRecord) (*WalkForwardResult, error) {
	bySeason := make(map[int][]models.GameRecord)
	for _, game := range games {
		bySeason[game.Season] = append(bySeason[game.Season], game)
	}
	seasons := make([]int, 0, len(bySeason))
	for s := range bySeason {
		seasons = append(seasons, s)
	}

	splitter, err := NewWalkForwardSplitter(seasons, e.config.MinTrainSeasons)
	if err != nil {
		return nil, fmt.Errorf("walk-forward split failed: %w", err)
	}

	result := &WalkForwardResult{Log: audit.NewLog()}
	for _, testSeason := range splitter.Seasons() {
		split, err := splitter.SplitFor(testSeason)
		if errors.Is(err, models.ErrInsufficientTrain) {
			e.logger.WithFields(logrus.Fields{
				"season":    testSeason,
				"min_train": e.config.MinTrainSeasons,
			}).Warn("Season excluded from walk-forward evaluation")
			result.Excluded = append(result.Excluded, testSeason)
			continue
		}
		if err != nil {
			return nil, err
		}

		seasonResult, err := e.Run(ctx, bySeason[testSeason])
		if err != nil {
			return nil, fmt.Errorf("test season %d: %w", testSeason, err)
		}
		result.Splits = append(result.Splits, SplitResult{Split: split, Summary: seasonResult.Summary})
		result.Bets = append(result.Bets, seasonResult.Bets...)
		result.Log.Merge(seasonResult.Log)
	}
	return result, nil
}

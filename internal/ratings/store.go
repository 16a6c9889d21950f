// Package ratings provides the temporally-bounded team ratings lookup. Every
// lookup is keyed by game date and always resolves to the prior completed
// season's snapshot; there is no fallback to same-season data or to league
// averages, because either would leak future information into a prediction.
package ratings

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/models"
	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/season"
)

// CanonicalizeFunc maps a rating row's team name to its canonical identity.
// Returning false drops the row from the index.
type CanonicalizeFunc func(rawName string) (string, bool)

// LookupResult is the structured outcome of a point-in-time ratings lookup.
// Found=false is a skip condition for the caller, never an excuse to
// substitute a placeholder.
type LookupResult struct {
	Ratings       *models.RatingSnapshot
	RatingsSeason int
	GameSeason    int
	Found         bool
}

// Store is a season-partitioned, lazily-loaded index of rating snapshots.
// Partitions are immutable once loaded; the mutex only guards the lazy load
// when games are sharded across workers.
type Store struct {
	source       Source
	canonicalize CanonicalizeFunc
	logger       *logrus.Logger

	mu      sync.Mutex
	seasons map[int]map[string]models.RatingSnapshot
	failed  map[int]error
}

// StoreOptions configures a ratings store.
type StoreOptions struct {
	// Canonicalize maps source team names to canonical identities at load
	// time. Nil keeps the source names as-is (lowercased).
	Canonicalize CanonicalizeFunc
	Logger       *logrus.Logger
}

// NewStore builds a store over a season source.
func NewStore(source Source, opts StoreOptions) (*Store, error) {
	if source == nil {
		return nil, fmt.Errorf("ratings source is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}
	canonicalize := opts.Canonicalize
	if canonicalize == nil {
		canonicalize = func(raw string) (string, bool) { return raw, true }
	}

	return &Store{
		source:       source,
		canonicalize: canonicalize,
		logger:       logger,
		seasons:      make(map[int]map[string]models.RatingSnapshot),
		failed:       make(map[int]error),
	}, nil
}

// GetRatings returns the snapshot a prediction for the given game may use:
// always the season strictly before the game's season. A team missing from
// the required prior season yields Found=false.
func (s *Store) GetRatings(team string, gameDate time.Time) (LookupResult, error) {
	gameSeason := season.FromDate(gameDate)
	ratingsSeason := season.RatingsSeasonFor(gameDate)
	result := LookupResult{RatingsSeason: ratingsSeason, GameSeason: gameSeason}

	partition, err := s.partition(ratingsSeason)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return result, nil
		}
		return result, err
	}

	snapshot, ok := partition[teamKey(team)]
	if !ok {
		return result, nil
	}
	result.Ratings = &snapshot
	result.Found = true
	return result, nil
}

// HasSeason reports whether the season partition can be loaded and is
// non-empty. It is used when ranking alias collisions.
func (s *Store) HasSeason(seasonYear int) bool {
	partition, err := s.partition(seasonYear)
	return err == nil && len(partition) > 0
}

// RatedTeams returns the canonical teams that have at least one snapshot in
// any of the given seasons.
func (s *Store) RatedTeams(seasons []int) map[string]struct{} {
	rated := make(map[string]struct{})
	for _, seasonYear := range seasons {
		partition, err := s.partition(seasonYear)
		if err != nil {
			continue
		}
		for _, snapshot := range partition {
			rated[snapshot.Team.Name] = struct{}{}
		}
	}
	return rated
}

// partition loads and memoizes one season. Both successful loads and
// failures are memoized so a missing season file is hit at most once.
func (s *Store) partition(seasonYear int) (map[string]models.RatingSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if partition, ok := s.seasons[seasonYear]; ok {
		return partition, nil
	}
	if err, ok := s.failed[seasonYear]; ok {
		return nil, err
	}

	snapshots, err := s.source.LoadSeason(seasonYear)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.WithField("season", seasonYear).Warn("No ratings export for season")
		} else {
			s.logger.WithError(err).WithField("season", seasonYear).Error("Failed to load season ratings")
			err = fmt.Errorf("season %d: %w: %v", seasonYear, models.ErrSeasonNotLoaded, err)
		}
		s.failed[seasonYear] = err
		return nil, err
	}

	partition := make(map[string]models.RatingSnapshot, len(snapshots))
	dropped := 0
	for _, snapshot := range snapshots {
		canonical, ok := s.canonicalize(snapshot.Team.Name)
		if !ok {
			dropped++
			continue
		}
		snapshot.Team.Name = canonical
		partition[teamKey(canonical)] = snapshot
	}

	s.logger.WithFields(logrus.Fields{
		"season":  seasonYear,
		"teams":   len(partition),
		"dropped": dropped,
	}).Info("Loaded season ratings partition")

	s.seasons[seasonYear] = partition
	return partition, nil
}

func teamKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Package service contains the ratings sync service that keeps the snapshot
// database current with published season exports.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/fetch"
	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/metrics"
	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/models"
	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/repository"
)

// SyncResult summarizes one season sync.
type SyncResult struct {
	Season   int
	Teams    int
	Duration time.Duration
}

// RatingsSyncService downloads season rating exports and persists them.
type RatingsSyncService struct {
	client *fetch.BarttorvikClient
	repo   repository.SnapshotRepository
	logger *logrus.Entry
}

// NewRatingsSyncService creates a new sync service.
func NewRatingsSyncService(client *fetch.BarttorvikClient, repo repository.SnapshotRepository, logger *logrus.Logger) (*RatingsSyncService, error) {
	if client == nil {
		return nil, fmt.Errorf("fetch client is required")
	}
	if repo == nil {
		return nil, fmt.Errorf("snapshot repository is required")
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &RatingsSyncService{
		client: client,
		repo:   repo,
		logger: logger.WithField("component", "ratings_sync"),
	}, nil
}

// SyncSeason fetches one season's ratings and replaces the stored snapshots.
func (s *RatingsSyncService) SyncSeason(ctx context.Context, season int) (SyncResult, error) {
	start := time.Now()
	log := s.logger.WithField("season", season)
	log.Info("Starting ratings sync")

	snapshots, err := s.client.FetchSeason(ctx, season)
	if err != nil {
		metrics.RecordRatingsSync("failure", time.Since(start).Seconds())
		return SyncResult{Season: season}, fmt.Errorf("failed to sync season %d: %w", season, err)
	}

	if err := s.repo.UpsertSeason(ctx, season, snapshots); err != nil {
		metrics.RecordRatingsSync("failure", time.Since(start).Seconds())
		return SyncResult{Season: season}, fmt.Errorf("failed to persist season %d: %w", season, err)
	}

	result := SyncResult{
		Season:   season,
		Teams:    len(snapshots),
		Duration: time.Since(start),
	}
	metrics.RecordRatingsSync("success", result.Duration.Seconds())
	log.WithFields(logrus.Fields{
		"teams":       result.Teams,
		"duration_ms": result.Duration.Milliseconds(),
	}).Info("Ratings sync complete")

	return result, nil
}

// SyncAll syncs every configured season. Seasons whose export is not yet
// published are logged and skipped rather than failing the run.
func (s *RatingsSyncService) SyncAll(ctx context.Context, seasons []int) ([]SyncResult, error) {
	var results []SyncResult
	var failed []int

	for _, season := range seasons {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result, err := s.SyncSeason(ctx, season)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				s.logger.WithField("season", season).Warn("Season export not published, skipping")
				continue
			}
			s.logger.WithField("season", season).WithError(err).Error("Season sync failed")
			failed = append(failed, season)
			continue
		}
		results = append(results, result)
	}

	if len(failed) > 0 {
		return results, fmt.Errorf("failed to sync %d of %d seasons: %v", len(failed), len(seasons), failed)
	}
	return results, nil
}

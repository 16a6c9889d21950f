package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/fetch"
	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/models"
)

type fakeSnapshotRepo struct {
	seasons   map[int][]models.RatingSnapshot
	upsertErr error
}

func newFakeSnapshotRepo() *fakeSnapshotRepo {
	return &fakeSnapshotRepo{seasons: make(map[int][]models.RatingSnapshot)}
}

func (f *fakeSnapshotRepo) UpsertSeason(_ context.Context, season int, snapshots []models.RatingSnapshot) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.seasons[season] = snapshots
	return nil
}

func (f *fakeSnapshotRepo) GetBySeason(_ context.Context, season int) ([]models.RatingSnapshot, error) {
	snapshots, ok := f.seasons[season]
	if !ok {
		return nil, models.ErrNotFound
	}
	return snapshots, nil
}

func (f *fakeSnapshotRepo) GetByTeamSeason(_ context.Context, team string, season int) (*models.RatingSnapshot, error) {
	for _, s := range f.seasons[season] {
		if s.Team.Name == team {
			return &s, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeSnapshotRepo) ListSeasons(_ context.Context) ([]int, error) {
	seasons := make([]int, 0, len(f.seasons))
	for season := range f.seasons {
		seasons = append(seasons, season)
	}
	return seasons, nil
}

func (f *fakeSnapshotRepo) LastSyncedAt(_ context.Context, season int) (time.Time, error) {
	if _, ok := f.seasons[season]; !ok {
		return time.Time{}, models.ErrNotFound
	}
	return time.Now(), nil
}

func seasonPayload(t *testing.T, teams ...string) []byte {
	t.Helper()
	rows := make([][]interface{}, 0, len(teams))
	for _, team := range teams {
		row := make([]interface{}, 46)
		for i := range row {
			row[i] = 0.0
		}
		row[1] = team
		row[2] = "ACC"
		row[3] = "20-10"
		row[4] = 110.0
		rows = append(rows, row)
	}
	payload, err := json.Marshal(rows)
	require.NoError(t, err)
	return payload
}

func newSyncService(t *testing.T, handler http.HandlerFunc) (*RatingsSyncService, *fakeSnapshotRepo, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	clientCfg := fetch.DefaultClientConfig()
	clientCfg.RateLimit = 1000
	clientCfg.RetryWaitMin = 0
	clientCfg.RetryWaitMax = 0

	client, err := fetch.NewBarttorvikClient(fetch.NewRateLimitedClient(clientCfg, nil), server.URL)
	require.NoError(t, err)

	repo := newFakeSnapshotRepo()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	svc, err := NewRatingsSyncService(client, repo, logger)
	require.NoError(t, err)
	return svc, repo, server
}

func TestSyncSeasonPersistsSnapshots(t *testing.T) {
	svc, repo, _ := newSyncService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(seasonPayload(t, "Duke", "North Carolina"))
	})

	result, err := svc.SyncSeason(context.Background(), 2024)
	require.NoError(t, err)

	assert.Equal(t, 2024, result.Season)
	assert.Equal(t, 2, result.Teams)

	stored, err := repo.GetBySeason(context.Background(), 2024)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
	assert.Equal(t, "Duke", stored[0].Team.Name)
	assert.Equal(t, 2024, stored[0].Season)
}

func TestSyncAllSkipsUnpublishedSeasons(t *testing.T) {
	svc, repo, _ := newSyncService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/2026_team_results.json" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write(seasonPayload(t, "Houston"))
	})

	results, err := svc.SyncAll(context.Background(), []int{2024, 2025, 2026})
	require.NoError(t, err)

	assert.Len(t, results, 2)
	_, err = repo.GetBySeason(context.Background(), 2026)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSyncAllReportsFailedSeasons(t *testing.T) {
	svc, repo, _ := newSyncService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(seasonPayload(t, "Gonzaga"))
	})
	repo.upsertErr = fmt.Errorf("connection reset")

	_, err := svc.SyncAll(context.Background(), []int{2024})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1")
}

func TestSyncAllStopsOnCancelledContext(t *testing.T) {
	svc, _, _ := newSyncService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(seasonPayload(t, "Purdue"))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.SyncAll(ctx, []int{2024})
	assert.ErrorIs(t, err, context.Canceled)
}

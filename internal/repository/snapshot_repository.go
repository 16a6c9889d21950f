// Package repository provides PostgreSQL persistence for season rating
// snapshots.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/database"
	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/models"
)

const errScanSnapshot = "failed to scan rating snapshot: %w"

const snapshotColumns = `
	team, season, conference, games,
	adj_offense, adj_defense, tempo,
	efg, efgd, tor, tord, orb, drb, ftr, ftrd,
	barthag, wab, rank
`

// SnapshotRepository defines persistence for season rating snapshots.
type SnapshotRepository interface {
	UpsertSeason(ctx context.Context, season int, snapshots []models.RatingSnapshot) error
	GetBySeason(ctx context.Context, season int) ([]models.RatingSnapshot, error)
	GetByTeamSeason(ctx context.Context, team string, season int) (*models.RatingSnapshot, error)
	ListSeasons(ctx context.Context) ([]int, error)
	LastSyncedAt(ctx context.Context, season int) (time.Time, error)
}

// PostgresSnapshotRepository implements SnapshotRepository for PostgreSQL
type PostgresSnapshotRepository struct {
	db *database.DB
}

// NewPostgresSnapshotRepository creates a new snapshot repository
func NewPostgresSnapshotRepository(db *database.DB) SnapshotRepository {
	return &PostgresSnapshotRepository{db: db}
}

// UpsertSeason replaces the stored snapshots for one season inside a single
// transaction, so readers never observe a partially synced season.
func (r *PostgresSnapshotRepository) UpsertSeason(ctx context.Context, season int, snapshots []models.RatingSnapshot) error {
	query := `
		INSERT INTO rating_snapshots (` + snapshotColumns + `, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, now())
		ON CONFLICT (team, season) DO UPDATE SET
			conference = EXCLUDED.conference,
			games = EXCLUDED.games,
			adj_offense = EXCLUDED.adj_offense,
			adj_defense = EXCLUDED.adj_defense,
			tempo = EXCLUDED.tempo,
			efg = EXCLUDED.efg,
			efgd = EXCLUDED.efgd,
			tor = EXCLUDED.tor,
			tord = EXCLUDED.tord,
			orb = EXCLUDED.orb,
			drb = EXCLUDED.drb,
			ftr = EXCLUDED.ftr,
			ftrd = EXCLUDED.ftrd,
			barthag = EXCLUDED.barthag,
			wab = EXCLUDED.wab,
			rank = EXCLUDED.rank,
			synced_at = now()
	`

	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for _, s := range snapshots {
			if s.Season != season {
				return fmt.Errorf("snapshot for %q carries season %d, expected %d", s.Team.Name, s.Season, season)
			}
			_, err := tx.Exec(ctx, query,
				s.Team.Name, s.Season, s.Conference, s.Games,
				s.AdjOffense, s.AdjDefense, s.Tempo,
				s.FourFactors.EFG, s.FourFactors.EFGD,
				s.FourFactors.TOR, s.FourFactors.TORD,
				s.FourFactors.ORB, s.FourFactors.DRB,
				s.FourFactors.FTR, s.FourFactors.FTRD,
				s.Quality.Barthag, s.Quality.WAB, s.Quality.Rank,
			)
			if err != nil {
				return fmt.Errorf("failed to upsert snapshot for %q season %d: %w", s.Team.Name, season, err)
			}
		}
		return nil
	})
}

// GetBySeason returns all snapshots stored for one season
func (r *PostgresSnapshotRepository) GetBySeason(ctx context.Context, season int) ([]models.RatingSnapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM rating_snapshots
		WHERE season = $1
		ORDER BY team
	`

	rows, err := r.db.Query(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("failed to query season %d snapshots: %w", season, err)
	}
	defer rows.Close()

	var snapshots []models.RatingSnapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate season %d snapshots: %w", season, err)
	}

	if len(snapshots) == 0 {
		return nil, models.ErrNotFound
	}
	return snapshots, nil
}

// GetByTeamSeason returns one team's snapshot for one season
func (r *PostgresSnapshotRepository) GetByTeamSeason(ctx context.Context, team string, season int) (*models.RatingSnapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM rating_snapshots
		WHERE lower(team) = lower($1) AND season = $2
	`

	s, err := scanSnapshot(r.db.QueryRow(ctx, query, strings.TrimSpace(team), season))
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListSeasons returns the seasons with stored snapshots in ascending order
func (r *PostgresSnapshotRepository) ListSeasons(ctx context.Context) ([]int, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT season FROM rating_snapshots ORDER BY season`)
	if err != nil {
		return nil, fmt.Errorf("failed to list seasons: %w", err)
	}
	defer rows.Close()

	var seasons []int
	for rows.Next() {
		var season int
		if err := rows.Scan(&season); err != nil {
			return nil, fmt.Errorf("failed to scan season: %w", err)
		}
		seasons = append(seasons, season)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate seasons: %w", err)
	}
	return seasons, nil
}

// LastSyncedAt returns the most recent sync time for one season
func (r *PostgresSnapshotRepository) LastSyncedAt(ctx context.Context, season int) (time.Time, error) {
	var syncedAt time.Time
	err := r.db.QueryRow(ctx,
		`SELECT max(synced_at) FROM rating_snapshots WHERE season = $1 GROUP BY season`,
		season,
	).Scan(&syncedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, models.ErrNotFound
		}
		return time.Time{}, fmt.Errorf("failed to query sync time for season %d: %w", season, err)
	}
	return syncedAt, nil
}

func scanSnapshot(row pgx.Row) (*models.RatingSnapshot, error) {
	var s models.RatingSnapshot
	err := row.Scan(
		&s.Team.Name, &s.Season, &s.Conference, &s.Games,
		&s.AdjOffense, &s.AdjDefense, &s.Tempo,
		&s.FourFactors.EFG, &s.FourFactors.EFGD,
		&s.FourFactors.TOR, &s.FourFactors.TORD,
		&s.FourFactors.ORB, &s.FourFactors.DRB,
		&s.FourFactors.FTR, &s.FourFactors.FTRD,
		&s.Quality.Barthag, &s.Quality.WAB, &s.Quality.Rank,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf(errScanSnapshot, err)
	}
	return &s, nil
}

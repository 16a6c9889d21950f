package database

import (
	"context"
	"fmt"

	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/config"
)

const ratingSnapshotSchema = `
CREATE TABLE IF NOT EXISTS rating_snapshots (
	team        TEXT NOT NULL,
	season      INT  NOT NULL,
	conference  TEXT NOT NULL DEFAULT '',
	games       INT  NOT NULL DEFAULT 0,
	adj_offense DOUBLE PRECISION NOT NULL,
	adj_defense DOUBLE PRECISION NOT NULL,
	tempo       DOUBLE PRECISION NOT NULL,
	efg         DOUBLE PRECISION NOT NULL DEFAULT 0,
	efgd        DOUBLE PRECISION NOT NULL DEFAULT 0,
	tor         DOUBLE PRECISION NOT NULL DEFAULT 0,
	tord        DOUBLE PRECISION NOT NULL DEFAULT 0,
	orb         DOUBLE PRECISION NOT NULL DEFAULT 0,
	drb         DOUBLE PRECISION NOT NULL DEFAULT 0,
	ftr         DOUBLE PRECISION NOT NULL DEFAULT 0,
	ftrd        DOUBLE PRECISION NOT NULL DEFAULT 0,
	barthag     DOUBLE PRECISION NOT NULL DEFAULT 0,
	wab         DOUBLE PRECISION NOT NULL DEFAULT 0,
	rank        INT NOT NULL DEFAULT 0,
	synced_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (team, season)
);

CREATE INDEX IF NOT EXISTS idx_rating_snapshots_season ON rating_snapshots (season);
`

// Initialize creates a database connection pool and ensures the snapshot
// schema exists.
func Initialize(ctx context.Context, cfg *config.DatabaseConfig) (*DB, error) {
	db, err := NewDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(ctx, ratingSnapshotSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize snapshot schema: %w", err)
	}

	return db, nil
}

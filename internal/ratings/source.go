package ratings

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/models"
)

// Source supplies rating snapshots one season at a time. Implementations must
// derive the season number from the file name or storage key, never from the
// payload content.
type Source interface {
	// LoadSeason returns every snapshot for the season, or models.ErrNotFound
	// when the season has no export.
	LoadSeason(seasonYear int) ([]models.RatingSnapshot, error)
}

// DirectorySource reads barttorvik_<season>.json exports from a local
// directory.
type DirectorySource struct {
	dir string
}

// NewDirectorySource validates the directory and returns a source over it.
func NewDirectorySource(dir string) (*DirectorySource, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("ratings directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("ratings path %s is not a directory", dir)
	}
	return &DirectorySource{dir: dir}, nil
}

// LoadSeason reads and parses one season export.
func (s *DirectorySource) LoadSeason(seasonYear int) ([]models.RatingSnapshot, error) {
	path := filepath.Join(s.dir, fmt.Sprintf("barttorvik_%d.json", seasonYear))
	payload, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read season %d export: %w", seasonYear, err)
	}
	return ParseBarttorvik(payload, seasonYear)
}

// StaticSource serves preloaded snapshots, primarily for tests and for callers
// that already hold season data in memory.
type StaticSource struct {
	seasons map[int][]models.RatingSnapshot
}

// NewStaticSource builds a source over in-memory season partitions.
func NewStaticSource(seasons map[int][]models.RatingSnapshot) *StaticSource {
	return &StaticSource{seasons: seasons}
}

// LoadSeason returns the preloaded partition for the season.
func (s *StaticSource) LoadSeason(seasonYear int) ([]models.RatingSnapshot, error) {
	snapshots, ok := s.seasons[seasonYear]
	if !ok {
		return nil, models.ErrNotFound
	}
	return snapshots, nil
}

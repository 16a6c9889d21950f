package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/models"
	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/season"
)

// gameIDNamespace seeds deterministic v5 game ids so the same fixture gets
// the same id across runs and across sources.
var gameIDNamespace = uuid.MustParse("6f1c24b2-97ad-4b84-9f2e-5a8cf13a2d01")

// GameID derives a stable identifier from the fixture key.
func GameID(date time.Time, homeRaw, awayRaw string) string {
	key := fmt.Sprintf("%s|%s|%s",
		date.Format("2006-01-02"),
		strings.ToLower(strings.TrimSpace(homeRaw)),
		strings.ToLower(strings.TrimSpace(awayRaw)))
	return uuid.NewSHA1(gameIDNamespace, []byte(key)).String()
}

var gameColumns = []string{"date", "home", "away", "home_score", "away_score"}

// LoadGamesCSV reads one source's game export. Required columns: date, home,
// away, home_score, away_score. Optional: game_id, h1_home, h1_away. The
// season is always derived from the date, never read from the file.
func LoadGamesCSV(r io.Reader, source DataSource, logger *logrus.Logger) ([]models.GameRecord, error) {
	if logger == nil {
		logger = logrus.New()
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read games header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range gameColumns {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("games header is missing column %q", required)
		}
	}

	var records []models.GameRecord
	malformed := 0
	row := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			malformed++
			continue
		}
		row++

		game, err := parseGame(record, columns, source)
		if err != nil {
			malformed++
			logger.WithError(err).WithFields(logrus.Fields{
				"source": source,
				"row":    row,
			}).Warn("Skipping malformed game row")
			continue
		}
		records = append(records, game)
	}

	logger.WithFields(logrus.Fields{
		"source":    source,
		"games":     len(records),
		"malformed": malformed,
	}).Info("Loaded game records")
	return records, nil
}

// LoadGamesFile opens and ingests one game export file.
func LoadGamesFile(path string, source DataSource, logger *logrus.Logger) ([]models.GameRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open games file %s: %w", path, err)
	}
	defer f.Close()
	return LoadGamesCSV(f, source, logger)
}

func parseGame(record []string, columns map[string]int, source DataSource) (models.GameRecord, error) {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	date, err := time.Parse("2006-01-02", field("date"))
	if err != nil {
		return models.GameRecord{}, fmt.Errorf("bad date %q: %w", field("date"), err)
	}

	homeRaw := PrepareName(source, field("home"))
	awayRaw := PrepareName(source, field("away"))
	if homeRaw == "" || awayRaw == "" {
		return models.GameRecord{}, fmt.Errorf("missing team name")
	}

	homeScore, err := strconv.Atoi(field("home_score"))
	if err != nil {
		return models.GameRecord{}, fmt.Errorf("bad home_score %q: %w", field("home_score"), err)
	}
	awayScore, err := strconv.Atoi(field("away_score"))
	if err != nil {
		return models.GameRecord{}, fmt.Errorf("bad away_score %q: %w", field("away_score"), err)
	}

	h1Home, _ := strconv.Atoi(field("h1_home"))
	h1Away, _ := strconv.Atoi(field("h1_away"))

	gameID := field("game_id")
	if gameID == "" {
		gameID = GameID(date, homeRaw, awayRaw)
	}

	return models.GameRecord{
		GameID:    gameID,
		Date:      date,
		Season:    season.FromDate(date),
		HomeRaw:   homeRaw,
		AwayRaw:   awayRaw,
		HomeScore: homeScore,
		AwayScore: awayScore,
		H1Home:    h1Home,
		H1Away:    h1Away,
		Source:    string(source),
	}, nil
}

package odds

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/models"
)

// ResolveFunc canonicalizes a raw team name from an odds row. Returning false
// marks the row unresolvable.
type ResolveFunc func(rawName string) (string, bool)

// LoaderOptions configures CSV ingestion.
type LoaderOptions struct {
	// Resolve canonicalizes team names before indexing. Nil keeps raw names.
	Resolve ResolveFunc
	Logger  *logrus.Logger
}

// LoadReport summarizes one ingestion pass. Stale and unresolved rows are
// counted per category so a run can surface them instead of dropping them
// silently.
type LoadReport struct {
	Rows       int
	Indexed    int
	Stale      int
	Unresolved int
	Malformed  int
}

var oddsColumns = []string{
	"home", "away", "date", "commence_time", "bookmaker",
	"market", "line", "price_home", "price_away", "captured_at",
}

// LoadCSV reads odds rows into the store. The expected header carries the
// columns named in oddsColumns, in any order. Individual bad rows are
// counted and skipped; only an unreadable stream or header is fatal.
func LoadCSV(store *Store, r io.Reader, opts LoaderOptions) (*LoadReport, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}
	resolve := opts.Resolve
	if resolve == nil {
		resolve = func(raw string) (string, bool) { return raw, true }
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read odds header: %w", err)
	}
	columns, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	report := &LoadReport{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			report.Malformed++
			continue
		}
		report.Rows++

		quote, err := parseQuote(record, columns)
		if err != nil {
			report.Malformed++
			logger.WithError(err).WithField("row", report.Rows).Warn("Skipping malformed odds row")
			continue
		}

		homeCanonical, homeOK := resolve(quote.Home.Name)
		awayCanonical, awayOK := resolve(quote.Away.Name)
		if !homeOK || !awayOK {
			report.Unresolved++
			continue
		}
		quote.Home.Name = homeCanonical
		quote.Away.Name = awayCanonical

		if err := store.Add(quote); err != nil {
			if errors.Is(err, models.ErrStaleQuote) {
				report.Stale++
				continue
			}
			report.Malformed++
			continue
		}
		report.Indexed++
	}

	logger.WithFields(logrus.Fields{
		"rows":       report.Rows,
		"indexed":    report.Indexed,
		"stale":      report.Stale,
		"unresolved": report.Unresolved,
		"malformed":  report.Malformed,
	}).Info("Loaded odds records")
	return report, nil
}

// LoadCSVFile opens and ingests one odds export file.
func LoadCSVFile(store *Store, path string, opts LoaderOptions) (*LoadReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open odds file %s: %w", path, err)
	}
	defer f.Close()
	return LoadCSV(store, f, opts)
}

func mapColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range oddsColumns {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("odds header is missing column %q", required)
		}
	}
	return columns, nil
}

func parseQuote(record []string, columns map[string]int) (models.OddsQuote, error) {
	field := func(name string) string {
		idx := columns[name]
		if idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	date, err := time.Parse("2006-01-02", field("date"))
	if err != nil {
		return models.OddsQuote{}, fmt.Errorf("bad date %q: %w", field("date"), err)
	}
	commence, err := time.Parse(time.RFC3339, field("commence_time"))
	if err != nil {
		return models.OddsQuote{}, fmt.Errorf("bad commence_time %q: %w", field("commence_time"), err)
	}
	captured, err := time.Parse(time.RFC3339, field("captured_at"))
	if err != nil {
		return models.OddsQuote{}, fmt.Errorf("bad captured_at %q: %w", field("captured_at"), err)
	}

	line, err := parsePoints(field("line"))
	if err != nil {
		return models.OddsQuote{}, fmt.Errorf("bad line: %w", err)
	}
	priceHome, err := parsePoints(field("price_home"))
	if err != nil {
		return models.OddsQuote{}, fmt.Errorf("bad price_home: %w", err)
	}
	priceAway, err := parsePoints(field("price_away"))
	if err != nil {
		return models.OddsQuote{}, fmt.Errorf("bad price_away: %w", err)
	}

	market := models.Market(strings.ToLower(field("market")))
	if !market.Valid() {
		return models.OddsQuote{}, fmt.Errorf("unknown market %q", field("market"))
	}

	return models.OddsQuote{
		Home:         models.CanonicalTeam{Name: field("home")},
		Away:         models.CanonicalTeam{Name: field("away")},
		Date:         date,
		CommenceTime: commence,
		Bookmaker:    field("bookmaker"),
		Market:       market,
		Line:         line,
		PriceHome:    priceHome,
		PriceAway:    priceAway,
		CapturedAt:   captured,
	}, nil
}

// parsePoints goes through decimal so exported half-point lines like "-3.50"
// survive exactly rather than picking up binary float noise during parsing.
func parsePoints(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, err
	}
	value, _ := d.Float64()
	return value, nil
}

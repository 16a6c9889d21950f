package odds

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/metrics"
	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/models"
)

var (
	gameDate = time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	tipoff   = time.Date(2024, time.January, 15, 19, 0, 0, 0, time.UTC)
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	return logger
}

func quote(home, away, bookmaker string, market models.Market, line float64, capturedOffset time.Duration) models.OddsQuote {
	return models.OddsQuote{
		Home:         models.CanonicalTeam{Name: home},
		Away:         models.CanonicalTeam{Name: away},
		Date:         gameDate,
		CommenceTime: tipoff,
		Bookmaker:    bookmaker,
		Market:       market,
		Line:         line,
		PriceHome:    -110,
		PriceAway:    -105,
		CapturedAt:   tipoff.Add(capturedOffset),
	}
}

func TestFindQuoteBookmakerPreference(t *testing.T) {
	store := NewStore(StoreOptions{
		BookmakerOrder: []string{"pinnacle", "draftkings"},
		Logger:         quietLogger(),
	})
	require.NoError(t, store.Add(quote("Duke", "North Carolina", "fanduel", models.MarketSpread, -4.5, -6*time.Hour)))
	require.NoError(t, store.Add(quote("Duke", "North Carolina", "pinnacle", models.MarketSpread, -5.0, -2*time.Hour)))
	require.NoError(t, store.Add(quote("Duke", "North Carolina", "draftkings", models.MarketSpread, -4.0, -8*time.Hour)))

	q, ok := store.FindQuote("Duke", "North Carolina", gameDate, models.MarketSpread)
	require.True(t, ok)
	assert.Equal(t, "pinnacle", q.Bookmaker)
	assert.InDelta(t, -5.0, q.Line, 1e-9)
}

func TestFindQuoteEarliestFallbackWhenNoPreferredBookmaker(t *testing.T) {
	store := NewStore(StoreOptions{
		BookmakerOrder: []string{"pinnacle"},
		Logger:         quietLogger(),
	})
	require.NoError(t, store.Add(quote("Duke", "North Carolina", "fanduel", models.MarketTotal, 148.5, -2*time.Hour)))
	require.NoError(t, store.Add(quote("Duke", "North Carolina", "betmgm", models.MarketTotal, 149.0, -9*time.Hour)))

	q, ok := store.FindQuote("Duke", "North Carolina", gameDate, models.MarketTotal)
	require.True(t, ok)
	assert.Equal(t, "betmgm", q.Bookmaker)
}

func TestFindQuoteSwappedOrientation(t *testing.T) {
	store := NewStore(StoreOptions{Logger: quietLogger()})
	require.NoError(t, store.Add(quote("North Carolina", "Duke", "pinnacle", models.MarketSpread, 5.0, -3*time.Hour)))

	q, ok := store.FindQuote("Duke", "North Carolina", gameDate, models.MarketSpread)
	require.True(t, ok)
	assert.Equal(t, "Duke", q.Home.Name)
	assert.Equal(t, "North Carolina", q.Away.Name)
	assert.InDelta(t, -5.0, q.Line, 1e-9)
	assert.InDelta(t, -105, q.PriceHome, 1e-9)
	assert.InDelta(t, -110, q.PriceAway, 1e-9)
}

func TestFindQuoteSwappedTotalKeepsLine(t *testing.T) {
	store := NewStore(StoreOptions{Logger: quietLogger()})
	require.NoError(t, store.Add(quote("North Carolina", "Duke", "pinnacle", models.MarketTotal, 148.5, -3*time.Hour)))

	q, ok := store.FindQuote("Duke", "North Carolina", gameDate, models.MarketTotal)
	require.True(t, ok)
	assert.InDelta(t, 148.5, q.Line, 1e-9)
}

func TestFindQuoteMiss(t *testing.T) {
	store := NewStore(StoreOptions{Logger: quietLogger()})
	_, ok := store.FindQuote("Duke", "North Carolina", gameDate, models.MarketSpread)
	assert.False(t, ok)
}

func TestAddRejectsPostGameCapture(t *testing.T) {
	store := NewStore(StoreOptions{Logger: quietLogger()})
	stale := quote("Duke", "North Carolina", "pinnacle", models.MarketSpread, -5.0, 2*time.Hour)
	staleBefore := testutil.ToFloat64(metrics.StaleQuotesTotal)

	err := store.Add(stale)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrStaleQuote)
	assert.Equal(t, 0, store.Size())
	assert.Equal(t, 1, store.StaleRejected())
	assert.Equal(t, staleBefore+1, testutil.ToFloat64(metrics.StaleQuotesTotal))

	// A rejected record must not poison subsequent ingestion.
	require.NoError(t, store.Add(quote("Duke", "North Carolina", "pinnacle", models.MarketSpread, -5.0, -2*time.Hour)))
	assert.Equal(t, 1, store.Size())
}

func TestOpeningClosing(t *testing.T) {
	store := NewStore(StoreOptions{Logger: quietLogger()})
	require.NoError(t, store.Add(quote("Duke", "North Carolina", "pinnacle", models.MarketSpread, -3.0, -72*time.Hour)))
	require.NoError(t, store.Add(quote("Duke", "North Carolina", "fanduel", models.MarketSpread, -4.0, -24*time.Hour)))
	require.NoError(t, store.Add(quote("Duke", "North Carolina", "pinnacle", models.MarketSpread, -5.0, -1*time.Hour)))

	opening, closing, ok := store.OpeningClosing("Duke", "North Carolina", gameDate, models.MarketSpread)
	require.True(t, ok)
	assert.InDelta(t, -3.0, opening.Line, 1e-9)
	assert.InDelta(t, -5.0, closing.Line, 1e-9)
}

func TestOpeningClosingSwapped(t *testing.T) {
	store := NewStore(StoreOptions{Logger: quietLogger()})
	require.NoError(t, store.Add(quote("North Carolina", "Duke", "pinnacle", models.MarketSpread, 3.0, -72*time.Hour)))
	require.NoError(t, store.Add(quote("North Carolina", "Duke", "pinnacle", models.MarketSpread, 5.0, -1*time.Hour)))

	opening, closing, ok := store.OpeningClosing("Duke", "North Carolina", gameDate, models.MarketSpread)
	require.True(t, ok)
	assert.InDelta(t, -3.0, opening.Line, 1e-9)
	assert.InDelta(t, -5.0, closing.Line, 1e-9)
}

func TestLoadCSV(t *testing.T) {
	input := strings.Join([]string{
		"home,away,date,commence_time,bookmaker,market,line,price_home,price_away,captured_at",
		"Duke Blue Devils,North Carolina Tar Heels,2024-01-15,2024-01-15T19:00:00Z,pinnacle,spread,-3.50,-110,-105,2024-01-12T19:00:00Z",
		"Duke Blue Devils,North Carolina Tar Heels,2024-01-15,2024-01-15T19:00:00Z,pinnacle,spread,-5.00,-108,-107,2024-01-15T18:00:00Z",
		"Duke Blue Devils,North Carolina Tar Heels,2024-01-15,2024-01-15T19:00:00Z,fanduel,spread,-5.50,-110,-110,2024-01-15T21:00:00Z",
		"Mystery Team,North Carolina Tar Heels,2024-01-15,2024-01-15T19:00:00Z,pinnacle,spread,-1.00,-110,-110,2024-01-14T12:00:00Z",
		"Duke Blue Devils,North Carolina Tar Heels,2024-01-15,not-a-time,pinnacle,spread,-3.50,-110,-105,2024-01-12T19:00:00Z",
	}, "\n")

	resolve := func(raw string) (string, bool) {
		switch raw {
		case "Duke Blue Devils":
			return "Duke", true
		case "North Carolina Tar Heels":
			return "North Carolina", true
		}
		return "", false
	}

	store := NewStore(StoreOptions{Logger: quietLogger()})
	report, err := LoadCSV(store, strings.NewReader(input), LoaderOptions{Resolve: resolve, Logger: quietLogger()})
	require.NoError(t, err)

	assert.Equal(t, 5, report.Rows)
	assert.Equal(t, 2, report.Indexed)
	assert.Equal(t, 1, report.Stale)
	assert.Equal(t, 1, report.Unresolved)
	assert.Equal(t, 1, report.Malformed)

	q, ok := store.FindQuote("Duke", "North Carolina", gameDate, models.MarketSpread)
	require.True(t, ok)
	assert.InDelta(t, -3.5, q.Line, 1e-9)
}

func TestLoadCSVMissingColumn(t *testing.T) {
	store := NewStore(StoreOptions{Logger: quietLogger()})
	_, err := LoadCSV(store, strings.NewReader("home,away,date\n"), LoaderOptions{Logger: quietLogger()})
	assert.Error(t, err)
}

// Package odds indexes market quotes for backtest lookups. Quotes are keyed
// by (home, away, date, market) and selected by bookmaker preference, with a
// swapped-orientation fallback for sources that recorded the fixture with the
// home and away labels exchanged.
package odds

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/metrics"
	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/models"
)

type quoteKey struct {
	home   string
	away   string
	date   string
	market models.Market
}

func keyFor(home, away string, date time.Time, market models.Market) quoteKey {
	return quoteKey{
		home:   strings.ToLower(strings.TrimSpace(home)),
		away:   strings.ToLower(strings.TrimSpace(away)),
		date:   date.Format("2006-01-02"),
		market: market,
	}
}

// Store is the in-memory odds index. It is write-once: quotes are added
// during ingestion, then the store is read-only for the rest of the run.
type Store struct {
	quotes        map[quoteKey][]models.OddsQuote
	bookmakerRank map[string]int
	logger        *logrus.Logger
	staleRejected int
	quotesIndexed int
}

// StoreOptions configures quote selection.
type StoreOptions struct {
	// BookmakerOrder is the preference order for quote selection. Earlier
	// entries win. Bookmakers not listed rank behind all listed ones.
	BookmakerOrder []string
	Logger         *logrus.Logger
}

// NewStore builds an empty odds store.
func NewStore(opts StoreOptions) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}
	rank := make(map[string]int, len(opts.BookmakerOrder))
	for i, bookmaker := range opts.BookmakerOrder {
		rank[strings.ToLower(bookmaker)] = i
	}
	return &Store{
		quotes:        make(map[quoteKey][]models.OddsQuote),
		bookmakerRank: rank,
		logger:        logger,
	}
}

// Add validates and indexes one quote. A capture timestamp after the game's
// scheduled start means the line was recorded post-game and would leak the
// result; that record is rejected with models.ErrStaleQuote and must not
// abort the rest of ingestion.
func (s *Store) Add(quote models.OddsQuote) error {
	if !quote.Market.Valid() {
		return fmt.Errorf("unknown market %q", quote.Market)
	}
	if quote.Home.Name == "" || quote.Away.Name == "" {
		return fmt.Errorf("quote is missing a team name")
	}
	if !quote.CommenceTime.IsZero() && quote.CapturedAt.After(quote.CommenceTime) {
		s.staleRejected++
		metrics.RecordStaleQuote()
		s.logger.WithFields(logrus.Fields{
			"home":          quote.Home.Name,
			"away":          quote.Away.Name,
			"market":        quote.Market,
			"bookmaker":     quote.Bookmaker,
			"captured_at":   quote.CapturedAt.Format(time.RFC3339),
			"commence_time": quote.CommenceTime.Format(time.RFC3339),
		}).Error("CRITICAL: quote captured after game start, rejecting record")
		return fmt.Errorf("%s vs %s %s quote captured after commence time: %w",
			quote.Home.Name, quote.Away.Name, quote.Market, models.ErrStaleQuote)
	}

	key := keyFor(quote.Home.Name, quote.Away.Name, quote.Date, quote.Market)
	s.quotes[key] = append(s.quotes[key], quote)
	s.quotesIndexed++
	return nil
}

// FindQuote returns the preferred quote for a game and market. Orientation is
// tried as given first; if nothing is keyed that way the swapped key is tried
// and the quote re-oriented before returning.
func (s *Store) FindQuote(home, away string, date time.Time, market models.Market) (models.OddsQuote, bool) {
	if quotes, ok := s.quotes[keyFor(home, away, date, market)]; ok {
		return s.pick(quotes), true
	}
	if quotes, ok := s.quotes[keyFor(away, home, date, market)]; ok {
		return s.pick(quotes).Swapped(), true
	}
	return models.OddsQuote{}, false
}

// OpeningClosing returns the earliest and latest captured quotes for a game
// and market. Both come from the full quote set, not just the preferred
// bookmaker, because line movement is a market-wide signal.
func (s *Store) OpeningClosing(home, away string, date time.Time, market models.Market) (opening, closing models.OddsQuote, ok bool) {
	quotes, found := s.quotes[keyFor(home, away, date, market)]
	swapped := false
	if !found {
		quotes, found = s.quotes[keyFor(away, home, date, market)]
		swapped = true
	}
	if !found || len(quotes) == 0 {
		return models.OddsQuote{}, models.OddsQuote{}, false
	}

	opening, closing = quotes[0], quotes[0]
	for _, quote := range quotes[1:] {
		if quote.CapturedAt.Before(opening.CapturedAt) {
			opening = quote
		}
		if quote.CapturedAt.After(closing.CapturedAt) {
			closing = quote
		}
	}
	if swapped {
		opening, closing = opening.Swapped(), closing.Swapped()
	}
	return opening, closing, true
}

// pick applies bookmaker preference, then earliest capture time, then
// bookmaker name so selection is stable across input order.
func (s *Store) pick(quotes []models.OddsQuote) models.OddsQuote {
	best := quotes[0]
	for _, quote := range quotes[1:] {
		if s.less(quote, best) {
			best = quote
		}
	}
	return best
}

func (s *Store) less(a, b models.OddsQuote) bool {
	rankA, rankB := s.rank(a.Bookmaker), s.rank(b.Bookmaker)
	if rankA != rankB {
		return rankA < rankB
	}
	if !a.CapturedAt.Equal(b.CapturedAt) {
		return a.CapturedAt.Before(b.CapturedAt)
	}
	return a.Bookmaker < b.Bookmaker
}

func (s *Store) rank(bookmaker string) int {
	if rank, ok := s.bookmakerRank[strings.ToLower(bookmaker)]; ok {
		return rank
	}
	return len(s.bookmakerRank)
}

// Bookmakers returns the distinct bookmakers seen during ingestion, sorted.
func (s *Store) Bookmakers() []string {
	seen := make(map[string]struct{})
	for _, quotes := range s.quotes {
		for _, quote := range quotes {
			seen[quote.Bookmaker] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Size returns the number of indexed quotes.
func (s *Store) Size() int { return s.quotesIndexed }

// StaleRejected returns how many records failed the pre-game capture check.
func (s *Store) StaleRejected() int { return s.staleRejected }

// Package audit captures every decision the backtest pipeline makes about a
// game: how names resolved, which ratings season served the lookup, what the
// model predicted, and how the bet graded. Records are the reproducibility
// contract: identical inputs must produce an identical event sequence.
package audit

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/models"
)

// EventType tags one pipeline decision.
type EventType string

const (
	EventResolution     EventType = "team_resolution"
	EventRatingsLookup  EventType = "ratings_lookup"
	EventOddsLookup     EventType = "odds_lookup"
	EventPrediction     EventType = "prediction"
	EventRecommendation EventType = "bet_recommendation"
	EventGrading        EventType = "grading"
)

// Outcome states a record can seal into.
const (
	FinalComplete = "COMPLETE"
	FinalSkipped  = "SKIPPED"
)

// Event is one immutable entry in a game's decision chain. Seq is assigned
// at append time so the chain order survives serialization.
type Event struct {
	Seq     int         `json:"seq"`
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload"`
}

// ResolutionEvent records one team-name resolution.
type ResolutionEvent struct {
	Side      string                  `json:"side"`
	RawName   string                  `json:"raw_name"`
	Canonical string                  `json:"canonical,omitempty"`
	Method    models.ResolutionMethod `json:"method"`
}

// RatingsEvent records one anti-leakage ratings lookup.
type RatingsEvent struct {
	Side          string `json:"side"`
	Team          string `json:"team"`
	GameSeason    int    `json:"game_season"`
	RatingsSeason int    `json:"ratings_season"`
	Found         bool   `json:"found"`
}

// OddsEvent records the market quote selection for one market.
type OddsEvent struct {
	Market      models.Market `json:"market"`
	Bookmaker   string        `json:"bookmaker,omitempty"`
	Line        float64       `json:"line"`
	OpeningLine float64       `json:"opening_line"`
	ClosingLine float64       `json:"closing_line"`
	Found       bool          `json:"found"`
}

// PredictionEvent records the model inputs and output for one market.
type PredictionEvent struct {
	Market        models.Market `json:"market"`
	HomeNet       float64       `json:"home_net"`
	AwayNet       float64       `json:"away_net"`
	PredictedLine float64       `json:"predicted_line"`
	MarketLine    float64       `json:"market_line"`
	Edge          float64       `json:"edge"`
}

// RecommendationEvent records the bet/no-bet decision for one market.
type RecommendationEvent struct {
	Market   models.Market   `json:"market"`
	PickSide models.PickSide `json:"pick_side,omitempty"`
	NoBet    bool            `json:"no_bet"`
	Reason   string          `json:"reason,omitempty"`
}

// GradingEvent records the final grade for one market.
type GradingEvent struct {
	Market     models.Market  `json:"market"`
	Outcome    models.Outcome `json:"outcome"`
	Profit     float64        `json:"profit"`
	CLV        float64        `json:"clv"`
	CLVPercent float64        `json:"clv_percent"`
}

// Record is the per-game decision chain. It is created at game start,
// appended to while the game moves through the pipeline, and sealed exactly
// once; appending after sealing is a programming error.
type Record struct {
	GameID     string  `json:"game_id"`
	Season     int     `json:"season"`
	Home       string  `json:"home"`
	Away       string  `json:"away"`
	Events     []Event `json:"events"`
	Stage      string  `json:"stage,omitempty"`
	Final      string  `json:"final"`
	SkipReason string  `json:"skip_reason,omitempty"`

	sealed bool
}

// NewRecord starts a decision chain for one game.
func NewRecord(game models.GameRecord) *Record {
	return &Record{
		GameID: game.GameID,
		Season: game.Season,
		Home:   game.HomeRaw,
		Away:   game.AwayRaw,
	}
}

// Append adds one event to the chain.
func (r *Record) Append(eventType EventType, payload interface{}) error {
	if r.sealed {
		return fmt.Errorf("audit record %s is sealed", r.GameID)
	}
	r.Events = append(r.Events, Event{
		Seq:     len(r.Events),
		Type:    eventType,
		Payload: payload,
	})
	return nil
}

// SetStage records the furthest pipeline stage the game reached. Sealing
// freezes it with the rest of the record.
func (r *Record) SetStage(stage string) error {
	if r.sealed {
		return fmt.Errorf("audit record %s is sealed", r.GameID)
	}
	r.Stage = stage
	return nil
}

// SealComplete closes the record for a fully graded game.
func (r *Record) SealComplete() {
	r.Final = FinalComplete
	r.sealed = true
}

// SealSkipped closes the record with the categorized skip reason.
func (r *Record) SealSkipped(reason string) {
	r.Final = FinalSkipped
	r.SkipReason = reason
	r.sealed = true
}

// Sealed reports whether the record is closed.
func (r *Record) Sealed() bool { return r.sealed }

// Log is the run-wide accumulator of sealed records. It is safe for use by
// parallel workers; records keep their append order, which for sharded runs
// is made deterministic by the engine merging per-worker buffers in worker
// order.
type Log struct {
	mu      sync.Mutex
	records []*Record
}

// NewLog returns an empty audit log.
func NewLog() *Log {
	return &Log{}
}

// Add appends a sealed record.
func (l *Log) Add(record *Record) error {
	if !record.Sealed() {
		return fmt.Errorf("audit record %s added before sealing", record.GameID)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, record)
	return nil
}

// Merge appends another log's records in their existing order.
func (l *Log) Merge(other *Log) {
	other.mu.Lock()
	records := other.records
	other.mu.Unlock()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, records...)
}

// Records returns the accumulated records in append order.
func (l *Log) Records() []*Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*Record, len(l.records))
	copy(out, l.records)
	return out
}

// Len returns the number of sealed records.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// SkipCounts aggregates skip reasons across the run.
func (l *Log) SkipCounts() map[string]int {
	counts := make(map[string]int)
	for _, record := range l.Records() {
		if record.Final == FinalSkipped {
			counts[record.SkipReason]++
		}
	}
	return counts
}

// UnresolvedNames aggregates the raw team names that never resolved, keyed by
// raw name with the number of games each appeared in.
func (l *Log) UnresolvedNames() map[string]int {
	counts := make(map[string]int)
	for _, record := range l.Records() {
		for _, event := range record.Events {
			if event.Type != EventResolution {
				continue
			}
			resolution, ok := event.Payload.(ResolutionEvent)
			if !ok || resolution.Method != models.MethodUnresolved {
				continue
			}
			counts[resolution.RawName]++
		}
	}
	return counts
}

// WriteJSON streams the full log as newline-delimited JSON, one record per
// line, in append order.
func (l *Log) WriteJSON(w io.Writer) error {
	encoder := json.NewEncoder(w)
	for _, record := range l.Records() {
		if err := encoder.Encode(record); err != nil {
			return fmt.Errorf("failed to encode audit record %s: %w", record.GameID, err)
		}
	}
	return nil
}

// Package metrics provides the centralized Prometheus registry for the
// backtest pipeline.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	GamesProcessedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ncaam_backtest",
		Name:      "games_processed_total",
		Help:      "Games carried through the pipeline, by final state",
	}, []string{"final"})
	GamesSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ncaam_backtest",
		Name:      "games_skipped_total",
		Help:      "Games skipped, by categorized reason",
	}, []string{"reason"})
	BetsGradedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ncaam_backtest",
		Name:      "bets_graded_total",
		Help:      "Bets graded, by market and outcome",
	}, []string{"market", "outcome"})
	StaleQuotesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ncaam_backtest",
		Name:      "stale_quotes_total",
		Help:      "Odds records rejected for post-game capture timestamps",
	})
	RatingsSyncRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ncaam_backtest",
		Name:      "ratings_sync_runs_total",
		Help:      "Ratings sync executions, by result",
	}, []string{"result"})
)

// Histogram metrics
var (
	BacktestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "ncaam_backtest",
		Name:      "run_duration_seconds",
		Help:      "Duration of full backtest runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	})
	RatingsFetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "ncaam_backtest",
		Name:      "ratings_fetch_duration_seconds",
		Help:      "Duration of season ratings downloads in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(GamesProcessedTotal)
		registry.MustRegister(GamesSkippedTotal)
		registry.MustRegister(BetsGradedTotal)
		registry.MustRegister(StaleQuotesTotal)
		registry.MustRegister(RatingsSyncRunsTotal)

		registry.MustRegister(BacktestDuration)
		registry.MustRegister(RatingsFetchDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// Recorder adapts the registry to the backtest engine's observation hook.
type Recorder struct{}

// NewRecorder returns a registry-backed recorder.
func NewRecorder() *Recorder {
	InitRegistry()
	return &Recorder{}
}

// GameProcessed records one game reaching a final state.
func (r *Recorder) GameProcessed(final, skipReason string) {
	GamesProcessedTotal.WithLabelValues(final).Inc()
	if skipReason != "" {
		GamesSkippedTotal.WithLabelValues(skipReason).Inc()
	}
}

// BetGraded records one graded bet.
func (r *Recorder) BetGraded(market, outcome string) {
	BetsGradedTotal.WithLabelValues(market, outcome).Inc()
}

// RecordStaleQuote records a rejected post-game odds record.
func RecordStaleQuote() {
	StaleQuotesTotal.Inc()
}

// RecordBacktestDuration records a full run duration.
func RecordBacktestDuration(durationSeconds float64) {
	BacktestDuration.Observe(durationSeconds)
}

// RecordRatingsSync records one ratings sync execution.
func RecordRatingsSync(result string, fetchSeconds float64) {
	RatingsSyncRunsTotal.WithLabelValues(result).Inc()
	RatingsFetchDuration.Observe(fetchSeconds)
}

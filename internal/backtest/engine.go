package backtest

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/audit"
	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/models"
	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/odds"
	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/predict"
	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/ratings"
	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/resolver"
)

// Recorder receives run-progress observations. Implementations export them
// as metrics; a nil recorder is a no-op.
type Recorder interface {
	GameProcessed(final, skipReason string)
	BetGraded(market, outcome string)
}

// Engine carries one game at a time through the full pipeline: resolve both
// teams, fetch prior-season ratings, select a market quote, predict, grade,
// and emit the audit chain. The engine holds no cross-game state; reference
// stores are read-only for the duration of the run.
type Engine struct {
	config    Config
	resolver  *resolver.TeamResolver
	ratings   *ratings.Store
	odds      *odds.Store
	predictor predict.Predictor
	recorder  Recorder
	logger    *logrus.Logger
}

// NewEngine wires the pipeline dependencies.
func NewEngine(cfg Config, teams *resolver.TeamResolver, ratingsStore *ratings.Store, oddsStore *odds.Store, predictor predict.Predictor, logger *logrus.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid backtest config: %w", err)
	}
	if teams == nil {
		return nil, fmt.Errorf("team resolver is required")
	}
	if ratingsStore == nil {
		return nil, fmt.Errorf("ratings store is required")
	}
	if oddsStore == nil {
		return nil, fmt.Errorf("odds store is required")
	}
	if predictor == nil {
		return nil, fmt.Errorf("predictor is required")
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &Engine{
		config:    cfg,
		resolver:  teams,
		ratings:   ratingsStore,
		odds:      oddsStore,
		predictor: predictor,
		logger:    logger,
	}, nil
}

// SetRecorder attaches a metrics recorder.
func (e *Engine) SetRecorder(recorder Recorder) {
	e.recorder = recorder
}

// Config returns the run parameters.
func (e *Engine) Config() Config {
	return e.config
}

// Result is the full output of one run.
type Result struct {
	Bets    []models.BetResult
	Log     *audit.Log
	Summary Summary
}

// Run processes every game and returns the graded bets, the audit log, and
// the aggregated summary. Games are independent, so with Workers > 1 they
// are sharded across goroutines; each worker accumulates into its own
// buffers which are merged in worker order, keeping output deterministic.
func (e *Engine) Run(ctx context.Context, games []models.GameRecord) (*Result, error) {
	e.logger.WithFields(logrus.Fields{
		"games":   len(games),
		"markets": e.config.Markets,
		"workers": e.config.Workers,
	}).Info("Starting backtest run")

	workers := e.config.Workers
	if workers <= 1 || len(games) < 2 {
		return e.runSerial(ctx, games)
	}
	if workers > len(games) {
		workers = len(games)
	}
	return e.runSharded(ctx, games, workers)
}

func (e *Engine) runSerial(ctx context.Context, games []models.GameRecord) (*Result, error) {
	log := audit.NewLog()
	var bets []models.BetResult

	for _, game := range games {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("backtest cancelled: %w", err)
		}
		record, gameBets := e.processGame(game)
		if err := log.Add(record); err != nil {
			return nil, err
		}
		bets = append(bets, gameBets...)
		e.observeGame(record, gameBets)
	}

	return e.finish(bets, log), nil
}

func (e *Engine) runSharded(ctx context.Context, games []models.GameRecord, workers int) (*Result, error) {
	type shardResult struct {
		log  *audit.Log
		bets []models.BetResult
		err  error
	}

	shards := make([]shardResult, workers)
	chunk := (len(games) + workers - 1) / workers

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		start := i * chunk
		end := start + chunk
		if end > len(games) {
			end = len(games)
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(idx int, slice []models.GameRecord) {
			defer wg.Done()
			log := audit.NewLog()
			var bets []models.BetResult
			for _, game := range slice {
				if err := ctx.Err(); err != nil {
					shards[idx].err = err
					return
				}
				record, gameBets := e.processGame(game)
				if err := log.Add(record); err != nil {
					shards[idx].err = err
					return
				}
				bets = append(bets, gameBets...)
				e.observeGame(record, gameBets)
			}
			shards[idx].log = log
			shards[idx].bets = bets
		}(i, games[start:end])
	}
	wg.Wait()

	merged := audit.NewLog()
	var bets []models.BetResult
	for _, shard := range shards {
		if shard.err != nil {
			return nil, fmt.Errorf("backtest worker failed: %w", shard.err)
		}
		if shard.log == nil {
			continue
		}
		merged.Merge(shard.log)
		bets = append(bets, shard.bets...)
	}

	return e.finish(bets, merged), nil
}

func (e *Engine) finish(bets []models.BetResult, log *audit.Log) *Result {
	summary := Summarize(bets, log)
	e.logger.WithFields(logrus.Fields{
		"games":   log.Len(),
		"bets":    summary.Overall.Bets,
		"roi":     fmt.Sprintf("%.2f%%", summary.Overall.ROI*100),
		"skipped": summary.Skipped,
	}).Info("Backtest run complete")
	return &Result{Bets: bets, Log: log, Summary: summary}
}

func (e *Engine) observeGame(record *audit.Record, bets []models.BetResult) {
	if e.recorder == nil {
		return
	}
	e.recorder.GameProcessed(record.Final, record.SkipReason)
	for _, bet := range bets {
		if bet.Settled() {
			e.recorder.BetGraded(string(bet.Market), string(bet.Outcome))
		}
	}
}

// processGame runs the full state machine for one game. It always returns a
// sealed audit record; bets may be empty for skipped games.
func (e *Engine) processGame(game models.GameRecord) (*audit.Record, []models.BetResult) {
	record := audit.NewRecord(game)
	stage := StageStart

	homeRes := e.resolver.Resolve(game.HomeRaw)
	awayRes := e.resolver.Resolve(game.AwayRaw)
	record.Append(audit.EventResolution, audit.ResolutionEvent{
		Side: "home", RawName: game.HomeRaw, Canonical: homeRes.Canonical, Method: homeRes.Method,
	})
	record.Append(audit.EventResolution, audit.ResolutionEvent{
		Side: "away", RawName: game.AwayRaw, Canonical: awayRes.Canonical, Method: awayRes.Method,
	})

	if homeRes.Excluded() || awayRes.Excluded() {
		record.SetStage(stage)
		record.SealSkipped(SkipNonMember)
		return record, nil
	}
	if !homeRes.Matched() || !awayRes.Matched() {
		record.SetStage(stage)
		record.SealSkipped(SkipTeamUnresolved)
		return record, nil
	}
	stage = StageTeamsResolved

	homeLookup, err := e.ratings.GetRatings(homeRes.Canonical, game.Date)
	if err != nil {
		e.logger.WithError(err).WithField("game", game.GameID).Error("Ratings lookup failed")
		record.SetStage(stage)
		record.SealSkipped(SkipRatingsMissing)
		return record, nil
	}
	awayLookup, err := e.ratings.GetRatings(awayRes.Canonical, game.Date)
	if err != nil {
		e.logger.WithError(err).WithField("game", game.GameID).Error("Ratings lookup failed")
		record.SetStage(stage)
		record.SealSkipped(SkipRatingsMissing)
		return record, nil
	}
	record.Append(audit.EventRatingsLookup, audit.RatingsEvent{
		Side: "home", Team: homeRes.Canonical,
		GameSeason: homeLookup.GameSeason, RatingsSeason: homeLookup.RatingsSeason, Found: homeLookup.Found,
	})
	record.Append(audit.EventRatingsLookup, audit.RatingsEvent{
		Side: "away", Team: awayRes.Canonical,
		GameSeason: awayLookup.GameSeason, RatingsSeason: awayLookup.RatingsSeason, Found: awayLookup.Found,
	})
	if !homeLookup.Found || !awayLookup.Found {
		record.SetStage(stage)
		record.SealSkipped(SkipRatingsMissing)
		return record, nil
	}
	stage = StageRatingsLooked

	var bets []models.BetResult
	marketsQuoted := 0
	for _, market := range e.config.Markets {
		bet, quoted, marketStage := e.processMarket(game, market, homeRes.Canonical, awayRes.Canonical,
			*homeLookup.Ratings, *awayLookup.Ratings, record)
		if quoted {
			marketsQuoted++
		}
		if bet != nil {
			bets = append(bets, *bet)
		}
		stage = furthestStage(stage, marketStage)
	}

	record.SetStage(stage)
	if marketsQuoted == 0 {
		record.SealSkipped(SkipOddsMissing)
		return record, nil
	}
	record.SealComplete()
	return record, bets
}

// processMarket runs prediction and grading for one market. The returned
// bool reports whether a quote existed at all, which drives the odds_missing
// skip when no market is quoted; the returned stage is the furthest pipeline
// stage this market reached.
func (e *Engine) processMarket(game models.GameRecord, market models.Market, home, away string, homeRating, awayRating models.RatingSnapshot, record *audit.Record) (*models.BetResult, bool, string) {
	actual, hasResult := game.ActualResult(market)
	if !hasResult {
		return nil, false, StageRatingsLooked
	}

	quote, found := e.odds.FindQuote(home, away, game.Date, market)
	opening, closing, hasMovement := e.odds.OpeningClosing(home, away, game.Date, market)
	event := audit.OddsEvent{Market: market, Found: found}
	if found {
		event.Bookmaker = quote.Bookmaker
		event.Line = quote.Line
	}
	if hasMovement {
		event.OpeningLine = opening.Line
		event.ClosingLine = closing.Line
	}
	record.Append(audit.EventOddsLookup, event)
	if !found {
		return nil, false, StageRatingsLooked
	}

	predicted, err := e.predictor.PredictLine(market, homeRating, awayRating)
	if err != nil {
		e.logger.WithError(err).WithFields(logrus.Fields{
			"game":   game.GameID,
			"market": market,
		}).Error("Prediction failed")
		return nil, true, StageOddsLooked
	}
	edge := math.Abs(predicted - quote.Line)
	record.Append(audit.EventPrediction, audit.PredictionEvent{
		Market:        market,
		HomeNet:       homeRating.NetRating(),
		AwayNet:       awayRating.NetRating(),
		PredictedLine: predicted,
		MarketLine:    quote.Line,
		Edge:          edge,
	})

	bet := models.BetResult{
		GameID:        game.GameID,
		Season:        game.Season,
		Market:        market,
		Home:          home,
		Away:          away,
		PredictedLine: predicted,
		OpeningLine:   opening.Line,
		ClosingLine:   closing.Line,
		Edge:          edge,
	}

	if edge < e.config.minEdgeFor(market) {
		record.Append(audit.EventRecommendation, audit.RecommendationEvent{
			Market: market, NoBet: true, Reason: "edge_below_threshold",
		})
		bet.NoBet = true
		bet.Outcome = models.OutcomeSkip
		return &bet, true, StagePredicted
	}

	side := pickSide(market, predicted, quote.Line)
	price, hasPrice := quote.Price(side)
	if !hasPrice {
		record.Append(audit.EventRecommendation, audit.RecommendationEvent{
			Market: market, PickSide: side, NoBet: true, Reason: "no_price",
		})
		bet.NoBet = true
		bet.Outcome = models.OutcomeSkip
		bet.PickSide = side
		return &bet, true, StagePredicted
	}
	record.Append(audit.EventRecommendation, audit.RecommendationEvent{
		Market: market, PickSide: side, NoBet: false,
	})

	outcome, err := Grade(side, quote.Line, actual)
	if err != nil {
		e.logger.WithError(err).WithField("game", game.GameID).Error("Grading failed")
		return nil, true, StagePredicted
	}
	profit, err := SettleProfit(outcome, price, e.config.Wager)
	if err != nil {
		e.logger.WithError(err).WithField("game", game.GameID).Error("Settlement failed")
		return nil, true, StagePredicted
	}

	var clvPoints, clvPercent float64
	if hasMovement {
		clvPoints, clvPercent, _ = CLV(side, opening.Line, closing.Line)
	}

	bet.PickSide = side
	bet.Price = price
	bet.Wager = e.config.Wager
	bet.Outcome = outcome
	bet.Profit = profit
	bet.CLV = clvPoints
	bet.CLVPercent = clvPercent

	record.Append(audit.EventGrading, audit.GradingEvent{
		Market: market, Outcome: outcome, Profit: profit,
		CLV: clvPoints, CLVPercent: clvPercent,
	})
	return &bet, true, StageGraded
}

// pickSide takes the model's side of the market: the side the prediction
// says the line undervalues.
func pickSide(market models.Market, predicted, marketLine float64) models.PickSide {
	if market.IsSpread() {
		// More negative than the market means the model likes home more
		// than the market does.
		if predicted < marketLine {
			return models.PickHome
		}
		return models.PickAway
	}
	if predicted > marketLine {
		return models.PickOver
	}
	return models.PickUnder
}

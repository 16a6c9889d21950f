// Package main provides the entry point for the backtesting CLI tool.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/backtest"
	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/config"
	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/dataset"
	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/logger"
	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/metrics"
	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/models"
	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/odds"
	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/predict"
	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/ratings"
	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/resolver"
	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/season"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		outputDir  = flag.String("output", "", "Override output directory")
		workers    = flag.Int("workers", -1, "Override worker count (-1 keeps config value)")
		mode       = flag.String("mode", "historical", "Run mode: historical or walk-forward")
	)
	flag.Parse()

	if *mode != "historical" && *mode != "walk-forward" {
		logrus.Fatalf("Unknown mode %q, expected historical or walk-forward", *mode)
	}

	cfg := loadConfig(*configPath)
	if *outputDir != "" {
		cfg.Backtest.OutputDir = *outputDir
	}
	if *workers >= 0 {
		cfg.Backtest.Workers = *workers
	}

	baseLogger := logger.NewLogger(cfg.App.LogLevel)
	runLog := logger.NewRunLogger(baseLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		go serveMetrics(cfg.Metrics.Address, baseLogger)
	}

	games := loadGames(cfg, baseLogger, runLog)
	engine := buildEngine(cfg, games, baseLogger)
	if cfg.Metrics.Enabled {
		engine.SetRecorder(metrics.NewRecorder())
	}

	runLog.LogRunStart(len(games), cfg.Backtest.Markets, cfg.Backtest.Workers)

	start := time.Now()
	switch *mode {
	case "walk-forward":
		result, err := engine.RunWalkForward(ctx, games)
		if err != nil {
			runLog.WithError(err).Fatal("Walk-forward run failed")
		}
		metrics.RecordBacktestDuration(time.Since(start).Seconds())
		writeWalkForwardOutputs(cfg, result, runLog)
		runLog.LogResolutionFailures(result.Log.UnresolvedNames())
	default:
		result, err := engine.Run(ctx, games)
		if err != nil {
			runLog.WithError(err).Fatal("Backtest run failed")
		}
		metrics.RecordBacktestDuration(time.Since(start).Seconds())
		writeOutputs(cfg, result, runLog)
		runLog.LogResolutionFailures(result.Log.UnresolvedNames())
		runLog.LogRunComplete(result.Summary.Completed, result.Summary.Skipped, len(result.Bets), result.Summary.Overall.ROI)
	}
}

func loadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

// loadGames ingests every configured game export and merges them into one
// deduplicated, chronologically ordered slate.
func loadGames(cfg *config.Config, baseLogger *logrus.Logger, runLog *logger.RunLogger) []models.GameRecord {
	batches := make([][]models.GameRecord, 0, len(cfg.Data.GameSources))
	for _, src := range cfg.Data.GameSources {
		source, err := dataset.ParseSource(src.Source)
		if err != nil {
			runLog.Fatalf("Invalid game source %q: %v", src.Source, err)
		}
		games, err := dataset.LoadGamesFile(src.Path, source, baseLogger)
		if err != nil {
			runLog.Fatalf("Failed to load games from %s: %v", src.Path, err)
		}
		batches = append(batches, games)
	}

	report, err := dataset.MergeGames(batches, baseLogger)
	if err != nil {
		runLog.Fatalf("Dataset merge failed: %v", err)
	}
	runLog.LogDatasetLoaded(len(report.Games), report.Deduped, len(batches))
	return report.Games
}

func buildEngine(cfg *config.Config, games []models.GameRecord, baseLogger *logrus.Logger) *backtest.Engine {
	table, err := resolver.LoadAliasTable(cfg.Data.AliasTablePath)
	if err != nil {
		baseLogger.Fatalf("Failed to load alias table: %v", err)
	}

	source, err := ratings.NewDirectorySource(cfg.Data.RatingsDir)
	if err != nil {
		baseLogger.Fatalf("Failed to open ratings directory: %v", err)
	}

	// A bootstrap store, without canonicalization, supplies the rated-team
	// set that breaks alias collisions in favor of teams that can actually
	// produce graded bets.
	bootstrap, err := ratings.NewStore(source, ratings.StoreOptions{Logger: baseLogger})
	if err != nil {
		baseLogger.Fatalf("Failed to build ratings store: %v", err)
	}
	rated := bootstrap.RatedTeams(ratingSeasons(games))

	index, err := resolver.BuildIndex(table.Teams, table.Aliases, resolver.IndexOptions{
		HasRatings: func(canonical string) bool {
			_, ok := rated[strings.ToLower(strings.TrimSpace(canonical))]
			return ok
		},
		Logger: baseLogger,
	})
	if err != nil {
		baseLogger.Fatalf("Failed to build alias index: %v", err)
	}

	teams := resolver.NewTeamResolver(index, resolver.ResolverOptions{
		NonMembers: cfg.Data.NonMembers,
		Logger:     baseLogger,
	})

	canonicalize := func(rawName string) (string, bool) {
		res := teams.Resolve(rawName)
		return res.Canonical, res.Matched()
	}
	ratingsStore, err := ratings.NewStore(source, ratings.StoreOptions{
		Canonicalize: canonicalize,
		Logger:       baseLogger,
	})
	if err != nil {
		baseLogger.Fatalf("Failed to build ratings store: %v", err)
	}

	oddsStore := odds.NewStore(odds.StoreOptions{
		BookmakerOrder: cfg.Backtest.BookmakerOrder,
		Logger:         baseLogger,
	})
	for _, path := range cfg.Data.OddsPaths {
		report, err := odds.LoadCSVFile(oddsStore, path, odds.LoaderOptions{
			Resolve: canonicalize,
			Logger:  baseLogger,
		})
		if err != nil {
			baseLogger.Fatalf("Failed to load odds from %s: %v", path, err)
		}
		baseLogger.WithFields(logrus.Fields{
			"path":       path,
			"rows":       report.Rows,
			"indexed":    report.Indexed,
			"stale":      report.Stale,
			"unresolved": report.Unresolved,
		}).Info("Odds file loaded")
	}

	engine, err := backtest.NewEngine(engineConfig(cfg.Backtest), teams, ratingsStore, oddsStore, predict.NewEfficiencyModel(), baseLogger)
	if err != nil {
		baseLogger.Fatalf("Failed to create engine: %v", err)
	}
	return engine
}

func engineConfig(bt config.BacktestConfig) backtest.Config {
	engineCfg := backtest.DefaultConfig()

	markets := make([]models.Market, 0, len(bt.Markets))
	for _, m := range bt.Markets {
		markets = append(markets, models.Market(m))
	}
	engineCfg.Markets = markets

	minEdge := make(map[models.Market]float64, len(bt.MinEdge))
	for m, edge := range bt.MinEdge {
		minEdge[models.Market(m)] = edge
	}
	for m, edge := range engineCfg.MinEdge {
		if _, ok := minEdge[m]; !ok {
			minEdge[m] = edge
		}
	}
	engineCfg.MinEdge = minEdge

	if bt.Wager > 0 {
		engineCfg.Wager = bt.Wager
	}
	engineCfg.Workers = bt.Workers
	if bt.MinTrainSeasons > 0 {
		engineCfg.MinTrainSeasons = bt.MinTrainSeasons
	}
	return engineCfg
}

func ratingSeasons(games []models.GameRecord) []int {
	seen := make(map[int]struct{})
	for _, game := range games {
		seen[season.RatingsSeasonFor(game.Date)] = struct{}{}
	}
	seasons := make([]int, 0, len(seen))
	for s := range seen {
		seasons = append(seasons, s)
	}
	return season.Sorted(seasons)
}

func writeOutputs(cfg *config.Config, result *backtest.Result, runLog *logger.RunLogger) {
	outDir := cfg.Backtest.OutputDir
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		runLog.Fatalf("Failed to create output directory: %v", err)
	}

	writeFile(runLog, filepath.Join(outDir, "audit.ndjson"), result.Log.WriteJSON)
	writeFile(runLog, filepath.Join(outDir, "summary.json"), func(w io.Writer) error {
		return backtest.WriteSummaryJSON(w, result.Summary)
	})
	writeFile(runLog, filepath.Join(outDir, "bets.csv"), func(w io.Writer) error {
		return backtest.WriteBetsCSV(w, result.Bets)
	})

	if err := backtest.WriteSummaryText(os.Stdout, result.Summary); err != nil {
		runLog.WithError(err).Error("Failed to write summary")
	}

	if cfg.Backtest.MonteCarloRuns > 0 {
		mc, err := backtest.RunMonteCarlo(result.Bets, backtest.MonteCarloConfig{Iterations: cfg.Backtest.MonteCarloRuns})
		if err != nil {
			runLog.WithError(err).Warn("Monte Carlo skipped")
		} else {
			fmt.Printf("\nMonte Carlo (%d runs): mean ROI %.4f, std %.4f, P(profit) %.2f\n",
				cfg.Backtest.MonteCarloRuns, mc.MeanROI, mc.StdROI, mc.ProbabilityOfProfit)
		}
	}
}

func writeWalkForwardOutputs(cfg *config.Config, result *backtest.WalkForwardResult, runLog *logger.RunLogger) {
	outDir := cfg.Backtest.OutputDir
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		runLog.Fatalf("Failed to create output directory: %v", err)
	}

	writeFile(runLog, filepath.Join(outDir, "audit.ndjson"), result.Log.WriteJSON)
	writeFile(runLog, filepath.Join(outDir, "walk_forward.json"), func(w io.Writer) error {
		return backtest.WriteWalkForwardJSON(w, result)
	})
	writeFile(runLog, filepath.Join(outDir, "bets.csv"), func(w io.Writer) error {
		return backtest.WriteBetsCSV(w, result.Bets)
	})

	if err := backtest.WriteWalkForwardText(os.Stdout, result); err != nil {
		runLog.WithError(err).Error("Failed to write walk-forward report")
	}
}

func writeFile(runLog *logger.RunLogger, path string, write func(io.Writer) error) {
	f, err := os.Create(path)
	if err != nil {
		runLog.Fatalf("Failed to create %s: %v", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		runLog.Fatalf("Failed to write %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		runLog.Fatalf("Failed to close %s: %v", path, err)
	}
	runLog.WithField("path", path).Info("Output written")
}

func serveMetrics(address string, baseLogger *logrus.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	baseLogger.WithField("address", address).Info("Metrics server listening")
	if err := http.ListenAndServe(address, mux); err != nil {
		baseLogger.WithError(err).Error("Metrics server stopped")
	}
}

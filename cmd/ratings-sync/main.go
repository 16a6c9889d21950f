// Package main provides the ratings sync service entry point.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/config"
	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/database"
	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/fetch"
	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/health"
	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/logger"
	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/repository"
	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/scheduler"
	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/season"
	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/service"
)

var (
	configFile string
	seasons    []int

	cfg     *config.Config
	appLog  *logrus.Logger
	db      *database.DB
	syncSvc *service.RatingsSyncService
)

var rootCmd = &cobra.Command{
	Use:   "ratings-sync",
	Short: "Sync season team ratings into the snapshot database",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := setupDependencies(cmd.Context()); err != nil {
			return fmt.Errorf("failed to setup dependencies: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Sync the configured seasons once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		targets := seasons
		if len(targets) == 0 {
			targets = cfg.Sync.Seasons
		}
		if len(targets) == 0 {
			targets = []int{season.Current(time.Now())}
			appLog.WithField("season", targets[0]).Info("No seasons configured, syncing current season")
		}

		results, err := syncSvc.SyncAll(cmd.Context(), targets)
		if err != nil {
			return err
		}
		for _, result := range results {
			appLog.WithFields(logrus.Fields{
				"season":      result.Season,
				"teams":       result.Teams,
				"duration_ms": result.Duration.Milliseconds(),
			}).Info("Season synced")
		}
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the sync on the configured cron schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(cfg.Sync.Seasons) == 0 {
			return fmt.Errorf("no seasons configured to sync")
		}

		sched := scheduler.NewScheduler(syncSvc, appLog)
		if err := sched.ScheduleSync(cfg.Sync.Schedule, cfg.Sync.Seasons); err != nil {
			return err
		}

		healthSrv := health.NewServer(health.Config{
			ServiceName: cfg.App.Name,
			Logger:      appLog,
			Pool:        db,
			NextRun:     sched.GetNextRun,
		})
		if err := healthSrv.Start(cmd.Context()); err != nil {
			return err
		}

		if err := sched.Start(); err != nil {
			return err
		}
		healthSrv.SetReady(true)
		appLog.WithField("next_run", sched.GetNextRun().Format(time.RFC3339)).Info("Sync service running")

		<-cmd.Context().Done()
		sched.Stop()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config/config.yaml", "Path to configuration file")
	runCmd.Flags().IntSliceVar(&seasons, "seasons", nil, "Override seasons to sync")
	rootCmd.AddCommand(runCmd, serveCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	loaded, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if err := config.Validate(loaded); err != nil {
		return err
	}
	cfg = loaded
	return nil
}

func setupDependencies(ctx context.Context) error {
	appLog = logger.NewLogger(cfg.App.LogLevel)

	var err error
	db, err = database.Initialize(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	clientCfg := fetch.DefaultClientConfig()
	if cfg.Sync.TimeoutSeconds > 0 {
		clientCfg.Timeout = time.Duration(cfg.Sync.TimeoutSeconds) * time.Second
	}
	if cfg.Sync.RetryAttempts > 0 {
		clientCfg.MaxRetries = cfg.Sync.RetryAttempts
	}
	if cfg.Sync.RatePerSecond > 0 {
		clientCfg.RateLimit = float64(cfg.Sync.RatePerSecond)
	}

	client, err := fetch.NewBarttorvikClient(fetch.NewRateLimitedClient(clientCfg, nil), cfg.Sync.BaseURL)
	if err != nil {
		return err
	}

	repo := repository.NewPostgresSnapshotRepository(db)
	syncSvc, err = service.NewRatingsSyncService(client, repo, appLog)
	return err
}

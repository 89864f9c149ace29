package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobsearch/internal/config"
	"github.com/amishk599/jobsearch/internal/filter"
	"github.com/amishk599/jobsearch/internal/model"
	"github.com/amishk599/jobsearch/internal/poller"
	"github.com/amishk599/jobsearch/internal/scheduler"
	"github.com/amishk599/jobsearch/internal/store"
)

var (
	watchDryRun bool
	watchOnce   bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run saved searches on a schedule and notify about new jobs",
	Long:  "Runs every watch.searches entry on the watch.schedule cron spec; blocks until SIGINT/SIGTERM.",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchDryRun, "dry-run", false, "run once, notify every match, persist neither seen jobs nor run logs")
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "run a single cycle and exit")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if len(cfg.Watch.Searches) == 0 {
		logger.Error("no saved searches under watch.searches")
		os.Exit(1)
	}

	logger.Info("config loaded",
		"schedule", cfg.Watch.Schedule,
		"searches", len(cfg.Watch.Searches),
		"exclude_keywords", len(cfg.Watch.Filters.ExcludeKeywords),
		"locations", len(cfg.Watch.Filters.Locations),
	)

	// In dry-run mode, use a NopStore and no run log so nothing is persisted.
	var (
		jobStore model.JobStore
		sqlStore *store.SQLiteStore
	)
	if watchDryRun {
		logger.Info("dry-run mode enabled, no jobs will be marked as seen")
		jobStore = store.NewNopStore()
		disablePersistence(cfg)
	} else {
		sqlStore, err = store.NewSQLiteStore(cfg.Watch.DBPath)
		if err != nil {
			logger.Error("failed to open store", "error", err)
			os.Exit(1)
		}
		defer sqlStore.Close()
		jobStore = sqlStore
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, err := buildPipeline(ctx, cfg, sqlStore, logger)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}
	defer p.Close()

	jobFilter := filter.NewKeywordFilter(cfg.Watch.Filters.ExcludeKeywords, cfg.Watch.Filters.Locations)
	n := setupNotifier(cfg, &http.Client{Timeout: cfg.Search.HTTPTimeout}, logger)

	var pollers []scheduler.Poller
	for _, s := range cfg.Watch.Searches {
		req, err := buildRequest(s)
		if err != nil {
			logger.Error("skipping saved search", "search", s.Name, "error", err)
			continue
		}
		pollers = append(pollers, poller.NewSearchPoller(s.Name, req, p.svc, jobFilter, jobStore, n, logger))
		logger.Info("registered search", "name", s.Name, "skills", s.Skills, "query", s.Query)
	}
	if len(pollers) == 0 {
		logger.Error("no saved searches to run")
		os.Exit(1)
	}

	if watchDryRun || watchOnce {
		for _, sp := range pollers {
			if err := sp.Poll(ctx); err != nil {
				logger.Error("poll failed", "search", sp.Name(), "error", err)
			}
		}
		logger.Info("single cycle complete")
		return nil
	}

	sched := scheduler.NewScheduler(pollers, jobStore, cfg.Watch.Schedule, cfg.Watch.Retention, logger)
	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}

// disablePersistence turns off the run log so a dry run leaves no trace on
// disk or in the database.
func disablePersistence(cfg *config.Config) {
	cfg.RunLog.Driver = "none"
	cfg.RunLog.DSN = ""
}

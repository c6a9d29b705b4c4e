package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"apartment-watcher/config"
	"apartment-watcher/notifier"
	"apartment-watcher/scheduler"
	"apartment-watcher/scraper/craigslist"
	"apartment-watcher/services"
	"apartment-watcher/storage"
	"apartment-watcher/utils"
)

var once = flag.Bool("once", false, "Run a single cycle and exit")

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	logger := utils.NewLogger()
	cfg := config.Load()
	logger.SetDebug(cfg.Debug)

	logger.Info("🏘  Starting to look...")
	logger.Info("Config — backend: %s | interval: %s | retention: %d | url: %s",
		cfg.StateBackend, cfg.PollInterval, cfg.MaxStoredListings, cfg.SearchURL)

	store, err := openStore(cfg, logger)
	if err != nil {
		logger.Error("Failed to open listing store: %v", err)
		return 1
	}
	defer store.Close()

	var history storage.HistoryWriter
	if cfg.HistoryCSVPath != "" {
		csvWriter, err := storage.NewCSVWriter(cfg.HistoryCSVPath)
		if err != nil {
			logger.Error("Failed to open history CSV: %v", err)
			return 1
		}
		defer csvWriter.Close()
		history = csvWriter
		logger.Info("New listings will also be appended to %s", cfg.HistoryCSVPath)
	}

	selectors, err := craigslist.LoadSelectors(cfg.SelectorsFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Debug("No selector file at %s, using defaults", cfg.SelectorsFile)
		} else {
			logger.Warn("Failed to load selectors, using defaults: %v", err)
		}
		selectors = craigslist.DefaultSelectors()
	}

	browser, err := craigslist.NewBrowser(cfg, logger)
	if err != nil {
		logger.Error("Failed to start browser: %v", err)
		logger.Error("Install Chrome/Chromium or point CHROME_BIN at it")
		return 1
	}
	defer browser.Close()

	fetcher := craigslist.NewFetcher(browser, selectors, logger)
	desktop := notifier.New(notifier.NewDesktopSender(), cfg.NotifySound,
		cfg.NotifyConcurrency, cfg.NotifySpacingMs, logger)
	defer func() {
		if !desktop.Drain(5 * time.Second) {
			logger.Warn("Some notifications were still pending at exit")
		}
	}()

	watcher := services.NewWatcher(services.WatcherOptions{
		SearchURL:         cfg.SearchURL,
		PollInterval:      cfg.PollInterval,
		MaxStoredListings: cfg.MaxStoredListings,
	}, store, fetcher, desktop, history, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *once {
		if _, err := watcher.RunCycle(ctx); err != nil {
			logger.Error("Cycle failed: %v", err)
			return 1
		}
		return 0
	}

	sched := scheduler.New(cfg.PollInterval, watcher.Run, logger)
	if err := sched.Start(ctx); err != nil {
		logger.Error("Failed to start scheduler: %v", err)
		return 1
	}

	<-ctx.Done()
	logger.Info("Shutting down...")
	if !sched.Stop(30 * time.Second) {
		logger.Warn("Cycle still running after 30s, exiting anyway")
	}
	return 0
}

func openStore(cfg *config.Config, logger *utils.Logger) (storage.ListingStore, error) {
	switch cfg.StateBackend {
	case config.BackendPostgres:
		ps, err := storage.NewPostgresStore(cfg.DSN())
		if err != nil {
			return nil, err
		}
		logger.Info("State stored in PostgreSQL (table: seen_listings)")
		return ps, nil
	default:
		if cfg.StateBackend != config.BackendJSON {
			logger.Warn("Unknown STATE_BACKEND %q, using %s", cfg.StateBackend, config.BackendJSON)
		}
		js := storage.NewJSONStore(cfg.StateFile)
		if cfg.InitState {
			created, err := js.Init()
			if err != nil {
				return nil, err
			}
			if created {
				logger.Info("Created empty state file %s", js.Path())
			}
		}
		logger.Info("State stored in %s", js.Path())
		return js, nil
	}
}

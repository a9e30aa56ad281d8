package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/news-digest/app/api"
	"github.com/lysyi3m/news-digest/app/cfg"
	"github.com/lysyi3m/news-digest/app/database"
	"github.com/lysyi3m/news-digest/app/digest"
	"github.com/lysyi3m/news-digest/app/feed"
	"github.com/lysyi3m/news-digest/app/scoring"
	"github.com/lysyi3m/news-digest/app/tasks"
	"github.com/lysyi3m/news-digest/app/transport"
)

func main() {
	appCfg, args, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	setupLogging(appCfg.Debug)

	if len(args) == 0 {
		printUsage()
		return
	}

	if err := run(appCfg, args[0]); err != nil {
		slog.Error("Command failed", "command", args[0], "error", err)
		os.Exit(1)
	}
}

func run(appCfg *cfg.Cfg, command string) error {
	switch command {
	case "run":
		return runContinuous(appCfg)
	case "run-once":
		return runOnce(appCfg)
	case "send-test-message":
		return sendTestMessage(appCfg)
	case "show-stats":
		return showStats(appCfg)
	case "cleanup":
		return runCleanup(appCfg)
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

type store struct {
	db              *database.DB
	itemRepo        *database.ItemRepository
	deliveryLogRepo *database.DeliveryLogRepository
}

func openStore(appCfg *cfg.Cfg) (*store, error) {
	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	return &store{
		db:              db,
		itemRepo:        database.NewItemRepository(db),
		deliveryLogRepo: database.NewDeliveryLogRepository(db),
	}, nil
}

func buildScheduler(appCfg *cfg.Cfg, st *store) (*tasks.Scheduler, error) {
	sources, err := feed.LoadSources(appCfg.SourcesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load sources: %w", err)
	}
	slog.Info("Sources loaded", "count", len(sources))

	fetcher := feed.NewFetcher(&http.Client{}, appCfg.UserAgent,
		time.Duration(appCfg.FetchTimeout)*time.Second)
	deduplicator := feed.NewDeduplicator(st.itemRepo)
	telegram := transport.NewTelegram(appCfg.TelegramBotToken, appCfg.TelegramChatID, nil)
	deliverer := digest.NewDeliverer(digest.NewRenderer(), telegram, st.itemRepo, st.deliveryLogRepo)

	cycleTask := tasks.NewProcessCycleTask(sources, fetcher, scoring.NewScorer(),
		scoring.NewSummarizer(), deduplicator, st.itemRepo, deliverer, appCfg.MaxItemsPerDigest)
	cleanupTask := tasks.NewCleanupTask(st.itemRepo, appCfg.RetentionDays)
	statsTask := tasks.NewStatsSummaryTask(st.itemRepo)

	return tasks.NewScheduler(cycleTask, cleanupTask, statsTask, st.deliveryLogRepo,
		time.Duration(appCfg.UpdateIntervalHours)*time.Hour), nil
}

func runContinuous(appCfg *cfg.Cfg) error {
	st, err := openStore(appCfg)
	if err != nil {
		return err
	}
	defer st.db.Close()

	scheduler, err := buildScheduler(appCfg, st)
	if err != nil {
		return err
	}

	slog.Info("Starting scheduler", "update_interval_hours", appCfg.UpdateIntervalHours)
	scheduler.Start()
	defer scheduler.Stop()

	apiHandler := api.NewHandler(st.itemRepo, st.deliveryLogRepo, appCfg.Version)
	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(apiHandler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting status server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error, shutting down", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer; a cycle in progress runs to completion.
	return nil
}

func runOnce(appCfg *cfg.Cfg) error {
	st, err := openStore(appCfg)
	if err != nil {
		return err
	}
	defer st.db.Close()

	scheduler, err := buildScheduler(appCfg, st)
	if err != nil {
		return err
	}

	return scheduler.RunOnce(context.Background())
}

func sendTestMessage(appCfg *cfg.Cfg) error {
	telegram := transport.NewTelegram(appCfg.TelegramBotToken, appCfg.TelegramChatID, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := telegram.SendTest(ctx); err != nil {
		return fmt.Errorf("failed to send test message: %w", err)
	}

	fmt.Println("Test message sent successfully")
	return nil
}

func showStats(appCfg *cfg.Cfg) error {
	st, err := openStore(appCfg)
	if err != nil {
		return err
	}
	defer st.db.Close()

	stats, err := st.itemRepo.GetStatistics()
	if err != nil {
		return fmt.Errorf("failed to get statistics: %w", err)
	}

	lastSend := "never"
	if stats.LastSuccessfulSendAt != nil {
		lastSend = stats.LastSuccessfulSendAt.In(time.Local).Format("2006-01-02 15:04:05")
	}

	fmt.Printf("Total items:   %d\n", stats.TotalItems)
	fmt.Printf("Unsent items:  %d\n", stats.UnsentItems)
	fmt.Printf("Sent items:    %d\n", stats.SentItems)
	fmt.Printf("Last delivery: %s\n", lastSend)

	if len(stats.ItemsBySource) > 0 {
		fmt.Println("Items by source:")
		for source, count := range stats.ItemsBySource {
			fmt.Printf("  %-20s %d\n", source, count)
		}
	}

	return nil
}

func runCleanup(appCfg *cfg.Cfg) error {
	st, err := openStore(appCfg)
	if err != nil {
		return err
	}
	defer st.db.Close()

	deleted, err := st.itemRepo.Cleanup(appCfg.RetentionDays)
	if err != nil {
		return fmt.Errorf("failed to clean up old items: %w", err)
	}

	fmt.Printf("Deleted %d items older than %d days\n", deleted, appCfg.RetentionDays)
	return nil
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})))
}

func printUsage() {
	fmt.Println(`Usage: news-digest [options] <command>

Commands:
  run                 Start the continuous scheduler and status API
  run-once            Execute one ingestion and delivery cycle, then exit
  send-test-message   Send a test message through the delivery transport
  show-stats          Print store statistics
  cleanup             Remove sent items older than the retention window

Run 'news-digest --help' for the full list of options.`)
}

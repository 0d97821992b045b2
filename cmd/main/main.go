package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"marketpulse/src/config"
	"marketpulse/src/core"
	"marketpulse/src/feed"
	"marketpulse/src/logger"
	"marketpulse/src/metrics"
	"marketpulse/src/models"
	"marketpulse/src/server"
	"marketpulse/src/storage"
)

func main() {
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("error loading config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.NewLogger(cfg.AppConfig, cfg.Name)

	deeplink := core.NewDeepLinker(cfg.DeepLink.Host, cfg.DeepLink.DefaultExchange, cfg.DeepLink.ExchangeSlugs)
	recorder := metrics.New(cfg.Metrics.Namespace)
	analyzer := core.NewAnalyzer(core.FromCoreConfig(cfg.Core), deeplink, recorder)

	store, err := newAlertStore(cfg, appLogger)
	if err != nil {
		appLogger.Critical("failed to initialize alert store: %v", err)
	}
	if err := store.Initialize(); err != nil {
		appLogger.Critical("failed to migrate alert store: %v", err)
	}
	writer := storage.NewWriter(store, appLogger, cfg.Storage.RetentionDays, cfg.Storage.RetentionSweepMs)
	analyzer.SetTransitionCallback(func(snapshot models.AlertSnapshot, kind string) {
		writer.Enqueue(snapshot, kind)
	})

	reaper := core.NewReaper(analyzer, cfg.Core.ReaperIntervalMs, cfg.Core.InactivityHorizonMs, func(evicted []models.AlertSnapshot) {
		for _, snapshot := range evicted {
			writer.Enqueue(snapshot, "evict")
		}
	})

	srv := server.New(cfg.Server, analyzer, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var wg sync.WaitGroup

	writer.Start(ctx, &wg)
	reaper.Start(ctx, &wg)
	srv.Start(ctx, &wg)

	if cfg.Feed.Enabled {
		f := feed.New(cfg.Feed, analyzer, appLogger)
		f.Start(ctx, &wg)
	}

	appLogger.Info("%s started, listening on %s:%d", cfg.Name, cfg.Server.Host, cfg.Server.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down...")
	cancel()
	wg.Wait()
	if err := store.Close(); err != nil {
		appLogger.Error("error closing alert store: %v", err)
	}
	appLogger.Info("shutdown complete")
}

func newAlertStore(cfg *config.Config, log *logger.Logger) (storage.AlertStore, error) {
	switch cfg.Storage.Backend {
	case "postgres":
		return storage.NewPostgresDB(cfg.Storage.PostgresDSN, log)
	default:
		return storage.NewAsyncSQLiteDB(cfg.Storage.SQLitePath, log), nil
	}
}

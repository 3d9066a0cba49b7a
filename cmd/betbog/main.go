// Package main contains the entrypoint for the BetBog monitoring system:
// the live match monitor, the strategy engine, and the scheduled
// background tasks.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/betbog/betbog/internal/app"
	"github.com/betbog/betbog/internal/app/tasks"
	"github.com/betbog/betbog/internal/config"
	"github.com/betbog/betbog/internal/database"
	"github.com/betbog/betbog/internal/logger"
	"github.com/betbog/betbog/internal/monitor"
	"github.com/betbog/betbog/internal/optimizer"
	"github.com/betbog/betbog/internal/sportsapi"
	"github.com/betbog/betbog/internal/strategy"
	"github.com/betbog/betbog/internal/telegram"
	"github.com/betbog/betbog/internal/tracker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes all components (config, logger, db, api client, engine,
// optimizer, tracker, scheduler), starts the orchestrator, and returns an
// exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.New(cfg.Log.Level, cfg.Log.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON)

	db, err := database.NewDB(cfg.Database.URL, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		return 1
	}
	defer database.CloseDB(db)

	if err := database.ApplyMigrations(db.DB); err != nil {
		log.Error("Failed to apply migrations", "error", err)
		return 1
	}
	store := database.NewStore(db, log)

	api := sportsapi.New(cfg.API.BaseURL, cfg.API.Token, cfg.API.SportID, cfg.API.Timeout, log)

	engineConfigs := make(map[string]strategy.Config, len(cfg.Strategy))
	for name, sc := range cfg.Strategy {
		engineConfigs[name] = strategy.Config{
			Threshold:     sc.Threshold,
			MinConfidence: sc.MinConfidence,
			Extra:         sc.Extra,
		}
	}
	engine := strategy.NewEngine(engineConfigs, log)

	opt := optimizer.New(cfg.Optimizer.MinSamples, log)
	if err := opt.LoadState(cfg.Optimizer.StatePath); err != nil {
		log.Error("Failed to load optimizer state", "path", cfg.Optimizer.StatePath, "error", err)
		return 1
	}

	for name, sc := range engineConfigs {
		seed := database.JSONMap{"threshold": sc.Threshold, "min_confidence": sc.MinConfidence}
		for k, v := range sc.Extra {
			seed[k] = v
		}
		if err := store.EnsureStrategyStats(ctx, name, seed); err != nil {
			log.Error("Failed to seed strategy stats", "strategy", name, "error", err)
			return 1
		}
	}

	notifier := telegram.NewNotifier(nil, 0, log)
	if cfg.Telegram.Token != "" && cfg.Telegram.SignalChatID != 0 {
		tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log)
		if err != nil {
			log.Error("Failed to create Telegram bot", "error", err)
			return 1
		}
		notifier = telegram.NewNotifier(tg, cfg.Telegram.SignalChatID, log)
	} else {
		log.Warn("Telegram notifications disabled, token or signal chat not configured")
	}

	trk := tracker.New(store, api, notifier, tracker.Config{
		SignalMaxAge:     cfg.Tracker.SignalMaxAge,
		ForceExpireAge:   cfg.Tracker.ForceExpireAge,
		FinishedDaysBack: cfg.Tracker.FinishedDaysBack,
	}, log)

	mon := monitor.New(store, api, engine, opt, notifier, monitor.Config{
		PollInterval:         cfg.Monitor.PollInterval,
		MaxConcurrentMatches: cfg.Monitor.MaxConcurrentMatches,
		MinMinute:            cfg.Monitor.MinMinute,
		MaxMinute:            cfg.Monitor.MaxMinute,
	}, log)

	tDeps := tasks.TaskDeps{
		Logger:    log,
		Config:    cfg,
		Store:     store,
		Tracker:   trk,
		Engine:    engine,
		Optimizer: opt,
	}
	sched, err := app.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	orchestrator := app.New(log, mon, sched)

	log.Info("Starting BetBog monitoring system...")
	runErr := orchestrator.Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("System stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("System stopped gracefully.")
	return 0
}

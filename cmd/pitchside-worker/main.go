package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"pitchside/internal/config"
	"pitchside/internal/game"
	"pitchside/internal/store"
	"pitchside/internal/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadWorkerFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	tuning, err := config.LoadTuning(cfg.TuningFile)
	if err != nil {
		logger.Error("load tuning", "err", err)
		os.Exit(1)
	}
	st, closeStore, err := store.Open(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("store open failed", "err", err)
		os.Exit(1)
	}
	defer closeStore()

	svc := game.NewService(st, tuning.Params(), logger)
	sweeper := worker.NewSweeper(svc, logger, cfg.Concurrency)

	if cfg.RunOnce {
		if _, err := sweeper.Sweep(ctx); err != nil {
			logger.Error("sweep failed", "err", err)
			os.Exit(1)
		}
		logger.Info("worker run-once completed")
		return
	}

	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(cfg.Schedule, func() {
		if _, err := sweeper.Sweep(ctx); err != nil {
			logger.Error("sweep failed", "err", err)
		}
	}); err != nil {
		logger.Error("invalid schedule", "schedule", cfg.Schedule, "err", err)
		os.Exit(1)
	}
	c.Start()
	logger.Info("worker started", "schedule", cfg.Schedule, "concurrency", cfg.Concurrency)

	<-ctx.Done()
	<-c.Stop().Done()
	logger.Info("worker stopped")
}

package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"github.com/Ininit/OpenTranslate/internal/app"
	"github.com/Ininit/OpenTranslate/internal/config"
	"github.com/Ininit/OpenTranslate/internal/queue"
	"github.com/Ininit/OpenTranslate/internal/queue/workers"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	a := app.New(context.Background(), cfg, app.Options{})
	defer a.Close()
	if a.Pool == nil {
		slog.Error("worker needs a database to store job results")
		os.Exit(1)
	}

	concurrency := cfg.Worker.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}

	srv := asynq.NewServer(
		queue.RedisOpt(cfg.Redis),
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				queue.QueueCritical: 6,
				queue.QueueDefault:  3,
				queue.QueueLow:      1,
			},
			Logger: newAsynqLogger(logger),
		},
	)

	registry := queue.NewHandlersRegistry()

	// Register workers
	translateWorker := workers.NewTranslateWorker(a.Service)

	registry.Register(queue.TypeTranslateText, asynq.HandlerFunc(translateWorker.ProcessTask))

	slog.Info("starting worker", "concurrency", concurrency)
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"tripledger/internal/amqp"
	"tripledger/internal/config"
	applog "tripledger/internal/log"
	"tripledger/internal/storage"
	"tripledger/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	logger.Info("Starting tripledger-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// The worker always reads the SQLite database: snapshots only make
	// sense for a backend that outlives the process.
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// Without a broker the worker degrades to sweep-only recomputes.
	var consumer worker.Consumer
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("AMQP unavailable, running sweep-only", "error", err)
	} else {
		defer amqpClient.Close()
		consumer = amqpClient
		logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	w := worker.NewSnapshotWorker(repo, consumer, worker.Config{
		SweepInterval: cfg.SnapshotInterval,
		BatchSize:     cfg.SnapshotBatchSize,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Snapshot every trip once on startup so a fresh worker has current data.
	if err := w.SweepAll(ctx); err != nil {
		logger.Error("Startup sweep failed", "error", err)
	}

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}

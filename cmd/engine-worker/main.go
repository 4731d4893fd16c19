package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Chinweike99/expense-tracker-backend/internal/amqp"
	"github.com/Chinweike99/expense-tracker-backend/internal/backend"
	"github.com/Chinweike99/expense-tracker-backend/internal/config"
	"github.com/Chinweike99/expense-tracker-backend/internal/log"
	"github.com/Chinweike99/expense-tracker-backend/internal/services"
	"github.com/Chinweike99/expense-tracker-backend/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.Config{Component: "engine-worker"})
	log.SetDefault(logger)

	logger.Info("Starting engine-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateBackend(ctx, backend.Config{
		Type:         backend.Type(cfg.DataBackend),
		SQLiteDBPath: cfg.SQLiteDBPath,
	})
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "type", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer result.Cleanup()
	}

	// Notifications are optional: without AMQP the engine still computes
	// alerts and reminders, it just has nowhere to push them.
	var sink services.NotificationSink
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without notifications", "error", err)
		} else {
			defer client.Close()
			sink = client
			logger.Info("AMQP client initialized",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled - alerts and reminders will not be published")
	}

	scheduler := worker.NewScheduler(result.Stores, sink, cfg.TickInterval, cfg.BatchTimeout)

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	if err := scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Scheduler stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Engine-worker shutdown complete")
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"mydash/internal/amqp"
	"mydash/internal/backend"
	"mydash/internal/budget"
	"mydash/internal/config"
	applog "mydash/internal/log"
	"mydash/internal/notify"
	"mydash/internal/services"
	"mydash/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	slog.Info("Starting mydash-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		slog.Error("Invalid backend configuration", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	factory := backend.NewFactory(slog.Default())
	result, err := factory.CreateStore(ctx, bcfg)
	if err != nil {
		slog.Error("Failed to initialize data backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cleanupCancel()
			if err := result.Cleanup(cleanupCtx); err != nil {
				slog.Error("Backend cleanup failed", "error", err)
			}
		}()
	}

	rollups, err := services.NewRollupService(result.Store, budget.Default())
	if err != nil {
		slog.Error("Failed to initialize rollup service", "error", err)
		os.Exit(1)
	}

	// Telegram reports are optional; the worker still snapshots without them.
	var notifier worker.Notifier
	if cfg.TelegramToken != "" {
		tg, err := notify.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			slog.Error("Failed to initialize Telegram notifier", "error", err)
			os.Exit(1)
		}
		notifier = tg
		slog.Info("Telegram notifier initialized", "chat_id", cfg.TelegramChatID)
	} else {
		slog.Info("Telegram disabled - no TELEGRAM_TOKEN provided")
	}

	snapshotWorker := worker.NewSnapshotWorker(result.Store, rollups, notifier, cfg.SnapshotCron)

	if err := snapshotWorker.StartCron(ctx); err != nil {
		slog.Error("Failed to start snapshot cron", "error", err, "cron", cfg.SnapshotCron)
		os.Exit(1)
	}
	defer snapshotWorker.Stop()

	// Consume record-change events so snapshots track writes as they
	// happen, not just at month close.
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			slog.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		go func() {
			handler := func(msg *amqp.RecordChangedMessage) error {
				return snapshotWorker.HandleRecordChanged(ctx, msg)
			}
			if err := amqpClient.ConsumeRecordChanged(ctx, handler); err != nil {
				if !errors.Is(err, context.Canceled) {
					slog.Error("Message consumption failed", "error", err)
				}
				cancel()
			}
		}()
		slog.Info("Consuming record change events", "queue", cfg.AMQPQueue)
	} else {
		slog.Info("AMQP disabled - snapshots run on the cron schedule only")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		slog.Info("Context cancelled")
	}

	cancel()
	slog.Info("Worker shutdown complete")
}

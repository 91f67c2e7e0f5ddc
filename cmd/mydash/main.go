package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"mydash/internal/amqp"
	"mydash/internal/backend"
	"mydash/internal/budget"
	"mydash/internal/config"
	apphttp "mydash/internal/http"
	applog "mydash/internal/log"
	"mydash/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	tier, err := budget.ParseTier(cfg.DefaultTier)
	if err != nil {
		slog.Error("Invalid default tier", "tier", cfg.DefaultTier, "error", err)
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

	// AMQP is optional: without a broker URL writes simply go unannounced.
	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			slog.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
		slog.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange)
	} else {
		slog.Info("AMQP disabled - no AMQP_URL provided")
	}

	records := services.NewRecordService(result.Store, publisher)
	rollups, err := services.NewRollupService(result.Store, budget.Default())
	if err != nil {
		slog.Error("Failed to initialize rollup service", "error", err)
		os.Exit(1)
	}

	srv := apphttp.NewServer(apphttp.Options{
		Addr:        ":" + cfg.Port,
		DefaultTier: tier,
		SessionTTL:  cfg.SessionTTL,
		CacheSize:   cfg.CacheSize,
		CacheTTL:    cfg.CacheTTL,
	}, records, rollups, result.Store)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		slog.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	slog.Info("Starting mydash server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	slog.Info("Server stopped gracefully")
}

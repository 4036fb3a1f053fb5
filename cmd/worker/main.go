package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"storefront/internal/config"
	connector "storefront/internal/connectors/scayle"
	"storefront/internal/database"
	"storefront/internal/logger"
	"storefront/internal/services/scayle"
	"storefront/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.NewWithEnv(cfg.LogLevel, cfg.Env)
	defer logger.Sync()

	if !cfg.KafkaEnabled() {
		logger.Fatal("KAFKA_BROKERS must be set to run the worker")
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	catalog := scayle.NewCatalog(cfg, logger)
	syncer := connector.New(db.DB, catalog, cfg.UpstreamPageSize, logger.Named("sync"))

	// Initialize worker
	w := worker.New(cfg, logger, syncer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting worker...")
	w.Start(ctx)

	logger.Info("Shutting down worker...")
	w.Stop()
}

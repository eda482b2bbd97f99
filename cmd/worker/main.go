package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/shelftunes/st-requests/internal/adapter"
	"github.com/shelftunes/st-requests/internal/config"
	"github.com/shelftunes/st-requests/internal/fulfillment"
	"github.com/shelftunes/st-requests/internal/logger"
	"github.com/shelftunes/st-requests/internal/messaging"
	"github.com/shelftunes/st-requests/internal/providers/jetstream"
	"github.com/shelftunes/st-requests/internal/source"
	"github.com/shelftunes/st-requests/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadWorkerConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags: map[string]string{
			"service": "fulfillment-worker",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting fulfillment worker")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err))
	}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	dataStore := store.NewPGStore(db)
	clock := adapter.NewClock()

	// Initialize the activity recorder
	var recorder messaging.Recorder = messaging.NoopRecorder{}
	if cfg.NATS.URL != "" {
		recorder, err = jetstream.NewRecorder(jetstream.Config{
			URL:            cfg.NATS.URL,
			StreamName:     cfg.NATS.StreamName,
			MaxReconnects:  cfg.NATS.MaxReconnects,
			ReconnectWait:  cfg.NATS.ReconnectWait,
			ConnectionName: "st-requests-worker",
		}, adapter.NewNatsJetStream(), clock)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to connect to NATS", zap.Error(err))
		}
		logger.InfoCtx(ctx, "Connected to NATS", zap.String("url", cfg.NATS.URL))
	} else {
		logger.WarnCtx(ctx, "NATS URL not configured, activity events will be discarded")
	}
	defer recorder.Close()

	// Build the source adapter from the configured endpoints
	if len(cfg.Sources.Endpoints) == 0 {
		logger.WarnCtx(ctx, "No source endpoints configured, all fetches will fail permanently")
	}
	httpClient := adapter.NewHTTPClient(cfg.Fulfillment.FetchTimeout)
	sourceAdapter := source.NewHTTPAdapter(httpClient, cfg.Sources.Endpoints)

	worker := fulfillment.NewWorker(
		&fulfillment.Config{
			PoolSize:           cfg.Worker.PoolSize,
			QueueSize:          cfg.Worker.QueueSize,
			BatchSize:          cfg.Fulfillment.BatchSize,
			PollInterval:       cfg.Fulfillment.PollInterval,
			MaxAttempts:        cfg.Fulfillment.MaxAttempts,
			BackoffBase:        cfg.Fulfillment.BackoffBase,
			BackoffCap:         cfg.Fulfillment.BackoffCap,
			FetchTimeout:       cfg.Fulfillment.FetchTimeout,
			BlacklistThreshold: cfg.Blacklist.FailureThreshold,
			BlacklistWindow:    cfg.Blacklist.Window,
		},
		dataStore,
		sourceAdapter,
		recorder,
		clock,
	)

	// Start worker in a goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := worker.Start(ctx); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the worker
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "worker"))
	}

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	logger.InfoCtx(shutdownCtx, "Shutting down worker...")

	if err := worker.Stop(shutdownCtx); err != nil {
		logger.FatalCtx(shutdownCtx, "Worker forced to shutdown", zap.Error(err))
	}
	cancel()

	logger.InfoCtx(shutdownCtx, "Worker stopped")
}

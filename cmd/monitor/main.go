package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Pavelevich/bagstats-backend/internal/application/services"
	"github.com/Pavelevich/bagstats-backend/internal/config"
	"github.com/Pavelevich/bagstats-backend/internal/infrastructure/bags"
	"github.com/Pavelevich/bagstats-backend/internal/infrastructure/database"
	"github.com/Pavelevich/bagstats-backend/internal/infrastructure/pricing"
	"github.com/Pavelevich/bagstats-backend/internal/infrastructure/push"
)

// Headless bag monitor: runs the detection and notification loop without
// the HTTP API, for deployments that split the two.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Log.Level)
	defer logger.Sync()

	logger.Info("Starting BagStats monitor",
		zap.Duration("interval", cfg.Monitor.Interval),
	)

	db, err := database.NewPostgresDB(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.Bootstrap(ctx); err != nil {
		logger.Fatal("Failed to bootstrap schema", zap.Error(err))
	}

	bagsClient := bags.NewClient(cfg.Bags.BaseURL, cfg.Bags.APIKey, logger,
		bags.WithTimeout(cfg.Bags.RequestTimeout))
	priceOracle := pricing.NewOracle(cfg.Price.URL, cfg.Price.FallbackUSD, cfg.Price.RequestTimeout, logger)
	apnsClient := push.NewAPNSClient(cfg.APNS, logger)

	subRepo := database.NewSubscriptionRepo(db.DB())
	snapshotRepo := database.NewSnapshotRepo(db.DB())
	notificationRepo := database.NewNotificationRepo(db.DB())

	monitorService := services.NewMonitorService(bagsClient, priceOracle, subRepo, snapshotRepo,
		notificationRepo, apnsClient, cfg.Monitor, logger)

	monitorService.Start(ctx, cfg.Monitor.Interval)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Received shutdown signal, stopping monitor...")
	monitorService.Stop()

	logger.Info("Monitor stopped")
}

func setupLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, _ := config.Build()
	return logger
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Pavelevich/bagstats-backend/internal/application/services"
	"github.com/Pavelevich/bagstats-backend/internal/config"
	"github.com/Pavelevich/bagstats-backend/internal/infrastructure/bags"
	"github.com/Pavelevich/bagstats-backend/internal/infrastructure/cache"
	"github.com/Pavelevich/bagstats-backend/internal/infrastructure/database"
	"github.com/Pavelevich/bagstats-backend/internal/infrastructure/metadata"
	"github.com/Pavelevich/bagstats-backend/internal/infrastructure/pricing"
	"github.com/Pavelevich/bagstats-backend/internal/infrastructure/push"
	"github.com/Pavelevich/bagstats-backend/internal/presentation/handlers"
	"github.com/Pavelevich/bagstats-backend/internal/presentation/middleware"
)

func main() {
	// Load .env if present; real env vars win
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Log.Level)
	defer logger.Sync()

	logger.Info("Starting BagStats API",
		zap.Int("port", cfg.API.Port),
	)

	// Connect to database
	db, err := database.NewPostgresDB(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.Bootstrap(ctx); err != nil {
		logger.Fatal("Failed to bootstrap schema", zap.Error(err))
	}

	// Stats cache: Redis when reachable, in-process otherwise
	var statsCache services.StatsCache
	var cacheChecker handlers.HealthChecker
	redisCache, err := cache.NewRedisStatsCache(cfg.Redis, cfg.API.CacheTTL, logger)
	if err != nil {
		logger.Warn("Failed to connect to Redis, using in-memory stats cache", zap.Error(err))
		statsCache = cache.NewMemoryStatsCache(cfg.API.CacheTTL)
	} else {
		defer redisCache.Close()
		statsCache = redisCache
		cacheChecker = redisCache
	}

	// Upstream clients
	bagsClient := bags.NewClient(cfg.Bags.BaseURL, cfg.Bags.APIKey, logger,
		bags.WithTimeout(cfg.Bags.RequestTimeout))
	priceOracle := pricing.NewOracle(cfg.Price.URL, cfg.Price.FallbackUSD, cfg.Price.RequestTimeout, logger)
	metadataClient := metadata.NewClient(cfg.Metadata.BaseURL, cfg.Metadata.RequestTimeout, logger)
	apnsClient := push.NewAPNSClient(cfg.APNS, logger)

	// Create repositories
	subRepo := database.NewSubscriptionRepo(db.DB())
	snapshotRepo := database.NewSnapshotRepo(db.DB())
	notificationRepo := database.NewNotificationRepo(db.DB())

	// Create services
	statsService := services.NewStatsService(bagsClient, bagsClient, metadataClient, priceOracle, statsCache,
		services.StatsConfig{
			ClaimStatsDelay:  cfg.Bags.ClaimStatsDelay,
			MetadataMaxMints: cfg.Metadata.MaxMints,
			MetadataWorkers:  cfg.Metadata.WorkerCount,
		}, logger)
	monitorService := services.NewMonitorService(bagsClient, priceOracle, subRepo, snapshotRepo,
		notificationRepo, apnsClient, cfg.Monitor, logger)
	subscriptionService := services.NewSubscriptionService(subRepo, snapshotRepo, notificationRepo,
		monitorService, cfg.Monitor.BaselineTimeout, logger)

	// Create handlers
	walletHandler := handlers.NewWalletHandler(statsService, subscriptionService, logger)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService, logger)
	notificationHandler := handlers.NewNotificationHandler(apnsClient, cfg.API.EnableTestPush, logger)
	healthHandler := handlers.NewHealthHandler(db, cacheChecker, monitorService)

	// Setup router
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RateLimiter(cfg.API.RateLimitRPS))

	// Health endpoints
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Get("/live", healthHandler.Live)
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		walletHandler.RegisterRoutes(r)
		subscriptionHandler.RegisterRoutes(r)
		notificationHandler.RegisterRoutes(r)
	})

	// Start background monitor
	monitorService.Start(ctx, cfg.Monitor.Interval)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
	}

	// Run server in goroutine
	go func() {
		logger.Info("API server starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Received shutdown signal, shutting down server...")

	monitorService.Stop()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.API.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	logger.Info("Server stopped")
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

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sensai/hubmind/internal/api"
	"github.com/sensai/hubmind/internal/cache"
	"github.com/sensai/hubmind/internal/db"
	"github.com/sensai/hubmind/internal/moderation"
	"github.com/sensai/hubmind/pkg/config"
	"github.com/sensai/hubmind/pkg/logging"
	"github.com/sensai/hubmind/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logging.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.GetLogger().Sync()

	logger := logging.GetLogger()
	logger.Info("Starting Hubmind API Server")

	// Initialize telemetry
	telemetryShutdown, err := telemetry.Init(&cfg.Telemetry)
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer telemetryShutdown()

	// Connect to the database
	database, err := db.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	// Connect to Redis when configured; the API degrades to uncached
	// reads without it
	var redisCache *cache.Cache
	if cfg.Redis.Enabled {
		redisCache, err = cache.New(&cfg.Redis)
		if err != nil {
			logger.Warn("Failed to connect to Redis, caching disabled", zap.Error(err))
			redisCache = nil
		} else {
			defer redisCache.Close()
		}
	}

	// Automatic moderation requires an API key
	var scorer *moderation.Scorer
	if cfg.Moderation.Enabled {
		classifier, err := moderation.NewHTTPClassifier(&cfg.Moderation)
		if err != nil {
			logger.Fatal("Failed to initialize moderation classifier", zap.Error(err))
		}
		scorer = moderation.NewScorer(classifier)
	} else {
		logger.Warn("Moderation disabled, posts will be approved without scoring")
	}

	// Create Gin router
	if cfg.Logging.Level == "DEBUG" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	apiRouter := api.NewRouter(database, redisCache, scorer)
	apiRouter.SetupRoutes(router)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

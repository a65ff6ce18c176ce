package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"postPilot/app/echo-server/router"
	"postPilot/business/optimizer"
	"postPilot/internal/middleware"
	"postPilot/internal/repository/postgres"
	"postPilot/internal/repository/predictor"
	redisRepo "postPilot/internal/repository/redis"
	"postPilot/internal/rest"
	"postPilot/pkg/config"
	"postPilot/pkg/database"
	redisdb "postPilot/pkg/database/redis"
	"postPilot/pkg/logger"
	"postPilot/pkg/metrics"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting PostPilot Optimizer", "version", cfg.App.Version)

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	metrics.Init()

	// Optional shared prediction cache level
	var secondLevel optimizer.SecondLevelCache
	if cfg.Redis.Enabled {
		redisClient, err := redisdb.NewRedisClient(cfg)
		if err != nil {
			logger.Fatal("Failed to connect to redis", "error", err)
		}
		defer func() {
			if err := redisdb.CloseRedisClient(redisClient); err != nil {
				logger.Error("Failed to close redis client", "error", err)
			}
		}()
		secondLevel = redisRepo.NewPredictionCacheRepository(redisClient, cfg.Optimizer.CacheTTL)
		logger.Info("Redis prediction cache enabled")
	}

	// Init repo
	variantRepo := postgres.NewVariantRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	cfgRepo := postgres.NewOptimizerConfigRepository(db)

	// External predictor behind the gateway. Without a URL the gateway
	// short-circuits to the uniform prior.
	var scorer optimizer.Scorer
	if cfg.Predictor.BaseURL != "" {
		scorer = predictor.NewPredictorRepository(cfg.Predictor)
		logger.Info("External predictor enabled", "url", cfg.Predictor.BaseURL)
	}

	optCfg := optimizer.DefaultConfig()
	optCfg.TopK = cfg.Optimizer.TopK
	optCfg.MinImpressions = cfg.Optimizer.MinImpressions
	optCfg.ExplorationRatio = cfg.Optimizer.ExplorationRatio
	optCfg.VirtualSamples = cfg.Optimizer.VirtualSamples
	optCfg.SuccessThreshold = cfg.Optimizer.SuccessThreshold
	optCfg.PredictTimeout = cfg.Optimizer.PredictTimeout
	optCfg.PredictBatchSize = cfg.Optimizer.PredictBatchSize
	optCfg.CacheCapacity = cfg.Optimizer.CacheCapacity
	optCfg.CacheTTL = cfg.Optimizer.CacheTTL
	optCfg.QueueCapacity = cfg.Optimizer.QueueCapacity
	optCfg.BatchSize = cfg.Optimizer.BatchSize
	optCfg.BatchTimeout = cfg.Optimizer.BatchTimeout

	// Init service
	cache := optimizer.NewPredictionCache(optCfg.CacheCapacity, secondLevel)
	gateway := optimizer.NewPredictionGateway(scorer, cache, optCfg.PredictTimeout, optCfg.PredictBatchSize)
	updater := optimizer.NewPerformanceUpdater(variantRepo)
	pipeline := optimizer.NewFeedbackPipeline(updater, optCfg)
	optimizerService := optimizer.NewOptimizerService(
		variantRepo,
		eventRepo,
		cfgRepo,
		optimizer.NoopVariantFilter{},
		gateway,
		pipeline,
		optCfg,
	)

	pipelineCtx, pipelineCancel := context.WithCancel(context.Background())
	defer pipelineCancel()
	pipeline.Start(pipelineCtx)

	// Init handler
	optimizerHandler := rest.NewOptimizerHandler(optimizerService)
	variantHandler := rest.NewVariantHandler(optimizerService, variantRepo)
	adminHandler := rest.NewOptimizerAdminHandler(cfgRepo)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.TraceID())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"status":   "ok",
			"pipeline": optimizerService.PipelineStats(),
		})
	})

	// Setup routes
	api := e.Group("/api/v1")
	router.SetSelectionRoutes(api, optimizerHandler)
	router.SetEngagementRoutes(api, optimizerHandler)
	router.SetVariantRoutes(api, variantHandler)
	router.SetOptimizerAdminRoutes(api, adminHandler)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server first so no new events arrive, then drain the
	// feedback pipeline so queued events still land.
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	pipeline.Stop()

	logger.Info("Server stopped")
}

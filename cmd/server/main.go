package main

// @title Catalog Import API
// @version 1.0
// @description Internal API for supplier catalog imports, product matching and import results.
// @BasePath /internal
// @securityDefinitions.apikey InternalAPIKey
// @in header
// @name X-Internal-API-Key

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/kosarica/catalog-import/config"
	_ "github.com/kosarica/catalog-import/docs"
	"github.com/kosarica/catalog-import/internal/database"
	"github.com/kosarica/catalog-import/internal/enrichment"
	"github.com/kosarica/catalog-import/internal/handlers"
	"github.com/kosarica/catalog-import/internal/importer"
	"github.com/kosarica/catalog-import/internal/middleware"
	"github.com/kosarica/catalog-import/internal/storage"
	"github.com/kosarica/catalog-import/internal/sweepers"
	"github.com/kosarica/catalog-import/internal/taskqueue"
	"github.com/kosarica/catalog-import/internal/telemetry"
	"github.com/kosarica/catalog-import/internal/workers"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := initLogger(cfg.Logging)

	logger.Info().Msg("Starting catalog import service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.FromEnv(telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		Endpoint:       cfg.Telemetry.Endpoint,
		Environment:    cfg.Telemetry.Environment,
		SampleRatio:    cfg.Telemetry.SampleRatio,
		ExportInterval: cfg.Telemetry.ExportInterval,
	}))
	if err != nil {
		logger.Warn().Err(err).Msg("Telemetry disabled")
	}

	dbURL := config.GetDatabaseURL()
	if dbURL == "" {
		logger.Fatal().Msg("DATABASE_URL not set")
	}

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(dbURL, logger); err != nil {
			logger.Fatal().Err(err).Msg("Failed to run migrations")
		}
	}

	if err := database.Connect(ctx, dbURL, database.PoolOptions{
		MaxConns:    cfg.Database.MaxConnections,
		MinConns:    cfg.Database.MinConnections,
		MaxLifetime: cfg.Database.MaxConnLifetime,
		MaxIdleTime: cfg.Database.MaxConnIdleTime,
	}); err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	logger.Info().Msg("Database connected")

	store := database.NewCatalogStore(database.Pool())
	queue := taskqueue.New(database.Pool())

	uploads, err := storage.NewLocalStorage(cfg.Storage.BasePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize upload storage")
	}

	deps := importer.Dependencies{
		Jobs:       store,
		Products:   store,
		Items:      store,
		Authorizer: store,
		Logger:     logger,
	}
	if cfg.Enrichment.Enabled {
		adapter, closeCache := enrichment.NewRegistryAdapter(cfg.Enrichment.RegistryOptions(), store, logger)
		defer closeCache()
		deps.Enricher = adapter
		logger.Info().Str("registry", cfg.Enrichment.BaseURL).Msg("Enrichment enabled")
	}
	orchestrator := importer.New(deps, cfg.ImporterConfig())
	locks := importer.NewSupplierLocks()

	var worker *workers.Worker
	var sweeper *sweepers.TaskQueueSweeper
	if cfg.Worker.Enabled {
		workerConfig := workers.DefaultWorkerConfig()
		workerConfig.NumWorkers = cfg.Worker.Concurrency
		workerConfig.PollDelay = cfg.Worker.PollInterval

		worker = workers.New(queue, workerConfig, logger)
		worker.RegisterHandler(taskqueue.TaskTypeCatalogImport,
			workers.NewCatalogImportHandler(orchestrator, store, uploads, locks, logger))
		worker.Start(ctx)

		sweeper = sweepers.NewTaskQueueSweeper(queue, store, logger, cfg.Worker.SweepInterval, cfg.Worker.StaleJobAfter).
			WithTaskRetention(queue, cfg.Worker.TaskRetentionDays)
		go sweeper.Start(ctx)
	}

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	setupMiddleware(router, logger)

	health := handlers.HealthCheck(database.Status)
	router.GET("/health", health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterDocsRoutes(router)

	importHandler := handlers.NewImportHandler(handlers.ImportHandlerDeps{
		Imports:        orchestrator,
		Jobs:           store,
		Scheduler:      queue,
		Uploads:        uploads,
		Locks:          locks,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		Logger:         logger,
	})

	internal := router.Group("/internal")
	internal.Use(middleware.InternalAuthMiddleware(cfg.Server.InternalAPIKey))
	internal.Use(middleware.ServiceRateLimitMiddleware(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	{
		internal.GET("/health", health)
		handlers.RegisterImportRoutes(internal, importHandler)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()

	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	if worker != nil {
		worker.Stop()
	}
	if sweeper != nil {
		sweeper.Stop()
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("Failed to flush telemetry")
	}

	logger.Info().Msg("Server exited")
}

func initLogger(cfg config.LoggingConfig) *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var output io.Writer
	if cfg.Format == "json" {
		output = os.Stdout
	} else {
		output = zerolog.ConsoleWriter{Out: os.Stdout, NoColor: cfg.NoColor}
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Str("service", "catalog-import").Logger()
	return &logger
}

func setupMiddleware(router *gin.Engine, logger *zerolog.Logger) {
	router.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP()).
			Msg("HTTP request")
	})
}

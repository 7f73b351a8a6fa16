package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exercise-service/internal/cache"
	"github.com/SAP-F-2025/exercise-service/internal/config"
	"github.com/SAP-F-2025/exercise-service/internal/events"
	"github.com/SAP-F-2025/exercise-service/internal/generator"
	"github.com/SAP-F-2025/exercise-service/internal/handlers"
	"github.com/SAP-F-2025/exercise-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/exercise-service/internal/scoring"
	"github.com/SAP-F-2025/exercise-service/internal/services"
	"github.com/SAP-F-2025/exercise-service/internal/utils"
	"github.com/SAP-F-2025/exercise-service/internal/validator"
	"github.com/SAP-F-2025/exercise-service/pkg"
)

const (
	cachePrefix     = "exercise:"
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Environment)
	slogger := utils.ToSlogLogger(logger)
	slog.SetDefault(slogger)

	if err := run(cfg, logger, slogger); err != nil {
		logger.LogError(err, "Exercise service stopped")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger utils.Logger, slogger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return err
	}
	if err := pkg.AutoMigrate(db); err != nil {
		return err
	}

	var contentCache cache.CacheService
	redisClient, err := pkg.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Warn("Redis unavailable, content cache disabled", "error", err)
	} else {
		defer redisClient.Close()
		contentCache = cache.NewRedisCache(redisClient, cachePrefix, slogger)
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		logger.Error("Failed to create event publisher, falling back to mock", "error", err)
		publisher = events.NewMockEventPublisher(slogger)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("Failed to close event publisher", "error", err)
		}
	}()

	v := validator.New()
	engine := scoring.NewEngine()

	genOpts := []generator.Option{
		generator.WithLogger(slogger),
		generator.WithValidator(v),
		generator.WithBatchSize(cfg.GeneratorBatchSize),
	}
	if cfg.OpenAIAPIKey != "" {
		resilientCfg := generator.DefaultResilientConfig()
		resilientCfg.Logger = slogger
		provider := generator.NewOpenAIProvider(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, slogger)
		genOpts = append(genOpts, generator.WithProvider(generator.NewResilientProvider(provider, resilientCfg)))
	} else {
		logger.Warn("OPENAI_API_KEY not set, generator returns template examples")
	}
	gen, err := generator.New(genOpts...)
	if err != nil {
		return err
	}

	contentService := services.NewContentService(services.ContentServiceConfig{
		Repository: postgres.NewContentPostgreSQL(db),
		Cache:      contentCache,
		Generator:  gen,
		Publisher:  publisher,
		Validator:  v,
		Logger:     slogger,
		CacheTTL:   cfg.ContentCacheTTL,
	})
	sessionService := services.NewSessionService(postgres.NewSessionPostgreSQL(db), contentService, engine, publisher, v, slogger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), utils.ContextLogger(logger), utils.LoggerMiddleware(logger))

	handlers.NewHandlerManager(handlers.ServiceSet{
		Exercise: services.NewExerciseService(engine, contentService, publisher, v, slogger),
		Content:  contentService,
		Session:  sessionService,
		Export:   services.NewExportService(sessionService, slogger),
	}, logger).SetupRoutes(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Exercise service listening", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down exercise service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

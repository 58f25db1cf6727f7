package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/sro-service/internal/api/http"
	"github.com/spec-kit/sro-service/internal/api/http/handlers"
	"github.com/spec-kit/sro-service/internal/cache"
	"github.com/spec-kit/sro-service/internal/config"
	"github.com/spec-kit/sro-service/internal/events"
	"github.com/spec-kit/sro-service/internal/observability"
	"github.com/spec-kit/sro-service/internal/persistence"
	"github.com/spec-kit/sro-service/internal/repository"
	"github.com/spec-kit/sro-service/internal/service"
	"github.com/spec-kit/sro-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	store := cache.NewStore(redis.Client, cfg.Cache.TTL(), logger)
	worker.StartInvalidationWorker(dispatcher, store)

	pool := pg.PoolHandle()
	calloutRepo := repository.NewCalloutRepository(pool)
	sroRepo := repository.NewSRORepository(pool)
	scheduleRepo := repository.NewScheduleRepository(pool)
	referenceRepo := repository.NewReferenceRepository(pool)

	lifecycle := service.NewLifecycleService(service.LifecycleDependencies{
		CalloutRepo:  calloutRepo,
		SRORepo:      sroRepo,
		ScheduleRepo: scheduleRepo,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	reference := service.NewReferenceService(referenceRepo, dispatcher)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(pg, redis),
		Callouts:  handlers.NewCalloutsHandler(lifecycle, store),
		SROs:      handlers.NewSROsHandler(lifecycle, store),
		Schedules: handlers.NewSchedulesHandler(lifecycle, store),
		Reference: handlers.NewReferenceHandler(reference, store),
		Metrics:   metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "github.com/noah-isme/swim-planner-api/api/swagger"
	"github.com/noah-isme/swim-planner-api/internal/handler"
	internalmiddleware "github.com/noah-isme/swim-planner-api/internal/middleware"
	"github.com/noah-isme/swim-planner-api/internal/repository"
	"github.com/noah-isme/swim-planner-api/internal/service"
	"github.com/noah-isme/swim-planner-api/pkg/cache"
	"github.com/noah-isme/swim-planner-api/pkg/config"
	"github.com/noah-isme/swim-planner-api/pkg/database"
	"github.com/noah-isme/swim-planner-api/pkg/export"
	"github.com/noah-isme/swim-planner-api/pkg/jobs"
	"github.com/noah-isme/swim-planner-api/pkg/llm"
	"github.com/noah-isme/swim-planner-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/swim-planner-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/swim-planner-api/pkg/middleware/requestid"
)

// @title Swim Planner API
// @version 0.1.0
// @description Asynchronous class plan generation for swim school instructors
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server exited", zap.Error(err))
	}
	logr.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db, cfg.Database.Name, logr); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck
	statusCache := service.NewCacheService(cacheRepo, metricsSvc, cfg.Generation.StatusCacheTTL, logr, cfg.Generation.StatusCacheOn && redisClient != nil)

	generationRepo := repository.NewClassGenerationRepository(db)
	curriculumRepo := repository.NewCurriculumRepository(db)
	userRepo := repository.NewUserRepository(db)
	validate := validator.New()

	worker := service.NewClassGenerationWorker(
		generationRepo,
		service.NewContextBuilder(curriculumRepo, logr),
		userRepo,
		llm.NewGeminiClient(cfg.Gemini, logr),
		metricsSvc,
		logr,
	)
	queue, err := newGenerationQueue(cfg, redisClient, worker.Handle, logr)
	if err != nil {
		return err
	}

	exportSvc := service.NewExportService(logr, export.NewCSVExporter(), export.NewPDFExporter())
	generationSvc := service.NewClassGenerationService(
		generationRepo,
		curriculumRepo,
		queue,
		statusCache,
		exportSvc,
		metricsSvc,
		validate,
		logr,
		service.ClassGenerationServiceConfig{
			StatusCacheTTL:  cfg.Generation.StatusCacheTTL,
			RecoverPageSize: cfg.Generation.RecoverPageSize,
		},
	)
	promptSvc := service.NewPromptSettingsService(userRepo, validate, logr)
	authSvc := service.NewAuthService(cfg.JWT.Secret)

	reaper := service.NewGenerationReaper(generationRepo, metricsSvc, logr, service.GenerationReaperConfig{
		StaleAfter:        cfg.Generation.StaleAfter,
		PendingStaleAfter: cfg.Generation.PendingStaleAfter,
		Interval:          cfg.Generation.ReaperInterval,
	})

	router := newRouter(cfg, logr, routerDeps{
		generations: handler.NewClassGenerationHandler(generationSvc),
		prompts:     handler.NewPromptSettingsHandler(promptSvc),
		metrics:     handler.NewMetricsHandler(metricsSvc, readinessChecks(db.PingContext, cacheRepo, redisClient != nil)),
		auth:        authSvc,
		metricsSvc:  metricsSvc,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	queue.Start(ctx)
	defer queue.Stop()

	if cfg.Generation.RecoverOnBoot {
		if n, err := generationSvc.RecoverPending(ctx); err != nil {
			logr.Warn("pending generation recovery failed", zap.Error(err))
		} else {
			logr.Info("pending generation recovery finished", zap.Int("requeued", n))
		}
	}

	if err := reaper.Start(ctx); err != nil {
		return fmt.Errorf("start reaper: %w", err)
	}
	defer func() {
		if err := reaper.Stop(); err != nil {
			logr.Warn("reaper shutdown failed", zap.Error(err))
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newGenerationQueue(cfg *config.Config, client *redis.Client, handle jobs.Handler[service.GenerationTask], logr *zap.Logger) (jobs.Runner[service.GenerationTask], error) {
	queueCfg := jobs.QueueConfig{
		Workers:    cfg.Generation.Workers,
		BufferSize: cfg.Generation.BufferSize,
		Logger:     logr,
	}
	if cfg.Generation.QueueDriver == config.QueueDriverRedis {
		if client == nil {
			return nil, errors.New("redis queue driver requires REDIS_ENABLED=true")
		}
		return jobs.NewRedisQueue[service.GenerationTask](service.GenerationJobType, cfg.Generation.QueueKey, client, handle, queueCfg), nil
	}
	return jobs.NewQueue[service.GenerationTask](service.GenerationJobType, handle, queueCfg), nil
}

func readinessChecks(pingDB handler.ReadinessCheck, cacheRepo *repository.CacheRepository, redisEnabled bool) map[string]handler.ReadinessCheck {
	checks := map[string]handler.ReadinessCheck{"database": pingDB}
	if redisEnabled {
		checks["redis"] = cacheRepo.Ping
	}
	return checks
}

type routerDeps struct {
	generations *handler.ClassGenerationHandler
	prompts     *handler.PromptSettingsHandler
	metrics     *handler.MetricsHandler
	auth        *service.AuthService
	metricsSvc  *service.MetricsService
}

func newRouter(cfg *config.Config, logr *zap.Logger, deps routerDeps) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if deps.metricsSvc != nil {
		r.Use(internalmiddleware.Metrics(deps.metricsSvc))
	}

	r.GET("/health", deps.metrics.Health)
	r.GET("/ready", deps.metrics.Ready)
	if deps.metricsSvc != nil {
		r.GET("/metrics", deps.metrics.Prometheus)
		r.GET("/metrics/summary", deps.metrics.Snapshot)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.JWT(deps.auth))

	generations := api.Group("/class-generations")
	generations.POST("", deps.generations.Submit)
	generations.GET("/:id", deps.generations.Status)
	generations.GET("/:id/pdf", deps.generations.PDF)
	generations.GET("/:id/csv", deps.generations.CSV)

	settings := api.Group("/settings")
	settings.GET("/prompt", deps.prompts.Get)
	settings.PUT("/prompt", deps.prompts.Update)

	return r
}

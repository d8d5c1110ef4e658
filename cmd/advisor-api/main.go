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
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/degree-advisor-api/api/swagger"
	"github.com/noah-isme/degree-advisor-api/internal/handler"
	"github.com/noah-isme/degree-advisor-api/internal/middleware"
	"github.com/noah-isme/degree-advisor-api/internal/models"
	"github.com/noah-isme/degree-advisor-api/internal/repository"
	"github.com/noah-isme/degree-advisor-api/internal/service"
	"github.com/noah-isme/degree-advisor-api/pkg/cache"
	"github.com/noah-isme/degree-advisor-api/pkg/config"
	"github.com/noah-isme/degree-advisor-api/pkg/database"
	"github.com/noah-isme/degree-advisor-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/degree-advisor-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/degree-advisor-api/pkg/middleware/requestid"
	"github.com/noah-isme/degree-advisor-api/pkg/storage"
)

// @title Degree Advisor API
// @version 1.0.0
// @description Degree plan validation: course admission checks, plan mutations and graduation audits.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

type catalogSource interface {
	ListCourses(ctx context.Context) ([]models.CatalogRow, error)
}

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
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := service.NewMetricsService()
	validate := validator.New()
	readiness := map[string]handler.Pinger{}

	var db *sqlx.DB
	if cfg.NeedsDatabase() {
		conn, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer conn.Close() //nolint:errcheck
		db = conn
		readiness["postgres"] = handler.PingFunc(db.PingContext)
	}

	var source catalogSource
	if cfg.Catalog.Source == config.CatalogSourcePostgres {
		source = repository.NewCatalogRepository(db)
	} else {
		source = repository.NewCatalogFileRepository(cfg.Catalog.Path)
	}
	rows, err := source.ListCourses(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	catalog := service.NewCourseCatalog(rows, logr)
	metrics.SetCatalogSize(catalog.Len())

	specs, err := repository.LoadRequirements(cfg.Requirements.Path)
	if err != nil {
		return fmt.Errorf("load requirements: %w", err)
	}
	requirements, err := service.NewRequirementRegistry(specs, validate)
	if err != nil {
		return fmt.Errorf("build requirements: %w", err)
	}
	logr.Info("engine tables loaded",
		zap.String("catalog_source", cfg.Catalog.Source),
		zap.Int("courses", catalog.Len()),
		zap.Any("programs", requirements.Programs()),
	)

	var plans service.PlanStore
	if cfg.Plans.Store == config.PlanStoreMemory {
		plans = repository.NewMemoryPlanRepository()
	} else {
		plans = repository.NewPlanRepository(db)
	}

	var cacheRepo service.CacheRepository
	if cfg.AuditCache.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		redisRepo := repository.NewCacheRepository(client, logr)
		defer redisRepo.Close() //nolint:errcheck
		readiness["redis"] = redisRepo
		cacheRepo = redisRepo
	}
	auditCache := service.NewCacheService(cacheRepo, metrics, cfg.AuditCache.TTL, logr, cfg.AuditCache.Enabled)

	admission := service.NewAdmissionService(catalog, requirements, metrics, logr)
	auditor := service.NewAuditService(catalog, requirements, metrics, logr)
	planService := service.NewPlanService(plans, catalog, requirements, admission, auditor, auditCache, metrics,
		service.NewPlanLocker(), validate, logr, service.PlanServiceConfig{AuditCacheTTL: cfg.AuditCache.TTL})

	fileStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		return fmt.Errorf("init export storage: %w", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exportService := service.NewExportService(planService, fileStore, signer,
		service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Exports.ResultTTL}, logr)
	go exportService.RunCleanup(ctx, cfg.Exports.CleanupInterval)

	authService := service.NewAuthService(logr, service.AuthConfig{AccessTokenSecret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})
	metricsHandler := handler.NewMetricsHandler(metrics, catalog.Len, readiness)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metrics))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	handler.Router{
		Plans:   handler.NewPlanHandler(planService),
		Catalog: handler.NewCatalogHandler(catalog, requirements),
		Exports: handler.NewExportHandler(exportService),
		Auth:    authService,
	}.Register(r.Group(cfg.APIPrefix))

	if cfg.Docs.Enabled && cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
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

	logr.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

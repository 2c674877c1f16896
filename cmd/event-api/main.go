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
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/event-dashboard-api/api/swagger"
	"github.com/noah-isme/event-dashboard-api/internal/handler"
	internalmiddleware "github.com/noah-isme/event-dashboard-api/internal/middleware"
	"github.com/noah-isme/event-dashboard-api/internal/repository"
	"github.com/noah-isme/event-dashboard-api/internal/service"
	"github.com/noah-isme/event-dashboard-api/pkg/cache"
	"github.com/noah-isme/event-dashboard-api/pkg/config"
	"github.com/noah-isme/event-dashboard-api/pkg/database"
	"github.com/noah-isme/event-dashboard-api/pkg/export"
	"github.com/noah-isme/event-dashboard-api/pkg/jobs"
	"github.com/noah-isme/event-dashboard-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/event-dashboard-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/event-dashboard-api/pkg/middleware/requestid"
	"github.com/noah-isme/event-dashboard-api/pkg/storage"
)

// @title Event Dashboard API
// @version 1.0.0
// @description Calendar events with bulk import/export, calendar views and snapshots
// @BasePath /api/v1
// @schemes http

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
	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close() //nolint:errcheck

	metrics := service.NewMetricsService()
	repo := repository.NewEventRepository(db).WithMetrics(metrics)
	if err := prepareStore(ctx, repo, cfg.Database.Seed, logr); err != nil {
		return err
	}

	redisClient := connectCache(ctx, cfg, logr)
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}
	cacheSvc := service.NewCacheService(repository.NewCacheRepository(redisClient, logr), metrics, cfg.Cache.TTL, logr, redisClient != nil)

	purge, err := service.NewPurgeGate(cfg.Purge.Code, cfg.Purge.Hash)
	if err != nil {
		return fmt.Errorf("configure purge gate: %w", err)
	}
	if !purge.Enabled() {
		logr.Warn("bulk delete disabled: PURGE_CODE and PURGE_CODE_HASH are empty")
	}

	events := service.NewEventService(repo, cacheSvc, purge, metrics, service.NewValidator(), logr)
	monthImage, pdf, err := export.NewRenderers(cfg.Render.FontPath)
	if err != nil {
		logr.Warn("render font not fully applied, falling back to bundled fonts", zap.String("path", cfg.Render.FontPath), zap.Error(err))
	}
	exporter := service.NewExportService(events, logr).WithPDFRenderer(pdf)
	importer := service.NewImportService(events, metrics, logr)
	calendar := service.NewCalendarService(events, monthImage, logr)

	handlers := handler.Handlers{
		Events:   handler.NewEventHandler(events),
		Transfer: handler.NewTransferHandler(importer, exporter),
		Calendar: handler.NewCalendarHandler(calendar),
		Metrics:  handler.NewMetricsHandler(metrics, events),
	}

	if cfg.Backups.Enabled {
		backups, shutdown, err := startBackups(ctx, cfg, events, exporter, metrics, logr)
		if err != nil {
			return err
		}
		defer shutdown()
		handlers.Backups = handler.NewBackupHandler(backups)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))
	r.Use(internalmiddleware.WithResponseMeta())

	handler.RegisterRoutes(r, cfg.APIPrefix, handlers)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.String("db_driver", cfg.Database.Driver))
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

func prepareStore(ctx context.Context, repo *repository.EventRepository, seed bool, logr *zap.Logger) error {
	if err := repo.Initialize(ctx); err != nil {
		return err
	}
	if !seed {
		return nil
	}
	added, err := repo.Seed(ctx)
	if err != nil {
		return err
	}
	if added {
		logr.Info("sample event seeded")
	}
	return nil
}

// connectCache returns nil when caching is disabled or Redis is unreachable;
// the API then serves every read from the database.
func connectCache(ctx context.Context, cfg *config.Config, logr *zap.Logger) *redis.Client {
	if !cfg.Cache.Enabled {
		return nil
	}
	client, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, cache disabled", zap.Error(err))
		return nil
	}
	return client
}

func startBackups(ctx context.Context, cfg *config.Config, events *service.EventService, exporter *service.ExportService, metrics *service.MetricsService, logr *zap.Logger) (*service.BackupService, func(), error) {
	store, err := storage.NewLocalStorage(cfg.Backups.StorageDir)
	if err != nil {
		return nil, nil, fmt.Errorf("prepare backups storage: %w", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Backups.SignedURLSecret, cfg.Backups.SignedURLTTL)
	backups := service.NewBackupService(events, exporter, store, signer, metrics, service.BackupConfig{
		APIPrefix: cfg.APIPrefix,
		Format:    cfg.Backups.Format,
		Retention: cfg.Backups.Retention,
	}, logr)

	queue := jobs.NewQueue("backups", backups.HandleJob, jobs.QueueConfig{
		Workers:    1,
		MaxRetries: cfg.Backups.WorkerRetries,
		RetryDelay: 5 * time.Second,
		Logger:     logr,
	})
	queue.Start(ctx)

	scheduler := jobs.NewScheduler(queue, logr)
	if err := scheduler.Every(cfg.Backups.Schedule, service.JobTypeBackup); err != nil {
		queue.Stop()
		return nil, nil, fmt.Errorf("schedule backups: %w", err)
	}
	scheduler.Start()
	logr.Info("backups scheduled", zap.String("schedule", cfg.Backups.Schedule), zap.String("dir", cfg.Backups.StorageDir))

	return backups, func() {
		scheduler.Stop()
		queue.Stop()
	}, nil
}

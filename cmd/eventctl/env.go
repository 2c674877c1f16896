package main

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/noah-isme/event-dashboard-api/internal/repository"
	"github.com/noah-isme/event-dashboard-api/internal/service"
	"github.com/noah-isme/event-dashboard-api/pkg/cache"
	"github.com/noah-isme/event-dashboard-api/pkg/config"
	"github.com/noah-isme/event-dashboard-api/pkg/database"
	"github.com/noah-isme/event-dashboard-api/pkg/export"
	"github.com/noah-isme/event-dashboard-api/pkg/logger"
)

// env holds the services a command needs, built from the same configuration
// as the API server. Writes go through the cache so a running server never
// serves stale listings.
type env struct {
	db       *sqlx.DB
	redis    *redis.Client
	repo     *repository.EventRepository
	events   *service.EventService
	importer *service.ImportService
	exporter *service.ExportService
	logger   *zap.Logger
}

func openEnv(c *cli.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.Log.Level = c.String("log-level")
	cfg.Log.Format = "console"
	logr, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	repo := repository.NewEventRepository(db)
	if err := repo.Initialize(c.Context); err != nil {
		_ = db.Close()
		return nil, err
	}

	var client *redis.Client
	if cfg.Cache.Enabled {
		if client, err = cache.NewRedis(c.Context, cfg.Redis); err != nil {
			logr.Warn("redis unavailable, cached listings may be stale until they expire", zap.Error(err))
			client = nil
		}
	}
	cacheSvc := service.NewCacheService(repository.NewCacheRepository(client, logr), nil, cfg.Cache.TTL, logr, client != nil)

	purge, err := service.NewPurgeGate(cfg.Purge.Code, cfg.Purge.Hash)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure purge gate: %w", err)
	}

	events := service.NewEventService(repo, cacheSvc, purge, nil, service.NewValidator(), logr)
	_, pdf, err := export.NewRenderers(cfg.Render.FontPath)
	if err != nil {
		logr.Warn("render font not fully applied", zap.String("path", cfg.Render.FontPath), zap.Error(err))
	}
	return &env{
		db:       db,
		redis:    client,
		repo:     repo,
		events:   events,
		importer: service.NewImportService(events, nil, logr),
		exporter: service.NewExportService(events, logr).WithPDFRenderer(pdf),
		logger:   logr,
	}, nil
}

func (e *env) Close() {
	if e.redis != nil {
		_ = e.redis.Close()
	}
	_ = e.db.Close()
	_ = e.logger.Sync()
}

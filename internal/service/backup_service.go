package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/event-dashboard-api/internal/dto"
	appErrors "github.com/noah-isme/event-dashboard-api/pkg/errors"
	"github.com/noah-isme/event-dashboard-api/pkg/jobs"
	"github.com/noah-isme/event-dashboard-api/pkg/storage"
)

// JobTypeBackup is the queue job type handled by BackupService.HandleJob.
const JobTypeBackup = "events.backup"

type snapshotStorage interface {
	Save(name string, data []byte) (string, error)
	Open(name string) (*os.File, error)
	List() ([]storage.FileInfo, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type tokenSigner interface {
	Generate(id, name string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (string, string, time.Time, error)
}

// BackupConfig tunes snapshot behaviour.
type BackupConfig struct {
	APIPrefix string
	Format    string
	Retention time.Duration
}

// BackupService writes snapshots of the events table to local storage and
// hands out signed download links for them.
type BackupService struct {
	events   eventLister
	exporter *ExportService
	storage  snapshotStorage
	signer   tokenSigner
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      BackupConfig
	now      func() time.Time
}

// NewBackupService constructs a BackupService.
func NewBackupService(events eventLister, exporter *ExportService, store snapshotStorage, signer tokenSigner, metrics *MetricsService, cfg BackupConfig, logger *zap.Logger) *BackupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.Format = strings.ToLower(cfg.Format)
	if _, ok := contentTypes[cfg.Format]; !ok {
		cfg.Format = FormatCSV
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 7 * 24 * time.Hour
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	return &BackupService{
		events:   events,
		exporter: exporter,
		storage:  store,
		signer:   signer,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Snapshot renders every event in the configured format and stores the file.
func (s *BackupService) Snapshot(ctx context.Context) (result *dto.BackupResult, err error) {
	defer func() { s.metrics.RecordBackup(err) }()

	events, _, err := s.events.List(ctx)
	if err != nil {
		return nil, err
	}
	data, err := s.exporter.Render(events, s.cfg.Format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render snapshot")
	}

	id := uuid.NewString()
	name := fmt.Sprintf("events_%s_%s.%s", s.now().UTC().Format("20060102_150405"), id[:8], s.cfg.Format)
	if _, err = s.storage.Save(name, data); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store snapshot")
	}
	token, expiresAt, err := s.signer.Generate(id, name)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign snapshot link")
	}

	s.logger.Info("events snapshot stored", zap.String("id", id), zap.String("file", name), zap.Int("events", len(events)))
	return &dto.BackupResult{
		ID:        id,
		Filename:  name,
		Size:      len(data),
		URL:       fmt.Sprintf("%s/backups/%s", strings.TrimRight(s.cfg.APIPrefix, "/"), token),
		ExpiresAt: expiresAt,
	}, nil
}

// Open resolves a signed token to the stored snapshot. The caller closes the file.
func (s *BackupService) Open(token string) (*os.File, string, error) {
	_, name, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid or expired download link")
	}
	file, err := s.storage.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "snapshot not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open snapshot")
	}
	return file, name, nil
}

// List returns stored snapshots, newest first.
func (s *BackupService) List() ([]storage.FileInfo, error) {
	files, err := s.storage.List()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list snapshots")
	}
	return files, nil
}

// Cleanup removes snapshots older than the retention window.
func (s *BackupService) Cleanup() ([]string, error) {
	deleted, err := s.storage.CleanupOlderThan(s.cfg.Retention)
	if err != nil {
		return deleted, err
	}
	if len(deleted) > 0 {
		s.logger.Info("expired snapshots removed", zap.Strings("files", deleted))
	}
	return deleted, nil
}

// HandleJob is the queue handler for JobTypeBackup jobs.
func (s *BackupService) HandleJob(ctx context.Context, job jobs.Job) error {
	if job.Type != JobTypeBackup {
		return fmt.Errorf("unexpected job type %s", job.Type)
	}
	if _, err := s.Snapshot(ctx); err != nil {
		return err
	}
	if _, err := s.Cleanup(); err != nil {
		s.logger.Warn("snapshot cleanup failed", zap.String("job_id", job.ID), zap.Error(err))
	}
	return nil
}

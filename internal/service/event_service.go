package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/event-dashboard-api/internal/dto"
	"github.com/noah-isme/event-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/event-dashboard-api/pkg/errors"
)

type eventRepository interface {
	Ping(ctx context.Context) error
	ListAll(ctx context.Context) ([]models.Event, error)
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) (int64, error)
	Update(ctx context.Context, event *models.Event) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
	Summary(ctx context.Context) (*models.EventSummary, error)
	Search(ctx context.Context, filter models.EventFilter) ([]models.Event, error)
}

type purgeVerifier interface {
	Verify(code string) error
}

// EventService validates event input and keeps the read cache consistent with the store.
type EventService struct {
	repo      eventRepository
	cache     *CacheService
	purge     purgeVerifier
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEventService creates an event service. cache and metrics may be nil.
func NewEventService(repo eventRepository, cache *CacheService, purge purgeVerifier, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *EventService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{repo: repo, cache: cache, purge: purge, metrics: metrics, validator: validate, logger: logger}
}

// Ping reports whether the event store is reachable.
func (s *EventService) Ping(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return appErrors.Persistence(err, "")
	}
	return nil
}

// List returns every event in storage order and whether it was served from cache.
func (s *EventService) List(ctx context.Context) ([]models.Event, bool, error) {
	var cached []models.Event
	if s.cache.Get(ctx, eventsCacheAll, &cached) {
		return cached, true, nil
	}
	events, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, false, appErrors.Persistence(err, "failed to list events")
	}
	s.cache.Set(ctx, eventsCacheAll, events, 0)
	return events, false, nil
}

// Search filters events by date range and keyword. Sorting defaults to start_date ascending.
func (s *EventService) Search(ctx context.Context, req dto.EventSearchRequest) ([]models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid search parameters")
	}
	filter := models.EventFilter{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Keyword:   strings.TrimSpace(req.Keyword),
		SortBy:    models.EventSortField(req.SortBy),
		Order:     models.SortOrder(req.Order),
	}
	if filter.SortBy == "" {
		filter.SortBy = models.EventSortStartDate
	}
	if filter.Order == "" {
		filter.Order = models.SortAsc
	}
	events, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to search events")
	}
	return events, nil
}

// Get returns a single event.
func (s *EventService) Get(ctx context.Context, id int64) (*models.Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Persistence(err, "failed to load event")
	}
	return event, nil
}

// Create validates and stores a new event.
func (s *EventService) Create(ctx context.Context, req dto.CreateEventRequest) (*models.Event, error) {
	event := &models.Event{
		Title:       strings.TrimSpace(req.Title),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Color:       normalizeColor(req.Color),
		Description: req.Description,
	}
	if err := s.validate(req, event); err != nil {
		return nil, err
	}
	if _, err := s.repo.Create(ctx, event); err != nil {
		return nil, appErrors.Persistence(err, "failed to create event")
	}
	s.afterWrite(ctx, "create", 1)
	s.logger.Debug("event created", zap.Int64("id", event.ID), zap.String("title", event.Title))
	return event, nil
}

// ValidateCreate runs the Create checks without storing anything.
func (s *EventService) ValidateCreate(req dto.CreateEventRequest) error {
	event := &models.Event{StartDate: req.StartDate, EndDate: req.EndDate}
	return s.validate(req, event)
}

// Update overwrites every mutable field of event id. A missing id yields ErrNotFound.
func (s *EventService) Update(ctx context.Context, id int64, req dto.UpdateEventRequest) (*models.Event, error) {
	event := &models.Event{
		ID:          id,
		Title:       strings.TrimSpace(req.Title),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Color:       normalizeColor(req.Color),
		Description: req.Description,
	}
	if err := s.validate(req, event); err != nil {
		return nil, err
	}
	affected, err := s.repo.Update(ctx, event)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to update event")
	}
	if affected == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
	}
	s.afterWrite(ctx, "update", affected)
	return event, nil
}

// Delete removes an event. Deleting a missing id succeeds.
func (s *EventService) Delete(ctx context.Context, id int64) error {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Persistence(err, "failed to delete event")
	}
	s.afterWrite(ctx, "delete", removed)
	return nil
}

// Purge deletes every event once code passes the purge gate.
func (s *EventService) Purge(ctx context.Context, code string) (*dto.PurgeEventsResult, error) {
	if s.purge == nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "bulk delete is disabled")
	}
	if err := s.purge.Verify(code); err != nil {
		s.logger.Warn("bulk delete rejected", zap.Error(err))
		return nil, err
	}
	deleted, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to delete events")
	}
	s.afterWrite(ctx, "purge", deleted)
	s.logger.Info("all events deleted", zap.Int64("deleted", deleted))
	return &dto.PurgeEventsResult{Deleted: deleted}, nil
}

// Summary returns the event count and overall date span.
func (s *EventService) Summary(ctx context.Context) (*models.EventSummary, bool, error) {
	var cached models.EventSummary
	if s.cache.Get(ctx, eventsCacheSummary, &cached) {
		return &cached, true, nil
	}
	summary, err := s.repo.Summary(ctx)
	if err != nil {
		return nil, false, appErrors.Persistence(err, "failed to summarize events")
	}
	s.cache.Set(ctx, eventsCacheSummary, summary, 0)
	return summary, false, nil
}

func (s *EventService) validate(req interface{}, event *models.Event) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}
	if event.EndDate < event.StartDate {
		return appErrors.Clone(appErrors.ErrValidation, "end_date must not be before start_date")
	}
	return nil
}

func (s *EventService) afterWrite(ctx context.Context, operation string, n int64) {
	s.cache.Invalidate(ctx, eventsCachePattern)
	s.metrics.RecordEventWrite(operation, n)
}

// normalizeColor maps palette names and labels to hex codes. Other values are kept as given.
func normalizeColor(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if c, ok := models.LookupColor(trimmed); ok {
		return c.Hex
	}
	return trimmed
}

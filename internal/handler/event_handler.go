package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/event-dashboard-api/internal/dto"
	"github.com/noah-isme/event-dashboard-api/internal/middleware"
	"github.com/noah-isme/event-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/event-dashboard-api/pkg/errors"
	"github.com/noah-isme/event-dashboard-api/pkg/response"
)

// PurgeCodeHeader carries the bulk delete confirmation code.
const PurgeCodeHeader = "X-Purge-Code"

type eventService interface {
	List(ctx context.Context) ([]models.Event, bool, error)
	Search(ctx context.Context, req dto.EventSearchRequest) ([]models.Event, error)
	Get(ctx context.Context, id int64) (*models.Event, error)
	Create(ctx context.Context, req dto.CreateEventRequest) (*models.Event, error)
	Update(ctx context.Context, id int64, req dto.UpdateEventRequest) (*models.Event, error)
	Delete(ctx context.Context, id int64) error
	Purge(ctx context.Context, code string) (*dto.PurgeEventsResult, error)
	Summary(ctx context.Context) (*models.EventSummary, bool, error)
}

// EventHandler exposes event CRUD endpoints.
type EventHandler struct {
	service eventService
}

// NewEventHandler constructs an event handler.
func NewEventHandler(svc eventService) *EventHandler {
	return &EventHandler{service: svc}
}

// List godoc
// @Summary List events
// @Description Without query parameters events are returned in storage order. Any search parameter switches to a filtered, sorted search.
// @Tags Events
// @Produce json
// @Param start_date query string false "Events starting on or after this date (YYYY-MM-DD)"
// @Param end_date query string false "Events ending on or before this date (YYYY-MM-DD)"
// @Param keyword query string false "Substring of title or description"
// @Param sort_by query string false "start_date, end_date or title"
// @Param order query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Router /events [get]
func (h *EventHandler) List(c *gin.Context) {
	var req dto.EventSearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query"))
		return
	}
	if req.IsEmpty() {
		events, hit, err := h.service.List(c.Request.Context())
		if err != nil {
			response.Error(c, err)
			return
		}
		middleware.SetCacheHit(c, hit)
		response.JSON(c, http.StatusOK, events, middleware.ExtractMeta(c))
		return
	}
	events, err := h.service.Search(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events)
}

// Get godoc
// @Summary Get event
// @Tags Events
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /events/{id} [get]
func (h *EventHandler) Get(c *gin.Context) {
	id, err := eventID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	event, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event)
}

// Create godoc
// @Summary Create event
// @Tags Events
// @Accept json
// @Produce json
// @Param payload body dto.CreateEventRequest true "Event payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /events [post]
func (h *EventHandler) Create(c *gin.Context) {
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	event, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// Update godoc
// @Summary Update event
// @Tags Events
// @Accept json
// @Produce json
// @Param id path int true "Event ID"
// @Param payload body dto.UpdateEventRequest true "Event payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /events/{id} [put]
func (h *EventHandler) Update(c *gin.Context) {
	id, err := eventID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	event, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event)
}

// Delete godoc
// @Summary Delete event
// @Description Deleting an absent id still succeeds.
// @Tags Events
// @Param id path int true "Event ID"
// @Success 204
// @Router /events/{id} [delete]
func (h *EventHandler) Delete(c *gin.Context) {
	id, err := eventID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Purge godoc
// @Summary Delete all events
// @Description Requires the confirmation code in the X-Purge-Code header or the JSON body.
// @Tags Events
// @Accept json
// @Produce json
// @Param X-Purge-Code header string false "Confirmation code"
// @Param payload body dto.PurgeEventsRequest false "Confirmation code"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /events [delete]
func (h *EventHandler) Purge(c *gin.Context) {
	code := strings.TrimSpace(c.GetHeader(PurgeCodeHeader))
	if code == "" {
		var req dto.PurgeEventsRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
			return
		}
		code = strings.TrimSpace(req.Code)
	}
	result, err := h.service.Purge(c.Request.Context(), code)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Summary godoc
// @Summary Event status figures
// @Tags Events
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /events/summary [get]
func (h *EventHandler) Summary(c *gin.Context) {
	summary, hit, err := h.service.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, summary, middleware.ExtractMeta(c))
}

// Palette godoc
// @Summary List event colours
// @Tags Events
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /palette [get]
func (h *EventHandler) Palette(c *gin.Context) {
	response.JSON(c, http.StatusOK, models.Palette, map[string]interface{}{"default": models.DefaultColor.Name})
}

func eventID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid event id")
	}
	return id, nil
}

package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/event-dashboard-api/internal/dto"
	appErrors "github.com/noah-isme/event-dashboard-api/pkg/errors"
	"github.com/noah-isme/event-dashboard-api/pkg/response"
)

type calendarService interface {
	Feed(ctx context.Context) ([]dto.CalendarFeedEvent, error)
	Gantt(ctx context.Context) ([]dto.GanttTask, error)
	Month(ctx context.Context, year, month int) (*dto.CalendarMonth, error)
	MonthImage(ctx context.Context, year, month int) (*dto.FileResult, error)
}

// CalendarHandler exposes calendar and timeline views.
type CalendarHandler struct {
	service calendarService
	now     func() time.Time
}

// NewCalendarHandler constructs a calendar handler.
func NewCalendarHandler(svc calendarService) *CalendarHandler {
	return &CalendarHandler{service: svc, now: time.Now}
}

// Feed godoc
// @Summary Calendar feed
// @Tags Calendar
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /calendar/feed [get]
func (h *CalendarHandler) Feed(c *gin.Context) {
	feed, err := h.service.Feed(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, feed)
}

// Month godoc
// @Summary Month grid
// @Tags Calendar
// @Produce json
// @Param year query int false "Year, defaults to the current year"
// @Param month query int false "Month 1-12, defaults to the current month"
// @Success 200 {object} response.Envelope
// @Router /calendar/month [get]
func (h *CalendarHandler) Month(c *gin.Context) {
	year, month, err := h.yearMonth(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	grid, err := h.service.Month(c.Request.Context(), year, month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid)
}

// MonthImage godoc
// @Summary Month grid as PNG
// @Tags Calendar
// @Produce png
// @Param year query int false "Year"
// @Param month query int false "Month 1-12"
// @Success 200 {file} file
// @Router /calendar/month.png [get]
func (h *CalendarHandler) MonthImage(c *gin.Context) {
	year, month, err := h.yearMonth(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.service.MonthImage(c.Request.Context(), year, month)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "inline; filename=\""+file.Filename+"\"")
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// Gantt godoc
// @Summary Gantt rows
// @Tags Calendar
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /gantt [get]
func (h *CalendarHandler) Gantt(c *gin.Context) {
	tasks, err := h.service.Gantt(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tasks)
}

func (h *CalendarHandler) yearMonth(c *gin.Context) (int, int, error) {
	now := h.now()
	year, month := now.Year(), int(now.Month())
	if raw := c.Query("year"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, appErrors.Clone(appErrors.ErrValidation, "year must be a number")
		}
		year = v
	}
	if raw := c.Query("month"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, appErrors.Clone(appErrors.ErrValidation, "month must be a number")
		}
		month = v
	}
	return year, month, nil
}

package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/event-dashboard-api/internal/models"
)

func newTestRouter(withBackups bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := Handlers{
		Events:   NewEventHandler(&eventServiceMock{summary: &models.EventSummary{Total: 1}}),
		Transfer: NewTransferHandler(&importServiceMock{}, &exportServiceMock{}),
		Calendar: NewCalendarHandler(&calendarServiceMock{}),
		Metrics:  NewMetricsHandler(nil, pingerStub{}),
	}
	if withBackups {
		h.Backups = NewBackupHandler(&backupServiceMock{})
	}
	RegisterRoutes(r, "/api/v1/", h)
	return r
}

func TestRegisterRoutes(t *testing.T) {
	r := newTestRouter(true)
	cases := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/ready", http.StatusOK},
		{http.MethodGet, "/api/v1/events", http.StatusOK},
		{http.MethodGet, "/api/v1/events/summary", http.StatusOK},
		{http.MethodGet, "/api/v1/events/7", http.StatusOK},
		{http.MethodGet, "/api/v1/events/import/sample", http.StatusOK},
		{http.MethodGet, "/api/v1/events/export", http.StatusOK},
		{http.MethodDelete, "/api/v1/events/7", http.StatusNoContent},
		{http.MethodGet, "/api/v1/palette", http.StatusOK},
		{http.MethodGet, "/api/v1/calendar/feed", http.StatusOK},
		{http.MethodGet, "/api/v1/calendar/month.png", http.StatusOK},
		{http.MethodGet, "/api/v1/gantt", http.StatusOK},
		{http.MethodPost, "/api/v1/backups", http.StatusCreated},
		{http.MethodGet, "/api/v1/backups/bad", http.StatusForbidden},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, tc.status, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestRegisterRoutesWithoutBackups(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter(false).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/backups", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/event-dashboard-api/internal/dto"
	"github.com/noah-isme/event-dashboard-api/internal/middleware"
	"github.com/noah-isme/event-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/event-dashboard-api/pkg/errors"
)

type eventServiceMock struct {
	events    []models.Event
	cacheHit  bool
	searchReq *dto.EventSearchRequest
	created   *dto.CreateEventRequest
	deletedID int64
	purgeCode string
	err       error
	getErr    error
	purgeErr  error
	summary   *models.EventSummary
}

func (m *eventServiceMock) List(ctx context.Context) ([]models.Event, bool, error) {
	return m.events, m.cacheHit, m.err
}

func (m *eventServiceMock) Search(ctx context.Context, req dto.EventSearchRequest) ([]models.Event, error) {
	m.searchReq = &req
	return m.events, m.err
}

func (m *eventServiceMock) Get(ctx context.Context, id int64) (*models.Event, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return &models.Event{ID: id, Title: "Kickoff"}, nil
}

func (m *eventServiceMock) Create(ctx context.Context, req dto.CreateEventRequest) (*models.Event, error) {
	m.created = &req
	if m.err != nil {
		return nil, m.err
	}
	return &models.Event{ID: 1, Title: req.Title, StartDate: req.StartDate, EndDate: req.EndDate, Color: models.DefaultColor.Hex}, nil
}

func (m *eventServiceMock) Update(ctx context.Context, id int64, req dto.UpdateEventRequest) (*models.Event, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return &models.Event{ID: id, Title: req.Title}, nil
}

func (m *eventServiceMock) Delete(ctx context.Context, id int64) error {
	m.deletedID = id
	return m.err
}

func (m *eventServiceMock) Purge(ctx context.Context, code string) (*dto.PurgeEventsResult, error) {
	m.purgeCode = code
	if m.purgeErr != nil {
		return nil, m.purgeErr
	}
	return &dto.PurgeEventsResult{Deleted: 3}, nil
}

func (m *eventServiceMock) Summary(ctx context.Context) (*models.EventSummary, bool, error) {
	return m.summary, m.cacheHit, m.err
}

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func newTestContext(method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.Request = req
	return c, w
}

func TestEventHandlerListStorageOrderWithCacheMeta(t *testing.T) {
	mock := &eventServiceMock{events: []models.Event{{ID: 2}, {ID: 1}}, cacheHit: true}
	handler := NewEventHandler(mock)
	c, w := newTestContext(http.MethodGet, "/events", nil)
	middleware.SetCacheHit(c, false)

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, true, env.Meta["cache_hit"])
	var events []models.Event
	require.NoError(t, json.Unmarshal(env.Data, &events))
	assert.Equal(t, int64(2), events[0].ID)
	assert.Nil(t, mock.searchReq)
}

func TestEventHandlerListWithSearchParams(t *testing.T) {
	mock := &eventServiceMock{}
	handler := NewEventHandler(mock)
	c, w := newTestContext(http.MethodGet, "/events?keyword=review&sort_by=title&order=desc", nil)

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mock.searchReq)
	assert.Equal(t, "review", mock.searchReq.Keyword)
	assert.Equal(t, "title", mock.searchReq.SortBy)
	assert.Equal(t, "desc", mock.searchReq.Order)
}

func TestEventHandlerCreate(t *testing.T) {
	mock := &eventServiceMock{}
	handler := NewEventHandler(mock)
	body, _ := json.Marshal(dto.CreateEventRequest{Title: "Kickoff", StartDate: "2024-11-10", EndDate: "2024-11-10"})
	c, w := newTestContext(http.MethodPost, "/events", body)

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, mock.created)
	assert.Equal(t, "Kickoff", mock.created.Title)
}

func TestEventHandlerCreateInvalidBody(t *testing.T) {
	handler := NewEventHandler(&eventServiceMock{})
	c, w := newTestContext(http.MethodPost, "/events", []byte(`invalid`))

	handler.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, appErrors.ErrValidation.Code, decodeEnvelope(t, w).Error.Code)
}

func TestEventHandlerGetInvalidAndMissing(t *testing.T) {
	handler := NewEventHandler(&eventServiceMock{getErr: appErrors.Clone(appErrors.ErrNotFound, "event not found")})

	c, w := newTestContext(http.MethodGet, "/events/abc", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	handler.Get(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newTestContext(http.MethodGet, "/events/9", nil)
	c.Params = gin.Params{{Key: "id", Value: "9"}}
	handler.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEventHandlerUpdateNotFound(t *testing.T) {
	handler := NewEventHandler(&eventServiceMock{getErr: appErrors.Clone(appErrors.ErrNotFound, "event not found")})
	body, _ := json.Marshal(dto.UpdateEventRequest{Title: "x", StartDate: "2024-01-01", EndDate: "2024-01-01"})
	c, w := newTestContext(http.MethodPut, "/events/4", body)
	c.Params = gin.Params{{Key: "id", Value: "4"}}

	handler.Update(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEventHandlerDelete(t *testing.T) {
	mock := &eventServiceMock{}
	handler := NewEventHandler(mock)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.DELETE("/events/:id", handler.Delete)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/events/12", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, int64(12), mock.deletedID)
}

func TestEventHandlerPurge(t *testing.T) {
	mock := &eventServiceMock{}
	handler := NewEventHandler(mock)

	c, w := newTestContext(http.MethodDelete, "/events", nil)
	c.Request.Header.Set(PurgeCodeHeader, " 1234 ")
	handler.Purge(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1234", mock.purgeCode)

	body, _ := json.Marshal(dto.PurgeEventsRequest{Code: "5678"})
	c, w = newTestContext(http.MethodDelete, "/events", body)
	handler.Purge(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "5678", mock.purgeCode)
}

func TestEventHandlerPurgeForbidden(t *testing.T) {
	mock := &eventServiceMock{purgeErr: appErrors.Clone(appErrors.ErrForbidden, "confirmation code required")}
	handler := NewEventHandler(mock)
	c, w := newTestContext(http.MethodDelete, "/events", nil)

	handler.Purge(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, mock.purgeCode)
}

func TestEventHandlerSummaryAndPalette(t *testing.T) {
	handler := NewEventHandler(&eventServiceMock{summary: &models.EventSummary{Total: 3}})

	c, w := newTestContext(http.MethodGet, "/events/summary", nil)
	handler.Summary(c)
	require.Equal(t, http.StatusOK, w.Code)
	var summary models.EventSummary
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &summary))
	assert.Equal(t, 3, summary.Total)

	c, w = newTestContext(http.MethodGet, "/palette", nil)
	handler.Palette(c)
	env := decodeEnvelope(t, w)
	var palette []models.PaletteColor
	require.NoError(t, json.Unmarshal(env.Data, &palette))
	assert.Len(t, palette, len(models.Palette))
	assert.Equal(t, "red", env.Meta["default"])
}

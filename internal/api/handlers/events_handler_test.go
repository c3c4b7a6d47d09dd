package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirtan-gupta/Pixie-EventScout/internal/models"
)

// stubEventService is a canned EventService.
type stubEventService struct {
	events    []models.Event
	eventsErr error
	result    models.ReconcileResult
	stats     []models.CityStats
	totals    models.DashboardTotals
}

func (s *stubEventService) FetchAndReconcile(ctx context.Context, city, category string) ([]models.Event, models.ReconcileResult) {
	return s.events, s.result
}

func (s *stubEventService) EventsForCity(ctx context.Context, city, category string) ([]models.Event, error) {
	return s.events, s.eventsErr
}

func (s *stubEventService) FetchPreview(ctx context.Context, city, category string) ([]models.Event, error) {
	return s.events, s.eventsErr
}

func (s *stubEventService) DashboardStats(ctx context.Context) ([]models.CityStats, models.DashboardTotals) {
	return s.stats, s.totals
}

// newJSONRouter registers only the JSON routes, which need no templates.
func newJSONRouter(service EventService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewEventsHandler(service)
	router.GET("/api/events", h.HandleAPIEvents)
	router.GET("/test/:city", h.HandleVenueTest)
	router.GET("/health", HealthCheck)
	return router
}

func TestHandleAPIEventsRequiresCity(t *testing.T) {
	router := newJSONRouter(&stubEventService{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/events", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "City parameter is required", body["error"])
}

func TestHandleAPIEventsSuccess(t *testing.T) {
	service := &stubEventService{events: []models.Event{
		{Name: "Jazz Night", Date: "2025-06-01", Venue: "Blue Note", City: "bangalore",
			Category: "Music", URL: "#", Status: "upcoming"},
	}}
	router := newJSONRouter(service)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/events?city=bangalore&category=music", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success  bool           `json:"success"`
		City     string         `json:"city"`
		Category string         `json:"category"`
		Count    int            `json:"count"`
		Events   []models.Event `json:"events"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "bangalore", body.City)
	assert.Equal(t, "music", body.Category)
	assert.Equal(t, 1, body.Count)
	require.Len(t, body.Events, 1)
	assert.Equal(t, "Jazz Night", body.Events[0].Name)
}

func TestHandleAPIEventsDefaultsCategory(t *testing.T) {
	router := newJSONRouter(&stubEventService{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/events?city=delhi", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "all", body["category"])
}

func TestHandleAPIEventsServiceError(t *testing.T) {
	router := newJSONRouter(&stubEventService{eventsErr: assert.AnError})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/events?city=delhi", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
}

func TestHandleVenueTestSamplesAtMostFive(t *testing.T) {
	events := make([]models.Event, 8)
	for i := range events {
		events[i] = models.Event{Name: "Event", Venue: "Somewhere"}
	}
	router := newJSONRouter(&stubEventService{events: events})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test/bangalore", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		City         string                   `json:"city"`
		Count        int                      `json:"count"`
		SampleVenues []map[string]interface{} `json:"sampleVenues"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "bangalore", body.City)
	assert.Equal(t, 8, body.Count)
	assert.Len(t, body.SampleVenues, 5)
}

func TestHealthCheck(t *testing.T) {
	router := newJSONRouter(&stubEventService{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, ServiceName, body["service"])
	assert.NotEmpty(t, body["timestamp"])
}

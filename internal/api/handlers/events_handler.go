package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/kirtan-gupta/Pixie-EventScout/internal/models"
)

// EventService is the pipeline surface the handlers depend on.
type EventService interface {
	FetchAndReconcile(ctx context.Context, city, category string) ([]models.Event, models.ReconcileResult)
	EventsForCity(ctx context.Context, city, category string) ([]models.Event, error)
	FetchPreview(ctx context.Context, city, category string) ([]models.Event, error)
	DashboardStats(ctx context.Context) ([]models.CityStats, models.DashboardTotals)
}

// EventsHandler handles the web UI and JSON API routes.
type EventsHandler struct {
	service EventService
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(service EventService) *EventsHandler {
	return &EventsHandler{service: service}
}

// ScrapeRequest is the body of POST /scrape.
type ScrapeRequest struct {
	City     string `form:"city" json:"city" binding:"required"`
	Category string `form:"category" json:"category"`
}

// HandleIndex renders the city picker.
func (h *EventsHandler) HandleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"cities": models.Cities,
	})
}

// HandleScrape triggers fetch-and-reconcile for a city and renders the result.
func (h *EventsHandler) HandleScrape(c *gin.Context) {
	var req ScrapeRequest
	if err := c.ShouldBind(&req); err != nil {
		log.Error().Err(err).Msg("Invalid scrape request")
		c.HTML(http.StatusBadRequest, "error.html", gin.H{"message": "Error: " + err.Error()})
		return
	}
	if req.Category == "" {
		req.Category = "all"
	}

	log.Info().Str("city", req.City).Str("category", req.Category).Msg("Scraping on request")

	events, result := h.service.FetchAndReconcile(c.Request.Context(), req.City, req.Category)

	message := fmt.Sprintf("No events found for %s", req.City)
	if len(events) > 0 {
		if result.Added > 0 || result.Updated > 0 {
			message = fmt.Sprintf("Successfully saved %d new events and updated %d existing events for %s",
				result.Added, result.Updated, req.City)
		} else {
			message = "No new events to save (all events already exist)"
		}
	}

	c.HTML(http.StatusOK, "events.html", gin.H{
		"events":   events,
		"city":     req.City,
		"category": req.Category,
		"message":  message,
	})
}

// HandleCityEvents serves the persisted events page for one city.
func (h *EventsHandler) HandleCityEvents(c *gin.Context) {
	city := c.Param("city")
	category := c.DefaultQuery("category", "all")

	events, err := h.service.EventsForCity(c.Request.Context(), city, category)
	if err != nil {
		log.Error().Err(err).Str("city", city).Msg("Failed to load events")
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{"message": "Error: " + err.Error()})
		return
	}

	message := fmt.Sprintf("No events found for %s", city)
	if len(events) > 0 {
		message = fmt.Sprintf("Showing %d events in %s", len(events), city)
	}

	c.HTML(http.StatusOK, "events.html", gin.H{
		"events":   events,
		"city":     city,
		"category": category,
		"message":  message,
	})
}

// HandleAPIEvents serves the JSON events API.
func (h *EventsHandler) HandleAPIEvents(c *gin.Context) {
	city := c.Query("city")
	category := c.DefaultQuery("category", "all")

	if city == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "City parameter is required",
		})
		return
	}

	events, err := h.service.EventsForCity(c.Request.Context(), city, category)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"city":     city,
		"category": category,
		"count":    len(events),
		"events":   events,
	})
}

// HandleDashboard renders per-city aggregates.
func (h *EventsHandler) HandleDashboard(c *gin.Context) {
	stats, totals := h.service.DashboardStats(c.Request.Context())

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"stats":       stats,
		"totals":      totals,
		"lastChecked": nowString(),
	})
}

// HandleVenueTest dumps sample venue resolutions for debugging.
func (h *EventsHandler) HandleVenueTest(c *gin.Context) {
	city := c.Param("city")

	events, err := h.service.FetchPreview(c.Request.Context(), city, "all")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	samples := make([]gin.H, 0, 5)
	for i, evt := range events {
		if i >= 5 {
			break
		}
		samples = append(samples, gin.H{
			"name":        evt.Name,
			"venue":       evt.Venue,
			"venueLength": len(evt.Venue),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"city":         city,
		"count":        len(events),
		"sampleVenues": samples,
	})
}

// HandleNotFound renders the 404 error view.
func (h *EventsHandler) HandleNotFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "error.html", gin.H{"message": "Page not found"})
}

// RegisterRoutes registers the handler's routes
func (h *EventsHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/", h.HandleIndex)
	router.POST("/scrape", h.HandleScrape)
	router.GET("/events/:city", h.HandleCityEvents)
	router.GET("/api/events", h.HandleAPIEvents)
	router.GET("/dashboard", h.HandleDashboard)
	router.GET("/test/:city", h.HandleVenueTest)
	router.NoRoute(h.HandleNotFound)
}

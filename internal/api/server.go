package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/kirtan-gupta/Pixie-EventScout/config"
	"github.com/kirtan-gupta/Pixie-EventScout/internal/api/handlers"
	"github.com/kirtan-gupta/Pixie-EventScout/internal/api/middleware"
	"github.com/kirtan-gupta/Pixie-EventScout/internal/metrics"
)

// Server represents the HTTP server
type Server struct {
	config     config.Config
	router     *gin.Engine
	httpServer *http.Server
}

// NewServer creates a new HTTP server
func NewServer(cfg config.Config, eventService handlers.EventService, metricsCollector *metrics.Metrics) *Server {
	server := &Server{config: cfg}
	server.router = server.setupRouter(eventService, metricsCollector)

	server.httpServer = &http.Server{
		Addr:    cfg.Server.Address,
		Handler: server.router,
	}

	return server
}

// setupRouter configures the HTTP router
func (s *Server) setupRouter(eventService handlers.EventService, metricsCollector *metrics.Metrics) *gin.Engine {
	if s.config.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Logger())
	router.Use(gin.Recovery())

	router.LoadHTMLGlob(s.config.Server.TemplatesGlob)

	eventsHandler := handlers.NewEventsHandler(eventService)
	eventsHandler.RegisterRoutes(router)

	metricsHandler := handlers.NewMetricsHandler(metricsCollector)
	metricsHandler.RegisterRoutes(router)

	router.GET("/health", handlers.HealthCheck)

	return router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Info().Str("address", s.config.Server.Address).Msg("Starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "HTTP server error")
	}

	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "HTTP server shutdown error")
	}

	log.Info().Msg("HTTP server shut down successfully")
	return nil
}

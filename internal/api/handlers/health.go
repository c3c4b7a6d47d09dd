package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ServiceName identifies this service in health responses.
const ServiceName = "EventScout Scraper"

func nowString() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

// HealthCheck handles health check requests
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   ServiceName,
	})
}

package api

import (
	"net/http" // HTTP status codes
	"time"     // Response timestamp

	"github.com/gin-gonic/gin" // Gin web framework
)

// ServiceName is reported by the health endpoint
const ServiceName = "Habit Tracker API"

// HealthHandler reports liveness
func HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "OK",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"service":   ServiceName,
		})
	}
}

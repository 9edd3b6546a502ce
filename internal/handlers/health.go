package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// HealthCheck returns a health handler. ping may be nil when the service
// runs without a database.
// @Summary Service health
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse "Database unreachable"
// @Router /health [get]
func HealthCheck(ping func(context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := HealthResponse{Status: "ok", Database: "not configured"}

		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				response.Status = "degraded"
				response.Database = "disconnected"
				c.JSON(http.StatusServiceUnavailable, response)
				return
			}
			response.Database = "connected"
		}

		c.JSON(http.StatusOK, response)
	}
}

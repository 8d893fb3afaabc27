// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthController handles health check endpoints.
type HealthController struct {
	checks map[string]func() bool
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
	Timestamp    string            `json:"timestamp"`
}

// NewHealthController creates a new health controller instance.
// Each check reports whether a named dependency is reachable.
func NewHealthController(checks map[string]func() bool) *HealthController {
	return &HealthController{
		checks: checks,
	}
}

// Check handles GET /health requests.
func (h *HealthController) Check(c *gin.Context) {
	response := HealthResponse{
		Status:       "ok",
		Dependencies: make(map[string]string, len(h.checks)),
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	}

	for name, check := range h.checks {
		if check != nil && check() {
			response.Dependencies[name] = "connected"
			continue
		}
		response.Dependencies[name] = "disconnected"
		response.Status = "degraded"
	}

	c.JSON(http.StatusOK, response)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"firewatch-backend/internal/services"
)

// HealthHandler aggregates liveness of the backend and its dependencies
type HealthHandler struct {
	version   string
	container *services.ServiceContainer
}

func NewHealthHandler(version string, container *services.ServiceContainer) *HealthHandler {
	return &HealthHandler{version: version, container: container}
}

// HealthResponse reports overall and per-dependency health
type HealthResponse struct {
	Status   string          `json:"status" example:"healthy"`
	Version  string          `json:"version" example:"1.0.0"`
	Services map[string]bool `json:"services"`
}

// ServiceInfoResponse describes the backend
type ServiceInfoResponse struct {
	Service      string   `json:"service" example:"firewatch-backend"`
	Status       string   `json:"status" example:"running"`
	Version      string   `json:"version" example:"1.0.0"`
	Capabilities []string `json:"capabilities"`
}

// @Summary Health check
// @Description Aggregate health of the backend: database, redis, NATS and the external detection services
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx := c.Request.Context()

	checks := map[string]bool{
		"database": h.container.DB.PingContext(ctx) == nil,
		"redis":    h.container.Redis.Ping(ctx).Err() == nil,
		"nats":     h.container.Nats.IsConnected(),
	}
	for _, service := range h.container.Gateway.Services() {
		checks[service] = h.container.Gateway.HealthCheck(ctx, service)
	}

	// The database is the critical path; everything else degrades
	status := "healthy"
	code := http.StatusOK
	if !checks["database"] {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	} else {
		for _, ok := range checks {
			if !ok {
				status = "degraded"
				break
			}
		}
	}

	c.JSON(code, HealthResponse{
		Status:   status,
		Version:  h.version,
		Services: checks,
	})
}

// @Summary Service information
// @Tags health
// @Produce json
// @Success 200 {object} ServiceInfoResponse
// @Router / [get]
func (h *HealthHandler) ServiceInfo(c *gin.Context) {
	c.JSON(http.StatusOK, ServiceInfoResponse{
		Service: "firewatch-backend",
		Status:  "running",
		Version: h.version,
		Capabilities: []string{
			"fire_detection_pipeline",
			"occupancy_correlation",
			"face_identification",
			"alert_broadcast",
		},
	})
}

package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"firewatch-backend/internal/services"
)

// SystemHandler exposes runtime statistics and operator controls
type SystemHandler struct {
	container *services.ServiceContainer
	startedAt time.Time
}

func NewSystemHandler(container *services.ServiceContainer) *SystemHandler {
	return &SystemHandler{
		container: container,
		startedAt: time.Now(),
	}
}

// @Summary Get system stats
// @Description Runtime statistics, broadcast counters and the embedding cache size
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /system/stats [get]
func (h *SystemHandler) GetStats(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	published, dropped := h.container.Broadcaster.Stats()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats": gin.H{
			"uptime_seconds":    int64(time.Since(h.startedAt).Seconds()),
			"memory_mb":         m.Alloc / 1024 / 1024,
			"cpu_cores":         runtime.NumCPU(),
			"goroutines":        runtime.NumGoroutine(),
			"go_version":        runtime.Version(),
			"events_published":  published,
			"events_dropped":    dropped,
			"cached_embeddings": h.container.FaceMatcher.CachedCount(),
		},
		"timestamp": time.Now().Unix(),
	})
}

// @Summary Reset a circuit breaker
// @Description Clear the failure counter for an external service so calls resume immediately
// @Tags system
// @Produce json
// @Param service path string true "Service name" Enums(face-service, fire-service)
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} ErrorResponse
// @Router /system/circuit-breakers/{service}/reset [post]
func (h *SystemHandler) ResetCircuit(c *gin.Context) {
	service := c.Param("service")
	if err := h.container.Gateway.ResetCircuit(c.Request.Context(), service); err != nil {
		c.JSON(http.StatusInternalServerError, errorBody("failed to reset circuit breaker"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "service": service})
}

package api

import (
	"net/http"

	_ "firewatch-backend/docs"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (s *Server) setupSwagger() {
	s.router.GET("/api/info", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"title":       "Firewatch Backend API",
			"version":     s.config.Version,
			"description": "Fire/smoke detection-to-alert pipeline with occupancy correlation and face identification",
			"swagger_ui":  "/docs/index.html",
			"endpoints": gin.H{
				"health":     "/health",
				"detections": "/fire-detections/report",
				"alerts":     "/alerts",
				"faces":      "/faces",
				"occupancy":  "/occupancy",
				"system":     "/system",
			},
			"port": s.config.Port,
		})
	})

	s.router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	s.router.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/docs/index.html")
	})
}

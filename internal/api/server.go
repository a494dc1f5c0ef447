package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"firewatch-backend/internal/api/handlers"
	"firewatch-backend/internal/config"
	"firewatch-backend/internal/services"
)

type Server struct {
	config *config.Config
	router *gin.Engine
	server *http.Server

	detectionsHandler *handlers.DetectionsHandler
	alertsHandler     *handlers.AlertsHandler
	occupancyHandler  *handlers.OccupancyHandler
	facesHandler      *handlers.FacesHandler
	healthHandler     *handlers.HealthHandler
	systemHandler     *handlers.SystemHandler
}

func NewServer(cfg *config.Config, container *services.ServiceContainer) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	return &Server{
		config:            cfg,
		router:            router,
		detectionsHandler: handlers.NewDetectionsHandler(container.Pipeline),
		alertsHandler:     handlers.NewAlertsHandler(container.Alerts),
		occupancyHandler:  handlers.NewOccupancyHandler(container.Occupancy),
		facesHandler:      handlers.NewFacesHandler(container.Faces),
		healthHandler:     handlers.NewHealthHandler(cfg.Version, container),
		systemHandler:     handlers.NewSystemHandler(container),
	}
}

func (s *Server) Setup() error {
	s.setupMiddleware()

	s.setupRoutes()

	s.setupSwagger()

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Port),
		Handler: s.router,
	}

	return nil
}

func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

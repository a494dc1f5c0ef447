package api

func (s *Server) setupRoutes() {
	s.router.GET("/", s.healthHandler.ServiceInfo)
	s.router.GET("/health", s.healthHandler.HealthCheck)

	s.router.POST("/fire-detections/report", s.detectionsHandler.Report)

	alerts := s.router.Group("/alerts")
	{
		alerts.GET("", s.alertsHandler.List)
		alerts.GET("/:id", s.alertsHandler.Get)
		alerts.POST("/:id/acknowledge", s.alertsHandler.Acknowledge)
		alerts.POST("/:id/resolve", s.alertsHandler.Resolve)
		alerts.POST("/:id/false-alarm", s.alertsHandler.FalseAlarm)
	}

	faces := s.router.Group("/faces")
	{
		faces.POST("/register", s.facesHandler.Register)
		faces.POST("/identify", s.facesHandler.Identify)
	}

	occupancy := s.router.Group("/occupancy")
	{
		occupancy.POST("/report", s.occupancyHandler.Report)
		occupancy.GET("/floors/:floor_id/live", s.occupancyHandler.Live)
	}

	system := s.router.Group("/system")
	{
		system.GET("/stats", s.systemHandler.GetStats)
		system.POST("/circuit-breakers/:service/reset", s.systemHandler.ResetCircuit)
	}
}

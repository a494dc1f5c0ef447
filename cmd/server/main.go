package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"firewatch-backend/internal/api"
	"firewatch-backend/internal/config"
	"firewatch-backend/internal/services"
)

// @title Firewatch Backend API
// @version 1.0
// @description Fire/smoke detection-to-alert pipeline with occupancy correlation and face identification
// @BasePath /
func main() {
	// Setup structured logging
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configuration
	cfg := config.Load()

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("Invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("version", cfg.Version).
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Msg("Starting Firewatch backend")

	container, err := services.NewServiceContainer(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	container.Start()

	server := api.NewServer(cfg, container)
	if err := server.Setup(); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up server")
	}

	// Start server in goroutine
	go func() {
		log.Info().Int("port", cfg.Port).Msg("API listening")
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutdown signal received")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := container.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Service shutdown failed")
	} else {
		log.Info().Msg("Shutdown complete")
	}
}

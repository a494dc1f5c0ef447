package floors

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"firewatch-backend/internal/models"
	"firewatch-backend/internal/repository"
)

// ErrNoFloorsConfigured means no floor could be resolved and none exist at
// all. This is a configuration fault, not a detection-time error: the caller
// must abort the pipeline and an operator must configure at least one floor.
var ErrNoFloorsConfigured = errors.New("no floors configured")

// FloorSource reads camera and floor registrations
type FloorSource interface {
	GetCamera(ctx context.Context, id int64) (*models.Camera, error)
	FloorExists(ctx context.Context, id int64) (bool, error)
	CountFloors(ctx context.Context) (int, error)
}

// Resolver decides the canonical floor for a detection. The camera's
// registered floor always wins over the floor the report claims: cameras get
// reassigned and upstream reports go stale.
type Resolver struct {
	source FloorSource
}

// NewResolver creates a floor resolver
func NewResolver(source FloorSource) *Resolver {
	return &Resolver{source: source}
}

// Resolve returns the canonical floor id for a detection report. Falls back
// to the report's claimed floor when the camera is unregistered, and returns
// ErrNoFloorsConfigured when nothing can be resolved.
func (r *Resolver) Resolve(ctx context.Context, report *models.DetectionReport) (int64, error) {
	camera, err := r.source.GetCamera(ctx, report.CameraID)
	switch {
	case err == nil && camera.FloorID != 0:
		if camera.FloorID != report.FloorID && report.FloorID != 0 {
			log.Info().
				Int64("camera_id", report.CameraID).
				Int64("claimed_floor", report.FloorID).
				Int64("registered_floor", camera.FloorID).
				Msg("Report floor overridden by camera registration")
		}
		return camera.FloorID, nil
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return 0, err
	}

	// Camera unknown or has no registered floor: trust the report if its
	// claimed floor actually exists
	if report.FloorID != 0 {
		exists, err := r.source.FloorExists(ctx, report.FloorID)
		if err != nil {
			return 0, err
		}
		if exists {
			return report.FloorID, nil
		}
	}

	count, err := r.source.CountFloors(ctx)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		log.Error().
			Int64("camera_id", report.CameraID).
			Int64("claimed_floor", report.FloorID).
			Msg("No floors configured, aborting detection pipeline")
		return 0, ErrNoFloorsConfigured
	}

	// Floors exist but neither the camera nor the report points at one.
	// Surface it the same way rather than silently guessing a floor.
	log.Error().
		Int64("camera_id", report.CameraID).
		Int64("claimed_floor", report.FloorID).
		Msg("Detection cannot be mapped to any configured floor")
	return 0, ErrNoFloorsConfigured
}

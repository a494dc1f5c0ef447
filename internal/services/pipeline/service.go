package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"firewatch-backend/internal/models"
	"firewatch-backend/internal/repository"
)

// Admitter gates raw detection reports
type Admitter interface {
	Admit(report *models.DetectionReport) error
}

// FloorResolver maps a report to its canonical floor
type FloorResolver interface {
	Resolve(ctx context.Context, report *models.DetectionReport) (int64, error)
}

// OccupancyCorrelator reads the occupancy state as of a detection time
type OccupancyCorrelator interface {
	Correlate(ctx context.Context, floorID int64, asOf time.Time) (*models.OccupancySnapshot, error)
}

// SeverityClassifier maps confidence and occupancy to a severity tier
type SeverityClassifier interface {
	Classify(confidence float64, occupancyCount int) models.Severity
}

// AlertCreator persists the fire event with its alert and broadcasts it
type AlertCreator interface {
	CreateFireAlert(ctx context.Context, event *models.FireEvent, alert *models.Alert) error
}

// CameraSource looks up registered cameras for alert enrichment
type CameraSource interface {
	GetCamera(ctx context.Context, id int64) (*models.Camera, error)
}

// Service runs an admitted detection report through the full pipeline:
//
//	admit -> resolve floor -> correlate occupancy -> classify -> persist -> broadcast
//
// Each stage commits the previous stage's decision; nothing downstream
// recomputes severity or occupancy.
type Service struct {
	admission Admitter
	floors    FloorResolver
	occupancy OccupancyCorrelator
	severity  SeverityClassifier
	alerts    AlertCreator
	cameras   CameraSource
}

func NewService(admission Admitter, floors FloorResolver, occupancy OccupancyCorrelator, severity SeverityClassifier, alerts AlertCreator, cameras CameraSource) *Service {
	return &Service{
		admission: admission,
		floors:    floors,
		occupancy: occupancy,
		severity:  severity,
		alerts:    alerts,
		cameras:   cameras,
	}
}

// ProcessReport turns a raw fire/smoke detection report into a persisted,
// broadcast alert. Returns the created alert, or the stage error that stopped
// the pipeline.
func (s *Service) ProcessReport(ctx context.Context, report *models.DetectionReport) (*models.Alert, error) {
	if report.DetectedAt.IsZero() {
		report.DetectedAt = time.Now().UTC()
	}

	if err := s.admission.Admit(report); err != nil {
		return nil, err
	}

	floorID, err := s.floors.Resolve(ctx, report)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.occupancy.Correlate(ctx, floorID, report.DetectedAt)
	if err != nil {
		return nil, err
	}

	severity := s.severity.Classify(report.Confidence, snapshot.PersonCount)

	event := &models.FireEvent{
		FloorID:      floorID,
		CameraID:     report.CameraID,
		Kind:         report.Kind,
		Confidence:   report.Confidence,
		BoundingBox:  report.BoundingBox,
		RoomLocation: report.RoomLocation,
		DetectedAt:   report.DetectedAt,
	}
	alert := &models.Alert{
		EventType:      report.Kind.String(),
		Severity:       severity,
		FloorID:        floorID,
		CameraID:       report.CameraID,
		RoomLocation:   report.RoomLocation,
		Confidence:     report.Confidence,
		OccupancyCount: snapshot.PersonCount,
		People:         snapshot.People,
		Screenshot:     report.Screenshot,
		DetectedAt:     report.DetectedAt,
	}
	s.enrichFromCamera(ctx, alert, event)

	if err := s.alerts.CreateFireAlert(ctx, event, alert); err != nil {
		return nil, err
	}

	log.Info().
		Int64("alert_id", alert.ID).
		Str("event_type", alert.EventType).
		Str("severity", severity.String()).
		Int64("floor_id", floorID).
		Int("occupancy_count", snapshot.PersonCount).
		Float64("confidence", report.Confidence).
		Msg("Detection processed into alert")

	return alert, nil
}

// enrichFromCamera fills camera name and room from the camera registry when
// the report itself did not carry a location. Lookup failures degrade to an
// unenriched alert.
func (s *Service) enrichFromCamera(ctx context.Context, alert *models.Alert, event *models.FireEvent) {
	camera, err := s.cameras.GetCamera(ctx, alert.CameraID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Warn().Err(err).Int64("camera_id", alert.CameraID).Msg("Camera lookup failed during enrichment")
		}
		return
	}
	alert.CameraName = camera.Name
	if alert.RoomLocation == "" {
		alert.RoomLocation = camera.Room
		event.RoomLocation = camera.Room
	}
}

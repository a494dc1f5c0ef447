package admission

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"firewatch-backend/internal/config"
	"firewatch-backend/internal/models"
)

// RejectionReason says why a detection report was refused admission
type RejectionReason string

const (
	ReasonLowConfidence RejectionReason = "low_confidence"
	ReasonNoEvidence    RejectionReason = "no_evidence"
)

// RejectedError is returned when a detection report fails admission.
// Rejections are user-visible and never retried.
type RejectedError struct {
	Reason  RejectionReason
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("detection rejected (%s): %s", e.Reason, e.Message)
}

// Service is the gate between raw detection reports and the alert pipeline.
// Admission is pure: a report passes through unchanged or is rejected, with
// no side effects besides logging.
type Service struct {
	cfg *config.Config
}

// NewService creates an admission controller
func NewService(cfg *config.Config) *Service {
	return &Service{cfg: cfg}
}

// Admit validates a detection report. The confidence floor is inclusive:
// a report at exactly the threshold is admitted.
func (s *Service) Admit(report *models.DetectionReport) error {
	if report.Confidence < s.cfg.MinConfidence {
		log.Info().
			Int64("camera_id", report.CameraID).
			Str("detection_type", report.Kind.String()).
			Float64("confidence", report.Confidence).
			Float64("min_confidence", s.cfg.MinConfidence).
			Msg("Detection rejected: confidence below threshold")
		return &RejectedError{
			Reason:  ReasonLowConfidence,
			Message: fmt.Sprintf("confidence %.2f below minimum %.2f", report.Confidence, s.cfg.MinConfidence),
		}
	}

	if !report.HasEvidence() {
		log.Info().
			Int64("camera_id", report.CameraID).
			Str("detection_type", report.Kind.String()).
			Float64("confidence", report.Confidence).
			Msg("Detection rejected: no evidence attached")
		return &RejectedError{
			Reason:  ReasonNoEvidence,
			Message: "detection has no evidence image attached",
		}
	}

	return nil
}

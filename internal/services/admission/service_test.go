package admission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firewatch-backend/internal/config"
	"firewatch-backend/internal/models"
)

func newService() *Service {
	return NewService(&config.Config{MinConfidence: 0.60})
}

func report(confidence float64, screenshot string) *models.DetectionReport {
	return &models.DetectionReport{
		CameraID:   7,
		FloorID:    2,
		Kind:       models.DetectionKindFire,
		Confidence: confidence,
		Screenshot: screenshot,
	}
}

func TestAdmit_BelowThresholdRejected(t *testing.T) {
	err := newService().Admit(report(0.59, "fire.jpg"))

	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, ReasonLowConfidence, rejected.Reason)
}

func TestAdmit_ThresholdBoundaryInclusive(t *testing.T) {
	assert.NoError(t, newService().Admit(report(0.60, "fire.jpg")))
}

func TestAdmit_NoEvidenceRejectedRegardlessOfConfidence(t *testing.T) {
	err := newService().Admit(report(0.99, ""))

	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, ReasonNoEvidence, rejected.Reason)
}

func TestAdmit_ValidReportPassesThrough(t *testing.T) {
	r := report(0.85, "fire.jpg")
	require.NoError(t, newService().Admit(r))
	// Admission must not mutate the report
	assert.Equal(t, 0.85, r.Confidence)
	assert.Equal(t, "fire.jpg", r.Screenshot)
}

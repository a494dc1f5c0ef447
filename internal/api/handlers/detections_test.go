package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firewatch-backend/internal/models"
	"firewatch-backend/internal/services/admission"
	"firewatch-backend/internal/services/floors"
)

type fakePipeline struct {
	report *models.DetectionReport
	err    error
}

func (p *fakePipeline) ProcessReport(_ context.Context, report *models.DetectionReport) (*models.Alert, error) {
	p.report = report
	if p.err != nil {
		return nil, p.err
	}
	fireEventID := int64(12)
	return &models.Alert{
		ID:          34,
		FireEventID: &fireEventID,
		EventType:   report.Kind.String(),
		Severity:    models.SeverityHigh,
		Status:      models.AlertStatusActive,
		Confidence:  report.Confidence,
	}, nil
}

func postReport(t *testing.T, pipeline *fakePipeline, body map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/fire-detections/report", NewDetectionsHandler(pipeline).Report)

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/fire-detections/report", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func validBody() map[string]interface{} {
	return map[string]interface{}{
		"camera_id":      7,
		"floor_id":       2,
		"detection_type": "fire",
		"confidence":     85,
		"screenshot":     "fire.jpg",
	}
}

func TestReport_PercentageConfidenceNormalized(t *testing.T) {
	pipeline := &fakePipeline{}
	w := postReport(t, pipeline, validBody())

	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, pipeline.report)
	assert.InDelta(t, 0.85, pipeline.report.Confidence, 1e-9)

	var resp DetectionReportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(12), resp.FireEventID)
	assert.Equal(t, int64(34), resp.AlertID)
}

func TestReport_AlreadyNormalizedConfidencePassedThrough(t *testing.T) {
	pipeline := &fakePipeline{}
	body := validBody()
	body["confidence"] = 0.85
	postReport(t, pipeline, body)

	require.NotNil(t, pipeline.report)
	assert.InDelta(t, 0.85, pipeline.report.Confidence, 1e-9)
}

func TestReport_RejectedDetectionIs400(t *testing.T) {
	pipeline := &fakePipeline{err: &admission.RejectedError{
		Reason:  admission.ReasonLowConfidence,
		Message: "confidence 0.40 below minimum 0.60",
	}}
	w := postReport(t, pipeline, validBody())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "low_confidence")
}

func TestReport_NoFloorsConfiguredIs500(t *testing.T) {
	pipeline := &fakePipeline{err: floors.ErrNoFloorsConfigured}
	w := postReport(t, pipeline, validBody())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestReport_FaceKindRejected(t *testing.T) {
	pipeline := &fakePipeline{}
	body := validBody()
	body["detection_type"] = "face"
	w := postReport(t, pipeline, body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, pipeline.report, "invalid kinds never reach the pipeline")
}

func TestReport_UnknownKindRejected(t *testing.T) {
	body := validBody()
	body["detection_type"] = "flood"
	w := postReport(t, &fakePipeline{}, body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

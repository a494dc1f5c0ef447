package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"firewatch-backend/internal/models"
	"firewatch-backend/internal/services/admission"
	"firewatch-backend/internal/services/floors"
	"firewatch-backend/internal/services/gateway"
)

// ReportProcessor runs a detection report through the alert pipeline
type ReportProcessor interface {
	ProcessReport(ctx context.Context, report *models.DetectionReport) (*models.Alert, error)
}

// DetectionsHandler receives detection reports from the ML services
type DetectionsHandler struct {
	pipeline ReportProcessor
}

func NewDetectionsHandler(pipeline ReportProcessor) *DetectionsHandler {
	return &DetectionsHandler{pipeline: pipeline}
}

// DetectionReportRequest is the wire form of a detection report. Confidence
// is accepted on either scale: values above 1 are treated as percentages.
type DetectionReportRequest struct {
	CameraID      int64               `json:"camera_id" binding:"required" example:"7"`
	FloorID       int64               `json:"floor_id" example:"2"`
	DetectionType string              `json:"detection_type" binding:"required" example:"fire"`
	Confidence    float64             `json:"confidence" binding:"required" example:"85"`
	RoomLocation  string              `json:"room_location" example:"Server Room"`
	Screenshot    string              `json:"screenshot" example:"detections/2025/06/01/fire-7.jpg"`
	BoundingBox   *models.BoundingBox `json:"bounding_box"`
	Coordinates   []float64           `json:"coordinates"`
	DetectedAt    *time.Time          `json:"detected_at"`
}

// DetectionReportResponse confirms a processed detection
type DetectionReportResponse struct {
	Success     bool          `json:"success" example:"true"`
	FireEventID int64         `json:"fire_event_id" example:"12"`
	AlertID     int64         `json:"alert_id" example:"34"`
	Data        *models.Alert `json:"data"`
}

// @Summary Report a fire or smoke detection
// @Description Run a detection report through admission, floor resolution, occupancy correlation and severity classification, producing an alert
// @Tags detections
// @Accept json
// @Produce json
// @Param report body DetectionReportRequest true "Detection report"
// @Success 201 {object} DetectionReportResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /fire-detections/report [post]
func (h *DetectionsHandler) Report(c *gin.Context) {
	var req DetectionReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid request: "+err.Error()))
		return
	}

	kind := models.DetectionKind(req.DetectionType)
	if !kind.IsValid() || kind == models.DetectionKindFace {
		c.JSON(http.StatusBadRequest, errorBody("detection_type must be fire or smoke"))
		return
	}

	report := &models.DetectionReport{
		CameraID:     req.CameraID,
		FloorID:      req.FloorID,
		Kind:         kind,
		Confidence:   normalizeConfidence(req.Confidence),
		RoomLocation: req.RoomLocation,
		Screenshot:   req.Screenshot,
		BoundingBox:  req.BoundingBox,
		Coordinates:  req.Coordinates,
	}
	if req.DetectedAt != nil {
		report.DetectedAt = *req.DetectedAt
	}

	alert, err := h.pipeline.ProcessReport(c.Request.Context(), report)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := DetectionReportResponse{Success: true, AlertID: alert.ID, Data: alert}
	if alert.FireEventID != nil {
		resp.FireEventID = *alert.FireEventID
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *DetectionsHandler) writeError(c *gin.Context, err error) {
	var rejected *admission.RejectedError
	switch {
	case errors.As(err, &rejected):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   rejected.Message,
			"reason":  string(rejected.Reason),
		})
	case errors.Is(err, floors.ErrNoFloorsConfigured):
		c.JSON(http.StatusInternalServerError, errorBody("no floors configured, cannot map detection"))
	case gateway.IsUnavailable(err):
		c.JSON(http.StatusServiceUnavailable, errorBody("detection service unavailable, please try again later"))
	default:
		c.JSON(http.StatusInternalServerError, errorBody("failed to process detection"))
	}
}

// normalizeConfidence maps wire confidence to 0.0-1.0. Values above 1 are
// percentages; values at or below 1 are already normalized.
func normalizeConfidence(confidence float64) float64 {
	if confidence > 1 {
		return confidence / 100
	}
	return confidence
}

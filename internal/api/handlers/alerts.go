package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"firewatch-backend/internal/models"
	"firewatch-backend/internal/repository"
)

// AlertLifecycle is the alert state machine surface the handler drives
type AlertLifecycle interface {
	Get(ctx context.Context, id int64) (*models.Alert, error)
	List(ctx context.Context, filters models.AlertFilters) ([]*models.Alert, error)
	Acknowledge(ctx context.Context, id int64) (*models.Alert, error)
	Resolve(ctx context.Context, id int64) (*models.Alert, error)
	FalseAlarm(ctx context.Context, id int64) (*models.Alert, error)
}

// AlertsHandler exposes alert listing and lifecycle transitions
type AlertsHandler struct {
	alerts AlertLifecycle
}

func NewAlertsHandler(lifecycle AlertLifecycle) *AlertsHandler {
	return &AlertsHandler{alerts: lifecycle}
}

// AlertListResponse wraps a filtered alert listing
type AlertListResponse struct {
	Success bool            `json:"success" example:"true"`
	Count   int             `json:"count" example:"2"`
	Data    []*models.Alert `json:"data"`
}

// AlertResponse wraps a single alert
type AlertResponse struct {
	Success bool          `json:"success" example:"true"`
	Data    *models.Alert `json:"data"`
}

// @Summary List alerts
// @Description List alerts newest first, optionally filtered by status, event type and floor
// @Tags alerts
// @Produce json
// @Param status query string false "Filter by status" Enums(active, acknowledged, resolved, false_alarm)
// @Param event_type query string false "Filter by event type" Enums(fire, smoke)
// @Param floor_id query int false "Filter by floor"
// @Success 200 {object} AlertListResponse
// @Failure 400 {object} ErrorResponse
// @Router /alerts [get]
func (h *AlertsHandler) List(c *gin.Context) {
	var filters models.AlertFilters

	if raw := c.Query("status"); raw != "" {
		status := models.AlertStatus(raw)
		if !status.IsValid() {
			c.JSON(http.StatusBadRequest, errorBody("invalid status "+raw))
			return
		}
		filters.Status = &status
	}
	if raw := c.Query("event_type"); raw != "" {
		filters.EventType = &raw
	}
	if raw := c.Query("floor_id"); raw != "" {
		floorID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorBody("invalid floor_id "+raw))
			return
		}
		filters.FloorID = &floorID
	}

	list, err := h.alerts.List(c.Request.Context(), filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorBody("failed to list alerts"))
		return
	}
	c.JSON(http.StatusOK, AlertListResponse{Success: true, Count: len(list), Data: list})
}

// @Summary Get an alert
// @Tags alerts
// @Produce json
// @Param id path int true "Alert id"
// @Success 200 {object} AlertResponse
// @Failure 404 {object} ErrorResponse
// @Router /alerts/{id} [get]
func (h *AlertsHandler) Get(c *gin.Context) {
	id, ok := h.alertID(c)
	if !ok {
		return
	}

	alert, err := h.alerts.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, AlertResponse{Success: true, Data: alert})
}

// @Summary Acknowledge an alert
// @Description Mark an active alert as seen by an operator. Idempotent: acknowledging an already-acknowledged or closed alert is a no-op.
// @Tags alerts
// @Produce json
// @Param id path int true "Alert id"
// @Success 200 {object} AlertResponse
// @Failure 404 {object} ErrorResponse
// @Router /alerts/{id}/acknowledge [post]
func (h *AlertsHandler) Acknowledge(c *gin.Context) {
	h.transition(c, h.alerts.Acknowledge)
}

// @Summary Resolve an alert
// @Description Close an alert as a handled incident. Idempotent: resolving an already-closed alert is a no-op.
// @Tags alerts
// @Produce json
// @Param id path int true "Alert id"
// @Success 200 {object} AlertResponse
// @Failure 404 {object} ErrorResponse
// @Router /alerts/{id}/resolve [post]
func (h *AlertsHandler) Resolve(c *gin.Context) {
	h.transition(c, h.alerts.Resolve)
}

// @Summary Mark an alert as a false alarm
// @Description Close an alert as a misdetection. Idempotent: closing an already-closed alert is a no-op.
// @Tags alerts
// @Produce json
// @Param id path int true "Alert id"
// @Success 200 {object} AlertResponse
// @Failure 404 {object} ErrorResponse
// @Router /alerts/{id}/false-alarm [post]
func (h *AlertsHandler) FalseAlarm(c *gin.Context) {
	h.transition(c, h.alerts.FalseAlarm)
}

func (h *AlertsHandler) transition(c *gin.Context, apply func(context.Context, int64) (*models.Alert, error)) {
	id, ok := h.alertID(c)
	if !ok {
		return
	}

	alert, err := apply(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, AlertResponse{Success: true, Data: alert})
}

func (h *AlertsHandler) alertID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid alert id"))
		return 0, false
	}
	return id, true
}

func (h *AlertsHandler) writeError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, errorBody("alert not found"))
		return
	}
	c.JSON(http.StatusInternalServerError, errorBody("alert operation failed"))
}

package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"firewatch-backend/internal/models"
	"firewatch-backend/internal/services/occupancy"
)

// OccupancyTracker ingests snapshots and serves live floor occupancy
type OccupancyTracker interface {
	Ingest(ctx context.Context, snapshot *models.OccupancySnapshot) error
	Live(ctx context.Context, floorID int64) (*models.OccupancySnapshot, error)
}

// OccupancyHandler exposes occupancy ingestion and live reads
type OccupancyHandler struct {
	occupancy OccupancyTracker
}

func NewOccupancyHandler(tracker OccupancyTracker) *OccupancyHandler {
	return &OccupancyHandler{occupancy: tracker}
}

// OccupancyReportRequest is an incoming occupancy snapshot
type OccupancyReportRequest struct {
	FloorID int64                  `json:"floor_id" binding:"required" example:"2"`
	People  []models.PresentPerson `json:"people"`
	TakenAt *time.Time             `json:"taken_at"`
}

// OccupancyResponse wraps a snapshot
type OccupancyResponse struct {
	Success bool                      `json:"success" example:"true"`
	Data    *models.OccupancySnapshot `json:"data"`
}

// @Summary Report floor occupancy
// @Description Append an occupancy snapshot for a floor; the person count is derived from the people list
// @Tags occupancy
// @Accept json
// @Produce json
// @Param report body OccupancyReportRequest true "Occupancy snapshot"
// @Success 201 {object} OccupancyResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /occupancy/report [post]
func (h *OccupancyHandler) Report(c *gin.Context) {
	var req OccupancyReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid request: "+err.Error()))
		return
	}

	snapshot := &models.OccupancySnapshot{
		FloorID: req.FloorID,
		People:  req.People,
	}
	if req.TakenAt != nil {
		snapshot.Timestamp = *req.TakenAt
	}

	if err := h.occupancy.Ingest(c.Request.Context(), snapshot); err != nil {
		if errors.Is(err, occupancy.ErrUnknownFloor) {
			c.JSON(http.StatusNotFound, errorBody("unknown floor"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorBody("failed to record occupancy"))
		return
	}
	c.JSON(http.StatusCreated, OccupancyResponse{Success: true, Data: snapshot})
}

// @Summary Live floor occupancy
// @Description Current occupancy of a floor with employee identities filled in
// @Tags occupancy
// @Produce json
// @Param floor_id path int true "Floor id"
// @Success 200 {object} OccupancyResponse
// @Failure 404 {object} ErrorResponse
// @Router /occupancy/floors/{floor_id}/live [get]
func (h *OccupancyHandler) Live(c *gin.Context) {
	floorID, err := strconv.ParseInt(c.Param("floor_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid floor id"))
		return
	}

	snapshot, err := h.occupancy.Live(c.Request.Context(), floorID)
	if err != nil {
		if errors.Is(err, occupancy.ErrUnknownFloor) {
			c.JSON(http.StatusNotFound, errorBody("unknown floor"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorBody("failed to read occupancy"))
		return
	}
	c.JSON(http.StatusOK, OccupancyResponse{Success: true, Data: snapshot})
}

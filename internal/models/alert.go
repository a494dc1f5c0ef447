package models

import (
	"time"
)

// AlertStatus represents the lifecycle state of an alert
type AlertStatus string

const (
	AlertStatusActive       AlertStatus = "active"
	AlertStatusAcknowledged AlertStatus = "acknowledged"
	AlertStatusResolved     AlertStatus = "resolved"
	AlertStatusFalseAlarm   AlertStatus = "false_alarm"
)

// String returns the string representation of AlertStatus
func (s AlertStatus) String() string {
	return string(s)
}

// IsValid checks if the alert status is valid
func (s AlertStatus) IsValid() bool {
	switch s {
	case AlertStatusActive, AlertStatusAcknowledged, AlertStatusResolved, AlertStatusFalseAlarm:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions are allowed from the status
func (s AlertStatus) IsTerminal() bool {
	return s == AlertStatusResolved || s == AlertStatusFalseAlarm
}

// Severity represents the urgency tier of an alert
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// String returns the string representation of Severity
func (s Severity) String() string {
	return string(s)
}

// Alert is the user-facing record produced by the detection pipeline.
// Severity, the occupancy count and the who-was-present list are captured
// once at creation time and never recomputed.
type Alert struct {
	ID             int64           `json:"id"`
	FireEventID    *int64          `json:"fire_event_id,omitempty"`
	EventType      string          `json:"event_type"`
	Severity       Severity        `json:"severity"`
	FloorID        int64           `json:"floor_id"`
	CameraID       int64           `json:"camera_id"`
	CameraName     string          `json:"camera_name,omitempty"`
	RoomLocation   string          `json:"room_location,omitempty"`
	Confidence     float64         `json:"confidence"`
	OccupancyCount int             `json:"occupancy_count"`
	People         []PresentPerson `json:"people"`
	Screenshot     string          `json:"screenshot,omitempty"`
	Status         AlertStatus     `json:"status"`
	DetectedAt     time.Time       `json:"detected_at"`
	AcknowledgedAt *time.Time      `json:"acknowledged_at,omitempty"`
	ResolvedAt     *time.Time      `json:"resolved_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// AlertFilters are the supported alert listing filters
type AlertFilters struct {
	Status    *AlertStatus
	EventType *string
	FloorID   *int64
}

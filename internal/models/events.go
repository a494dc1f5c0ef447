package models

import (
	"time"
)

// Broadcast channel and event names. Payloads are flat JSON records of
// primitive fields only, so subscribers can never reach back into live
// server state.
const (
	ChannelAlerts    = "alerts"
	ChannelOccupancy = "occupancy"

	EventAlertCreated     = "alert.created"
	EventAlertChanged     = "alert.changed"
	EventOccupancyChanged = "occupancy.changed"
)

// MessagePublisher abstracts the transport used for event fan-out
type MessagePublisher interface {
	Publish(subject string, data interface{}) error
}

// AlertEventPayload is the broadcast payload for alert.created/alert.changed
type AlertEventPayload struct {
	Event          string  `json:"event"`
	AlertID        int64   `json:"alert_id"`
	FireEventID    int64   `json:"fire_event_id,omitempty"`
	EventType      string  `json:"event_type"`
	Severity       string  `json:"severity"`
	Status         string  `json:"status"`
	FloorID        int64   `json:"floor_id"`
	CameraID       int64   `json:"camera_id"`
	CameraName     string  `json:"camera_name,omitempty"`
	RoomLocation   string  `json:"room_location,omitempty"`
	Confidence     float64 `json:"confidence"`
	OccupancyCount int     `json:"occupancy_count"`
	DetectedAt     string  `json:"detected_at"`
}

// OccupancyEventPayload is the broadcast payload for occupancy.changed
type OccupancyEventPayload struct {
	Event       string `json:"event"`
	FloorID     int64  `json:"floor_id"`
	PersonCount int    `json:"person_count"`
	Timestamp   string `json:"timestamp"`
}

// NewAlertEventPayload flattens an alert into its broadcast form
func NewAlertEventPayload(event string, alert *Alert) AlertEventPayload {
	p := AlertEventPayload{
		Event:          event,
		AlertID:        alert.ID,
		EventType:      alert.EventType,
		Severity:       alert.Severity.String(),
		Status:         alert.Status.String(),
		FloorID:        alert.FloorID,
		CameraID:       alert.CameraID,
		CameraName:     alert.CameraName,
		RoomLocation:   alert.RoomLocation,
		Confidence:     alert.Confidence,
		OccupancyCount: alert.OccupancyCount,
		DetectedAt:     alert.DetectedAt.Format(time.RFC3339),
	}
	if alert.FireEventID != nil {
		p.FireEventID = *alert.FireEventID
	}
	return p
}

// NewOccupancyEventPayload flattens a snapshot into its broadcast form
func NewOccupancyEventPayload(snapshot *OccupancySnapshot) OccupancyEventPayload {
	return OccupancyEventPayload{
		Event:       EventOccupancyChanged,
		FloorID:     snapshot.FloorID,
		PersonCount: snapshot.PersonCount,
		Timestamp:   snapshot.Timestamp.Format(time.RFC3339),
	}
}

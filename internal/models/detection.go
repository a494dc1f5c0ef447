package models

import (
	"time"
)

// DetectionKind represents the kind of event reported by a sensor or ML service
type DetectionKind string

const (
	DetectionKindFire  DetectionKind = "fire"
	DetectionKindSmoke DetectionKind = "smoke"
	DetectionKindFace  DetectionKind = "face"
)

// String returns the string representation of DetectionKind
func (dk DetectionKind) String() string {
	return string(dk)
}

// IsValid checks if the detection kind is valid
func (dk DetectionKind) IsValid() bool {
	switch dk {
	case DetectionKindFire, DetectionKindSmoke, DetectionKindFace:
		return true
	default:
		return false
	}
}

// BoundingBox represents a detection bounding box in pixel coordinates
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DetectionReport is the raw, untrusted input describing a possible
// fire/smoke/face event. It is transient: consumed by the admission gate and
// never persisted as-is.
type DetectionReport struct {
	CameraID     int64         `json:"camera_id"`
	FloorID      int64         `json:"floor_id"`
	Kind         DetectionKind `json:"detection_type"`
	Confidence   float64       `json:"confidence"` // normalized 0.0-1.0
	RoomLocation string        `json:"room_location,omitempty"`
	Screenshot   string        `json:"screenshot,omitempty"` // evidence image reference
	BoundingBox  *BoundingBox  `json:"bounding_box,omitempty"`
	Coordinates  []float64     `json:"coordinates,omitempty"`
	Embedding    []float64     `json:"embedding,omitempty"`
	DetectedAt   time.Time     `json:"detected_at"`
}

// HasEvidence reports whether the detection carries a visual proof reference
func (r *DetectionReport) HasEvidence() bool {
	return r.Screenshot != ""
}

// FireEvent is the persisted record of an admitted fire/smoke detection.
// Created once per admitted detection; mutated only to flip Resolved.
type FireEvent struct {
	ID           int64         `json:"id"`
	FloorID      int64         `json:"floor_id"`
	CameraID     int64         `json:"camera_id"`
	Kind         DetectionKind `json:"detection_type"`
	Confidence   float64       `json:"confidence"`
	BoundingBox  *BoundingBox  `json:"bounding_box,omitempty"`
	RoomLocation string        `json:"room_location,omitempty"`
	Resolved     bool          `json:"resolved"`
	DetectedAt   time.Time     `json:"detected_at"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Camera is the registered sensor record used for floor resolution
type Camera struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	FloorID int64  `json:"floor_id"` // 0 when no floor is registered
	Room    string `json:"room,omitempty"`
}

// Floor is a configured building floor
type Floor struct {
	ID     int64  `json:"id"`
	Number int    `json:"number"`
	Name   string `json:"name"`
}

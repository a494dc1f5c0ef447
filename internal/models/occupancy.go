package models

import (
	"time"
)

// PresentPerson is one entry in an occupancy snapshot's people list
type PresentPerson struct {
	TrackID    string  `json:"track_id,omitempty"`
	EmployeeID *int64  `json:"employee_id,omitempty"`
	Name       string  `json:"name,omitempty"`
	Email      string  `json:"email,omitempty"`
	Confidence float64 `json:"confidence"`
}

// OccupancySnapshot is a point-in-time record of who was present on a floor.
// Snapshots are append-only; correlation only ever reads the latest snapshot
// at or before a detection time.
type OccupancySnapshot struct {
	ID          int64           `json:"id"`
	FloorID     int64           `json:"floor_id"`
	PersonCount int             `json:"person_count"`
	People      []PresentPerson `json:"people"`
	Timestamp   time.Time       `json:"timestamp"`
}

// EmptySnapshot returns the "unknown occupancy" snapshot for a floor
func EmptySnapshot(floorID int64, at time.Time) OccupancySnapshot {
	return OccupancySnapshot{
		FloorID:     floorID,
		PersonCount: 0,
		People:      []PresentPerson{},
		Timestamp:   at,
	}
}

// Employee is a registered person with an optional cached face embedding
type Employee struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Embedding []float64 `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// EmbeddingRecord is the cached identity entry the face matcher scans against
type EmbeddingRecord struct {
	EmployeeID int64
	Name       string
	Embedding  []float64
}

// FaceMatch is a successful identity or duplicate match
type FaceMatch struct {
	EmployeeID int64   `json:"employee_id"`
	Name       string  `json:"name"`
	Similarity float64 `json:"similarity"`
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"firewatch-backend/internal/models"
)

// OccupancyRepository persists the append-only occupancy snapshot series
type OccupancyRepository struct {
	db *sql.DB
}

// NewOccupancyRepository creates an occupancy repository
func NewOccupancyRepository(db *sql.DB) *OccupancyRepository {
	return &OccupancyRepository{db: db}
}

// InsertSnapshot appends a snapshot to the series. The snapshot is mutated
// in place with its generated id.
func (r *OccupancyRepository) InsertSnapshot(ctx context.Context, snapshot *models.OccupancySnapshot) error {
	people, err := json.Marshal(snapshot.People)
	if err != nil {
		return fmt.Errorf("marshal people list: %w", err)
	}

	err = r.db.QueryRowContext(ctx, `
		INSERT INTO occupancy_snapshots (floor_id, person_count, people, taken_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		snapshot.FloorID, snapshot.PersonCount, people, snapshot.Timestamp,
	).Scan(&snapshot.ID)
	if err != nil {
		return fmt.Errorf("insert occupancy snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns the snapshot for a floor with the maximum timestamp
// at or before asOf. Returns ErrNotFound when no snapshot qualifies.
func (r *OccupancyRepository) LatestSnapshot(ctx context.Context, floorID int64, asOf time.Time) (*models.OccupancySnapshot, error) {
	var (
		snapshot models.OccupancySnapshot
		people   []byte
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, floor_id, person_count, people, taken_at
		FROM occupancy_snapshots
		WHERE floor_id = $1 AND taken_at <= $2
		ORDER BY taken_at DESC
		LIMIT 1`,
		floorID, asOf,
	).Scan(&snapshot.ID, &snapshot.FloorID, &snapshot.PersonCount, &people, &snapshot.Timestamp)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("snapshot for floor %d: %w", floorID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("latest snapshot for floor %d: %w", floorID, err)
	}

	if err := json.Unmarshal(people, &snapshot.People); err != nil {
		return nil, fmt.Errorf("unmarshal people list: %w", err)
	}
	return &snapshot, nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"firewatch-backend/internal/models"
)

// FloorsRepository reads floor and camera registrations
type FloorsRepository struct {
	db *sql.DB
}

// NewFloorsRepository creates a floors repository
func NewFloorsRepository(db *sql.DB) *FloorsRepository {
	return &FloorsRepository{db: db}
}

// GetCamera fetches a registered camera by id. Returns ErrNotFound when the
// camera is not registered.
func (r *FloorsRepository) GetCamera(ctx context.Context, id int64) (*models.Camera, error) {
	var (
		camera  models.Camera
		floorID sql.NullInt64
		room    sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, floor_id, room FROM cameras WHERE id = $1`, id,
	).Scan(&camera.ID, &camera.Name, &floorID, &room)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("camera %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get camera %d: %w", id, err)
	}

	camera.FloorID = floorID.Int64
	camera.Room = room.String
	return &camera, nil
}

// FloorExists reports whether a floor with the given id is configured
func (r *FloorsRepository) FloorExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM floors WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("floor exists %d: %w", id, err)
	}
	return exists, nil
}

// CountFloors returns the number of configured floors
func (r *FloorsRepository) CountFloors(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM floors`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count floors: %w", err)
	}
	return count, nil
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"firewatch-backend/internal/models"
)

// AlertsRepository persists alerts and their owning fire events
type AlertsRepository struct {
	db *sql.DB
}

// NewAlertsRepository creates an alerts repository
func NewAlertsRepository(db *sql.DB) *AlertsRepository {
	return &AlertsRepository{db: db}
}

const alertColumns = `
	id, fire_event_id, event_type, severity, floor_id, camera_id, camera_name,
	room_location, confidence, occupancy_count, people, screenshot, status,
	detected_at, acknowledged_at, resolved_at, created_at`

// CreateFireAlert inserts the fire event and its alert in one transaction.
// The event and alert are mutated in place with generated ids and timestamps.
func (r *AlertsRepository) CreateFireAlert(ctx context.Context, event *models.FireEvent, alert *models.Alert) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	bbox, err := marshalBoundingBox(event.BoundingBox)
	if err != nil {
		return err
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO fire_events (floor_id, camera_id, detection_type, confidence, bounding_box, room_location, resolved, detected_at)
		VALUES ($1, $2, $3, $4, $5, $6, false, $7)
		RETURNING id, created_at`,
		event.FloorID, event.CameraID, event.Kind.String(), event.Confidence,
		bbox, event.RoomLocation, event.DetectedAt,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert fire event: %w", err)
	}

	people, err := marshalPeople(alert.People)
	if err != nil {
		return err
	}

	alert.FireEventID = &event.ID
	err = tx.QueryRowContext(ctx, `
		INSERT INTO alerts (fire_event_id, event_type, severity, floor_id, camera_id, camera_name,
			room_location, confidence, occupancy_count, people, screenshot, status, detected_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at`,
		event.ID, alert.EventType, alert.Severity.String(), alert.FloorID, alert.CameraID,
		alert.CameraName, alert.RoomLocation, alert.Confidence, alert.OccupancyCount,
		people, alert.Screenshot, models.AlertStatusActive.String(), alert.DetectedAt,
	).Scan(&alert.ID, &alert.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	alert.Status = models.AlertStatusActive

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit fire alert: %w", err)
	}

	return nil
}

// GetAlert fetches a single alert by id
func (r *AlertsRepository) GetAlert(ctx context.Context, id int64) (*models.Alert, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT`+alertColumns+` FROM alerts WHERE id = $1`, id)

	alert, err := scanAlert(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("alert %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get alert %d: %w", id, err)
	}
	return alert, nil
}

// ListAlerts returns filtered alerts, newest first
func (r *AlertsRepository) ListAlerts(ctx context.Context, filters models.AlertFilters) ([]*models.Alert, error) {
	query := `SELECT` + alertColumns + ` FROM alerts WHERE 1=1`
	args := []interface{}{}

	if filters.Status != nil {
		args = append(args, filters.Status.String())
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filters.EventType != nil {
		args = append(args, *filters.EventType)
		query += fmt.Sprintf(" AND event_type = $%d", len(args))
	}
	if filters.FloorID != nil {
		args = append(args, *filters.FloorID)
		query += fmt.Sprintf(" AND floor_id = $%d", len(args))
	}
	query += " ORDER BY detected_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]*models.Alert, 0)
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

// AcknowledgeAlert marks an active alert as acknowledged. Returns false when
// the alert was not in the active state (no rows updated).
func (r *AlertsRepository) AcknowledgeAlert(ctx context.Context, id int64, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE alerts SET status = $1, acknowledged_at = $2
		WHERE id = $3 AND status = $4`,
		models.AlertStatusAcknowledged.String(), at, id, models.AlertStatusActive.String())
	if err != nil {
		return false, fmt.Errorf("acknowledge alert %d: %w", id, err)
	}
	return oneRowAffected(res), nil
}

// CloseAlert moves an open alert (active or acknowledged) to a terminal
// status and stamps resolved_at. Returns false when the alert was already
// terminal (no rows updated), which callers treat as an idempotent no-op.
func (r *AlertsRepository) CloseAlert(ctx context.Context, id int64, status models.AlertStatus, at time.Time) (bool, error) {
	if !status.IsTerminal() {
		return false, fmt.Errorf("status %s is not terminal", status)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE alerts SET status = $1, resolved_at = $2
		WHERE id = $3 AND status IN ($4, $5)`,
		status.String(), at, id,
		models.AlertStatusActive.String(), models.AlertStatusAcknowledged.String())
	if err != nil {
		return false, fmt.Errorf("close alert %d: %w", id, err)
	}
	return oneRowAffected(res), nil
}

// ResolveFireEvent flips the resolved flag on a fire event
func (r *AlertsRepository) ResolveFireEvent(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE fire_events SET resolved = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("resolve fire event %d: %w", id, err)
	}
	return nil
}

// CountOpenAlertsForEvent returns the number of non-terminal alerts owned by
// a fire event
func (r *AlertsRepository) CountOpenAlertsForEvent(ctx context.Context, fireEventID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM alerts
		WHERE fire_event_id = $1 AND status IN ($2, $3)`,
		fireEventID,
		models.AlertStatusActive.String(), models.AlertStatusAcknowledged.String(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count open alerts for event %d: %w", fireEventID, err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAlert(row rowScanner) (*models.Alert, error) {
	var (
		alert       models.Alert
		fireEventID sql.NullInt64
		cameraName  sql.NullString
		room        sql.NullString
		people      []byte
		screenshot  sql.NullString
		ackedAt     sql.NullTime
		resolvedAt  sql.NullTime
		severity    string
		status      string
	)

	err := row.Scan(
		&alert.ID, &fireEventID, &alert.EventType, &severity, &alert.FloorID,
		&alert.CameraID, &cameraName, &room, &alert.Confidence,
		&alert.OccupancyCount, &people, &screenshot, &status,
		&alert.DetectedAt, &ackedAt, &resolvedAt, &alert.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	alert.People = []models.PresentPerson{}
	if len(people) > 0 {
		if err := json.Unmarshal(people, &alert.People); err != nil {
			return nil, fmt.Errorf("unmarshal alert people list: %w", err)
		}
	}

	alert.Severity = models.Severity(severity)
	alert.Status = models.AlertStatus(status)
	if fireEventID.Valid {
		alert.FireEventID = &fireEventID.Int64
	}
	alert.CameraName = cameraName.String
	alert.RoomLocation = room.String
	alert.Screenshot = screenshot.String
	if ackedAt.Valid {
		t := ackedAt.Time
		alert.AcknowledgedAt = &t
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time
		alert.ResolvedAt = &t
	}
	return &alert, nil
}

func marshalPeople(people []models.PresentPerson) ([]byte, error) {
	if people == nil {
		people = []models.PresentPerson{}
	}
	data, err := json.Marshal(people)
	if err != nil {
		return nil, fmt.Errorf("marshal people list: %w", err)
	}
	return data, nil
}

func marshalBoundingBox(bbox *models.BoundingBox) (interface{}, error) {
	if bbox == nil {
		return nil, nil
	}
	data, err := json.Marshal(bbox)
	if err != nil {
		return nil, fmt.Errorf("marshal bounding box: %w", err)
	}
	return data, nil
}

func oneRowAffected(res sql.Result) bool {
	n, err := res.RowsAffected()
	if err != nil {
		// Drivers that cannot report affected rows are treated as a hit;
		// lib/pq always can, so this path is theoretical.
		log.Warn().Err(err).Msg("RowsAffected unsupported by driver")
		return true
	}
	return n > 0
}

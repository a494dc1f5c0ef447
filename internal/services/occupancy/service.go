package occupancy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"firewatch-backend/internal/models"
	"firewatch-backend/internal/repository"
)

// SnapshotStore persists and reads the occupancy snapshot series
type SnapshotStore interface {
	InsertSnapshot(ctx context.Context, snapshot *models.OccupancySnapshot) error
	LatestSnapshot(ctx context.Context, floorID int64, asOf time.Time) (*models.OccupancySnapshot, error)
}

// EmployeeDirectory resolves employee ids to names and emails
type EmployeeDirectory interface {
	GetEmployeesByIDs(ctx context.Context, ids []int64) (map[int64]*models.Employee, error)
}

// FloorChecker validates that a floor is registered
type FloorChecker interface {
	FloorExists(ctx context.Context, id int64) (bool, error)
}

// Notifier receives snapshots after they are persisted
type Notifier interface {
	OccupancyChanged(snapshot *models.OccupancySnapshot)
}

// ErrUnknownFloor means a snapshot referenced a floor that is not registered
var ErrUnknownFloor = errors.New("unknown floor")

// Service ingests occupancy snapshots and correlates them with detections.
// Snapshots are append-only; correlation never sees a snapshot newer than the
// detection it serves.
type Service struct {
	store     SnapshotStore
	directory EmployeeDirectory
	floors    FloorChecker
	notifier  Notifier
}

func NewService(store SnapshotStore, directory EmployeeDirectory, floors FloorChecker, notifier Notifier) *Service {
	return &Service{
		store:     store,
		directory: directory,
		floors:    floors,
		notifier:  notifier,
	}
}

// Ingest appends a snapshot and broadcasts the change. The person count is
// always derived from the people list, overriding whatever the reporter sent.
func (s *Service) Ingest(ctx context.Context, snapshot *models.OccupancySnapshot) error {
	exists, err := s.floors.FloorExists(ctx, snapshot.FloorID)
	if err != nil {
		return fmt.Errorf("check floor %d: %w", snapshot.FloorID, err)
	}
	if !exists {
		return fmt.Errorf("floor %d: %w", snapshot.FloorID, ErrUnknownFloor)
	}

	if snapshot.People == nil {
		snapshot.People = []models.PresentPerson{}
	}
	snapshot.PersonCount = len(snapshot.People)
	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = time.Now().UTC()
	}

	if err := s.store.InsertSnapshot(ctx, snapshot); err != nil {
		return err
	}

	log.Info().
		Int64("floor_id", snapshot.FloorID).
		Int("person_count", snapshot.PersonCount).
		Time("taken_at", snapshot.Timestamp).
		Msg("Occupancy snapshot recorded")

	s.notifier.OccupancyChanged(snapshot)
	return nil
}

// Correlate returns the occupancy state of a floor as of a detection time:
// the latest snapshot taken at or before asOf with employee identities filled
// in, or the empty snapshot when none exists. Missing data reads as "nobody
// known to be present", never as an error.
func (s *Service) Correlate(ctx context.Context, floorID int64, asOf time.Time) (*models.OccupancySnapshot, error) {
	snapshot, err := s.store.LatestSnapshot(ctx, floorID, asOf)
	if errors.Is(err, repository.ErrNotFound) {
		empty := models.EmptySnapshot(floorID, asOf)
		return &empty, nil
	}
	if err != nil {
		return nil, err
	}
	if err := s.enrich(ctx, snapshot); err != nil {
		// Enrichment is best effort: a directory failure degrades the
		// snapshot to bare track ids rather than failing correlation
		log.Warn().Err(err).Int64("floor_id", floorID).Msg("Failed to enrich occupancy snapshot")
	}
	return snapshot, nil
}

// Live returns the current occupancy of a floor with employee identities
// filled in from the directory.
func (s *Service) Live(ctx context.Context, floorID int64) (*models.OccupancySnapshot, error) {
	exists, err := s.floors.FloorExists(ctx, floorID)
	if err != nil {
		return nil, fmt.Errorf("check floor %d: %w", floorID, err)
	}
	if !exists {
		return nil, fmt.Errorf("floor %d: %w", floorID, ErrUnknownFloor)
	}

	return s.Correlate(ctx, floorID, time.Now().UTC())
}

// enrich fills Name and Email on identified people from the directory
func (s *Service) enrich(ctx context.Context, snapshot *models.OccupancySnapshot) error {
	ids := make([]int64, 0, len(snapshot.People))
	for _, person := range snapshot.People {
		if person.EmployeeID != nil {
			ids = append(ids, *person.EmployeeID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	employees, err := s.directory.GetEmployeesByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range snapshot.People {
		person := &snapshot.People[i]
		if person.EmployeeID == nil {
			continue
		}
		if employee, ok := employees[*person.EmployeeID]; ok {
			person.Name = employee.Name
			person.Email = employee.Email
		}
	}
	return nil
}

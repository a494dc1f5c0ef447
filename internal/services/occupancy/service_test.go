package occupancy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firewatch-backend/internal/models"
	"firewatch-backend/internal/repository"
)

type fakeStore struct {
	snapshots []*models.OccupancySnapshot
}

func (s *fakeStore) InsertSnapshot(_ context.Context, snapshot *models.OccupancySnapshot) error {
	snapshot.ID = int64(len(s.snapshots) + 1)
	s.snapshots = append(s.snapshots, snapshot)
	return nil
}

func (s *fakeStore) LatestSnapshot(_ context.Context, floorID int64, asOf time.Time) (*models.OccupancySnapshot, error) {
	var best *models.OccupancySnapshot
	for _, snap := range s.snapshots {
		if snap.FloorID != floorID || snap.Timestamp.After(asOf) {
			continue
		}
		if best == nil || snap.Timestamp.After(best.Timestamp) {
			best = snap
		}
	}
	if best == nil {
		return nil, repository.ErrNotFound
	}
	copied := *best
	return &copied, nil
}

type fakeDirectory struct {
	employees map[int64]*models.Employee
	err       error
}

func (d *fakeDirectory) GetEmployeesByIDs(_ context.Context, ids []int64) (map[int64]*models.Employee, error) {
	if d.err != nil {
		return nil, d.err
	}
	result := make(map[int64]*models.Employee)
	for _, id := range ids {
		if e, ok := d.employees[id]; ok {
			result[id] = e
		}
	}
	return result, nil
}

type fakeFloors struct {
	floors map[int64]bool
}

func (f *fakeFloors) FloorExists(_ context.Context, id int64) (bool, error) {
	return f.floors[id], nil
}

type fakeNotifier struct {
	changed []*models.OccupancySnapshot
}

func (n *fakeNotifier) OccupancyChanged(snapshot *models.OccupancySnapshot) {
	n.changed = append(n.changed, snapshot)
}

func newService() (*Service, *fakeStore, *fakeNotifier) {
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	svc := NewService(store, &fakeDirectory{}, &fakeFloors{floors: map[int64]bool{2: true}}, notifier)
	return svc, store, notifier
}

func at(min int) time.Time {
	return time.Date(2025, 6, 1, 12, min, 0, 0, time.UTC)
}

func TestIngest_DerivesCountAndBroadcasts(t *testing.T) {
	svc, store, notifier := newService()

	snapshot := &models.OccupancySnapshot{
		FloorID:     2,
		PersonCount: 99, // reporter-supplied count is ignored
		People: []models.PresentPerson{
			{TrackID: "t1", Confidence: 0.9},
			{TrackID: "t2", Confidence: 0.8},
		},
		Timestamp: at(0),
	}
	require.NoError(t, svc.Ingest(context.Background(), snapshot))

	assert.Equal(t, 2, snapshot.PersonCount)
	require.Len(t, store.snapshots, 1)
	require.Len(t, notifier.changed, 1)
	assert.Equal(t, snapshot, notifier.changed[0])
}

func TestIngest_UnknownFloorRejected(t *testing.T) {
	svc, store, _ := newService()

	err := svc.Ingest(context.Background(), &models.OccupancySnapshot{FloorID: 9, Timestamp: at(0)})
	assert.ErrorIs(t, err, ErrUnknownFloor)
	assert.Empty(t, store.snapshots)
}

func TestCorrelate_ReturnsLatestAtOrBeforeDetection(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	for min, count := range map[int]int{0: 1, 10: 3, 20: 5} {
		people := make([]models.PresentPerson, count)
		require.NoError(t, svc.Ingest(ctx, &models.OccupancySnapshot{
			FloorID: 2, People: people, Timestamp: at(min),
		}))
	}

	snapshot, err := svc.Correlate(ctx, 2, at(15))
	require.NoError(t, err)
	assert.Equal(t, 3, snapshot.PersonCount)
	assert.Equal(t, at(10), snapshot.Timestamp)
}

func TestCorrelate_SnapshotAtExactDetectionTimeQualifies(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	require.NoError(t, svc.Ingest(ctx, &models.OccupancySnapshot{
		FloorID: 2, People: []models.PresentPerson{{TrackID: "t1"}}, Timestamp: at(10),
	}))

	snapshot, err := svc.Correlate(ctx, 2, at(10))
	require.NoError(t, err)
	assert.Equal(t, 1, snapshot.PersonCount)
}

func TestCorrelate_NoSnapshotsYieldsEmpty(t *testing.T) {
	svc, _, _ := newService()

	snapshot, err := svc.Correlate(context.Background(), 2, at(0))
	require.NoError(t, err)
	assert.Equal(t, 0, snapshot.PersonCount)
	assert.NotNil(t, snapshot.People)
	assert.Empty(t, snapshot.People)
}

func TestCorrelate_EnrichesIdentifiedPeople(t *testing.T) {
	store := &fakeStore{}
	directory := &fakeDirectory{employees: map[int64]*models.Employee{
		5: {ID: 5, Name: "Ada Lovelace", Email: "ada@example.com"},
	}}
	svc := NewService(store, directory, &fakeFloors{floors: map[int64]bool{2: true}}, &fakeNotifier{})
	ctx := context.Background()

	employeeID := int64(5)
	require.NoError(t, svc.Ingest(ctx, &models.OccupancySnapshot{
		FloorID: 2,
		People: []models.PresentPerson{
			{TrackID: "t1", EmployeeID: &employeeID, Confidence: 0.92},
			{TrackID: "t2", Confidence: 0.4},
		},
		Timestamp: at(0),
	}))

	snapshot, err := svc.Correlate(ctx, 2, at(5))
	require.NoError(t, err)
	require.Len(t, snapshot.People, 2)
	assert.Equal(t, "Ada Lovelace", snapshot.People[0].Name)
	assert.Equal(t, "ada@example.com", snapshot.People[0].Email)
	assert.Empty(t, snapshot.People[1].Name, "unidentified tracks stay bare")
}

func TestCorrelate_DirectoryFailureDegradesToBareTracks(t *testing.T) {
	store := &fakeStore{}
	directory := &fakeDirectory{err: assert.AnError}
	svc := NewService(store, directory, &fakeFloors{floors: map[int64]bool{2: true}}, &fakeNotifier{})
	ctx := context.Background()

	employeeID := int64(5)
	require.NoError(t, svc.Ingest(ctx, &models.OccupancySnapshot{
		FloorID:   2,
		People:    []models.PresentPerson{{TrackID: "t1", EmployeeID: &employeeID}},
		Timestamp: at(0),
	}))

	snapshot, err := svc.Correlate(ctx, 2, at(5))
	require.NoError(t, err)
	require.Len(t, snapshot.People, 1)
	assert.Empty(t, snapshot.People[0].Name)
}

func TestLive_EnrichesIdentifiedPeople(t *testing.T) {
	store := &fakeStore{}
	directory := &fakeDirectory{employees: map[int64]*models.Employee{
		5: {ID: 5, Name: "Ada Lovelace", Email: "ada@example.com"},
	}}
	notifier := &fakeNotifier{}
	svc := NewService(store, directory, &fakeFloors{floors: map[int64]bool{2: true}}, notifier)

	employeeID := int64(5)
	require.NoError(t, svc.Ingest(context.Background(), &models.OccupancySnapshot{
		FloorID: 2,
		People: []models.PresentPerson{
			{TrackID: "t1", EmployeeID: &employeeID, Confidence: 0.92},
			{TrackID: "t2", Confidence: 0.4},
		},
		Timestamp: at(0),
	}))

	snapshot, err := svc.Live(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, snapshot.People, 2)
	assert.Equal(t, "Ada Lovelace", snapshot.People[0].Name)
	assert.Equal(t, "ada@example.com", snapshot.People[0].Email)
	assert.Empty(t, snapshot.People[1].Name)
}

func TestLive_UnknownFloorRejected(t *testing.T) {
	svc, _, _ := newService()

	_, err := svc.Live(context.Background(), 9)
	assert.ErrorIs(t, err, ErrUnknownFloor)
}

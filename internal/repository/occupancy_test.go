package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firewatch-backend/internal/models"
)

func newOccupancyRepo(t *testing.T) (*OccupancyRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewOccupancyRepository(db), mock
}

func TestInsertSnapshot_MarshalsPeopleAsJSON(t *testing.T) {
	repo, mock := newOccupancyRepo(t)
	takenAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO occupancy_snapshots").
		WithArgs(int64(2), 1, []byte(`[{"track_id":"t1","confidence":0.9}]`), takenAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))

	snapshot := &models.OccupancySnapshot{
		FloorID:     2,
		PersonCount: 1,
		People:      []models.PresentPerson{{TrackID: "t1", Confidence: 0.9}},
		Timestamp:   takenAt,
	}
	require.NoError(t, repo.InsertSnapshot(context.Background(), snapshot))
	assert.Equal(t, int64(5), snapshot.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestSnapshot_ReturnsNewestAtOrBefore(t *testing.T) {
	repo, mock := newOccupancyRepo(t)
	asOf := time.Date(2025, 6, 1, 12, 15, 0, 0, time.UTC)
	takenAt := time.Date(2025, 6, 1, 12, 10, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT id, floor_id, person_count, people, taken_at").
		WithArgs(int64(2), asOf).
		WillReturnRows(sqlmock.NewRows([]string{"id", "floor_id", "person_count", "people", "taken_at"}).
			AddRow(int64(5), int64(2), 2, []byte(`[{"track_id":"t1","confidence":0.9},{"track_id":"t2","confidence":0.8}]`), takenAt))

	snapshot, err := repo.LatestSnapshot(context.Background(), 2, asOf)
	require.NoError(t, err)
	assert.Equal(t, 2, snapshot.PersonCount)
	assert.Equal(t, takenAt, snapshot.Timestamp)
	require.Len(t, snapshot.People, 2)
	assert.Equal(t, "t1", snapshot.People[0].TrackID)
}

func TestLatestSnapshot_NoneIsNotFound(t *testing.T) {
	repo, mock := newOccupancyRepo(t)

	mock.ExpectQuery("SELECT id, floor_id, person_count, people, taken_at").
		WillReturnRows(sqlmock.NewRows([]string{"id", "floor_id", "person_count", "people", "taken_at"}))

	_, err := repo.LatestSnapshot(context.Background(), 2, time.Now().UTC())
	assert.ErrorIs(t, err, ErrNotFound)
}

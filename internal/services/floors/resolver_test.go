package floors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firewatch-backend/internal/models"
	"firewatch-backend/internal/repository"
)

type stubSource struct {
	cameras map[int64]*models.Camera
	floors  map[int64]bool
}

func (s *stubSource) GetCamera(_ context.Context, id int64) (*models.Camera, error) {
	if c, ok := s.cameras[id]; ok {
		return c, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubSource) FloorExists(_ context.Context, id int64) (bool, error) {
	return s.floors[id], nil
}

func (s *stubSource) CountFloors(_ context.Context) (int, error) {
	return len(s.floors), nil
}

func report(cameraID, floorID int64) *models.DetectionReport {
	return &models.DetectionReport{
		CameraID:   cameraID,
		FloorID:    floorID,
		Kind:       models.DetectionKindFire,
		Confidence: 0.9,
		Screenshot: "fire.jpg",
	}
}

func TestResolve_CameraFloorWinsOverReport(t *testing.T) {
	r := NewResolver(&stubSource{
		cameras: map[int64]*models.Camera{7: {ID: 7, FloorID: 3}},
		floors:  map[int64]bool{2: true, 3: true},
	})

	floorID, err := r.Resolve(context.Background(), report(7, 2))
	require.NoError(t, err)
	assert.Equal(t, int64(3), floorID)
}

func TestResolve_UnregisteredCameraFallsBackToReportFloor(t *testing.T) {
	r := NewResolver(&stubSource{
		cameras: map[int64]*models.Camera{},
		floors:  map[int64]bool{2: true},
	})

	floorID, err := r.Resolve(context.Background(), report(99, 2))
	require.NoError(t, err)
	assert.Equal(t, int64(2), floorID)
}

func TestResolve_CameraWithoutFloorFallsBackToReportFloor(t *testing.T) {
	r := NewResolver(&stubSource{
		cameras: map[int64]*models.Camera{7: {ID: 7, FloorID: 0}},
		floors:  map[int64]bool{2: true},
	})

	floorID, err := r.Resolve(context.Background(), report(7, 2))
	require.NoError(t, err)
	assert.Equal(t, int64(2), floorID)
}

func TestResolve_NoFloorsConfigured(t *testing.T) {
	r := NewResolver(&stubSource{
		cameras: map[int64]*models.Camera{},
		floors:  map[int64]bool{},
	})

	_, err := r.Resolve(context.Background(), report(99, 2))
	assert.ErrorIs(t, err, ErrNoFloorsConfigured)
}

func TestResolve_UnknownReportFloorWithFloorsConfigured(t *testing.T) {
	r := NewResolver(&stubSource{
		cameras: map[int64]*models.Camera{},
		floors:  map[int64]bool{5: true},
	})

	_, err := r.Resolve(context.Background(), report(99, 2))
	assert.ErrorIs(t, err, ErrNoFloorsConfigured)
}

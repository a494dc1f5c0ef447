package facematch

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firewatch-backend/internal/config"
	"firewatch-backend/internal/models"
)

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float64{1, 2, 3}, []float64{1, 2, 3}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float64{1, 0}, []float64{-1, 0}), 1e-9)
}

func TestCosineSimilarity_DefensiveCases(t *testing.T) {
	// Zero magnitude and mismatched dimensions are non-matches, not errors
	assert.Equal(t, 0.0, CosineSimilarity([]float64{0, 0, 0}, []float64{1, 2, 3}))
	assert.Equal(t, 0.0, CosineSimilarity([]float64{1, 2}, []float64{1, 2, 3}))
	assert.Equal(t, 0.0, CosineSimilarity(nil, nil))
}

// candidatesWithSimilarities builds unit vectors with known cosine
// similarity to the query direction (1, 0): similarity s -> (s, sqrt(1-s^2))
func candidatesWithSimilarities(sims []float64) []models.EmbeddingRecord {
	records := make([]models.EmbeddingRecord, len(sims))
	for i, s := range sims {
		records[i] = models.EmbeddingRecord{
			EmployeeID: int64(i + 1),
			Name:       "employee",
			Embedding:  []float64{s, orthogonal(s)},
		}
	}
	return records
}

func orthogonal(s float64) float64 {
	return math.Sqrt(1 - s*s)
}

func TestIdentify_PicksBestAboveThreshold(t *testing.T) {
	query := []float64{1, 0}
	candidates := candidatesWithSimilarities([]float64{0.91, 0.68, 0.72})

	match := Identify(query, candidates, 0.7)

	require.NotNil(t, match)
	assert.Equal(t, int64(1), match.EmployeeID)
	assert.InDelta(t, 0.91, match.Similarity, 1e-6)
}

func TestIdentify_NoMatchBelowThreshold(t *testing.T) {
	query := []float64{1, 0}
	candidates := candidatesWithSimilarities([]float64{0.5, 0.6})

	assert.Nil(t, Identify(query, candidates, 0.7))
}

func TestIdentify_EmptyCandidates(t *testing.T) {
	assert.Nil(t, Identify([]float64{1, 0}, nil, 0.7))
}

func TestFindDuplicate_StopsAtFirstHit(t *testing.T) {
	query := []float64{1, 0}
	candidates := candidatesWithSimilarities([]float64{0.3, 0.65, 0.95})

	match := FindDuplicate(query, candidates, 0.6)

	require.NotNil(t, match)
	// First qualifying candidate wins even though a better one follows
	assert.Equal(t, int64(2), match.EmployeeID)
}

func TestFindDuplicate_ThresholdInclusive(t *testing.T) {
	query := []float64{1, 0}
	candidates := candidatesWithSimilarities([]float64{0.6})

	assert.NotNil(t, FindDuplicate(query, candidates, 0.6))
	assert.Nil(t, FindDuplicate(query, candidates, 0.7))
}

type stubSource struct {
	records []models.EmbeddingRecord
	err     error
}

func (s *stubSource) ListEmbeddings(ctx context.Context) ([]models.EmbeddingRecord, error) {
	return s.records, s.err
}

func TestService_RefreshAndIdentify(t *testing.T) {
	cfg := &config.Config{IdentifyThreshold: 0.7, DuplicateThreshold: 0.6}
	source := &stubSource{records: candidatesWithSimilarities([]float64{0.95})}
	svc := NewService(cfg, source)

	require.NoError(t, svc.Refresh(context.Background()))
	assert.Equal(t, 1, svc.CachedCount())

	match := svc.Identify([]float64{1, 0})
	require.NotNil(t, match)
	assert.Equal(t, int64(1), match.EmployeeID)

	assert.NotNil(t, svc.FindDuplicate([]float64{1, 0}))
}

func TestService_RefreshFailureKeepsCache(t *testing.T) {
	cfg := &config.Config{IdentifyThreshold: 0.7}
	source := &stubSource{records: candidatesWithSimilarities([]float64{0.95})}
	svc := NewService(cfg, source)

	require.NoError(t, svc.Refresh(context.Background()))
	source.err = assert.AnError

	require.Error(t, svc.Refresh(context.Background()))
	assert.Equal(t, 1, svc.CachedCount(), "failed refresh must keep the previous cache")
}

package facematch

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"firewatch-backend/internal/config"
	"firewatch-backend/internal/models"
)

// EmbeddingSource loads the registered identity records
type EmbeddingSource interface {
	ListEmbeddings(ctx context.Context) ([]models.EmbeddingRecord, error)
}

// Service matches face embeddings against a cached set of registered
// identities. The cache is refreshed periodically; matching itself is pure
// in-memory computation.
type Service struct {
	cfg    *config.Config
	source EmbeddingSource

	mu    sync.RWMutex
	cache []models.EmbeddingRecord
}

// NewService creates a face matcher over the given embedding source
func NewService(cfg *config.Config, source EmbeddingSource) *Service {
	return &Service{cfg: cfg, source: source}
}

// CosineSimilarity computes dot(a,b) / (|a| * |b|). Returns 0 for zero-magnitude
// or dimension-mismatched vectors; bad input is a non-match, not an error.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Identify scans all candidates and returns the single best match strictly
// above the threshold, or nil when nothing qualifies. Ties keep the
// first-seen candidate; candidates are in stable id order.
func Identify(embedding []float64, candidates []models.EmbeddingRecord, threshold float64) *models.FaceMatch {
	var best *models.FaceMatch
	for _, candidate := range candidates {
		similarity := CosineSimilarity(embedding, candidate.Embedding)
		if similarity <= threshold {
			continue
		}
		if best == nil || similarity > best.Similarity {
			best = &models.FaceMatch{
				EmployeeID: candidate.EmployeeID,
				Name:       candidate.Name,
				Similarity: similarity,
			}
		}
	}
	return best
}

// FindDuplicate returns the first candidate whose similarity reaches the
// threshold. Used to block double-registration of the same face under a
// different identity, so it short-circuits instead of hunting for the best.
func FindDuplicate(embedding []float64, candidates []models.EmbeddingRecord, threshold float64) *models.FaceMatch {
	for _, candidate := range candidates {
		similarity := CosineSimilarity(embedding, candidate.Embedding)
		if similarity >= threshold {
			return &models.FaceMatch{
				EmployeeID: candidate.EmployeeID,
				Name:       candidate.Name,
				Similarity: similarity,
			}
		}
	}
	return nil
}

// Identify matches an embedding against the cached identity set using the
// configured identification threshold
func (s *Service) Identify(embedding []float64) *models.FaceMatch {
	return Identify(embedding, s.snapshot(), s.cfg.IdentifyThreshold)
}

// FindDuplicate checks the cached identity set for an already-registered
// face using the configured duplicate-detection threshold
func (s *Service) FindDuplicate(embedding []float64) *models.FaceMatch {
	return FindDuplicate(embedding, s.snapshot(), s.cfg.DuplicateThreshold)
}

// Refresh reloads the embedding cache from the source
func (s *Service) Refresh(ctx context.Context) error {
	records, err := s.source.ListEmbeddings(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cache = records
	s.mu.Unlock()

	log.Debug().Int("embeddings", len(records)).Msg("Embedding cache refreshed")
	return nil
}

// Run refreshes the cache on the configured interval until the context is
// cancelled. A failed refresh keeps the previous cache.
func (s *Service) Run(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("Initial embedding cache load failed")
	}

	ticker := time.NewTicker(s.cfg.EmbeddingRefresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				log.Warn().Err(err).Msg("Embedding cache refresh failed")
			}
		}
	}
}

func (s *Service) snapshot() []models.EmbeddingRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache
}

// CachedCount returns the number of cached identity records
func (s *Service) CachedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}

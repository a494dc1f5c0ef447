package severity

import (
	"firewatch-backend/internal/config"
	"firewatch-backend/internal/models"
)

// Classifier derives an alert's severity tier from detection confidence and
// correlated occupancy. Classification is pure and happens exactly once, at
// alert creation; the result is never recomputed.
type Classifier struct {
	low    float64
	medium float64
	high   float64
}

// NewClassifier creates a classifier with the configured thresholds
func NewClassifier(cfg *config.Config) *Classifier {
	return &Classifier{
		low:    cfg.SeverityLowThreshold,
		medium: cfg.SeverityMediumThreshold,
		high:   cfg.SeverityHighThreshold,
	}
}

// Classify maps (confidence, occupancy) to a severity tier. Thresholds are
// inclusive lower bounds; critical additionally requires people on the floor.
func (c *Classifier) Classify(confidence float64, occupancyCount int) models.Severity {
	switch {
	case confidence >= c.high && occupancyCount > 0:
		return models.SeverityCritical
	case confidence >= c.medium:
		return models.SeverityHigh
	case confidence >= c.low:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

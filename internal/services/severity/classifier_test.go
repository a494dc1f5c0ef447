package severity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"firewatch-backend/internal/config"
	"firewatch-backend/internal/models"
)

func newClassifier() *Classifier {
	return NewClassifier(&config.Config{
		SeverityLowThreshold:    0.5,
		SeverityMediumThreshold: 0.7,
		SeverityHighThreshold:   0.9,
	})
}

func TestClassify(t *testing.T) {
	c := newClassifier()

	tests := []struct {
		name       string
		confidence float64
		occupancy  int
		want       models.Severity
	}{
		{"high confidence with people is critical", 0.95, 3, models.SeverityCritical},
		{"high confidence on empty floor is high", 0.95, 0, models.SeverityHigh},
		{"medium band is high", 0.75, 0, models.SeverityHigh},
		{"low band is medium", 0.55, 0, models.SeverityMedium},
		{"below all thresholds is low", 0.2, 0, models.SeverityLow},
		{"occupancy alone never escalates", 0.2, 10, models.SeverityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.confidence, tt.occupancy))
		})
	}
}

func TestClassify_BoundariesInclusive(t *testing.T) {
	c := newClassifier()

	assert.Equal(t, models.SeverityCritical, c.Classify(0.9, 1))
	assert.Equal(t, models.SeverityHigh, c.Classify(0.9, 0))
	assert.Equal(t, models.SeverityHigh, c.Classify(0.7, 0))
	assert.Equal(t, models.SeverityMedium, c.Classify(0.5, 5))
}

package context

import (
	"testing"

	"github.com/deepakdgupta1/knowcode/internal/model"
)

// Regression table for the calibrated sufficiency-score weights, per
// spec §9's instruction to pin (query shape, expected score band) pairs.
func TestSufficiencyScoreCalibration(t *testing.T) {
	tests := []struct {
		name      string
		entities  []model.ScoredEntity
		total     int
		max       int
		truncated bool
		minScore  float64
		maxScore  float64
	}{
		{
			name:     "single entity fully matched within budget",
			entities: []model.ScoredEntity{{EntityID: "a", Score: topPossibleFusedScore}},
			total:    500,
			max:      1000,
			minScore: 0.88,
			maxScore: 1.0,
		},
		{
			name:      "weak retrieval with heavy truncation",
			entities:  []model.ScoredEntity{{EntityID: "a", Score: topPossibleFusedScore * 0.1}},
			total:     900,
			max:       1000,
			truncated: true,
			minScore:  0,
			maxScore:  0.5,
		},
		{
			name:     "no entities found",
			entities: nil,
			total:    0,
			max:      1000,
			minScore: 0,
			maxScore: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sufficiencyScore(tt.entities, tt.total, tt.max, tt.truncated)
			if got < tt.minScore || got > tt.maxScore {
				t.Errorf("sufficiencyScore() = %v, want in [%v, %v]", got, tt.minScore, tt.maxScore)
			}
		})
	}
}

func TestSufficiencyScoreMonotoneInBudgetFill(t *testing.T) {
	entities := []model.ScoredEntity{{EntityID: "a", Score: topPossibleFusedScore}}
	low := sufficiencyScore(entities, 100, 1000, false)
	high := sufficiencyScore(entities, 900, 1000, false)
	if high < low {
		t.Errorf("expected higher budget_fill to not decrease score: low=%v high=%v", low, high)
	}
}

package context

import (
	"github.com/deepakdgupta1/knowcode/internal/hybrid"
	"github.com/deepakdgupta1/knowcode/internal/model"
)

// topPossibleFusedScore is the RRF score a chunk gets for ranking first in
// both the lexical and dense lists — the ceiling real fused scores approach
// asymptotically. retrieval_score_mean is normalized against it so the
// tiny raw RRF magnitudes (fractions of 1/k) still map onto a [0,1] signal.
var topPossibleFusedScore = 1.0 / float64(hybrid.DefaultK+1)

// Sufficiency score weights, calibrated so that (i) a query matching one
// entity fully within budget scores >= 0.88, and (ii) a query with weak
// retrieval and heavy truncation scores < 0.5, per spec §4.11/§9. Exposed
// as named constants so the calibration surface is explicit and testable.
const (
	weightRetrievalScore    = 0.75
	weightEntityCoverage    = 0.15
	weightBudgetFill        = 0.25
	weightTruncationPenalty = 0.45
)

// coverageSaturationEntities is the entity count beyond which additional
// selected entities stop increasing entity_coverage; a single fully-
// matching entity already counts as partial coverage toward this ceiling.
const coverageSaturationEntities = 3

// sufficiencyScore computes s = clamp(0,1, w1*retrieval_score_mean +
// w2*entity_coverage + w3*budget_fill - w4*truncation_penalty).
func sufficiencyScore(entities []model.ScoredEntity, totalTokens, maxTokens int, truncated bool) float64 {
	if len(entities) == 0 {
		return 0
	}

	var scoreSum float64
	for _, e := range entities {
		scoreSum += clamp01(e.Score / topPossibleFusedScore)
	}
	retrievalScoreMean := scoreSum / float64(len(entities))

	entityCoverage := clamp01(float64(len(entities)) / coverageSaturationEntities)

	budgetFill := 0.0
	if maxTokens > 0 {
		budgetFill = clamp01(float64(totalTokens) / float64(maxTokens))
	}

	truncationPenalty := 0.0
	if truncated {
		truncationPenalty = 1.0
	}

	s := weightRetrievalScore*retrievalScoreMean +
		weightEntityCoverage*entityCoverage +
		weightBudgetFill*budgetFill -
		weightTruncationPenalty*truncationPenalty

	return clamp01(s)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

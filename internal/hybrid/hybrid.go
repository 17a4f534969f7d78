// Package hybrid fuses lexical and dense retrieval result lists with
// Reciprocal Rank Fusion, optionally refining the fused order with an
// external reranker.
package hybrid

import (
	"context"
	"sort"

	"github.com/deepakdgupta1/knowcode/internal/lexical"
	"github.com/deepakdgupta1/knowcode/internal/vectorindex"
)

// DefaultK is the RRF rank-damping constant used by convention.
const DefaultK = 60

// Alpha is the blend weight for dense vs sparse contributions; 0.5 weights
// both lists equally, matching the reference implementation's default.
const Alpha = 0.5

// Result is one fused chunk, carrying both the fused score and, if a
// reranker ran, the reranked score for observability.
type Result struct {
	ChunkID     string
	FusedScore  float64
	RerankScore float64
	Reranked    bool
}

// Reranker is the pluggable cross-encoder query-document scorer capability.
// Implementations score each (query, documentText) pair; a failed or
// unavailable reranker must not block fusion — callers fall back to the
// fused order.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []RerankCandidate) ([]float64, error)
}

// RerankCandidate is one fused chunk offered to a Reranker, carrying the
// text the reranker scores against the query.
type RerankCandidate struct {
	ChunkID string
	Text    string
}

// Fuse combines lexical and dense hit lists into a single ranked list using
// RRF with constant k: score(chunk) = Σ 1/(k + rank_i) over every list the
// chunk appears in, weighted by Alpha between the dense and sparse lists.
func Fuse(lexicalHits []lexical.Hit, denseHits []vectorindex.Hit, k int) []Result {
	if k <= 0 {
		k = DefaultK
	}
	scores := make(map[string]float64)
	order := make([]string, 0, len(lexicalHits)+len(denseHits))

	for rank, hit := range lexicalHits {
		if _, seen := scores[hit.ChunkID]; !seen {
			order = append(order, hit.ChunkID)
		}
		scores[hit.ChunkID] += (1 - Alpha) / float64(k+rank+1)
	}
	for rank, hit := range denseHits {
		if _, seen := scores[hit.ChunkID]; !seen {
			order = append(order, hit.ChunkID)
		}
		scores[hit.ChunkID] += Alpha / float64(k+rank+1)
	}

	results := make([]Result, 0, len(order))
	for _, chunkID := range order {
		results = append(results, Result{ChunkID: chunkID, FusedScore: scores[chunkID]})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].FusedScore != results[j].FusedScore {
			return results[i].FusedScore > results[j].FusedScore
		}
		return results[i].ChunkID < results[j].ChunkID
	})
	return results
}

// Rerank applies a Reranker to the top-M fused results. On any error, or
// when reranker is nil, the fused order is returned unchanged — reranking
// is an optional refinement, never a hard dependency.
func Rerank(ctx context.Context, reranker Reranker, query string, fused []Result, candidateText map[string]string, topM int) []Result {
	if reranker == nil || len(fused) == 0 {
		return fused
	}
	if topM <= 0 || topM > len(fused) {
		topM = len(fused)
	}

	window := fused[:topM]
	candidates := make([]RerankCandidate, len(window))
	for i, r := range window {
		candidates[i] = RerankCandidate{ChunkID: r.ChunkID, Text: candidateText[r.ChunkID]}
	}

	scores, err := reranker.Rerank(ctx, query, candidates)
	if err != nil || len(scores) != len(window) {
		return fused
	}

	reranked := make([]Result, topM)
	for i, r := range window {
		reranked[i] = Result{ChunkID: r.ChunkID, FusedScore: r.FusedScore, RerankScore: scores[i], Reranked: true}
	}
	sort.Slice(reranked, func(i, j int) bool {
		if reranked[i].RerankScore != reranked[j].RerankScore {
			return reranked[i].RerankScore > reranked[j].RerankScore
		}
		return reranked[i].ChunkID < reranked[j].ChunkID
	})

	out := make([]Result, 0, len(fused))
	out = append(out, reranked...)
	out = append(out, fused[topM:]...)
	return out
}

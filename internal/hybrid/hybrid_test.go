package hybrid

import (
	"context"
	"errors"
	"testing"

	"github.com/deepakdgupta1/knowcode/internal/lexical"
	"github.com/deepakdgupta1/knowcode/internal/vectorindex"
)

func TestFuseRanksChunkInBothListsHighest(t *testing.T) {
	lex := []lexical.Hit{{ChunkID: "a", Score: 5}, {ChunkID: "b", Score: 4}, {ChunkID: "c", Score: 3}}
	dense := []vectorindex.Hit{{ChunkID: "b", Distance: 0.1}, {ChunkID: "a", Distance: 0.2}}

	results := Fuse(lex, dense, DefaultK)
	if len(results) != 3 {
		t.Fatalf("expected 3 fused results, got %d", len(results))
	}
	// a and b each appear in both lists (ranks 0 and 1, swapped), so each
	// scores 0.5/61 + 0.5/62; c appears only in the lexical list (0.5/63)
	// and must rank below both.
	scoreOf := func(id string) float64 {
		for _, r := range results {
			if r.ChunkID == id {
				return r.FusedScore
			}
		}
		return -1
	}
	if scoreOf("a") <= 0 || scoreOf("b") <= 0 {
		t.Fatalf("expected both chunks to have positive fused scores: %+v", results)
	}
	if results[2].ChunkID != "c" {
		t.Fatalf("expected single-list chunk c to rank below chunks in both lists, got %+v", results)
	}
}

func TestFuseOnlyInOneListStillIncluded(t *testing.T) {
	lex := []lexical.Hit{{ChunkID: "only-lexical", Score: 1}}
	results := Fuse(lex, nil, DefaultK)
	if len(results) != 1 || results[0].ChunkID != "only-lexical" {
		t.Fatalf("expected lexical-only chunk to survive fusion, got %+v", results)
	}
}

type stubReranker struct {
	scores []float64
	err    error
}

func (s stubReranker) Rerank(ctx context.Context, query string, candidates []RerankCandidate) ([]float64, error) {
	return s.scores, s.err
}

func TestRerankReordersByScore(t *testing.T) {
	fused := []Result{{ChunkID: "a", FusedScore: 0.9}, {ChunkID: "b", FusedScore: 0.8}}
	reranker := stubReranker{scores: []float64{0.1, 0.9}} // b should now win

	out := Rerank(context.Background(), reranker, "query", fused, map[string]string{"a": "x", "b": "y"}, 2)
	if out[0].ChunkID != "b" || !out[0].Reranked {
		t.Fatalf("expected b to rank first after rerank, got %+v", out)
	}
}

func TestRerankFailureFallsBackToFusedOrder(t *testing.T) {
	fused := []Result{{ChunkID: "a", FusedScore: 0.9}, {ChunkID: "b", FusedScore: 0.8}}
	reranker := stubReranker{err: errors.New("reranker unavailable")}

	out := Rerank(context.Background(), reranker, "query", fused, nil, 2)
	if out[0].ChunkID != "a" || out[0].Reranked {
		t.Fatalf("expected fused order preserved on reranker failure, got %+v", out)
	}
}

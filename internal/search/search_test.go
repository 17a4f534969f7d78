package search

import (
	"testing"

	"github.com/deepakdgupta1/knowcode/internal/hybrid"
	"github.com/deepakdgupta1/knowcode/internal/knowledge"
	"github.com/deepakdgupta1/knowcode/internal/model"
)

type fakeLookup map[string]model.Chunk

func (f fakeLookup) Lookup(chunkID string) (model.Chunk, bool) {
	c, ok := f[chunkID]
	return c, ok
}

func TestRunAnchorsChunksAndRanksByScore(t *testing.T) {
	store := knowledge.New()
	store.AddEntity(model.Entity{ID: "a.go::F", Kind: model.KindFunction, Name: "F"})
	store.AddEntity(model.Entity{ID: "a.go::G", Kind: model.KindFunction, Name: "G"})

	chunks := fakeLookup{
		"c1": {ID: "c1", EntityID: "a.go::F", FilePath: "a.go"},
		"c2": {ID: "c2", EntityID: "a.go::G", FilePath: "a.go"},
	}
	fused := []hybrid.Result{
		{ChunkID: "c1", FusedScore: 0.9},
		{ChunkID: "c2", FusedScore: 0.1},
	}

	results := Run(fused, chunks, store, Options{LimitEntities: 5})
	if len(results) != 2 || results[0].EntityID != "a.go::F" {
		t.Fatalf("expected F to rank first, got %+v", results)
	}
}

func TestRunExpandsOneHopAtReducedWeight(t *testing.T) {
	store := knowledge.New()
	store.AddEntity(model.Entity{ID: "a.go::F", Kind: model.KindFunction, Name: "F"})
	store.AddEntity(model.Entity{ID: "a.go::Callee", Kind: model.KindFunction, Name: "Callee"})
	store.AddRelationship(model.Relationship{SourceID: "a.go::F", TargetID: "a.go::Callee", Kind: model.RelCalls})

	chunks := fakeLookup{"c1": {ID: "c1", EntityID: "a.go::F", FilePath: "a.go"}}
	fused := []hybrid.Result{{ChunkID: "c1", FusedScore: 1.0}}

	results := Run(fused, chunks, store, Options{LimitEntities: 5, ExpandDeps: true, ExpandDepth: 1})

	var found bool
	for _, r := range results {
		if r.EntityID == "a.go::Callee" {
			found = true
			if !r.Expanded {
				t.Errorf("expected Callee to be marked Expanded")
			}
			if r.Score >= 1.0 {
				t.Errorf("expected expanded entity score reduced below direct score, got %v", r.Score)
			}
		}
	}
	if !found {
		t.Fatalf("expected Callee to be admitted via expansion, got %+v", results)
	}
}

func TestRunLimitsEntityCount(t *testing.T) {
	store := knowledge.New()
	chunks := fakeLookup{
		"c1": {ID: "c1", EntityID: "a.go::F", FilePath: "a.go"},
		"c2": {ID: "c2", EntityID: "a.go::G", FilePath: "a.go"},
	}
	fused := []hybrid.Result{
		{ChunkID: "c1", FusedScore: 0.9},
		{ChunkID: "c2", FusedScore: 0.5},
	}

	results := Run(fused, chunks, store, Options{LimitEntities: 1})
	if len(results) != 1 {
		t.Fatalf("expected limit to cap results at 1, got %d", len(results))
	}
}

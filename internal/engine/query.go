package engine

import (
	"context"

	"github.com/deepakdgupta1/knowcode/internal/hybrid"
	"github.com/deepakdgupta1/knowcode/internal/knowledge"
	"github.com/deepakdgupta1/knowcode/internal/model"
	"github.com/deepakdgupta1/knowcode/internal/search"
	"github.com/deepakdgupta1/knowcode/internal/vectorindex"
)

// Lookup implements search.ChunkLookup over the engine's in-memory chunk
// table, populated as files are indexed.
func (e *Engine) Lookup(chunkID string) (model.Chunk, bool) {
	e.chunksMu.RLock()
	defer e.chunksMu.RUnlock()
	c, ok := e.chunks[chunkID]
	return c, ok
}

// RetrieveContext implements the retrieve_context_for_query logical call:
// hybrid retrieval, anchoring, task-aware synthesis, and a sufficiency
// score, per §6 of the external interfaces design.
func (e *Engine) RetrieveContext(ctx context.Context, query string, taskHint model.TaskType, maxTokens, limitEntities int, expandDeps bool) model.ContextBundle {
	fused, mode := e.retrieve(ctx, query)

	opts := search.Options{
		LimitEntities: limitEntities,
		ExpandDeps:    expandDeps,
		ExpandDepth:   1,
	}
	if opts.LimitEntities <= 0 {
		opts.LimitEntities = e.cfg.Settings.Retrieval.TopN
	}

	entities := search.Run(fused, e, e.graph, opts)
	bundle := e.synth.Synthesize(query, entities, taskHint, maxTokens, mode)
	return bundle
}

// retrieve runs the lexical and (if an embedding provider is configured)
// dense retrieval legs and fuses them with RRF, reporting which retrieval
// mode actually produced results.
func (e *Engine) retrieve(ctx context.Context, query string) ([]hybrid.Result, model.RetrievalMode) {
	k := e.cfg.Settings.Retrieval.RRFK
	if k <= 0 {
		k = hybrid.DefaultK
	}
	topN := e.cfg.Settings.Retrieval.TopN
	if topN <= 0 {
		topN = 10
	}

	lexHits := e.lex.Search(query, topN*2)

	var denseHits []vectorindex.Hit
	mode := model.ModeLexical
	if e.embed != nil {
		if vecs, err := e.embed.Embed(ctx, []string{query}); err == nil && len(vecs) == 1 {
			if hits, err := e.vectors.Search(vecs[0], topN*2); err == nil {
				denseHits = hits
			}
		}
		if len(denseHits) > 0 {
			mode = model.ModeHybrid
		}
	}
	if len(lexHits) == 0 && len(denseHits) > 0 {
		mode = model.ModeSemantic
	}

	return hybrid.Fuse(lexHits, denseHits, k), mode
}

// SearchCodebase implements search_codebase: a plain substring/name lookup
// over the knowledge store, independent of the retrieval pipeline, for
// callers that already know roughly what symbol they want.
func (e *Engine) SearchCodebase(pattern string, limit int) []model.Entity {
	return e.graph.Search(pattern, limit)
}

// GetEntityContext implements get_entity_context: synthesize a bundle
// anchored on a single already-known entity, skipping retrieval entirely.
func (e *Engine) GetEntityContext(entityID string, maxTokens int, taskHint model.TaskType) model.ContextBundle {
	if _, ok := e.graph.Get(entityID); !ok {
		return model.ContextBundle{TaskType: taskHint}
	}
	scored := []model.ScoredEntity{{EntityID: entityID, Score: 1}}
	return e.synth.Synthesize(entityID, scored, taskHint, maxTokens, model.ModeHybrid)
}

// TraceCalls implements trace_calls: breadth-first traversal over the call
// graph from entityID, per §4.4.
func (e *Engine) TraceCalls(entityID string, depth, maxResults int) []knowledge.CallPath {
	return e.graph.TraceCalls(entityID, depth, maxResults)
}

// GetImpact implements get_impact: direct and transitive dependents, files
// affected, and a bounded risk score, per §4.4.
func (e *Engine) GetImpact(entityID string, maxDepth int) knowledge.Impact {
	return e.graph.GetImpact(entityID, maxDepth)
}

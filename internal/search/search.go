// Package search implements the retrieve→anchor→score→expand→emit pipeline
// that turns a natural-language query into a ranked list of entities with
// backing chunk evidence.
package search

import (
	"sort"

	"github.com/deepakdgupta1/knowcode/internal/hybrid"
	"github.com/deepakdgupta1/knowcode/internal/knowledge"
	"github.com/deepakdgupta1/knowcode/internal/model"
)

// expansionWeight discounts entities admitted via dependency expansion
// rather than direct retrieval, so they contribute to the ranked list
// without outranking anything the query actually matched.
const expansionWeight = 0.35

// ChunkLookup resolves a chunk id to the metadata the anchor step needs:
// its owning entity (empty for module-level chunks) and file path.
type ChunkLookup interface {
	Lookup(chunkID string) (model.Chunk, bool)
}

// Options configures one search invocation. ExpandDeps turns on step 4
// (one-hop caller/callee admission at reduced weight); LimitEntities caps
// step 3's output before expansion runs.
type Options struct {
	LimitEntities int
	ExpandDeps    bool
	ExpandDepth   int
}

// Run executes the five-step pipeline over an already-fused hit list:
// anchor each chunk to an entity, score entities by weighted chunk
// contribution, optionally expand one hop of dependencies, and return the
// ranked entity list with its evidence.
func Run(fused []hybrid.Result, chunks ChunkLookup, store *knowledge.Store, opts Options) []model.ScoredEntity {
	entityScores := make(map[string]float64)
	entityEvidence := make(map[string][]model.Evidence)

	for _, r := range fused {
		chunk, ok := chunks.Lookup(r.ChunkID)
		if !ok {
			continue
		}
		score := r.FusedScore
		if r.Reranked {
			score = r.RerankScore
		}
		anchor := anchorEntity(chunk)
		if anchor == "" {
			continue
		}
		entityScores[anchor] += score
		entityEvidence[anchor] = append(entityEvidence[anchor], model.Evidence{
			ChunkID:   chunk.ID,
			EntityID:  anchor,
			FilePath:  chunk.FilePath,
			StartLine: chunk.StartLine,
			EndLine:   chunk.EndLine,
			Score:     score,
		})
	}

	ranked := rankEntities(entityScores, store)
	limit := opts.LimitEntities
	if limit <= 0 || limit > len(ranked) {
		limit = len(ranked)
	}
	ranked = ranked[:limit]

	results := make([]model.ScoredEntity, 0, len(ranked))
	selected := make(map[string]bool, len(ranked))
	for _, id := range ranked {
		results = append(results, model.ScoredEntity{
			EntityID: id,
			Score:    entityScores[id],
			Evidence: entityEvidence[id],
		})
		selected[id] = true
	}

	if opts.ExpandDeps && store != nil {
		results = append(results, expand(results, selected, store, opts.ExpandDepth)...)
	}

	return results
}

// anchorEntity maps a chunk to the entity id the entity-scoring step
// attributes it to: the chunk's own entity for entity chunks, or the
// module entity (derived from the chunk's file path) for module_header and
// imports chunks, which have no owning entity of their own.
func anchorEntity(c model.Chunk) string {
	if c.EntityID != "" {
		return c.EntityID
	}
	return c.FilePath + "::" + moduleNameFromPath(c.FilePath)
}

func moduleNameFromPath(path string) string {
	base := path
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			base = path[i+1:]
			break
		}
	}
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '.' {
			return base[:i]
		}
	}
	return base
}

// rankEntities orders entity ids by total score, then by the tie-break
// rule: entity-kind preference (function/method > class > module), then
// shorter qualified name.
func rankEntities(scores map[string]float64, store *knowledge.Store) []string {
	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if scores[ids[i]] != scores[ids[j]] {
			return scores[ids[i]] > scores[ids[j]]
		}
		ki, kj := kindRank(ids[i], store), kindRank(ids[j], store)
		if ki != kj {
			return ki < kj
		}
		return len(qualifiedName(ids[i], store)) < len(qualifiedName(ids[j], store))
	})
	return ids
}

// qualifiedName returns the entity's qualified name, or the id itself when
// the store does not know the entity.
func qualifiedName(entityID string, store *knowledge.Store) string {
	if store != nil {
		if e, ok := store.Get(entityID); ok {
			return e.QualifiedName
		}
	}
	return entityID
}

func kindRank(entityID string, store *knowledge.Store) int {
	if store == nil {
		return 2
	}
	e, ok := store.Get(entityID)
	if !ok {
		return 2
	}
	switch e.Kind {
	case model.KindFunction, model.KindMethod:
		return 0
	case model.KindClass:
		return 1
	default:
		return 2
	}
}

// expand admits one hop of callers and callees for each selected entity at
// a reduced weight, grounded on the dependency-expansion BFS the original
// implementation runs over get_callees (extended here to include callers,
// since spec §4.10 names both directions for expansion).
func expand(selected []model.ScoredEntity, seen map[string]bool, store *knowledge.Store, depth int) []model.ScoredEntity {
	if depth <= 0 {
		depth = 1
	}
	var admitted []model.ScoredEntity
	frontier := make([]string, 0, len(selected))
	baseScore := make(map[string]float64, len(selected))
	for _, s := range selected {
		frontier = append(frontier, s.EntityID)
		baseScore[s.EntityID] = s.Score
	}

	for d := 0; d < depth; d++ {
		var next []string
		for _, id := range frontier {
			neighbors := append(append([]model.Entity{}, store.GetCallees(id)...), store.GetCallers(id)...)
			for _, n := range neighbors {
				if seen[n.ID] {
					continue
				}
				seen[n.ID] = true
				score := baseScore[id] * expansionWeight
				admitted = append(admitted, model.ScoredEntity{
					EntityID: n.ID,
					Score:    score,
					Expanded: true,
				})
				baseScore[n.ID] = score
				next = append(next, n.ID)
			}
		}
		frontier = next
	}
	return admitted
}

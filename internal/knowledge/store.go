// Package knowledge is the in-memory semantic graph: O(1) entity lookup by
// id, inverted adjacency per relationship kind in both directions, and the
// traversal operations (callers/callees/children/parent/dependencies/
// dependents/trace_calls/get_impact) the search and context packages build
// on. Persistence is a single JSON document gated by a schema version.
package knowledge

import (
	"sort"
	"sync"

	"github.com/deepakdgupta1/knowcode/internal/model"
)

// Store is the semantic graph for one analyzed project.
type Store struct {
	mu sync.RWMutex

	entities map[string]model.Entity
	// outgoing[sourceID][kind] is every relationship with that source+kind.
	outgoing map[string]map[model.RelationshipKind][]model.Relationship
	// incoming[targetID][kind] is every relationship with that target+kind.
	incoming map[string]map[model.RelationshipKind][]model.Relationship
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		entities: make(map[string]model.Entity),
		outgoing: make(map[string]map[model.RelationshipKind][]model.Relationship),
		incoming: make(map[string]map[model.RelationshipKind][]model.Relationship),
	}
}

// AddEntity inserts or replaces an entity by id.
func (s *Store) AddEntity(e model.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities[e.ID] = e
}

// AddRelationship indexes a resolved relationship in both directions.
func (s *Store) AddRelationship(r model.Relationship) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index(s.outgoing, r.SourceID, r)
	s.index(s.incoming, r.TargetID, r)
}

func (s *Store) index(idx map[string]map[model.RelationshipKind][]model.Relationship, key string, r model.Relationship) {
	byKind, ok := idx[key]
	if !ok {
		byKind = make(map[model.RelationshipKind][]model.Relationship)
		idx[key] = byKind
	}
	byKind[r.Kind] = append(byKind[r.Kind], r)
}

// Get returns the entity with the given id.
func (s *Store) Get(id string) (model.Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[id]
	return e, ok
}

// Count returns the number of entities in the graph.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities)
}

// All returns every entity, used by persistence and full-graph scans.
func (s *Store) All() []model.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Entity, 0, len(s.entities))
	for _, e := range s.entities {
		out = append(out, e)
	}
	return out
}

// AllRelationships returns every relationship, used by persistence.
func (s *Store) AllRelationships() []model.Relationship {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Relationship
	for _, byKind := range s.outgoing {
		for _, rels := range byKind {
			out = append(out, rels...)
		}
	}
	return out
}

func (s *Store) targets(id string, kind model.RelationshipKind) []model.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byKind, ok := s.outgoing[id]
	if !ok {
		return nil
	}
	var out []model.Entity
	for _, r := range byKind[kind] {
		if e, ok := s.entities[r.TargetID]; ok {
			out = append(out, e)
		}
	}
	return out
}

func (s *Store) sources(id string, kind model.RelationshipKind) []model.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byKind, ok := s.incoming[id]
	if !ok {
		return nil
	}
	var out []model.Entity
	for _, r := range byKind[kind] {
		if e, ok := s.entities[r.SourceID]; ok {
			out = append(out, e)
		}
	}
	return out
}

// GetCallers returns every entity with a "calls" edge targeting id.
func (s *Store) GetCallers(id string) []model.Entity { return s.sources(id, model.RelCalls) }

// GetCallees returns every entity id calls.
func (s *Store) GetCallees(id string) []model.Entity { return s.targets(id, model.RelCalls) }

// GetChildren returns every entity id contains (a module's functions, a
// class's methods).
func (s *Store) GetChildren(id string) []model.Entity { return s.targets(id, model.RelContains) }

// GetParent returns the entity that contains id, or ok=false for a root
// entity like a module.
func (s *Store) GetParent(id string) (model.Entity, bool) {
	parents := s.sources(id, model.RelContains)
	if len(parents) == 0 {
		return model.Entity{}, false
	}
	return parents[0], true
}

// GetDependencies returns every entity id imports.
func (s *Store) GetDependencies(id string) []model.Entity { return s.targets(id, model.RelImports) }

// GetDependents returns every entity that imports id.
func (s *Store) GetDependents(id string) []model.Entity { return s.sources(id, model.RelImports) }

// GetBaseClasses returns every class id directly inherits from.
func (s *Store) GetBaseClasses(id string) []model.Entity { return s.targets(id, model.RelInherits) }

// GetSubclasses returns every class that directly inherits from id.
func (s *Store) GetSubclasses(id string) []model.Entity { return s.sources(id, model.RelInherits) }

// GetModifiedBy returns every commit entity with a "modified" edge
// targeting id. Git-history ingestion points those edges at module
// entities only, so the result is empty for any other entity kind.
func (s *Store) GetModifiedBy(id string) []model.Entity { return s.sources(id, model.RelModified) }

// Search returns every entity whose name or qualified name contains query
// (case-insensitive substring), capped at limit results and sorted by
// (exact-name-match, prefix-match, length, id) per §4.4: exact matches
// first, then prefix matches, shorter qualified names before longer ones,
// and id as the final deterministic tiebreak. This is the knowledge
// store's own lexical fallback; internal/lexical's BM25 index is the
// primary search path once a project has been chunked and embedded.
func (s *Store) Search(query string, limit int) []model.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Entity
	for _, e := range s.entities {
		if containsFold(e.QualifiedName, query) || containsFold(e.Name, query) {
			out = append(out, e)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if ea, eb := exactMatch(a, query), exactMatch(b, query); ea != eb {
			return ea
		}
		if pa, pb := prefixMatch(a, query), prefixMatch(b, query); pa != pb {
			return pa
		}
		if la, lb := len(a.QualifiedName), len(b.QualifiedName); la != lb {
			return la < lb
		}
		return a.ID < b.ID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func exactMatch(e model.Entity, query string) bool {
	return equalFold(e.Name, query) || equalFold(e.QualifiedName, query)
}

func prefixMatch(e model.Entity, query string) bool {
	return hasPrefixFold(e.Name, query) || hasPrefixFold(e.QualifiedName, query)
}

func foldRunes(s string) []rune {
	rs := []rune(s)
	out := make([]rune, len(rs))
	for i, r := range rs {
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		out[i] = r
	}
	return out
}

func equalFold(a, b string) bool {
	fa, fb := foldRunes(a), foldRunes(b)
	if len(fa) != len(fb) {
		return false
	}
	for i := range fa {
		if fa[i] != fb[i] {
			return false
		}
	}
	return true
}

func hasPrefixFold(s, prefix string) bool {
	fs, fp := foldRunes(s), foldRunes(prefix)
	if len(fp) > len(fs) {
		return false
	}
	for i := range fp {
		if fs[i] != fp[i] {
			return false
		}
	}
	return true
}

func containsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	h, n := foldRunes(haystack), foldRunes(needle)
	if len(n) > len(h) {
		return false
	}
	for i := 0; i+len(n) <= len(h); i++ {
		match := true
		for j := range n {
			if h[i+j] != n[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// Package frontend defines the parser-frontend capability used to turn one
// source file into semantic-graph entities and the local (pre-resolution)
// relationships between them. Each language gets its own Frontend
// implementation registered under its scanner language tag; callers never
// branch on language, only on the Frontend interface.
package frontend

import (
	"sync"

	"github.com/deepakdgupta1/knowcode/internal/model"
)

// ParseResult is what one file contributes to the semantic graph before
// cross-file resolution runs. Relations name their target by symbol text,
// not by resolved entity id, since that resolution needs the whole project.
type ParseResult struct {
	Entities    []model.Entity
	Relations   []model.LocalRelation
	ParseErrors []model.Entity // KindParseError entities, one per recoverable parse failure
}

// Frontend parses one file's source into entities and local relations. A
// frontend must never fail the whole run over one malformed file: structural
// errors are reported as KindParseError entities in ParseResult, and err is
// reserved for conditions that make the file entirely unusable (e.g. a
// grammar that can't be loaded).
type Frontend interface {
	// Parse extracts entities and relations from src. path is the relative,
	// slash-separated path recorded on Location and used to build entity ids.
	Parse(path string, src []byte) (ParseResult, error)
}

// Registry maps a scanner language tag to the Frontend that handles it.
type Registry struct {
	mu        sync.RWMutex
	frontends map[string]Frontend
}

// NewRegistry creates an empty frontend registry.
func NewRegistry() *Registry {
	return &Registry{frontends: make(map[string]Frontend)}
}

// Register associates a language tag with a Frontend.
func (r *Registry) Register(language string, f Frontend) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frontends[language] = f
}

// Lookup returns the Frontend for a language tag, or ok=false if none is
// registered — the caller should fall back to a raw-text entity or skip.
func (r *Registry) Lookup(language string) (Frontend, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.frontends[language]
	return f, ok
}

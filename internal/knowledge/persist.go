package knowledge

import (
	"encoding/json"
	"os"

	"github.com/deepakdgupta1/knowcode/internal/errs"
	"github.com/deepakdgupta1/knowcode/internal/model"
)

// CurrentSchemaVersion is bumped whenever the persisted document shape
// changes incompatibly.
const CurrentSchemaVersion = 1

type document struct {
	SchemaVersion int                  `json:"schema_version"`
	Entities      []model.Entity       `json:"entities"`
	Relationships []model.Relationship `json:"relationships"`
}

// Save writes the graph to path as a single JSON document.
func (s *Store) Save(path string) error {
	doc := document{
		SchemaVersion: CurrentSchemaVersion,
		Entities:      s.All(),
		Relationships: s.AllRelationships(),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errs.Wrap(errs.IOError, "marshal knowledge graph", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errs.Wrap(errs.IOError, "write knowledge graph", err)
	}
	return nil
}

// Load reads a graph previously written by Save. A document with a newer
// schema version than this build understands is a SCHEMA_MISMATCH: the
// caller should re-analyze from source rather than load partial state.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.IOError, "read knowledge graph", err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errs.Wrap(errs.IOError, "unmarshal knowledge graph", err)
	}
	if doc.SchemaVersion > CurrentSchemaVersion {
		return nil, errs.New(errs.SchemaMismatch, "knowledge graph was written by a newer schema version")
	}

	s := New()
	for _, e := range doc.Entities {
		s.AddEntity(e)
	}
	for _, r := range doc.Relationships {
		s.AddRelationship(r)
	}
	return s, nil
}

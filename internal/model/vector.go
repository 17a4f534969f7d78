package model

// VectorRecord pairs a chunk id with its fixed-dimension dense embedding.
type VectorRecord struct {
	ChunkID string
	Vector  []float32
}

// Manifest describes a persisted vector/lexical index build.
type Manifest struct {
	SchemaVersion  int
	EmbeddingModel string
	Provider       string
	Dimension      int
	ChunkCount     int
	SourceHash     string
}

// CurrentSchemaVersion is bumped whenever the on-disk manifest shape
// changes incompatibly. Loading a manifest with a newer version than this
// is a SCHEMA_MISMATCH and the index must be rebuilt rather than loaded.
const CurrentSchemaVersion = 1

// Compatible reports whether this manifest can be loaded by a reader at
// CurrentSchemaVersion, and whether it matches the active configuration
// (model, provider, dimension). Either mismatch means rebuild, not load.
func (m Manifest) Compatible(wantModel, wantProvider string, wantDim int) bool {
	if m.SchemaVersion > CurrentSchemaVersion {
		return false
	}
	return m.EmbeddingModel == wantModel && m.Provider == wantProvider && m.Dimension == wantDim
}

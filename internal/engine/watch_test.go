package engine

import (
	"testing"

	"github.com/deepakdgupta1/knowcode/internal/model"
	"github.com/deepakdgupta1/knowcode/internal/scanner"
)

func TestRemoveFileDropsOwnedChunksAndLedgerEntry(t *testing.T) {
	e := newTestEngine(t)

	chunk := model.Chunk{
		ID:       model.ChunkID("gone.go", model.ChunkEntity, "Gone.Run"),
		Kind:     model.ChunkEntity,
		EntityID: "gone.go::Gone.Run",
		Text:     "func Run() {}",
		FilePath: "gone.go",
	}
	if err := e.indexFile(nil, parsedFile{
		work:   fileWork{file: scanner.File{RelPath: "gone.go", Language: "go"}, hash: "abc"},
		chunks: []model.Chunk{chunk},
	}); err != nil {
		t.Fatalf("indexFile: %v", err)
	}

	if err := e.removeFile("gone.go"); err != nil {
		t.Fatalf("removeFile: %v", err)
	}

	if _, ok := e.Lookup(chunk.ID); ok {
		t.Error("expected chunk to be gone after removeFile")
	}
	e.chunksMu.RLock()
	_, stillOwns := e.fileChunks["gone.go"]
	e.chunksMu.RUnlock()
	if stillOwns {
		t.Error("expected fileChunks entry to be cleared after removeFile")
	}
}

// TestReindexStaleChunkComputationUsesPreUpdateSnapshot guards the
// add-then-swap ordering: the stale-id set must be computed from the
// chunk ids a file owned BEFORE its replacement chunks are indexed, not
// after (indexFile overwrites fileChunks as a side effect).
func TestReindexStaleChunkComputationUsesPreUpdateSnapshot(t *testing.T) {
	e := newTestEngine(t)

	oldChunk := model.Chunk{
		ID:       model.ChunkID("shrink.go", model.ChunkEntity, "Shrink.A"),
		Kind:     model.ChunkEntity,
		EntityID: "shrink.go::Shrink.A",
		Text:     "func A() {}",
		FilePath: "shrink.go",
	}
	secondOldChunk := model.Chunk{
		ID:       model.ChunkID("shrink.go", model.ChunkEntity, "Shrink.B"),
		Kind:     model.ChunkEntity,
		EntityID: "shrink.go::Shrink.B",
		Text:     "func B() {}",
		FilePath: "shrink.go",
	}
	if err := e.indexFile(nil, parsedFile{
		work:   fileWork{file: scanner.File{RelPath: "shrink.go", Language: "go"}, hash: "v1"},
		chunks: []model.Chunk{oldChunk, secondOldChunk},
	}); err != nil {
		t.Fatalf("indexFile v1: %v", err)
	}

	e.chunksMu.RLock()
	oldIDs := append([]string(nil), e.fileChunks["shrink.go"]...)
	e.chunksMu.RUnlock()
	if len(oldIDs) != 2 {
		t.Fatalf("expected 2 owned chunk ids before update, got %d", len(oldIDs))
	}

	newChunk := model.Chunk{
		ID:       model.ChunkID("shrink.go", model.ChunkEntity, "Shrink.A"),
		Kind:     model.ChunkEntity,
		EntityID: "shrink.go::Shrink.A",
		Text:     "func A() { return }",
		FilePath: "shrink.go",
	}
	if err := e.indexFile(nil, parsedFile{
		work:   fileWork{file: scanner.File{RelPath: "shrink.go", Language: "go"}, hash: "v2"},
		chunks: []model.Chunk{newChunk},
	}); err != nil {
		t.Fatalf("indexFile v2: %v", err)
	}

	newSet := map[string]bool{newChunk.ID: true}
	var stale []string
	for _, id := range oldIDs {
		if !newSet[id] {
			stale = append(stale, id)
		}
	}
	if len(stale) != 1 || stale[0] != secondOldChunk.ID {
		t.Fatalf("expected Shrink.B to be computed stale, got %v", stale)
	}

	e.removeChunks(stale)

	if _, ok := e.Lookup(secondOldChunk.ID); ok {
		t.Error("expected stale chunk Shrink.B to be removed")
	}
	if _, ok := e.Lookup(newChunk.ID); !ok {
		t.Error("expected surviving chunk Shrink.A to remain indexed")
	}
}

func TestExtOf(t *testing.T) {
	cases := map[string]string{
		"a/b.go":    "go",
		"README":    "",
		"x.test.py": "py",
	}
	for in, want := range cases {
		if got := extOf(in); got != want {
			t.Errorf("extOf(%q) = %q, want %q", in, got, want)
		}
	}
}

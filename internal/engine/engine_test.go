package engine

import (
	"testing"

	"go.uber.org/zap"

	"github.com/deepakdgupta1/knowcode/internal/config"
	"github.com/deepakdgupta1/knowcode/internal/model"
	"github.com/deepakdgupta1/knowcode/internal/scanner"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	dir := t.TempDir()
	e, err := New(Config{
		Root:     dir,
		StateDir: dir,
		Workers:  2,
		Settings: config.Config{Retrieval: config.RetrievalConfig{RRFK: 60, TopN: 10}},
		Logger:   zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func TestNewWithoutEmbeddingModelsIsLexicalOnly(t *testing.T) {
	e := newTestEngine(t)
	if e.embed != nil {
		t.Error("expected no embedding provider when no models are configured")
	}
}

func TestIndexFilePopulatesChunkTableAndLexicalIndex(t *testing.T) {
	e := newTestEngine(t)

	chunk := model.Chunk{
		ID:       model.ChunkID("widget.go", model.ChunkEntity, "Widget.Render"),
		Kind:     model.ChunkEntity,
		EntityID: "widget.go::Widget.Render",
		Text:     "func (w *Widget) Render() string { return w.Name }",
		FilePath: "widget.go",
	}
	p := parsedFile{
		work:   fileWork{file: scanner.File{RelPath: "widget.go", Language: "go"}, hash: "abc"},
		chunks: []model.Chunk{chunk},
	}

	if err := e.indexFile(nil, p); err != nil {
		t.Fatalf("indexFile: %v", err)
	}

	got, ok := e.Lookup(chunk.ID)
	if !ok {
		t.Fatal("expected chunk to be looked up by id")
	}
	if got.Text != chunk.Text {
		t.Errorf("expected text %q, got %q", chunk.Text, got.Text)
	}

	hits := e.lex.Search("Render Widget", 10)
	if len(hits) == 0 {
		t.Error("expected lexical search to find the indexed chunk")
	}
}

func TestSearchCodebaseDelegatesToGraph(t *testing.T) {
	e := newTestEngine(t)
	ent := model.Entity{ID: "a.go::Foo", Kind: model.KindFunction, Name: "Foo", QualifiedName: "Foo"}
	e.graph.AddEntity(ent)

	results := e.SearchCodebase("Foo", 10)
	if len(results) != 1 || results[0].ID != ent.ID {
		t.Fatalf("expected to find Foo, got %+v", results)
	}
}

func TestGetEntityContextUnknownEntityReturnsEmptyBundle(t *testing.T) {
	e := newTestEngine(t)
	bundle := e.GetEntityContext("does-not-exist", 1000, model.TaskAuto)
	if len(bundle.Sections) != 0 {
		t.Errorf("expected no sections for unknown entity, got %d", len(bundle.Sections))
	}
}

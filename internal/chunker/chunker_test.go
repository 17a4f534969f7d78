package chunker

import (
	"strings"
	"testing"

	"github.com/deepakdgupta1/knowcode/internal/frontend"
	"github.com/deepakdgupta1/knowcode/internal/model"
)

func TestBuildSplitsModuleHeaderImportsAndEntities(t *testing.T) {
	src := "// package doc\npackage sample\n\nimport \"fmt\"\n\nfunc Greet() string {\n\treturn \"hi\"\n}\n"
	result := frontend.ParseResult{
		Entities: []model.Entity{
			{ID: "a.go::sample", Kind: model.KindModule, QualifiedName: "sample"},
			{ID: "a.go::sample.Greet", Kind: model.KindFunction, Name: "Greet", QualifiedName: "sample.Greet",
				Location: model.Location{StartLine: 6, EndLine: 8}},
		},
		Relations: []model.LocalRelation{
			{SourceID: "a.go::sample", TargetName: "fmt", Kind: model.RelImports},
		},
	}

	chunks := Build("a.go", []byte(src), result)

	var kinds []model.ChunkKind
	for _, c := range chunks {
		kinds = append(kinds, c.Kind)
	}
	want := []model.ChunkKind{model.ChunkModuleHeader, model.ChunkImports, model.ChunkEntity}
	if len(kinds) != len(want) {
		t.Fatalf("got %d chunks (%v), want %d", len(kinds), kinds, len(want))
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("chunk %d kind = %s, want %s", i, kinds[i], want[i])
		}
	}

	entityChunk := chunks[2]
	if entityChunk.EntityID != "a.go::sample.Greet" {
		t.Errorf("entity chunk EntityID = %q, want sample.Greet entity id", entityChunk.EntityID)
	}
	if !strings.Contains(entityChunk.Text, "return \"hi\"") {
		t.Errorf("entity chunk text missing source body: %q", entityChunk.Text)
	}
}

func TestChunkIDIsDeterministic(t *testing.T) {
	src := "func A() {}\n"
	result := frontend.ParseResult{
		Entities: []model.Entity{
			{ID: "x.go::x.A", Kind: model.KindFunction, Name: "A", QualifiedName: "x.A",
				Location: model.Location{StartLine: 1, EndLine: 1}},
		},
	}
	c1 := Build("x.go", []byte(src), result)
	c2 := Build("x.go", []byte(src), result)
	if len(c1) != len(c2) {
		t.Fatalf("non-deterministic chunk count: %d vs %d", len(c1), len(c2))
	}
	for i := range c1 {
		if c1[i].ID != c2[i].ID {
			t.Errorf("chunk %d id differs across runs: %q vs %q", i, c1[i].ID, c2[i].ID)
		}
		if c1[i].ContentHash != c2[i].ContentHash {
			t.Errorf("chunk %d hash differs across runs", i)
		}
	}
}

func TestBuildFoldsClassMethodsIntoOneChunkWhenItFits(t *testing.T) {
	src := "class Widget:\n    def render(self):\n        return self.name\n\n    def resize(self, w):\n        self.w = w\n"
	result := frontend.ParseResult{
		Entities: []model.Entity{
			{ID: "w.py::Widget", Kind: model.KindClass, Name: "Widget", QualifiedName: "Widget",
				Location: model.Location{StartLine: 1, EndLine: 1}},
			{ID: "w.py::Widget.render", Kind: model.KindMethod, Name: "render", QualifiedName: "Widget.render",
				Location: model.Location{StartLine: 2, EndLine: 3}},
			{ID: "w.py::Widget.resize", Kind: model.KindMethod, Name: "resize", QualifiedName: "Widget.resize",
				Location: model.Location{StartLine: 5, EndLine: 6}},
		},
		Relations: []model.LocalRelation{
			{SourceID: "w.py::Widget", TargetName: "Widget.render", Kind: model.RelContains},
			{SourceID: "w.py::Widget", TargetName: "Widget.resize", Kind: model.RelContains},
		},
	}

	chunks := Build("w.py", []byte(src), result)

	var entityChunks []model.Chunk
	for _, c := range chunks {
		if c.Kind == model.ChunkEntity {
			entityChunks = append(entityChunks, c)
		}
	}
	if len(entityChunks) != 1 {
		t.Fatalf("expected one combined chunk for the class and its methods, got %d: %+v", len(entityChunks), entityChunks)
	}
	combined := entityChunks[0]
	if combined.EntityID != "w.py::Widget" {
		t.Errorf("combined chunk EntityID = %q, want the class's id", combined.EntityID)
	}
	if !strings.Contains(combined.Text, "def render") || !strings.Contains(combined.Text, "def resize") {
		t.Errorf("combined chunk missing a method body: %q", combined.Text)
	}
	if combined.EndLine != 6 {
		t.Errorf("combined chunk EndLine = %d, want 6 (last method's end line)", combined.EndLine)
	}
}

func TestBuildSplitsOversizedClassIntoHeaderPlusPerMethodChunks(t *testing.T) {
	var big strings.Builder
	for i := 0; i < 2000; i++ {
		big.WriteString("        x = 1\n")
	}
	methodBody := big.String()

	result := frontend.ParseResult{
		Entities: []model.Entity{
			{ID: "big.py::Big", Kind: model.KindClass, Name: "Big", QualifiedName: "Big",
				SourceCode: "class Big:\n", Location: model.Location{StartLine: 1, EndLine: 1}},
			{ID: "big.py::Big.run", Kind: model.KindMethod, Name: "run", QualifiedName: "Big.run",
				SourceCode: methodBody, Location: model.Location{StartLine: 2, EndLine: 2001}},
		},
		Relations: []model.LocalRelation{
			{SourceID: "big.py::Big", TargetName: "Big.run", Kind: model.RelContains},
		},
	}

	chunks := Build("big.py", []byte("class Big:\n"+methodBody), result)

	var headerChunks, methodChunks int
	for _, c := range chunks {
		switch c.EntityID {
		case "big.py::Big":
			headerChunks++
		case "big.py::Big.run":
			methodChunks++
		}
	}
	if headerChunks != 1 {
		t.Errorf("expected exactly one standalone class-header chunk, got %d", headerChunks)
	}
	if methodChunks < 2 {
		t.Errorf("expected the oversize method to split into multiple chunks, got %d", methodChunks)
	}
}

func TestBuildSplitsOversizedEntity(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 2000; i++ {
		b.WriteString("x := 1\n")
	}
	body := b.String()

	result := frontend.ParseResult{
		Entities: []model.Entity{
			{ID: "big.go::big.Huge", Kind: model.KindFunction, Name: "Huge", QualifiedName: "big.Huge",
				SourceCode: body, Location: model.Location{StartLine: 1, EndLine: 2000}},
		},
	}
	chunks := Build("big.go", []byte(body), result)
	if len(chunks) < 2 {
		t.Fatalf("expected oversize entity to split into multiple chunks, got %d", len(chunks))
	}
	seen := make(map[string]bool)
	for _, c := range chunks {
		if seen[c.ID] {
			t.Errorf("duplicate chunk id %q", c.ID)
		}
		seen[c.ID] = true
		if c.EntityID != "big.go::big.Huge" {
			t.Errorf("split chunk lost owning entity id: %q", c.EntityID)
		}
	}
}

package context

import (
	"strings"
	"testing"

	"github.com/deepakdgupta1/knowcode/internal/knowledge"
	"github.com/deepakdgupta1/knowcode/internal/model"
)

func TestSynthesizeIncludesHeaderAndSignature(t *testing.T) {
	store := knowledge.New()
	store.AddEntity(model.Entity{
		ID: "a.go::F", Kind: model.KindFunction, QualifiedName: "F",
		Signature: "func F()", Docstring: "does a thing",
		Location: model.Location{FilePath: "a.go", StartLine: 1, EndLine: 3},
	})

	synth := New(store, nil)
	bundle := synth.Synthesize("explain F", []model.ScoredEntity{{EntityID: "a.go::F", Score: topPossibleFusedScore}}, model.TaskAuto, 2000, model.ModeHybrid)

	if !strings.Contains(bundle.ContextText, "func F()") {
		t.Errorf("expected signature in context text, got %q", bundle.ContextText)
	}
	if !strings.Contains(bundle.ContextText, "does a thing") {
		t.Errorf("expected docstring in context text, got %q", bundle.ContextText)
	}
	if bundle.TaskType != model.TaskExplain {
		t.Errorf("expected task classified as explain, got %v", bundle.TaskType)
	}
}

func TestSynthesizeTruncatesUnderTightBudget(t *testing.T) {
	store := knowledge.New()
	longSource := strings.Repeat("line of source code here\n", 500)
	store.AddEntity(model.Entity{
		ID: "a.go::F", Kind: model.KindFunction, QualifiedName: "F",
		SourceCode: longSource,
		Location:   model.Location{FilePath: "a.go", StartLine: 1, EndLine: 500},
	})

	synth := New(store, nil)
	bundle := synth.Synthesize("explain F", []model.ScoredEntity{{EntityID: "a.go::F", Score: topPossibleFusedScore}}, model.TaskExplain, 50, model.ModeHybrid)

	if bundle.TotalTokens > 50 {
		t.Errorf("expected total tokens to respect budget, got %d", bundle.TotalTokens)
	}
}

func TestSynthesizeEmptyEntitiesYieldsZeroSufficiency(t *testing.T) {
	store := knowledge.New()
	synth := New(store, nil)
	bundle := synth.Synthesize("anything", nil, model.TaskGeneral, 1000, model.ModeHybrid)
	if bundle.SufficiencyScore != 0 {
		t.Errorf("expected sufficiency 0 for empty entity list, got %v", bundle.SufficiencyScore)
	}
}

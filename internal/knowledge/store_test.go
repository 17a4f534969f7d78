package knowledge

import (
	"testing"

	"github.com/deepakdgupta1/knowcode/internal/model"
)

func entity(id, name, file string) model.Entity {
	return model.Entity{ID: id, Name: name, QualifiedName: name, Kind: model.KindFunction, Location: model.Location{FilePath: file}}
}

func TestTraceCallsBreaksCycles(t *testing.T) {
	s := New()
	s.AddEntity(entity("a", "A", "f.go"))
	s.AddEntity(entity("b", "B", "f.go"))
	s.AddEntity(entity("c", "C", "f.go"))
	s.AddRelationship(model.Relationship{SourceID: "a", TargetID: "b", Kind: model.RelCalls})
	s.AddRelationship(model.Relationship{SourceID: "b", TargetID: "c", Kind: model.RelCalls})
	s.AddRelationship(model.Relationship{SourceID: "c", TargetID: "a", Kind: model.RelCalls}) // cycle back to a

	paths := s.TraceCalls("a", 10, 100)
	if len(paths) == 0 {
		t.Fatal("expected at least one path")
	}
	for _, p := range paths {
		if len(p.EntityIDs) > 3 {
			t.Errorf("path %v longer than the 3-node cycle, BFS did not stop on revisit", p.EntityIDs)
		}
	}
}

func TestGetImpactMonotoneInCallerCount(t *testing.T) {
	s := New()
	s.AddEntity(entity("target", "target", "f.go"))

	scoreWithCallers := func(n int) float64 {
		s := New()
		s.AddEntity(entity("target", "target", "f.go"))
		for i := 0; i < n; i++ {
			id := string(rune('a' + i))
			s.AddEntity(entity(id, id, "caller"+id+".go"))
			s.AddRelationship(model.Relationship{SourceID: id, TargetID: "target", Kind: model.RelCalls})
		}
		return s.GetImpact("target", 10).RiskScore
	}

	low := scoreWithCallers(1)
	high := scoreWithCallers(10)
	if !(high > low) {
		t.Errorf("risk score not monotone in caller count: 1 caller=%f, 10 callers=%f", low, high)
	}
}

func TestContainsFormsParentChildPair(t *testing.T) {
	s := New()
	s.AddEntity(entity("mod", "mod", "f.go"))
	s.AddEntity(entity("mod.Fn", "Fn", "f.go"))
	s.AddRelationship(model.Relationship{SourceID: "mod", TargetID: "mod.Fn", Kind: model.RelContains})

	children := s.GetChildren("mod")
	if len(children) != 1 || children[0].ID != "mod.Fn" {
		t.Fatalf("GetChildren(mod) = %v, want [mod.Fn]", children)
	}
	parent, ok := s.GetParent("mod.Fn")
	if !ok || parent.ID != "mod" {
		t.Fatalf("GetParent(mod.Fn) = %v, %v, want mod", parent, ok)
	}
}

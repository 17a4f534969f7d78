package graphbuilder

import (
	"testing"

	"github.com/deepakdgupta1/knowcode/internal/model"
)

func entity(id, name, qualifiedName string, kind model.EntityKind) model.Entity {
	return model.Entity{ID: id, Name: name, QualifiedName: qualifiedName, Kind: kind}
}

func TestResolveImportsToModule(t *testing.T) {
	entities := []model.Entity{
		entity("a.go::a", "a", "a", model.KindModule),
		entity("b.go::b", "b", "b", model.KindModule),
	}
	locals := []model.LocalRelation{
		{SourceID: "a.go::a", TargetName: "./b", Kind: model.RelImports},
	}

	rels := Resolve(entities, locals)
	if len(rels) != 1 {
		t.Fatalf("expected 1 relationship, got %d", len(rels))
	}
	if rels[0].TargetID != "b.go::b" {
		t.Errorf("expected import to resolve to b.go::b, got %q", rels[0].TargetID)
	}
}

func TestResolveUnmatchedImportKeepsUnresolvedTarget(t *testing.T) {
	entities := []model.Entity{entity("a.go::a", "a", "a", model.KindModule)}
	locals := []model.LocalRelation{
		{SourceID: "a.go::a", TargetName: "net/http", Kind: model.RelImports},
	}

	rels := Resolve(entities, locals)
	if len(rels) != 1 {
		t.Fatalf("expected 1 relationship, got %d", len(rels))
	}
	if rels[0].TargetID != "" {
		t.Errorf("expected empty target id for unresolved import, got %q", rels[0].TargetID)
	}
	if got, ok := rels[0].Attributes.GetString("unresolved_target"); !ok || got != "net/http" {
		t.Errorf("expected unresolved_target=net/http, got %q (ok=%v)", got, ok)
	}
}

func TestResolveCallPrefersSameFileCandidate(t *testing.T) {
	entities := []model.Entity{
		entity("a.go::caller", "caller", "caller", model.KindFunction),
		entity("a.go::helper", "helper", "helper", model.KindFunction),
		entity("b.go::helper", "helper", "helper", model.KindFunction),
	}
	locals := []model.LocalRelation{
		{SourceID: "a.go::caller", TargetName: "helper", Kind: model.RelCalls},
	}

	rels := Resolve(entities, locals)
	if len(rels) != 1 {
		t.Fatalf("expected 1 relationship, got %d", len(rels))
	}
	if rels[0].TargetID != "a.go::helper" {
		t.Errorf("expected same-file candidate a.go::helper, got %q", rels[0].TargetID)
	}
	alts, ok := rels[0].Attributes.GetStringList("alt_targets")
	if !ok || len(alts) != 1 || alts[0] != "b.go::helper" {
		t.Errorf("expected alt_targets=[b.go::helper], got %v (ok=%v)", alts, ok)
	}
}

func TestResolveCallPrefersMostSpecificQualifiedNameOverLexicographicID(t *testing.T) {
	entities := []model.Entity{
		entity("a.go::pkg.Widget.caller", "caller", "pkg.Widget.caller", model.KindMethod),
		entity("b.go::zpkg.helper", "helper", "zpkg.helper", model.KindFunction),
		entity("c.go::pkg.helper", "helper", "pkg.helper", model.KindFunction),
	}
	locals := []model.LocalRelation{
		{SourceID: "a.go::pkg.Widget.caller", TargetName: "helper", Kind: model.RelCalls},
	}

	rels := Resolve(entities, locals)
	if len(rels) != 1 {
		t.Fatalf("expected 1 relationship, got %d", len(rels))
	}
	// Neither candidate shares a file with the caller, so the lexicographic
	// id fallback would have picked b.go::zpkg.helper ("b" < "c"). The
	// most-specific-qualified-name tie-break must win instead: pkg.helper
	// shares the "pkg" scope with the caller's pkg.Widget.caller.
	if rels[0].TargetID != "c.go::pkg.helper" {
		t.Errorf("expected most-specific candidate c.go::pkg.helper, got %q", rels[0].TargetID)
	}
	alts, ok := rels[0].Attributes.GetStringList("alt_targets")
	if !ok || len(alts) != 1 || alts[0] != "b.go::zpkg.helper" {
		t.Errorf("expected alt_targets=[b.go::zpkg.helper], got %v (ok=%v)", alts, ok)
	}
}

func TestResolveInheritsByBareName(t *testing.T) {
	entities := []model.Entity{
		entity("a.py::Base", "Base", "Base", model.KindClass),
		entity("a.py::Child", "Child", "Child", model.KindClass),
	}
	locals := []model.LocalRelation{
		{SourceID: "a.py::Child", TargetName: "Base", Kind: model.RelInherits},
	}

	rels := Resolve(entities, locals)
	if len(rels) != 1 || rels[0].TargetID != "a.py::Base" {
		t.Fatalf("expected Child to inherit from a.py::Base, got %+v", rels)
	}
}

func TestVerifyContainsForestFlagsMissingParent(t *testing.T) {
	entities := []model.Entity{
		entity("a.go::a", "a", "a", model.KindModule),
		entity("a.go::Fn", "Fn", "Fn", model.KindFunction),
	}
	violations := VerifyContainsForest(entities, nil)
	if len(violations) != 1 || violations[0].EntityID != "a.go::Fn" {
		t.Fatalf("expected one violation for unparented Fn, got %+v", violations)
	}
}

func TestVerifyContainsForestAcceptsValidTree(t *testing.T) {
	entities := []model.Entity{
		entity("a.go::a", "a", "a", model.KindModule),
		entity("a.go::Fn", "Fn", "Fn", model.KindFunction),
	}
	relationships := []model.Relationship{
		{SourceID: "a.go::a", TargetID: "a.go::Fn", Kind: model.RelContains},
	}
	violations := VerifyContainsForest(entities, relationships)
	if len(violations) != 0 {
		t.Fatalf("expected no violations, got %+v", violations)
	}
}

func TestVerifyContainsForestFlagsCycle(t *testing.T) {
	entities := []model.Entity{
		entity("a.go::x", "x", "x", model.KindFunction),
		entity("a.go::y", "y", "y", model.KindFunction),
	}
	relationships := []model.Relationship{
		{SourceID: "a.go::x", TargetID: "a.go::y", Kind: model.RelContains},
		{SourceID: "a.go::y", TargetID: "a.go::x", Kind: model.RelContains},
	}
	violations := VerifyContainsForest(entities, relationships)
	if len(violations) == 0 {
		t.Fatalf("expected cycle to be flagged")
	}
}

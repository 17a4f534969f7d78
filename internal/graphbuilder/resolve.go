// Package graphbuilder resolves the per-file LocalRelation edges every
// frontend produces (symbolic, naming a target by text) into the
// project-wide model.Relationship edges the knowledge store indexes
// (naming a target by resolved entity id). Resolution needs the whole
// project's entities at once, so it runs as a single pass after every file
// has been parsed, not per file.
package graphbuilder

import (
	"sort"
	"strings"

	"github.com/deepakdgupta1/knowcode/internal/model"
)

// symbolIndex groups entities by the names callers plausibly used to refer
// to them: their full qualified name (exact matches, used for contains and
// inherits edges), their bare name (used for call/inherits resolution,
// which only ever sees an unqualified identifier), and, for modules, their
// bare module name (used for import resolution).
type symbolIndex struct {
	byID            map[string]model.Entity
	byQualifiedName map[string]model.Entity
	byName          map[string][]model.Entity
	byModuleName    map[string]model.Entity // module entities keyed by their bare name, for import resolution
}

func buildIndex(entities []model.Entity) symbolIndex {
	idx := symbolIndex{
		byID:            make(map[string]model.Entity, len(entities)),
		byQualifiedName: make(map[string]model.Entity, len(entities)),
		byName:          make(map[string][]model.Entity),
		byModuleName:    make(map[string]model.Entity),
	}
	for _, e := range entities {
		idx.byID[e.ID] = e
		idx.byQualifiedName[e.QualifiedName] = e
		idx.byName[e.Name] = append(idx.byName[e.Name], e)
		if e.Kind == model.KindModule {
			idx.byModuleName[e.Name] = e
		}
	}
	return idx
}

// Resolve turns every file's LocalRelations into project-wide
// Relationships. Ambiguous call targets keep their best candidate as the
// edge and record the rest under the "alt_targets" attribute, per the
// call-resolution decision in this project's design notes.
func Resolve(entities []model.Entity, locals []model.LocalRelation) []model.Relationship {
	idx := buildIndex(entities)
	var out []model.Relationship

	for _, l := range locals {
		switch l.Kind {
		case model.RelContains, model.RelInherits:
			if target, ok := idx.byQualifiedName[l.TargetName]; ok {
				out = append(out, model.Relationship{SourceID: l.SourceID, TargetID: target.ID, Kind: l.Kind})
				continue
			}
			// Inherits target may be an unqualified base class name rather
			// than a qualified name (frontends capture it as raw text);
			// fall through to name-based resolution below for that kind.
			if l.Kind == model.RelInherits {
				if rel, ok := resolveByName(l, idx); ok {
					out = append(out, rel)
					continue
				}
				out = append(out, unresolved(l))
			}
		case model.RelImports:
			target := lastPathSegment(l.TargetName)
			if mod, ok := idx.byModuleName[target]; ok {
				out = append(out, model.Relationship{SourceID: l.SourceID, TargetID: mod.ID, Kind: model.RelImports})
				continue
			}
			// External package outside the analyzed project: keep the
			// edge with no target id, recording the raw import path so
			// callers can still see the dependency existed.
			out = append(out, unresolved(l))
		case model.RelCalls:
			if rel, ok := resolveByName(l, idx); ok {
				out = append(out, rel)
			}
		default:
			if target, ok := idx.byQualifiedName[l.TargetName]; ok {
				out = append(out, model.Relationship{SourceID: l.SourceID, TargetID: target.ID, Kind: l.Kind})
			}
		}
	}
	return out
}

// resolveByName applies the scope-chain tie-break from §4.3: (a) a
// candidate in the same file as the call site, (b) the most-specific
// qualified name — the one sharing the longest leading dotted-segment
// prefix with the source's own qualified name, i.e. the closest enclosing
// scope — and (c) lexicographic id, as the final deterministic fallback.
func resolveByName(l model.LocalRelation, idx symbolIndex) (model.Relationship, bool) {
	named := idx.byName[l.TargetName]
	if len(named) == 0 {
		return model.Relationship{}, false
	}
	if len(named) == 1 {
		return model.Relationship{SourceID: l.SourceID, TargetID: named[0].ID, Kind: l.Kind}, true
	}

	candidates := append([]model.Entity{}, named...)
	sourceFile := fileOf(l.SourceID)
	source, hasSource := idx.byID[l.SourceID]

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if sa, sb := fileOf(a.ID) == sourceFile, fileOf(b.ID) == sourceFile; sa != sb {
			return sa
		}
		if hasSource {
			if sa, sb := specificity(a.QualifiedName, source.QualifiedName), specificity(b.QualifiedName, source.QualifiedName); sa != sb {
				return sa > sb
			}
		}
		return a.ID < b.ID
	})

	winner := candidates[0]
	var alts []string
	for _, c := range candidates[1:] {
		alts = append(alts, c.ID)
	}
	attrs := model.Attrs{"alt_targets": model.StringListAttr(alts)}
	return model.Relationship{SourceID: l.SourceID, TargetID: winner.ID, Kind: l.Kind, Attributes: attrs}, true
}

// specificity counts the leading dotted-segment prefix candidateQName shares
// with sourceQName: how many enclosing scopes they have in common, the
// measure of "most-specific" scope-chain proximity in §4.3's tie-break.
func specificity(candidateQName, sourceQName string) int {
	cs := strings.Split(candidateQName, ".")
	ss := strings.Split(sourceQName, ".")
	n := 0
	for n < len(cs) && n < len(ss) && cs[n] == ss[n] {
		n++
	}
	return n
}

// unresolved keeps a symbolic edge whose target could not be matched to any
// known entity, per the model.Relationship contract: an empty TargetID with
// the raw symbolic name preserved under "unresolved_target".
func unresolved(l model.LocalRelation) model.Relationship {
	return model.Relationship{
		SourceID:   l.SourceID,
		Kind:       l.Kind,
		Attributes: model.Attrs{"unresolved_target": model.StringAttr(l.TargetName)},
	}
}

func fileOf(entityID string) string {
	if idx := strings.Index(entityID, "::"); idx >= 0 {
		return entityID[:idx]
	}
	return entityID
}

func lastPathSegment(path string) string {
	path = strings.TrimSuffix(path, "/")
	if idx := strings.LastIndexAny(path, "./"); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

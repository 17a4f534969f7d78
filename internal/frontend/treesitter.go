package frontend

import (
	"context"
	"fmt"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/deepakdgupta1/knowcode/internal/model"
)

// LanguageSpec wires a tree-sitter grammar to the queries a TreeSitterFrontend
// needs to recover functions, methods, classes, imports, and calls. A
// language that has no notion of one of these (e.g. no classes) simply
// leaves that query empty.
type LanguageSpec struct {
	Language *sitter.Language

	// FunctionQuery captures top-level functions: @def is the whole
	// definition, @name its identifier.
	FunctionQuery string
	// MethodQuery captures methods: @def, @name, and optionally @receiver
	// (Go-style: the receiver type node, used to build the qualified name
	// directly instead of walking up to an enclosing class).
	MethodQuery string
	// ClassQuery captures class/type definitions: @def, @name.
	ClassQuery string
	// ImportQuery captures one @path string/identifier node per import.
	ImportQuery string
	// CallQuery captures one @callee identifier node per call expression.
	CallQuery string

	// ClassNodeTypes are ancestor node types used to find the enclosing
	// class of a method definition when MethodQuery has no @receiver
	// capture (Python/JS/TS/Java-style nested methods).
	ClassNodeTypes []string

	Extensions []string
}

// TreeSitterFrontend implements Frontend for one language's grammar.
type TreeSitterFrontend struct {
	spec *LanguageSpec
}

// NewTreeSitterFrontend builds a Frontend from a LanguageSpec.
func NewTreeSitterFrontend(spec *LanguageSpec) *TreeSitterFrontend {
	return &TreeSitterFrontend{spec: spec}
}

func (f *TreeSitterFrontend) Parse(path string, src []byte) (ParseResult, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(f.spec.Language)
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return ParseResult{}, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return f.parseWithErrors(path, src, root)
	}
	return f.extract(path, src, root)
}

// parseWithErrors still extracts whatever defs/calls/imports it can, and
// additionally emits one KindParseError entity so the graph records that
// this file's tree was not fully well-formed.
func (f *TreeSitterFrontend) parseWithErrors(path string, src []byte, root *sitter.Node) (ParseResult, error) {
	result, err := f.extract(path, src, root)
	if err != nil {
		return result, err
	}
	moduleName := moduleNameFor(path)
	errEntity := model.Entity{
		ID:            model.EntityID(path, moduleName+".<parse_error>"),
		Kind:          model.KindParseError,
		Name:          moduleName,
		QualifiedName: moduleName + ".<parse_error>",
		Location:      model.Location{FilePath: path, StartLine: 1, EndLine: int(root.EndPoint().Row) + 1},
	}
	result.ParseErrors = append(result.ParseErrors, errEntity)
	return result, nil
}

func (f *TreeSitterFrontend) extract(path string, src []byte, root *sitter.Node) (ParseResult, error) {
	moduleName := moduleNameFor(path)
	moduleID := model.EntityID(path, moduleName)

	var entities []model.Entity
	var relations []model.LocalRelation

	moduleEntity := model.Entity{
		ID:            moduleID,
		Kind:          model.KindModule,
		Name:          moduleName,
		QualifiedName: moduleName,
		Location:      model.Location{FilePath: path, StartLine: 1, EndLine: int(root.EndPoint().Row) + 1},
	}
	entities = append(entities, moduleEntity)

	var defs []defSpan

	if f.spec.ClassQuery != "" {
		matches, err := runQuery(f.spec.Language, f.spec.ClassQuery, root, src)
		if err != nil {
			return ParseResult{}, err
		}
		for _, m := range matches {
			def, name := m["def"], m["name"]
			if def == nil || name == nil {
				continue
			}
			qn := moduleName + "." + name.Content(src)
			e := model.Entity{
				ID:            model.EntityID(path, qn),
				Kind:          model.KindClass,
				Name:          name.Content(src),
				QualifiedName: qn,
				Location:      spanOf(path, def),
				SourceCode:    def.Content(src),
				Docstring:     leadingComment(def, src),
			}
			entities = append(entities, e)
			relations = append(relations, model.LocalRelation{SourceID: moduleID, TargetName: qn, Kind: model.RelContains})
			if base := m["base"]; base != nil {
				relations = append(relations, model.LocalRelation{SourceID: e.ID, TargetName: base.Content(src), Kind: model.RelInherits})
			}
			defs = append(defs, defSpan{e, def.StartByte(), def.EndByte()})
		}
	}

	if f.spec.FunctionQuery != "" {
		matches, err := runQuery(f.spec.Language, f.spec.FunctionQuery, root, src)
		if err != nil {
			return ParseResult{}, err
		}
		for _, m := range matches {
			def, name := m["def"], m["name"]
			if def == nil || name == nil {
				continue
			}
			// Grammars where methods are just function defs nested in a
			// class body (Python/JS/TS) have no separate MethodQuery;
			// reclassify here instead of double-matching the same node.
			if f.spec.MethodQuery == "" && len(f.spec.ClassNodeTypes) > 0 {
				if qualifier := enclosingName(def, f.spec.ClassNodeTypes, src); qualifier != "" {
					qn := moduleName + "." + model.MethodQualifiedName(qualifier, name.Content(src))
					containerID := model.EntityID(path, moduleName+"."+qualifier)
					e := model.Entity{
						ID:            model.EntityID(path, qn),
						Kind:          model.KindMethod,
						Name:          name.Content(src),
						QualifiedName: qn,
						Location:      spanOf(path, def),
						SourceCode:    def.Content(src),
						Docstring:     leadingComment(def, src),
						Signature:     signatureLine(def, src),
					}
					entities = append(entities, e)
					relations = append(relations, model.LocalRelation{SourceID: containerID, TargetName: qn, Kind: model.RelContains})
					defs = append(defs, defSpan{e, def.StartByte(), def.EndByte()})
					continue
				}
			}
			qn := moduleName + "." + name.Content(src)
			e := model.Entity{
				ID:            model.EntityID(path, qn),
				Kind:          model.KindFunction,
				Name:          name.Content(src),
				QualifiedName: qn,
				Location:      spanOf(path, def),
				SourceCode:    def.Content(src),
				Docstring:     leadingComment(def, src),
				Signature:     signatureLine(def, src),
			}
			entities = append(entities, e)
			relations = append(relations, model.LocalRelation{SourceID: moduleID, TargetName: qn, Kind: model.RelContains})
			defs = append(defs, defSpan{e, def.StartByte(), def.EndByte()})
		}
	}

	if f.spec.MethodQuery != "" {
		matches, err := runQuery(f.spec.Language, f.spec.MethodQuery, root, src)
		if err != nil {
			return ParseResult{}, err
		}
		for _, m := range matches {
			def, name := m["def"], m["name"]
			if def == nil || name == nil {
				continue
			}
			qualifier := ""
			if recv := m["receiver"]; recv != nil {
				qualifier = strings.TrimPrefix(strings.TrimSpace(recv.Content(src)), "*")
			} else if len(f.spec.ClassNodeTypes) > 0 {
				qualifier = enclosingName(def, f.spec.ClassNodeTypes, src)
			}
			qn := moduleName + "." + name.Content(src)
			containerID := moduleID
			if qualifier != "" {
				qn = moduleName + "." + model.MethodQualifiedName(qualifier, name.Content(src))
				containerID = model.EntityID(path, moduleName+"."+qualifier)
			}
			e := model.Entity{
				ID:            model.EntityID(path, qn),
				Kind:          model.KindMethod,
				Name:          name.Content(src),
				QualifiedName: qn,
				Location:      spanOf(path, def),
				SourceCode:    def.Content(src),
				Docstring:     leadingComment(def, src),
				Signature:     signatureLine(def, src),
			}
			entities = append(entities, e)
			relKind := model.RelContains
			relations = append(relations, model.LocalRelation{SourceID: containerID, TargetName: qn, Kind: relKind})
			defs = append(defs, defSpan{e, def.StartByte(), def.EndByte()})
		}
	}

	if f.spec.ImportQuery != "" {
		matches, err := runQuery(f.spec.Language, f.spec.ImportQuery, root, src)
		if err != nil {
			return ParseResult{}, err
		}
		for _, m := range matches {
			p := m["path"]
			if p == nil {
				continue
			}
			target := strings.Trim(p.Content(src), "\"'`")
			relations = append(relations, model.LocalRelation{SourceID: moduleID, TargetName: target, Kind: model.RelImports})
		}
	}

	if f.spec.CallQuery != "" {
		matches, err := runQuery(f.spec.Language, f.spec.CallQuery, root, src)
		if err != nil {
			return ParseResult{}, err
		}
		sort.Slice(defs, func(i, j int) bool { return defs[i].startByte < defs[j].startByte })
		for _, m := range matches {
			callee := m["callee"]
			if callee == nil {
				continue
			}
			caller := enclosingDef(defs, callee.StartByte())
			if caller == "" {
				continue // top-level call outside any def; no source entity to anchor it to
			}
			relations = append(relations, model.LocalRelation{SourceID: caller, TargetName: callee.Content(src), Kind: model.RelCalls})
		}
	}

	return ParseResult{Entities: entities, Relations: relations}, nil
}

// defSpan pairs a definition entity with its byte span, used to find which
// def a call expression falls inside of.
type defSpan struct {
	entity    model.Entity
	startByte uint32
	endByte   uint32
}

// enclosingDef returns the id of the innermost def in defs (sorted by
// startByte ascending) whose source span contains pos, or "" if none does.
func enclosingDef(defs []defSpan, pos uint32) string {
	best := ""
	bestSize := ^uint32(0)
	for _, d := range defs {
		if pos >= d.startByte && pos < d.endByte {
			size := d.endByte - d.startByte
			if size < bestSize {
				bestSize = size
				best = d.entity.ID
			}
		}
	}
	return best
}

func enclosingName(node *sitter.Node, classTypes []string, src []byte) string {
	for p := node.Parent(); p != nil; p = p.Parent() {
		for _, t := range classTypes {
			if p.Type() == t {
				if n := p.ChildByFieldName("name"); n != nil {
					return n.Content(src)
				}
			}
		}
	}
	return ""
}

func spanOf(path string, n *sitter.Node) model.Location {
	return model.Location{
		FilePath:  path,
		StartLine: int(n.StartPoint().Row) + 1,
		EndLine:   int(n.EndPoint().Row) + 1,
	}
}

// signatureLine returns the first line of a definition's text, a cheap but
// effective stand-in for a real signature extraction across grammars.
func signatureLine(n *sitter.Node, src []byte) string {
	text := n.Content(src)
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return strings.TrimSpace(text[:idx])
	}
	return strings.TrimSpace(text)
}

// leadingComment walks backward over comment lines directly preceding n and
// joins them, approximating a docstring/doc-comment for languages where the
// grammar doesn't attach comments as a dedicated child node.
func leadingComment(n *sitter.Node, src []byte) string {
	prev := n.PrevSibling()
	var lines []string
	for prev != nil && isCommentType(prev.Type()) {
		lines = append([]string{strings.TrimSpace(trimCommentMarkers(prev.Content(src)))}, lines...)
		prev = prev.PrevSibling()
	}
	return strings.Join(lines, "\n")
}

func isCommentType(t string) bool {
	return t == "comment" || t == "line_comment" || t == "block_comment"
}

func trimCommentMarkers(s string) string {
	s = strings.TrimPrefix(s, "//")
	s = strings.TrimPrefix(s, "#")
	s = strings.TrimPrefix(s, "/*")
	s = strings.TrimSuffix(s, "*/")
	return strings.TrimSpace(s)
}

func moduleNameFor(path string) string {
	base := path
	if idx := strings.LastIndexByte(base, '/'); idx >= 0 {
		base = base[idx+1:]
	}
	if idx := strings.LastIndexByte(base, '.'); idx >= 0 {
		base = base[:idx]
	}
	return base
}

// runQuery executes query against root and returns one map[captureName]node
// per match.
func runQuery(lang *sitter.Language, query string, root *sitter.Node, src []byte) ([]map[string]*sitter.Node, error) {
	q, err := sitter.NewQuery([]byte(query), lang)
	if err != nil {
		return nil, fmt.Errorf("compile query: %w", err)
	}
	defer q.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, root)

	var out []map[string]*sitter.Node
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		group := make(map[string]*sitter.Node, len(m.Captures))
		for _, c := range m.Captures {
			group[q.CaptureNameForId(c.Index)] = c.Node
		}
		out = append(out, group)
	}
	return out, nil
}

// Package chunker turns one file's parsed entities into the retrieval units
// (model.Chunk) that get embedded and indexed. It generalizes the teacher's
// tree-sitter-direct chunk extraction: instead of re-deriving spans from a
// grammar, it consumes the entities and local relations a frontend already
// produced, so chunk boundaries always agree with the semantic graph.
package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/deepakdgupta1/knowcode/internal/frontend"
	"github.com/deepakdgupta1/knowcode/internal/model"
)

// maxChunkBytes mirrors the teacher's oversize threshold.
const maxChunkBytes = 8192

// windowLines and overlapLines mirror the teacher's splitOversized windowing.
const windowLines = 40
const overlapLines = 10

// Build derives the chunks for one file from its parse result and raw
// source. Entities of kind module/parse_error never get their own chunk:
// the module contributes the module_header and imports chunks instead, and
// parse errors are graph-only bookkeeping, not retrievable text. A class's
// contained methods fold into the class's own chunk when the combined text
// fits maxChunkBytes; an oversize class instead gets a standalone header
// chunk plus one chunk per method, per §4.5.
func Build(filePath string, src []byte, result frontend.ParseResult) []model.Chunk {
	lines := strings.Split(string(src), "\n")

	var chunks []model.Chunk
	firstEntityLine := len(lines) + 1
	var nonModuleEntities []model.Entity
	entityByID := make(map[string]model.Entity)
	qualifiedIndex := make(map[string]model.Entity)
	for _, e := range result.Entities {
		if e.Kind == model.KindModule || e.Kind == model.KindParseError {
			continue
		}
		nonModuleEntities = append(nonModuleEntities, e)
		entityByID[e.ID] = e
		qualifiedIndex[e.QualifiedName] = e
		if e.Location.StartLine > 0 && e.Location.StartLine < firstEntityLine {
			firstEntityLine = e.Location.StartLine
		}
	}
	sort.Slice(nonModuleEntities, func(i, j int) bool {
		return nonModuleEntities[i].Location.StartLine < nonModuleEntities[j].Location.StartLine
	})

	if header := headerText(lines, firstEntityLine); strings.TrimSpace(header) != "" {
		chunks = append(chunks, newChunk(filePath, model.ChunkModuleHeader, "0", header, 1, min(firstEntityLine-1, len(lines))))
	}

	if imp := importsText(result); imp != "" {
		chunks = append(chunks, newChunk(filePath, model.ChunkImports, "imports", imp, 1, 1))
	}

	classChildren, childSet := classContainsChildren(result, entityByID, qualifiedIndex)

	for _, e := range nonModuleEntities {
		if childSet[e.ID] {
			continue // folded into its class's chunk below, or split alongside it
		}
		if e.Kind == model.KindClass {
			if children := classChildren[e.ID]; len(children) > 0 {
				chunks = append(chunks, classChunks(filePath, lines, e, children)...)
				continue
			}
		}
		chunks = append(chunks, entityChunks(filePath, lines, e)...)
	}

	return chunks
}

// classContainsChildren groups each class's directly contained methods (via
// the file-local "contains" relations the frontend emitted), ordered by
// source position, and returns the set of every child entity id so the
// caller can skip them in its top-level walk.
func classContainsChildren(result frontend.ParseResult, entityByID, qualifiedIndex map[string]model.Entity) (map[string][]model.Entity, map[string]bool) {
	children := make(map[string][]model.Entity)
	childSet := make(map[string]bool)
	for _, r := range result.Relations {
		if r.Kind != model.RelContains {
			continue
		}
		parent, ok := entityByID[r.SourceID]
		if !ok || parent.Kind != model.KindClass {
			continue // only classes fold their children into one chunk
		}
		child, ok := qualifiedIndex[r.TargetName]
		if !ok {
			continue
		}
		children[parent.ID] = append(children[parent.ID], child)
		childSet[child.ID] = true
	}
	for parentID, kids := range children {
		sort.Slice(kids, func(i, j int) bool {
			return kids[i].Location.StartLine < kids[j].Location.StartLine
		})
		children[parentID] = kids
	}
	return children, childSet
}

// classChunks builds the chunk(s) for a class and its contained methods:
// one combined chunk when the whole class fits maxChunkBytes, otherwise a
// standalone class-header chunk plus one chunk per method.
func classChunks(filePath string, lines []string, class model.Entity, methods []model.Entity) []model.Chunk {
	classContent := rawContent(lines, class)

	parts := make([]string, 0, len(methods)+1)
	parts = append(parts, classContent)
	for _, m := range methods {
		parts = append(parts, rawContent(lines, m))
	}
	combined := enrich(filePath, class, strings.Join(parts, "\n\n"))

	if len(combined) <= maxChunkBytes {
		endLine := class.Location.EndLine
		for _, m := range methods {
			if m.Location.EndLine > endLine {
				endLine = m.Location.EndLine
			}
		}
		return []model.Chunk{{
			ID:          model.ChunkID(filePath, model.ChunkEntity, class.QualifiedName),
			Kind:        model.ChunkEntity,
			EntityID:    class.ID,
			Text:        combined,
			FilePath:    filePath,
			StartLine:   class.Location.StartLine,
			EndLine:     endLine,
			ContentHash: hash(combined),
		}}
	}

	header := enrich(filePath, class, classContent)
	chunks := []model.Chunk{{
		ID:          model.ChunkID(filePath, model.ChunkEntity, class.QualifiedName),
		Kind:        model.ChunkEntity,
		EntityID:    class.ID,
		Text:        header,
		FilePath:    filePath,
		StartLine:   class.Location.StartLine,
		EndLine:     class.Location.EndLine,
		ContentHash: hash(header),
	}}
	for _, m := range methods {
		chunks = append(chunks, entityChunks(filePath, lines, m)...)
	}
	return chunks
}

// entityChunks builds the chunk(s) for a single entity that isn't folded
// into a class chunk: one chunk, or a windowed split if oversize.
func entityChunks(filePath string, lines []string, e model.Entity) []model.Chunk {
	content := enrich(filePath, e, rawContent(lines, e))

	if len(content) <= maxChunkBytes {
		return []model.Chunk{{
			ID:          model.ChunkID(filePath, model.ChunkEntity, e.QualifiedName),
			Kind:        model.ChunkEntity,
			EntityID:    e.ID,
			Text:        content,
			FilePath:    filePath,
			StartLine:   e.Location.StartLine,
			EndLine:     e.Location.EndLine,
			ContentHash: hash(content),
		}}
	}
	return splitOversized(filePath, e, content)
}

// rawContent returns an entity's source text without the leading metadata
// comment enrich adds, so combined class chunks only carry one header.
func rawContent(lines []string, e model.Entity) string {
	if e.SourceCode != "" {
		return e.SourceCode
	}
	return sliceLines(lines, e.Location.StartLine, e.Location.EndLine)
}

func headerText(lines []string, firstEntityLine int) string {
	end := firstEntityLine - 1
	if end > len(lines) {
		end = len(lines)
	}
	if end <= 0 {
		return ""
	}
	return strings.Join(lines[:end], "\n")
}

func importsText(result frontend.ParseResult) string {
	var targets []string
	for _, r := range result.Relations {
		if r.Kind == model.RelImports {
			targets = append(targets, r.TargetName)
		}
	}
	if len(targets) == 0 {
		return ""
	}
	sort.Strings(targets)
	var b strings.Builder
	b.WriteString("Imports:\n")
	for _, t := range targets {
		fmt.Fprintf(&b, "- %s\n", t)
	}
	return b.String()
}

func sliceLines(lines []string, start, end int) string {
	s, e := start-1, end
	if s < 0 {
		s = 0
	}
	if e > len(lines) {
		e = len(lines)
	}
	if s >= e {
		return ""
	}
	return strings.Join(lines[s:e], "\n")
}

func enrich(filePath string, e model.Entity, content string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "// File: %s\n", filePath)
	fmt.Fprintf(&b, "// %s: %s\n", e.Kind, e.QualifiedName)
	if e.Docstring != "" {
		fmt.Fprintf(&b, "// %s\n", strings.ReplaceAll(e.Docstring, "\n", "\n// "))
	}
	b.WriteString(content)
	return b.String()
}

// splitOversized windows an oversize entity's content at line boundaries
// with overlap, same shape as the teacher's splitOversized, but derives the
// chunk id from the entity's qualified name plus the window's starting line
// so ids stay stable across re-chunks of an unchanged file.
func splitOversized(filePath string, e model.Entity, content string) []model.Chunk {
	lines := strings.Split(content, "\n")
	var chunks []model.Chunk
	base := e.Location.StartLine
	for i := 0; i < len(lines); {
		end := i + windowLines
		if end > len(lines) {
			end = len(lines)
		}
		text := strings.Join(lines[i:end], "\n")
		startLine := base + i
		endLine := base + end - 1
		span := fmt.Sprintf("%s@%d-%d", e.QualifiedName, startLine, endLine)
		chunks = append(chunks, model.Chunk{
			ID:          model.ChunkID(filePath, model.ChunkEntity, span),
			Kind:        model.ChunkEntity,
			EntityID:    e.ID,
			Text:        text,
			FilePath:    filePath,
			StartLine:   startLine,
			EndLine:     endLine,
			ContentHash: hash(text),
		})
		if end >= len(lines) {
			break
		}
		i += windowLines - overlapLines
	}
	return chunks
}

func newChunk(filePath string, kind model.ChunkKind, key, text string, startLine, endLine int) model.Chunk {
	return model.Chunk{
		ID:          model.ChunkID(filePath, kind, key),
		Kind:        kind,
		Text:        text,
		FilePath:    filePath,
		StartLine:   startLine,
		EndLine:     endLine,
		ContentHash: hash(text),
	}
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

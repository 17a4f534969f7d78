package frontend

import (
	"bufio"
	"strings"

	"github.com/deepakdgupta1/knowcode/internal/model"
)

// MarkdownFrontend treats a Markdown file as a single module entity with no
// sub-entities; headings become part of the module's docstring so search
// can still surface the file by its section titles. There is no grammar to
// parse here, so this frontend never reports a parse error.
type MarkdownFrontend struct{}

func (MarkdownFrontend) Parse(path string, src []byte) (ParseResult, error) {
	moduleName := moduleNameFor(path)
	lines := strings.Split(string(src), "\n")
	var headings []string
	for _, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "#") {
			headings = append(headings, strings.TrimSpace(l))
		}
	}
	e := model.Entity{
		ID:            model.EntityID(path, moduleName),
		Kind:          model.KindModule,
		Name:          moduleName,
		QualifiedName: moduleName,
		Location:      model.Location{FilePath: path, StartLine: 1, EndLine: len(lines)},
		SourceCode:    string(src),
		Docstring:     strings.Join(headings, "\n"),
	}
	return ParseResult{Entities: []model.Entity{e}}, nil
}

// YAMLFrontend extracts top-level keys as config_key entities. It's a
// line-oriented scan rather than a full YAML parse: good enough to recover
// the keys a config_key entity needs (name, location) without pulling in a
// YAML grammar nobody else in the pack registers for tree-sitter.
type YAMLFrontend struct{}

func (YAMLFrontend) Parse(path string, src []byte) (ParseResult, error) {
	moduleName := moduleNameFor(path)
	moduleID := model.EntityID(path, moduleName)
	entities := []model.Entity{{
		ID:            moduleID,
		Kind:          model.KindModule,
		Name:          moduleName,
		QualifiedName: moduleName,
	}}
	var relations []model.LocalRelation

	sc := bufio.NewScanner(strings.NewReader(string(src)))
	line := 0
	for sc.Scan() {
		line++
		raw := sc.Text()
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		// A top-level key has no leading whitespace and contains a colon.
		if raw == trimmed && strings.Contains(trimmed, ":") {
			key := strings.TrimSpace(strings.SplitN(trimmed, ":", 2)[0])
			key = strings.Trim(key, `"'`)
			if key == "" {
				continue
			}
			qn := moduleName + "." + key
			entities = append(entities, model.Entity{
				ID:            model.EntityID(path, qn),
				Kind:          model.KindConfigKey,
				Name:          key,
				QualifiedName: qn,
				Location:      model.Location{FilePath: path, StartLine: line, EndLine: line},
				SourceCode:    raw,
			})
			relations = append(relations, model.LocalRelation{SourceID: moduleID, TargetName: qn, Kind: model.RelContains})
		}
	}
	entities[0].Location = model.Location{FilePath: path, StartLine: 1, EndLine: line}
	return ParseResult{Entities: entities, Relations: relations}, nil
}

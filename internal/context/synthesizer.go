package context

import (
	"fmt"
	"sort"
	"strings"

	"github.com/deepakdgupta1/knowcode/internal/knowledge"
	"github.com/deepakdgupta1/knowcode/internal/model"
)

// minUsefulTokens is the smallest section size worth keeping; sections that
// would be truncated below this are dropped entirely rather than rendered
// as a near-empty fragment, per spec §4.11.
const minUsefulTokens = 20

// Synthesizer builds task-aware, token-budgeted context bundles for a
// ranked entity list, grounded on the reference implementation's
// priority-ordered, greedily-budgeted section assembly.
type Synthesizer struct {
	store  *knowledge.Store
	tokens *TokenCounter
}

// New returns a Synthesizer backed by store. A nil or failed TokenCounter
// falls back to rune-count estimation rather than failing synthesis.
func New(store *knowledge.Store, tokens *TokenCounter) *Synthesizer {
	return &Synthesizer{store: store, tokens: tokens}
}

// Synthesize builds a context bundle for the ranked entities, classifying
// the task type (if TaskAuto or unset) and emitting sections in that task
// type's priority order until maxTokens is exhausted.
func (s *Synthesizer) Synthesize(query string, entities []model.ScoredEntity, taskHint model.TaskType, maxTokens int, mode model.RetrievalMode) model.ContextBundle {
	taskType := ClassifyTask(query, taskHint)
	if len(entities) == 0 {
		return model.ContextBundle{TaskType: taskType, RetrievalMode: mode, SufficiencyScore: 0}
	}

	priorities := PrioritiesFor(taskType)
	var allSections []model.Section
	var evidence []model.Evidence
	var selected []string
	total := 0
	truncatedAny := false

	for _, se := range entities {
		entity, ok := s.store.Get(se.EntityID)
		if !ok {
			continue
		}
		selected = append(selected, se.EntityID)
		evidence = append(evidence, se.Evidence...)

		for _, kind := range priorities {
			text := s.renderSection(kind, entity)
			if text == "" {
				continue
			}
			secTokens := s.tokens.Count(text)
			if total+secTokens > maxTokens {
				remaining := maxTokens - total
				if remaining < minUsefulTokens {
					truncatedAny = true
					continue
				}
				const truncationMarker = "\n[...truncated]"
				truncatedText, wasTruncated := s.tokens.TruncateToTokens(text, remaining-s.tokens.Count(truncationMarker))
				truncatedText += truncationMarker
				truncatedTokens := s.tokens.Count(truncatedText)
				truncatedAny = true
				if total+truncatedTokens > maxTokens {
					continue
				}
				allSections = append(allSections, model.Section{Kind: kind, Text: truncatedText, Tokens: truncatedTokens, Truncated: wasTruncated})
				total += truncatedTokens
				continue
			}
			allSections = append(allSections, model.Section{Kind: kind, Text: text, Tokens: secTokens})
			total += secTokens
		}
	}

	contextText := renderSections(allSections)
	bundle := model.ContextBundle{
		Sections:         allSections,
		ContextText:      contextText,
		TotalTokens:      total,
		Evidence:         evidence,
		SelectedEntities: selected,
		TaskType:         taskType,
		RetrievalMode:    mode,
	}
	bundle.SufficiencyScore = sufficiencyScore(entities, total, maxTokens, truncatedAny)
	return bundle
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func renderSections(sections []model.Section) string {
	parts := make([]string, len(sections))
	for i, s := range sections {
		parts[i] = s.Text
	}
	return strings.Join(parts, "\n\n---\n\n")
}

func (s *Synthesizer) renderSection(kind model.SectionKind, e model.Entity) string {
	switch kind {
	case model.SectionHeader:
		return fmt.Sprintf("# %s: `%s`\n\n**File**: `%s`\n**Lines**: %d-%d",
			titleCase(string(e.Kind)), e.QualifiedName, e.Location.FilePath, e.Location.StartLine, e.Location.EndLine)
	case model.SectionSignature:
		if e.Signature == "" {
			return ""
		}
		return "## Signature\n\n```\n" + e.Signature + "\n```"
	case model.SectionDocstring:
		if e.Docstring == "" {
			return ""
		}
		return "## Description\n\n" + e.Docstring
	case model.SectionSource:
		if e.SourceCode == "" {
			return ""
		}
		return "## Source Code\n\n```\n" + e.SourceCode + "\n```"
	case model.SectionCallers:
		return formatEntityList("Called By", s.store.GetCallers(e.ID))
	case model.SectionCallees:
		return formatEntityList("Calls", s.store.GetCallees(e.ID))
	case model.SectionInherits:
		return formatEntityList("Inherits From", s.store.GetBaseClasses(e.ID))
	case model.SectionImports:
		return formatEntityList("Imports", s.store.GetDependencies(e.ID))
	case model.SectionRecentChanges:
		return formatCommitList(s.store.GetModifiedBy(e.ID))
	case model.SectionImpact:
		impact := s.store.GetImpact(e.ID, 3)
		return fmt.Sprintf("## Impact\n\n**Risk**: %s (score %.2f)\n**Transitive callers**: %d\n**Files affected**: %d",
			impact.RiskLevel, impact.RiskScore, impact.TransitiveCount, impact.FilesAffected)
	default:
		return ""
	}
}

func formatEntityList(title string, entities []model.Entity) string {
	if len(entities) == 0 {
		return ""
	}
	sort.Slice(entities, func(i, j int) bool { return entities[i].QualifiedName < entities[j].QualifiedName })
	lines := []string{"## " + title, ""}
	limit := len(entities)
	if limit > maxListedItems {
		limit = maxListedItems
	}
	for _, e := range entities[:limit] {
		lines = append(lines, "- `"+e.QualifiedName+"`")
	}
	if line := elisionLine(len(entities)); line != "" {
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func formatCommitList(commits []model.Entity) string {
	if len(commits) == 0 {
		return ""
	}
	sort.Slice(commits, func(i, j int) bool { return commits[i].Name > commits[j].Name })
	lines := []string{"## Recent Changes", ""}
	limit := len(commits)
	if limit > maxListedItems {
		limit = maxListedItems
	}
	for _, c := range commits[:limit] {
		lines = append(lines, "- `"+c.Name+"`")
	}
	if line := elisionLine(len(commits)); line != "" {
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

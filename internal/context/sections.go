package context

import "github.com/deepakdgupta1/knowcode/internal/model"

// sectionPriorities maps each task type to the section order spec §4.11
// names: higher-priority sections are appended first and survive budget
// pressure longer; sections not listed for a task type are never emitted
// for it.
var sectionPriorities = map[model.TaskType][]model.SectionKind{
	model.TaskExplain: {
		model.SectionHeader, model.SectionSignature, model.SectionDocstring,
		model.SectionSource, model.SectionCallers, model.SectionCallees, model.SectionInherits,
	},
	model.TaskDebug: {
		model.SectionHeader, model.SectionSource, model.SectionCallers,
		model.SectionRecentChanges, model.SectionCallees,
	},
	model.TaskExtend: {
		model.SectionHeader, model.SectionSignature, model.SectionSource,
		model.SectionCallers, model.SectionInherits, model.SectionImports,
	},
	model.TaskReview: {
		model.SectionHeader, model.SectionSource, model.SectionCallers,
		model.SectionCallees, model.SectionRecentChanges, model.SectionImpact,
	},
	model.TaskLocate: {
		model.SectionHeader, model.SectionSignature, model.SectionDocstring,
	},
	model.TaskGeneral: {
		model.SectionHeader, model.SectionSignature, model.SectionDocstring,
		model.SectionSource, model.SectionCallers, model.SectionCallees,
	},
}

// PrioritiesFor returns the section order for a task type, falling back to
// the general priorities for an unrecognized type.
func PrioritiesFor(t model.TaskType) []model.SectionKind {
	if p, ok := sectionPriorities[t]; ok {
		return p
	}
	return sectionPriorities[model.TaskGeneral]
}

// maxListedItems caps how many entries a callers/callees/children section
// lists before an elision marker, matching both context_synthesizer.py
// implementations' "...and N more" convention.
const maxListedItems = 10

// elisionLine renders the "...and N more" marker for a list section
// truncated to maxListedItems; it returns "" when nothing was dropped.
func elisionLine(total int) string {
	if total <= maxListedItems {
		return ""
	}
	return elideSuffix(total - maxListedItems)
}

func elideSuffix(remaining int) string {
	if remaining <= 0 {
		return ""
	}
	return "- ...and " + itoa(remaining) + " more"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var b []byte
	for n > 0 {
		b = append([]byte{byte('0' + n%10)}, b...)
		n /= 10
	}
	return string(b)
}

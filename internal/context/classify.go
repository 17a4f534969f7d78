package context

import (
	"strings"

	"github.com/deepakdgupta1/knowcode/internal/model"
)

// keyword lists grounded on spec §4.11's "lightweight heuristics" example
// ("why/how" → explain; "error/bug/trace" → debug).
var taskKeywords = map[model.TaskType][]string{
	model.TaskExplain: {"why", "how", "what does", "explain", "understand"},
	model.TaskDebug:   {"error", "bug", "trace", "fail", "crash", "broken", "exception"},
	model.TaskExtend:  {"add", "implement", "extend", "support", "feature"},
	model.TaskReview:  {"review", "audit", "quality", "risk", "safe to change"},
	model.TaskLocate:  {"where", "find", "locate", "which file"},
}

// taskPriority is checked in this fixed order so a query matching keywords
// for more than one task type resolves deterministically.
var taskPriority = []model.TaskType{
	model.TaskDebug, model.TaskReview, model.TaskExtend, model.TaskLocate, model.TaskExplain,
}

// ClassifyTask infers a task type from the query text when the caller
// passes TaskAuto (or leaves it unset); any other task type hint passes
// through unchanged.
func ClassifyTask(query string, hint model.TaskType) model.TaskType {
	if hint != "" && hint != model.TaskAuto {
		return hint
	}
	lower := strings.ToLower(query)
	for _, t := range taskPriority {
		for _, kw := range taskKeywords[t] {
			if strings.Contains(lower, kw) {
				return t
			}
		}
	}
	return model.TaskGeneral
}

package graphbuilder

import "github.com/deepakdgupta1/knowcode/internal/model"

// ForestViolation describes an entity that breaks the contains-forest
// invariant: every non-module entity must have exactly one contains
// parent, and no entity may be its own ancestor.
type ForestViolation struct {
	EntityID string
	Reason   string
}

// VerifyContainsForest checks the resolved relationship set against the
// contains-forest invariant. It does not mutate anything; callers decide
// whether a violation is fatal or merely logged.
func VerifyContainsForest(entities []model.Entity, relationships []model.Relationship) []ForestViolation {
	parentOf := make(map[string]string)
	parentCount := make(map[string]int)

	for _, r := range relationships {
		if r.Kind != model.RelContains || r.TargetID == "" {
			continue
		}
		parentCount[r.TargetID]++
		parentOf[r.TargetID] = r.SourceID
	}

	var violations []ForestViolation
	for _, e := range entities {
		if e.Kind == model.KindModule {
			continue
		}
		switch parentCount[e.ID] {
		case 0:
			violations = append(violations, ForestViolation{EntityID: e.ID, Reason: "no contains parent"})
		case 1:
			// expected
		default:
			violations = append(violations, ForestViolation{EntityID: e.ID, Reason: "multiple contains parents"})
		}
	}

	for id := range parentOf {
		if hasCycle(id, parentOf) {
			violations = append(violations, ForestViolation{EntityID: id, Reason: "contains cycle"})
		}
	}

	return violations
}

func hasCycle(start string, parentOf map[string]string) bool {
	visited := map[string]bool{start: true}
	cur := start
	for {
		next, ok := parentOf[cur]
		if !ok {
			return false
		}
		if visited[next] {
			return true
		}
		visited[next] = true
		cur = next
	}
}

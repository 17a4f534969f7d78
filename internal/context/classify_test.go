package context

import (
	"testing"

	"github.com/deepakdgupta1/knowcode/internal/model"
)

func TestClassifyTaskHeuristics(t *testing.T) {
	tests := []struct {
		query string
		want  model.TaskType
	}{
		{"why does this function exist", model.TaskExplain},
		{"there's a bug causing a crash", model.TaskDebug},
		{"add support for retries", model.TaskExtend},
		{"review this change for risk", model.TaskReview},
		{"where is the config loaded", model.TaskLocate},
		{"tell me about this module", model.TaskGeneral},
	}
	for _, tt := range tests {
		if got := ClassifyTask(tt.query, model.TaskAuto); got != tt.want {
			t.Errorf("ClassifyTask(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestClassifyTaskHintBypassesHeuristics(t *testing.T) {
	if got := ClassifyTask("why does this exist", model.TaskDebug); got != model.TaskDebug {
		t.Errorf("expected explicit hint to win, got %v", got)
	}
}

package board

import (
	"testing"

	"github.com/TWRT/taskboard/internal/models"
)

func sampleTask() models.Task {
	return models.Task{
		Id:          10,
		Title:       "Fix login button",
		Description: "Button não responde no Safari",
		Status:      models.FlexField{ID: 2, Value: "On-going"},
		Priority:    models.FlexField{Value: "High"},
		Project:     models.FlexField{ID: 3, Value: "Website Redesign"},
		Assignees: []models.Assignee{
			{ID: 7, Name: "Ana"},
			{ID: 9, Name: "Bruno"},
		},
	}
}

func TestFilters_Match(t *testing.T) {
	task := sampleTask()

	tests := []struct {
		name string
		f    Filters
		want bool
	}{
		{"zero filters pass", Filters{}, true},
		{"search title", Filters{Search: "LOGIN"}, true},
		{"search description", Filters{Search: "safari"}, true},
		{"search miss", Filters{Search: "checkout"}, false},
		{"project match", Filters{Project: "website redesign"}, true},
		{"project all skips", Filters{Project: "All"}, true},
		{"project miss", Filters{Project: "Mobile App"}, false},
		{"priority match", Filters{Priorities: []string{"high", "medium"}}, true},
		{"priority miss", Filters{Priorities: []string{"low"}}, false},
		{"status canonical match", Filters{Statuses: []string{"ongoing"}}, true},
		{"status miss", Filters{Statuses: []string{"completed"}}, false},
		{"assignee intersection", Filters{Assignees: []int64{9, 12}}, true},
		{"assignee miss", Filters{Assignees: []int64{12}}, false},
		{"all together", Filters{Search: "login", Project: "Website Redesign", Priorities: []string{"High"}, Statuses: []string{"ongoing"}, Assignees: []int64{7}}, true},
		{"one failing criterion fails all", Filters{Search: "login", Statuses: []string{"pending"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.Match(task); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Critério vazio nunca muda o resultado: a conjunção com um filtro
// desligado é a identidade.
func TestFilters_EmptyCriterionIsIdentity(t *testing.T) {
	task := sampleTask()

	base := Filters{Search: "login"}
	withEmpty := Filters{Search: "login", Project: "", Priorities: nil, Statuses: []string{}, Assignees: nil}

	if base.Match(task) != withEmpty.Match(task) {
		t.Fatal("adding empty criteria changed the result")
	}
}

func TestApply(t *testing.T) {
	tasks := []models.Task{
		sampleTask(),
		{Id: 11, Title: "Write docs", Status: models.FlexField{Value: "pending"}},
		{Id: 12, Title: "Fix logout", Status: models.FlexField{Value: "done"}},
	}

	out := Apply(tasks, Filters{Search: "fix"})
	if len(out) != 2 {
		t.Fatalf("Apply returned %d tasks, want 2", len(out))
	}
	if out[0].Id != 10 || out[1].Id != 12 {
		t.Errorf("Apply order wrong: %+v", out)
	}

	all := Apply(tasks, Filters{})
	if len(all) != 3 {
		t.Errorf("zero filters should pass everything, got %d", len(all))
	}
}

package board

import (
	"testing"

	"github.com/TWRT/taskboard/internal/models"
)

func stageCols() []models.Column {
	return []models.Column{
		{ID: "design", Title: "Design"},
		{ID: "html", Title: "HTML"},
		{ID: "development", Title: "Development"},
		{ID: "qa", Title: "QA"},
	}
}

func stageTask(id int64, stage models.FlexField) models.Task {
	return models.Task{Id: id, Title: "t", Stage: stage}
}

func TestGroupByStage_Partition(t *testing.T) {
	tasks := []models.Task{
		stageTask(1, models.FlexField{Value: "Design"}),
		stageTask(2, models.FlexField{ID: 49, Value: "Development "}),
		stageTask(3, models.FlexField{Value: "ui"}),
		stageTask(4, models.FlexField{Value: "Backlog"}),
		stageTask(5, models.FlexField{}),
		stageTask(6, models.FlexField{Value: "Testing"}),
	}

	groups := GroupByStage(tasks, stageCols())

	total := 0
	seen := map[int64]int{}
	for _, bucket := range groups {
		total += len(bucket)
		for _, task := range bucket {
			seen[task.Id]++
		}
	}
	if total != len(tasks) {
		t.Fatalf("partition lost/duplicated tasks: got %d, want %d", total, len(tasks))
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("task %d appears %d times", id, n)
		}
	}
}

func TestGroupByStage_ExampleScenario(t *testing.T) {
	// Task 5670 com stage {id:49, value:"Development "}: normaliza
	// para "development" e cai na coluna certa, não no fallback.
	task := models.Task{
		Id:     5670,
		Status: models.FlexField{ID: 2, Value: "On-going"},
		Stage:  models.FlexField{ID: 49, Value: "Development "},
	}

	groups := GroupByStage([]models.Task{task}, stageCols())

	if len(groups["development"]) != 1 || groups["development"][0].Id != 5670 {
		t.Fatalf("task 5670 not in development bucket: %+v", groups)
	}
	if len(groups["design"]) != 0 {
		t.Errorf("task leaked into fallback bucket: %+v", groups["design"])
	}
}

func TestGroupByStage_FallbackDeterminism(t *testing.T) {
	// "Backlog" não casa com nenhuma coluna: vai sempre para a
	// primeira, independente da posição na lista de tasks.
	orders := [][]models.Task{
		{
			stageTask(1, models.FlexField{Value: "Backlog"}),
			stageTask(2, models.FlexField{Value: "QA"}),
		},
		{
			stageTask(2, models.FlexField{Value: "QA"}),
			stageTask(1, models.FlexField{Value: "Backlog"}),
		},
	}

	for i, tasks := range orders {
		groups := GroupByStage(tasks, stageCols())
		if len(groups["design"]) != 1 || groups["design"][0].Id != 1 {
			t.Errorf("order %d: fallback bucket = %+v, want task 1 in design", i, groups["design"])
		}
	}
}

func TestGroup_EmptyColumnsPresent(t *testing.T) {
	groups := GroupByStage(nil, stageCols())

	if len(groups) != 4 {
		t.Fatalf("got %d buckets, want 4", len(groups))
	}
	for id, bucket := range groups {
		if bucket == nil {
			t.Errorf("bucket %q is nil, want empty slice", id)
		}
		if len(bucket) != 0 {
			t.Errorf("bucket %q not empty: %+v", id, bucket)
		}
	}
}

func TestGroupByStatus_InsertionOrderPreserved(t *testing.T) {
	tasks := []models.Task{
		{Id: 1, Status: models.FlexField{Value: "Pending"}},
		{Id: 2, Status: models.FlexField{Value: "to-do"}},
		{Id: 3, Status: models.FlexField{Value: "In Progress"}},
		{Id: 4, Status: models.FlexField{Value: "todo"}},
	}
	cols := []models.Column{
		{ID: "pending", Title: "Pending"},
		{ID: "ongoing", Title: "Ongoing"},
		{ID: "completed", Title: "Completed"},
	}

	groups := GroupByStatus(tasks, cols)

	pending := groups["pending"]
	if len(pending) != 3 {
		t.Fatalf("pending bucket = %d tasks, want 3", len(pending))
	}
	for i, wantId := range []int64{1, 2, 4} {
		if pending[i].Id != wantId {
			t.Errorf("pending[%d].Id = %d, want %d", i, pending[i].Id, wantId)
		}
	}
}

func TestStageColumns_DefaultsWhenEmpty(t *testing.T) {
	cols := StageColumns(nil)
	if len(cols) != 4 || cols[0].ID != "design" || cols[3].ID != "qa" {
		t.Fatalf("default stage columns wrong: %+v", cols)
	}

	dynamic := StageColumns([]models.StageDef{
		{Id: 49, Title: "Development"},
		{Id: 51, Title: "Release"},
	})
	if len(dynamic) != 2 {
		t.Fatalf("dynamic columns = %d, want 2", len(dynamic))
	}
	if dynamic[0].ID != "development" || dynamic[1].ID != "release" {
		t.Errorf("dynamic column ids wrong: %+v", dynamic)
	}
}

func TestStageColumns_CollidingTitlesCollapse(t *testing.T) {
	// "Development" e "Dev" dobram para o mesmo stage canônico: viram
	// uma coluna só, senão o mesmo balde aparece duas vezes no quadro.
	cols := StageColumns([]models.StageDef{
		{Id: 49, Title: "Development"},
		{Id: 52, Title: "Dev"},
		{Id: 50, Title: "QA"},
	})

	if len(cols) != 2 {
		t.Fatalf("got %d columns, want 2: %+v", len(cols), cols)
	}
	if cols[0].ID != "development" || cols[0].Title != "Development" {
		t.Errorf("first colliding title should win: %+v", cols[0])
	}
	if cols[1].ID != "qa" {
		t.Errorf("columns = %+v", cols)
	}

	seen := map[string]bool{}
	for _, c := range cols {
		if seen[c.ID] {
			t.Errorf("duplicate column id %q", c.ID)
		}
		seen[c.ID] = true
	}
}

package taskhub

import (
	"encoding/json"

	"github.com/TWRT/taskboard/internal/models"
)

// envelope é a resposta padrão do TaskHub. O campo de resultado
// aparece como "status" ou "result" dependendo do endpoint, então a
// checagem cobre os dois e ninguém rio abaixo precisa saber disso.
type envelope struct {
	Status  string          `json:"status"`
	Result  string          `json:"result"`
	Message string          `json:"message"`
	TaskID  int64           `json:"task_id"`
	Records json.RawMessage `json:"records"`
}

func (e *envelope) ok() bool {
	s := e.Status
	if s == "" {
		s = e.Result
	}
	return s == "success"
}

type hubTask struct {
	ID              int64             `json:"id"`
	Title           string            `json:"title"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	Status          models.FlexField  `json:"status"`
	Stage           models.FlexField  `json:"stage"`
	Priority        models.FlexField  `json:"priority"`
	Project         models.FlexField  `json:"project"`
	Assignees       []hubMember       `json:"assignees"`
	DueDate         string            `json:"due_date"`
	Progress        *float64          `json:"progress"`
	TimePercentages *float64          `json:"time_percentages"`
}

type hubMember struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	ProfilePic string `json:"profile_pic"`
}

type hubProject struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

type hubStage struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (m hubMember) displayName() string {
	if m.Name != "" {
		return m.Name
	}
	name := m.FirstName
	if m.LastName != "" {
		if name != "" {
			name += " "
		}
		name += m.LastName
	}
	return name
}

func (t hubTask) toModel() models.Task {
	title := t.Title
	if title == "" {
		title = t.Name
	}

	assignees := make([]models.Assignee, 0, len(t.Assignees))
	for _, a := range t.Assignees {
		assignees = append(assignees, models.Assignee{
			ID:         a.ID,
			Name:       a.displayName(),
			Email:      a.Email,
			ProfilePic: a.ProfilePic,
		})
	}

	progress := 0.0
	if t.Progress != nil {
		progress = *t.Progress
	} else if t.TimePercentages != nil {
		progress = *t.TimePercentages
	}

	return models.Task{
		Id:          t.ID,
		Title:       title,
		Description: t.Description,
		Status:      t.Status,
		Stage:       t.Stage,
		Priority:    t.Priority,
		Project:     t.Project,
		Assignees:   assignees,
		DueDate:     t.DueDate,
		Progress:    progress,
	}
}

func (p hubProject) toModel() models.Project {
	name := p.Name
	if name == "" {
		name = p.Title
	}
	return models.Project{
		Id:          p.ID,
		Name:        name,
		Description: p.Description,
		Status:      p.Status,
	}
}

func (s hubStage) toModel() models.StageDef {
	title := s.Title
	if title == "" {
		title = s.Name
	}
	if title == "" {
		title = s.Value
	}
	return models.StageDef{Id: s.ID, Title: title}
}

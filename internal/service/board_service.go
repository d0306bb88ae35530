package service

import (
	"context"
	"fmt"
	"time"

	"github.com/TWRT/taskboard/internal/board"
	"github.com/TWRT/taskboard/internal/cache"
	"github.com/TWRT/taskboard/internal/client"
	"github.com/TWRT/taskboard/internal/models"
	"github.com/TWRT/taskboard/internal/normalize"
	"github.com/TWRT/taskboard/internal/repository"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

type BoardService struct {
	store  *cache.Store
	labels *repository.LabelRepository
	prefs  *repository.PrefRepository
	log    *logrus.Logger
}

func NewBoardService(
	store *cache.Store,
	labels *repository.LabelRepository,
	prefs *repository.PrefRepository,
	log *logrus.Logger,
) *BoardService {
	return &BoardService{
		store:  store,
		labels: labels,
		prefs:  prefs,
		log:    log,
	}
}

type TaskView struct {
	models.Task
	DueIn    string         `json:"due_in,omitempty"`
	Updating bool           `json:"updating"`
	Labels   []models.Label `json:"labels,omitempty"`
}

type ColumnView struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Collapsed bool       `json:"collapsed"`
	Tasks     []TaskView `json:"tasks"`
}

type BoardView struct {
	State         string           `json:"state"`
	Message       string           `json:"message,omitempty"`
	Project       string           `json:"project,omitempty"`
	Projects      []models.Project `json:"projects"`
	GroupBy       string           `json:"group_by"`
	StageFallback bool             `json:"stage_fallback,omitempty"`
	Columns       []ColumnView     `json:"columns"`
}

func (s *BoardService) columnsFor(groupBy string) []models.Column {
	if groupBy == "stage" {
		return s.store.StageCols()
	}
	return normalize.StatusColumns()
}

func boardKey(groupBy, project string) string {
	return groupBy + "|" + normalize.String(project)
}

// GetBoard monta o quadro completo: refresh, filtros, agrupamento e
// resolução de labels locais. Falha de busca vira estado de erro na
// view, nunca panic nem view nula — só email ausente é erro de
// validação de verdade.
func (s *BoardService) GetBoard(ctx context.Context, email, dateRange, project, groupBy string, f board.Filters) (*BoardView, error) {
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if groupBy != "stage" {
		groupBy = "status"
	}

	if project != "" {
		s.store.SelectProject(project)
	}

	if err := s.store.Refresh(ctx, email, dateRange); err != nil {
		s.log.Warnf("board refresh failed: %v", err)
	}

	state, cause := s.store.State()
	view := &BoardView{
		State:    state.String(),
		Message:  cause,
		Project:  s.store.SelectedProject(),
		Projects: s.store.Projects(),
		GroupBy:  groupBy,
	}

	cols := s.columnsFor(groupBy)
	fallback, _ := s.store.StagesFallback()
	view.StageFallback = groupBy == "stage" && fallback

	if state == cache.StateEmpty {
		// Estado "sem projetos" explícito: colunas vazias e mensagem,
		// não um quadro vazio mudo.
		for _, c := range cols {
			view.Columns = append(view.Columns, ColumnView{ID: c.ID, Title: c.Title, Tasks: []TaskView{}})
		}
		return view, nil
	}

	filtered := board.Apply(s.store.Tasks(), f)

	var groups map[string][]models.Task
	if groupBy == "stage" {
		groups = board.GroupByStage(filtered, cols)
	} else {
		groups = board.GroupByStatus(filtered, cols)
	}

	collapsed, err := s.prefs.GetCollapsed(boardKey(groupBy, view.Project))
	if err != nil {
		s.log.Warnf("collapse prefs read failed: %v", err)
		collapsed = map[string]bool{}
	}

	for _, c := range cols {
		cv := ColumnView{
			ID:        c.ID,
			Title:     c.Title,
			Collapsed: collapsed[c.ID],
			Tasks:     make([]TaskView, 0, len(groups[c.ID])),
		}
		for _, t := range groups[c.ID] {
			cv.Tasks = append(cv.Tasks, s.taskView(t))
		}
		view.Columns = append(view.Columns, cv)
	}
	return view, nil
}

func (s *BoardService) taskView(t models.Task) TaskView {
	tags := t.Tags
	if stored, err := s.labels.TagsFor(t.Id); err == nil && len(stored) > 0 {
		tags = stored
	}

	var resolved []models.Label
	if len(tags) > 0 {
		if labels, err := s.labels.ResolveByName(tags); err == nil {
			resolved = labels
		}
	}

	t.Tags = tags
	return TaskView{
		Task:     t,
		DueIn:    humanizeDue(t.DueDate),
		Updating: s.store.Updating(t.Id),
		Labels:   resolved,
	}
}

func humanizeDue(dueDate string) string {
	if dueDate == "" {
		return ""
	}
	t, err := time.Parse("2006-01-02", dueDate)
	if err != nil {
		return ""
	}
	return humanize.Time(t)
}

func (s *BoardService) MoveTask(ctx context.Context, email string, taskId int64, dropTarget, groupBy string) (bool, error) {
	kind := cache.MoveStatus
	if groupBy == "stage" {
		kind = cache.MoveStage
	}
	return s.store.MoveTask(ctx, email, taskId, dropTarget, s.columnsFor(groupBy), kind)
}

func (s *BoardService) CreateTask(ctx context.Context, input models.NewTask) (*client.CreateResult, error) {
	return s.store.CreateTask(ctx, input)
}

func (s *BoardService) SaveAssignees(ctx context.Context, email string, taskId int64, pending []int64) (bool, error) {
	// Garante o time carregado para promover a lista pending com
	// nome/email; falha aqui não impede o save.
	if len(s.store.Members()) == 0 {
		if err := s.store.RefreshMembers(ctx, email); err != nil {
			s.log.Warnf("members refresh before assignee save failed: %v", err)
		}
	}
	return s.store.SaveAssignees(ctx, email, taskId, pending)
}

func (s *BoardService) DeleteTask(ctx context.Context, email string, taskId int64) error {
	return s.store.DeleteTask(ctx, email, taskId)
}

// ApplyLabels persiste as tags locais e ecoa no cache. Erro de escrita
// local é engolido com log, por desenho: label é anotação de UI.
func (s *BoardService) ApplyLabels(taskId int64, tags []string) {
	if err := s.labels.SetTags(taskId, tags); err != nil {
		s.log.Warnf("label persist failed (task %d): %v", taskId, err)
	}
	s.store.SetTaskTags(taskId, tags)
}

func (s *BoardService) Members(ctx context.Context, email string) ([]models.Member, error) {
	if err := s.store.RefreshMembers(ctx, email); err != nil {
		return nil, err
	}
	return s.store.Members(), nil
}

func (s *BoardService) Projects() []models.Project {
	return s.store.Projects()
}

func (s *BoardService) Stages() []models.StageDef {
	return s.store.Stages()
}

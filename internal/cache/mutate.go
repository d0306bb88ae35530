package cache

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"

	"github.com/TWRT/taskboard/internal/client"
	"github.com/TWRT/taskboard/internal/models"
	"github.com/TWRT/taskboard/internal/normalize"
	"github.com/google/uuid"
)

type MoveKind int

const (
	MoveStatus MoveKind = iota
	MoveStage
)

func (k MoveKind) String() string {
	if k == MoveStage {
		return "stage"
	}
	return "status"
}

func canonicalFor(t models.Task, kind MoveKind) string {
	if kind == MoveStage {
		return normalize.CanonicalStage(normalize.Value(t.Stage))
	}
	return normalize.CanonicalStatus(normalize.Value(t.Status))
}

// resolveTargetLocked traduz o alvo do drop em coluna: pode ser o id
// da coluna ou o id de outra task, caso em que vale o balde atual
// dessa task (incluindo o fallback de primeira coluna).
func (s *Store) resolveTargetLocked(dropTarget string, cols []models.Column, kind MoveKind) (models.Column, bool) {
	if idx, ok := normalize.MatchColumn(dropTarget, cols); ok {
		return cols[idx], true
	}

	if id, err := strconv.ParseInt(dropTarget, 10, 64); err == nil {
		if i, ok := s.findTaskLocked(id); ok {
			idx, ok2 := normalize.MatchColumn(canonicalFor(s.tasks[i], kind), cols)
			if !ok2 {
				idx = 0
			}
			return cols[idx], true
		}
	}

	return models.Column{}, false
}

// MoveTask é o caminho do drag-and-drop. Não há mutação local
// otimista aqui: a coluna visível é função do último fetch, então
// falha remota só limpa o marcador de "updating" e o quadro volta a
// mostrar a coluna pré-drag. Sucesso dispara refetch imediato com
// seq novo (read-your-writes), sem sleep.
func (s *Store) MoveTask(ctx context.Context, email string, taskId int64, dropTarget string, cols []models.Column, kind MoveKind) (bool, error) {
	if email == "" {
		return false, fmt.Errorf("email is required")
	}
	if len(cols) == 0 {
		return false, fmt.Errorf("no columns to move into")
	}

	opId := uuid.NewString()

	s.mu.Lock()
	i, ok := s.findTaskLocked(taskId)
	if !ok {
		s.mu.Unlock()
		return false, fmt.Errorf("task %d not found", taskId)
	}

	target, ok := s.resolveTargetLocked(dropTarget, cols, kind)
	if !ok {
		s.mu.Unlock()
		return false, fmt.Errorf("unknown drop target %q", dropTarget)
	}

	// No-op guard: soltar na coluna onde a task já está não gera
	// chamada remota nem marcador.
	if canonicalFor(s.tasks[i], kind) == normalize.String(target.ID) {
		s.mu.Unlock()
		return false, nil
	}

	s.updating[taskId] = true
	dateRange := s.dateRange
	project := s.selectedProject
	s.mu.Unlock()

	var status, stage string
	if kind == MoveStage {
		stage = target.ID
	} else {
		status = target.ID
	}

	err := s.provider.UpdateTaskState(ctx, email, taskId, status, stage)

	s.mu.Lock()
	delete(s.updating, taskId)
	s.mu.Unlock()

	if err != nil {
		s.log.Warnf("move %s failed (op %s, task %d → %s): %v", kind, opId, taskId, target.ID, err)
		return false, err
	}

	s.log.Infof("move %s committed (op %s, task %d → %s)", kind, opId, taskId, target.ID)

	if ferr := s.fetchTasks(ctx, email, dateRange, project); ferr != nil {
		// O update remoto foi confirmado; só o refetch falhou. O
		// quadro fica stale até a próxima busca.
		s.log.Warnf("refetch after move failed (op %s): %v", opId, ferr)
	}
	return true, nil
}

// SaveAssignees reconcilia a lista "pending" do dropdown com a
// confirmada: uma chamada combinada só quando o diff é não-vazio.
// Sucesso promove a pending; falha deixa a confirmada intocada.
func (s *Store) SaveAssignees(ctx context.Context, email string, taskId int64, pending []int64) (bool, error) {
	if email == "" {
		return false, fmt.Errorf("email is required")
	}

	s.mu.Lock()
	i, ok := s.findTaskLocked(taskId)
	if !ok {
		s.mu.Unlock()
		return false, fmt.Errorf("task %d not found", taskId)
	}

	current := make(map[int64]models.Assignee, len(s.tasks[i].Assignees))
	for _, a := range s.tasks[i].Assignees {
		current[a.ID] = a
	}
	pendingSet := make(map[int64]bool, len(pending))
	for _, id := range pending {
		pendingSet[id] = true
	}

	var toAssign, toUnassign []int64
	for _, id := range pending {
		if _, ok := current[id]; !ok {
			toAssign = append(toAssign, id)
		}
	}
	for _, a := range s.tasks[i].Assignees {
		if !pendingSet[a.ID] {
			toUnassign = append(toUnassign, a.ID)
		}
	}

	if len(toAssign) == 0 && len(toUnassign) == 0 {
		s.mu.Unlock()
		return false, nil
	}

	members := make(map[int64]models.Member, len(s.members))
	for _, m := range s.members {
		members[m.ID] = m
	}
	s.mu.Unlock()

	if err := s.provider.UpdateAssignees(ctx, email, taskId, toAssign, toUnassign); err != nil {
		// A badge visível segue a lista confirmada; falha fica só
		// no log.
		s.log.Warnf("assignee save failed (task %d): %v", taskId, err)
		return false, err
	}

	promoted := make([]models.Assignee, 0, len(pending))
	for _, id := range pending {
		if a, ok := current[id]; ok {
			promoted = append(promoted, a)
			continue
		}
		if m, ok := members[id]; ok {
			promoted = append(promoted, models.Assignee{
				ID:         m.ID,
				Name:       m.Name,
				Email:      m.Email,
				ProfilePic: m.ProfilePic,
			})
			continue
		}
		promoted = append(promoted, models.Assignee{ID: id})
	}

	s.mu.Lock()
	if j, ok := s.findTaskLocked(taskId); ok {
		s.tasks[j].Assignees = promoted
	}
	s.mu.Unlock()
	return true, nil
}

// CreateTask aplica a tricotomia real/mock/falha. Mock insere um
// registro sintetizado direto no cache, sem refetch; sucesso real
// dispara refetch; falha não toca o cache.
func (s *Store) CreateTask(ctx context.Context, input models.NewTask) (*client.CreateResult, error) {
	res, err := s.provider.CreateTask(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	switch res.Outcome {
	case client.CreateMock:
		t := synthesizeTask(input)
		s.mu.Lock()
		s.tasks = append(s.tasks, t)
		s.mu.Unlock()
		s.log.Infof("create returned mock response, synthesized task %d locally", t.Id)

	case client.CreateConfirmed:
		s.mu.Lock()
		email := s.email
		dateRange := s.dateRange
		project := s.selectedProject
		s.mu.Unlock()
		if ferr := s.fetchTasks(ctx, email, dateRange, project); ferr != nil {
			s.log.Warnf("refetch after create failed: %v", ferr)
		}

	case client.CreateFailed:
		s.log.Warnf("create task failed: %s", res.Message)
	}

	return res, nil
}

func synthesizeTask(input models.NewTask) models.Task {
	status := input.Status
	if status == "" {
		status = normalize.StatusPending
	}
	return models.Task{
		Id:          900_000_000 + rand.Int63n(100_000_000),
		Title:       input.Title,
		Description: input.Description,
		Status:      models.FlexField{Value: status},
		Stage:       models.FlexField{Value: input.Stage},
		Priority:    models.FlexField{Value: input.Priority},
		Project:     models.FlexField{Value: input.Project},
		DueDate:     input.DueDate,
		Synthetic:   true,
	}
}

// DeleteTask remove localmente só depois da confirmação remota.
func (s *Store) DeleteTask(ctx context.Context, email string, taskId int64) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}

	if err := s.provider.DeleteTask(ctx, email, taskId); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	s.mu.Lock()
	if i, ok := s.findTaskLocked(taskId); ok {
		s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	}
	s.mu.Unlock()
	return nil
}

// SetTaskTags ecoa as labels locais no cache para re-render imediato.
// Persistência é do repositório; aqui nunca falha.
func (s *Store) SetTaskTags(taskId int64, tags []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.findTaskLocked(taskId); ok {
		s.tasks[i].Tags = tags
	}
}

// SetTaskColor é o acento visual local, nunca enviado ao backend.
func (s *Store) SetTaskColor(taskId int64, color string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.findTaskLocked(taskId); ok {
		s.tasks[i].Color = color
	}
}

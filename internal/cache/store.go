package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/TWRT/taskboard/internal/board"
	"github.com/TWRT/taskboard/internal/client"
	"github.com/TWRT/taskboard/internal/models"
	"github.com/TWRT/taskboard/internal/normalize"
	"github.com/sirupsen/logrus"
)

// FetchState é o estado explícito do quadro. O caminho principal
// nunca troca falha por dados de demonstração: erro é erro, vazio é
// vazio, e só as listas de referência (stages) caem em fallback.
type FetchState int

const (
	StateIdle FetchState = iota
	StateLoaded
	StateEmpty
	StateError
	StateFallback
)

func (s FetchState) String() string {
	switch s {
	case StateLoaded:
		return "loaded"
	case StateEmpty:
		return "empty"
	case StateError:
		return "error"
	case StateFallback:
		return "fallback"
	default:
		return "idle"
	}
}

// Store é o dono da lista de tasks em memória. Toda mutação passa
// pelos métodos daqui; nenhum outro componente toca a lista direto.
type Store struct {
	mu       sync.Mutex
	provider client.BoardProvider
	log      *logrus.Logger

	tasks    []models.Task
	projects []models.Project
	members  []models.Member
	stages   []models.StageDef

	state      FetchState
	stateCause string

	stagesFallback bool
	stagesCause    string

	selectedProject string
	email           string
	dateRange       string

	// Cada busca carrega um seq monotônico; resposta que chega com
	// seq antigo é descartada em vez de sobrescrever estado mais novo.
	fetchSeq uint64

	updating map[int64]bool
}

func NewStore(provider client.BoardProvider, log *logrus.Logger) *Store {
	return &Store{
		provider: provider,
		log:      log,
		state:    StateIdle,
		updating: make(map[int64]bool),
	}
}

func errorCause(err error) string {
	if errors.Is(err, client.ErrTimeout) {
		return "API timeout"
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return "network error"
}

// SelectProject registra a seleção vinda da UI antes do Refresh.
func (s *Store) SelectProject(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedProject = name
}

// Refresh é a cascata completa: projetos → auto-seleção → stages →
// tasks. Zero projetos no período pula a busca de tasks de propósito
// (estado Empty, não Error).
func (s *Store) Refresh(ctx context.Context, email, dateRange string) error {
	if email == "" {
		s.mu.Lock()
		s.state = StateError
		s.stateCause = "email is required"
		s.mu.Unlock()
		return fmt.Errorf("email is required")
	}

	projects, err := s.provider.GetProjects(ctx, email, dateRange)
	if err != nil {
		s.mu.Lock()
		s.state = StateError
		s.stateCause = errorCause(err)
		s.mu.Unlock()
		return fmt.Errorf("refresh projects: %w", err)
	}

	s.mu.Lock()
	s.email = email
	s.dateRange = dateRange
	s.projects = projects

	if len(projects) == 0 {
		s.tasks = nil
		s.selectedProject = ""
		s.state = StateEmpty
		s.stateCause = "no projects in this date range"
		s.mu.Unlock()
		return nil
	}

	// Auto-seleção: seleção vazia, "all" ou que sumiu da lista nova
	// vira o primeiro projeto retornado.
	cur := normalize.String(s.selectedProject)
	if cur == "" || cur == "all" || !hasProject(projects, cur) {
		s.selectedProject = projects[0].Name
	}
	project := s.selectedProject
	projectId := projectIdByName(projects, project)
	s.mu.Unlock()

	stages, serr := s.provider.GetStages(ctx, projectId)
	s.mu.Lock()
	if serr != nil {
		s.stages = nil
		s.stagesFallback = true
		s.stagesCause = errorCause(serr)
		s.log.Warnf("stages fetch failed, using default stage set: %v", serr)
	} else {
		s.stages = stages
		s.stagesFallback = false
		s.stagesCause = ""
	}
	s.mu.Unlock()

	return s.fetchTasks(ctx, email, dateRange, project)
}

// fetchTasks substitui a lista inteira no sucesso. A resposta só é
// aplicada se ainda for a busca mais recente emitida.
func (s *Store) fetchTasks(ctx context.Context, email, dateRange, project string) error {
	s.mu.Lock()
	s.fetchSeq++
	seq := s.fetchSeq
	s.mu.Unlock()

	tasks, err := s.provider.GetTasks(ctx, email, dateRange, project)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.fetchSeq {
		s.log.Infof("discarding stale task fetch (seq %d, latest %d)", seq, s.fetchSeq)
		return nil
	}

	if err != nil {
		// Lista anterior fica como está: quadro stale é aceitável,
		// quadro inventado não.
		s.state = StateError
		s.stateCause = errorCause(err)
		return fmt.Errorf("fetch tasks: %w", err)
	}

	s.tasks = tasks
	s.state = StateLoaded
	s.stateCause = ""
	return nil
}

// RefreshMembers busca o time do projeto selecionado.
func (s *Store) RefreshMembers(ctx context.Context, email string) error {
	s.mu.Lock()
	projectId := projectIdByName(s.projects, s.selectedProject)
	s.mu.Unlock()

	members, err := s.provider.GetMembers(ctx, email, projectId)
	if err != nil {
		return fmt.Errorf("refresh members: %w", err)
	}

	s.mu.Lock()
	s.members = members
	s.mu.Unlock()
	return nil
}

func (s *Store) Tasks() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *Store) Projects() []models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Project, len(s.projects))
	copy(out, s.projects)
	return out
}

func (s *Store) Members() []models.Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Member, len(s.members))
	copy(out, s.members)
	return out
}

func (s *Store) Stages() []models.StageDef {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.StageDef, len(s.stages))
	copy(out, s.stages)
	return out
}

func (s *Store) State() (FetchState, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.stateCause
}

// StagesFallback informa se as colunas de stage em uso são o conjunto
// default por falha na busca, e qual foi a causa.
func (s *Store) StagesFallback() (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stagesFallback, s.stagesCause
}

func (s *Store) SelectedProject() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedProject
}

func (s *Store) Updating(taskId int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updating[taskId]
}

// StageCols materializa as colunas de stage vivas (dinâmicas ou o
// conjunto default).
func (s *Store) StageCols() []models.Column {
	return board.StageColumns(s.Stages())
}

func (s *Store) findTaskLocked(taskId int64) (int, bool) {
	for i, t := range s.tasks {
		if t.Id == taskId {
			return i, true
		}
	}
	return 0, false
}

func hasProject(projects []models.Project, normName string) bool {
	for _, p := range projects {
		if normalize.String(p.Name) == normName {
			return true
		}
	}
	return false
}

func projectIdByName(projects []models.Project, name string) int64 {
	n := normalize.String(name)
	for _, p := range projects {
		if normalize.String(p.Name) == n {
			return p.Id
		}
	}
	return 0
}

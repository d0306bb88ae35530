package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/TWRT/taskboard/internal/models"
)

// ErrTimeout marca chamadas abortadas pelo timeout do cliente; a UI
// mostra essa causa separada das outras falhas de rede.
var ErrTimeout = errors.New("request timed out")

// APIError é o envelope de falha devolvido pelo backend (HTTP ok,
// status "failure").
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("API error status: %d", e.StatusCode)
}

// CreateOutcome é a tricotomia de criação de task: confirmada de
// verdade, "mock" sintetizado pelo backend, ou falha.
type CreateOutcome int

const (
	CreateFailed CreateOutcome = iota
	CreateConfirmed
	CreateMock
)

func (o CreateOutcome) String() string {
	switch o {
	case CreateConfirmed:
		return "confirmed"
	case CreateMock:
		return "mock"
	default:
		return "failed"
	}
}

type CreateResult struct {
	Outcome CreateOutcome
	TaskID  int64
	Message string
}

type TaskProvider interface {
	GetTasks(ctx context.Context, email, dateRange, project string) ([]models.Task, error)
}

type ProjectProvider interface {
	GetProjects(ctx context.Context, email, dateRange string) ([]models.Project, error)
}

type MemberProvider interface {
	GetMembers(ctx context.Context, email string, projectId int64) ([]models.Member, error)
}

type StageProvider interface {
	GetStages(ctx context.Context, projectId int64) ([]models.StageDef, error)
}

type TaskWriter interface {
	CreateTask(ctx context.Context, input models.NewTask) (*CreateResult, error)
	UpdateTaskState(ctx context.Context, email string, taskId int64, status, stage string) error
	UpdateAssignees(ctx context.Context, email string, taskId int64, assign, unassign []int64) error
	DeleteTask(ctx context.Context, email string, taskId int64) error
}

type BoardProvider interface {
	TaskProvider
	ProjectProvider
	MemberProvider
	StageProvider
	TaskWriter
}

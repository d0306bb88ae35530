package taskhub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/TWRT/taskboard/internal/client"
	"github.com/TWRT/taskboard/internal/models"
	"github.com/TWRT/taskboard/internal/normalize"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// Tabela fixa de ids internos do TaskHub para status/stage. O update
// de estado só aceita o id numérico, não a chave canônica.
var statusIds = map[string]int{
	"pending":   1,
	"ongoing":   2,
	"completed": 3,
}

var stageIds = map[string]int{
	"design":      47,
	"html":        48,
	"development": 49,
	"qa":          50,
}

// IsMockResponse detecta a resposta "mock" do endpoint de criação.
// A heurística de texto é frágil e acopla o cliente ao wording do
// servidor; fica isolada aqui até o backend expor um campo explícito.
func IsMockResponse(message string) bool {
	return strings.Contains(strings.ToLower(message), "mock response")
}

type TaskHubClient struct {
	baseUrl    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	maxRetries int
}

func NewTaskHubClient(baseUrl, token string) *TaskHubClient {
	return &TaskHubClient{
		baseUrl:    strings.TrimSuffix(baseUrl, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 20 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(10), 5),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "TaskHubCB",
			MaxRequests: 1,
			Timeout:     5 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 3
			},
			// Erro de requisição inválida (4xx, fora 429) é culpa do
			// caller, não sinal de backend doente: não conta para
			// abrir o circuito.
			IsSuccessful: func(err error) bool {
				if err == nil {
					return true
				}
				var apiErr *client.APIError
				if errors.As(err, &apiErr) {
					return apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 &&
						apiErr.StatusCode != http.StatusTooManyRequests
				}
				return false
			},
		}),
		maxRetries: 3,
	}
}

func classify(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", client.ErrTimeout, err)
	}
	return err
}

func retryable(err error) bool {
	if errors.Is(err, client.ErrTimeout) || errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		// 4xx nunca é retentado; 429 e 5xx são
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	return true
}

func (c *TaskHubClient) doRequest(ctx context.Context, method, path string, query url.Values, body []byte, contentType string) (*envelope, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		var lastErr error
		for attempt := 0; attempt <= c.maxRetries; attempt++ {
			env, err := c.doOnce(ctx, method, path, query, body, contentType)
			if err == nil {
				return env, nil
			}
			lastErr = err
			if !retryable(err) {
				return nil, err
			}
			backoff := time.Duration(1<<uint(attempt)) * 200 * time.Millisecond
			select {
			case <-ctx.Done():
				return nil, classify(ctx.Err())
			case <-time.After(backoff):
			}
		}
		return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
	})
	if err != nil {
		return nil, err
	}
	return result.(*envelope), nil
}

func (c *TaskHubClient) doOnce(ctx context.Context, method, path string, query url.Values, body []byte, contentType string) (*envelope, error) {
	fullUrl := c.baseUrl + path
	if len(query) > 0 {
		fullUrl += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullUrl, reader)
	if err != nil {
		return nil, fmt.Errorf("build request (taskhub): %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classify(fmt.Errorf("request (taskhub): %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body (taskhub): %w", err)
	}

	var env envelope
	if resp.StatusCode != http.StatusOK {
		if err := json.Unmarshal(respBody, &env); err == nil && env.Message != "" {
			return nil, &client.APIError{StatusCode: resp.StatusCode, Message: env.Message}
		}
		return nil, &client.APIError{StatusCode: resp.StatusCode}
	}

	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, fmt.Errorf("parse response (taskhub): %w", err)
	}
	return &env, nil
}

// checkOk converte envelope de falha em APIError; nada rio abaixo
// precisa olhar status/result de novo.
func checkOk(env *envelope) error {
	if env.ok() {
		return nil
	}
	return &client.APIError{StatusCode: http.StatusOK, Message: env.Message}
}

func (c *TaskHubClient) GetTasks(ctx context.Context, email, dateRange, project string) ([]models.Task, error) {
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	query := url.Values{}
	query.Set("email", email)
	if dateRange != "" {
		query.Set("date_range", dateRange)
	}
	if project != "" {
		query.Set("project", project)
	}

	env, err := c.doRequest(ctx, http.MethodGet, "/tasks", query, nil, "")
	if err != nil {
		return nil, fmt.Errorf("get tasks (taskhub): %w", err)
	}
	if err := checkOk(env); err != nil {
		return nil, fmt.Errorf("get tasks (taskhub): %w", err)
	}

	var records []hubTask
	if len(env.Records) > 0 {
		if err := json.Unmarshal(env.Records, &records); err != nil {
			return nil, fmt.Errorf("parse tasks (taskhub): %w", err)
		}
	}

	tasks := make([]models.Task, len(records))
	for i, r := range records {
		tasks[i] = r.toModel()
	}
	return tasks, nil
}

func (c *TaskHubClient) GetProjects(ctx context.Context, email, dateRange string) ([]models.Project, error) {
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	query := url.Values{}
	query.Set("email", email)
	if dateRange != "" {
		query.Set("date_range", dateRange)
	}

	env, err := c.doRequest(ctx, http.MethodGet, "/projects", query, nil, "")
	if err != nil {
		return nil, fmt.Errorf("get projects (taskhub): %w", err)
	}
	if err := checkOk(env); err != nil {
		return nil, fmt.Errorf("get projects (taskhub): %w", err)
	}

	var records []hubProject
	if len(env.Records) > 0 {
		if err := json.Unmarshal(env.Records, &records); err != nil {
			return nil, fmt.Errorf("parse projects (taskhub): %w", err)
		}
	}

	projects := make([]models.Project, len(records))
	for i, r := range records {
		projects[i] = r.toModel()
	}
	return projects, nil
}

func (c *TaskHubClient) GetMembers(ctx context.Context, email string, projectId int64) ([]models.Member, error) {
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	query := url.Values{}
	query.Set("email", email)
	if projectId != 0 {
		query.Set("project_id", strconv.FormatInt(projectId, 10))
	}

	env, err := c.doRequest(ctx, http.MethodGet, "/team/members", query, nil, "")
	if err != nil {
		return nil, fmt.Errorf("get members (taskhub): %w", err)
	}
	if err := checkOk(env); err != nil {
		return nil, fmt.Errorf("get members (taskhub): %w", err)
	}

	var records []hubMember
	if len(env.Records) > 0 {
		if err := json.Unmarshal(env.Records, &records); err != nil {
			return nil, fmt.Errorf("parse members (taskhub): %w", err)
		}
	}

	members := make([]models.Member, len(records))
	for i, r := range records {
		members[i] = models.Member{
			ID:         r.ID,
			Name:       r.displayName(),
			Email:      r.Email,
			ProfilePic: r.ProfilePic,
		}
	}
	return members, nil
}

func (c *TaskHubClient) GetStages(ctx context.Context, projectId int64) ([]models.StageDef, error) {
	query := url.Values{}
	query.Set("project_id", strconv.FormatInt(projectId, 10))

	env, err := c.doRequest(ctx, http.MethodGet, "/stages", query, nil, "")
	if err != nil {
		return nil, fmt.Errorf("get stages (taskhub): %w", err)
	}
	if err := checkOk(env); err != nil {
		return nil, fmt.Errorf("get stages (taskhub): %w", err)
	}

	var records []hubStage
	if len(env.Records) > 0 {
		if err := json.Unmarshal(env.Records, &records); err != nil {
			return nil, fmt.Errorf("parse stages (taskhub): %w", err)
		}
	}

	stages := make([]models.StageDef, len(records))
	for i, r := range records {
		stages[i] = r.toModel()
	}
	return stages, nil
}

func (c *TaskHubClient) CreateTask(ctx context.Context, input models.NewTask) (*client.CreateResult, error) {
	if input.Email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if input.Title == "" {
		return nil, fmt.Errorf("title is required")
	}

	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("marshal create task request (taskhub): %w", err)
	}

	env, err := c.doRequest(ctx, http.MethodPost, "/tasks/create", nil, body, "application/json")
	if err != nil {
		return nil, fmt.Errorf("create task (taskhub): %w", err)
	}

	if !env.ok() {
		return &client.CreateResult{Outcome: client.CreateFailed, Message: env.Message}, nil
	}
	if IsMockResponse(env.Message) {
		return &client.CreateResult{Outcome: client.CreateMock, Message: env.Message}, nil
	}
	return &client.CreateResult{Outcome: client.CreateConfirmed, TaskID: env.TaskID, Message: env.Message}, nil
}

// UpdateTaskState manda status e/ou stage novos. Esse endpoint do
// TaskHub só aceita corpo form-encoded, diferente dos demais.
func (c *TaskHubClient) UpdateTaskState(ctx context.Context, email string, taskId int64, status, stage string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if status == "" && stage == "" {
		return fmt.Errorf("status or stage is required")
	}

	form := url.Values{}
	form.Set("email", email)
	form.Set("task_id", strconv.FormatInt(taskId, 10))
	if status != "" {
		id, ok := statusIds[normalize.CanonicalStatus(status)]
		if !ok {
			return fmt.Errorf("unknown status %q", status)
		}
		form.Set("status", strconv.Itoa(id))
	}
	if stage != "" {
		id, ok := stageIds[normalize.CanonicalStage(stage)]
		if !ok {
			return fmt.Errorf("unknown stage %q", stage)
		}
		form.Set("stage", strconv.Itoa(id))
	}

	env, err := c.doRequest(ctx, http.MethodPost, "/tasks/update", nil,
		[]byte(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return fmt.Errorf("update task state (taskhub): %w", err)
	}
	if err := checkOk(env); err != nil {
		return fmt.Errorf("update task state (taskhub): %w", err)
	}
	return nil
}

func (c *TaskHubClient) UpdateAssignees(ctx context.Context, email string, taskId int64, assign, unassign []int64) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if len(assign) == 0 && len(unassign) == 0 {
		return fmt.Errorf("empty assignee diff")
	}

	payload := map[string]interface{}{
		"email":          email,
		"task_id":        taskId,
		"assign_users":   assign,
		"unassign_users": unassign,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal assignees request (taskhub): %w", err)
	}

	env, err := c.doRequest(ctx, http.MethodPost, "/tasks/assign", nil, body, "application/json")
	if err != nil {
		return fmt.Errorf("update assignees (taskhub): %w", err)
	}
	if err := checkOk(env); err != nil {
		return fmt.Errorf("update assignees (taskhub): %w", err)
	}
	return nil
}

func (c *TaskHubClient) DeleteTask(ctx context.Context, email string, taskId int64) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}

	query := url.Values{}
	query.Set("email", email)
	query.Set("task_id", strconv.FormatInt(taskId, 10))

	env, err := c.doRequest(ctx, http.MethodDelete, "/tasks", query, nil, "")
	if err != nil {
		return fmt.Errorf("delete task (taskhub): %w", err)
	}
	if err := checkOk(env); err != nil {
		return fmt.Errorf("delete task (taskhub): %w", err)
	}
	return nil
}

package taskhub

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/TWRT/taskboard/internal/client"
	"github.com/TWRT/taskboard/internal/models"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const testToken = "test-token"

func testNewTask() models.NewTask {
	return models.NewTask{
		Email:   "ana@example.com",
		Title:   "New feature",
		Project: "Website Redesign",
	}
}

func newTestClient(baseUrl string) *TaskHubClient {
	// Cliente novo por teste: o breaker não pode carregar falhas de
	// um caso para o outro.
	return NewTaskHubClient(baseUrl, testToken)
}

func TestGetTasks_EnvelopeStatusField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer "+testToken {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.URL.Query().Get("email"); got != "ana@example.com" {
			t.Errorf("email query = %q", got)
		}
		w.Write([]byte(`{
			"status": "success",
			"records": [
				{"id": 5670, "title": "Implement search", "status": {"id": 2, "value": "On-going"}},
				{"id": 5671, "name": "Alt title field", "status": "pending"}
			]
		}`))
	}))
	defer server.Close()

	tasks, err := newTestClient(server.URL).GetTasks(context.Background(), "ana@example.com", "", "")
	if err != nil {
		t.Fatalf("GetTasks: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("got %d tasks, want 2", len(tasks))
	}
	if tasks[0].Id != 5670 || tasks[0].Status.ID != 2 {
		t.Errorf("task[0] = %+v", tasks[0])
	}
	if tasks[1].Title != "Alt title field" {
		t.Errorf("name fallback not applied: %+v", tasks[1])
	}
}

func TestGetTasks_EnvelopeResultField(t *testing.T) {
	// Alguns endpoints respondem "result" em vez de "status"; os dois
	// têm que ser aceitos.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result": "success", "records": []}`))
	}))
	defer server.Close()

	tasks, err := newTestClient(server.URL).GetTasks(context.Background(), "ana@example.com", "", "")
	if err != nil {
		t.Fatalf("GetTasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("got %d tasks, want 0", len(tasks))
	}
}

func TestGetTasks_FailureEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "failure", "message": "invalid date range"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetTasks(context.Background(), "ana@example.com", "bad", "")
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "invalid date range" {
		t.Errorf("err = %v, want APIError with server message", err)
	}
}

func TestGetTasks_MissingEmailSkipsNetwork(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL).GetTasks(context.Background(), "", "", ""); err == nil {
		t.Fatal("expected validation error")
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Errorf("validation failure reached the server %d times", calls)
	}
}

func TestDoRequest_NoRetryOn4xx(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message": "bad request"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetTasks(context.Background(), "ana@example.com", "", "")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("4xx was retried: %d calls", got)
	}

	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("err = %v, want APIError 400", err)
	}
}

func TestBreaker_ClientErrorsDoNotOpenCircuit(t *testing.T) {
	var failing int32 = 1
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.LoadInt32(&failing) == 1 {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"message": "bad request"}`))
			return
		}
		w.Write([]byte(`{"status": "success", "records": []}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	// Uma sequência de 4xx não pode abrir o circuito para chamadas
	// válidas subsequentes.
	for i := 0; i < 5; i++ {
		_, err := c.GetTasks(context.Background(), "ana@example.com", "", "")
		var apiErr *client.APIError
		if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
			t.Fatalf("call %d: err = %v, want APIError 400 (circuit must stay closed)", i, err)
		}
	}

	atomic.StoreInt32(&failing, 0)
	if _, err := c.GetTasks(context.Background(), "ana@example.com", "", ""); err != nil {
		t.Fatalf("valid call after client errors failed: %v", err)
	}
}

func TestDoRequest_RetriesOn5xx(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"status": "success", "records": []}`))
	}))
	defer server.Close()

	tasks, err := newTestClient(server.URL).GetTasks(context.Background(), "ana@example.com", "", "")
	if err != nil {
		t.Fatalf("GetTasks: %v", err)
	}
	if tasks == nil {
		t.Fatal("expected empty slice after retry")
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("got %d calls, want 2 (one retry)", got)
	}
}

func TestDoRequest_TimeoutMapsToSentinel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"status": "success"}`))
	}))
	defer server.Close()

	c := &TaskHubClient{
		baseUrl:    server.URL,
		token:      testToken,
		httpClient: &http.Client{Timeout: 30 * time.Millisecond},
		limiter:    rate.NewLimiter(rate.Inf, 1),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name: "TestCB",
		}),
		maxRetries: 0,
	}

	_, err := c.GetTasks(context.Background(), "ana@example.com", "", "")
	if !errors.Is(err, client.ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
}

func TestUpdateTaskState_FormEncodedWithIds(t *testing.T) {
	var gotContentType, gotStatus, gotStage, gotTaskId string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		r.ParseForm()
		gotStatus = r.PostFormValue("status")
		gotStage = r.PostFormValue("stage")
		gotTaskId = r.PostFormValue("task_id")
		w.Write([]byte(`{"status": "success"}`))
	}))
	defer server.Close()

	// Sinônimo cru do quadro: "In Progress" dobra para ongoing → 2.
	err := newTestClient(server.URL).UpdateTaskState(context.Background(), "ana@example.com", 5670, "In Progress", "")
	if err != nil {
		t.Fatalf("UpdateTaskState: %v", err)
	}

	if gotContentType != "application/x-www-form-urlencoded" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if gotStatus != "2" || gotStage != "" {
		t.Errorf("status = %q, stage = %q; want 2 and empty", gotStatus, gotStage)
	}
	if gotTaskId != "5670" {
		t.Errorf("task_id = %q", gotTaskId)
	}
}

func TestUpdateTaskState_StageIds(t *testing.T) {
	var gotStage string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		gotStage = r.PostFormValue("stage")
		w.Write([]byte(`{"status": "success"}`))
	}))
	defer server.Close()

	err := newTestClient(server.URL).UpdateTaskState(context.Background(), "ana@example.com", 1, "", "Testing")
	if err != nil {
		t.Fatalf("UpdateTaskState: %v", err)
	}
	if gotStage != "50" {
		t.Errorf("stage = %q, want 50 (qa)", gotStage)
	}
}

func TestUpdateTaskState_UnknownKeyFailsLocally(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	if err := c.UpdateTaskState(context.Background(), "ana@example.com", 1, "backlog", ""); err == nil {
		t.Fatal("expected error for unknown status")
	}
	if err := c.UpdateTaskState(context.Background(), "ana@example.com", 1, "", ""); err == nil {
		t.Fatal("expected error when both status and stage are empty")
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Errorf("invalid updates reached the server %d times", calls)
	}
}

func TestCreateTask_Trichotomy(t *testing.T) {
	tests := []struct {
		name        string
		response    string
		wantOutcome client.CreateOutcome
		wantTaskId  int64
	}{
		{
			"confirmed",
			`{"status": "success", "task_id": 77, "message": "Task created"}`,
			client.CreateConfirmed,
			77,
		},
		{
			"mock",
			`{"status": "success", "message": "Mock Response: task created"}`,
			client.CreateMock,
			0,
		},
		{
			"failed",
			`{"status": "failure", "message": "invalid project"}`,
			client.CreateFailed,
			0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.response))
			}))
			defer server.Close()

			res, err := newTestClient(server.URL).CreateTask(context.Background(), testNewTask())
			if err != nil {
				t.Fatalf("CreateTask: %v", err)
			}
			if res.Outcome != tt.wantOutcome {
				t.Errorf("outcome = %v, want %v", res.Outcome, tt.wantOutcome)
			}
			if res.TaskID != tt.wantTaskId {
				t.Errorf("task id = %d, want %d", res.TaskID, tt.wantTaskId)
			}
		})
	}
}

func TestIsMockResponse(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Mock Response: task created successfully", true},
		{"mock response", true},
		{"Task created successfully", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsMockResponse(tt.in); got != tt.want {
			t.Errorf("IsMockResponse(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

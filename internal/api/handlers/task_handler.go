package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/TWRT/taskboard/internal/client"
	"github.com/TWRT/taskboard/internal/models"
	"github.com/TWRT/taskboard/internal/service"
)

type TaskHandler struct {
	boardService *service.BoardService
	email        func(r *http.Request) string
}

func NewTaskHandler(boardService *service.BoardService, email func(r *http.Request) string) *TaskHandler {
	return &TaskHandler{
		boardService: boardService,
		email:        email,
	}
}

func taskIdFromPath(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "Error trying to read the body: " + err.Error(),
		})
		return
	}

	var input models.NewTask
	if err := json.Unmarshal(body, &input); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "JSON error: " + err.Error(),
		})
		return
	}
	if input.Email == "" {
		input.Email = h.email(r)
	}
	if input.Email == "" {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "missing user email"})
		return
	}

	result, err := h.boardService.CreateTask(r.Context(), input)
	if err != nil {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "Error trying to create task: " + err.Error(),
		})
		return
	}

	status := http.StatusCreated
	if result.Outcome == client.CreateFailed {
		status = http.StatusUnprocessableEntity
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"outcome": result.Outcome.String(),
		"task_id": result.TaskID,
		"message": result.Message,
	})
}

type moveRequestBody struct {
	DropTarget string `json:"drop_target"`
	GroupBy    string `json:"group_by"`
}

func (h *TaskHandler) MoveTask(w http.ResponseWriter, r *http.Request) {
	email := h.email(r)
	if email == "" {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "missing user email"})
		return
	}

	taskId, err := taskIdFromPath(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid task id"})
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "Error trying to read the body: " + err.Error(),
		})
		return
	}

	var reqBody moveRequestBody
	if err := json.Unmarshal(body, &reqBody); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "JSON error: " + err.Error(),
		})
		return
	}

	moved, err := h.boardService.MoveTask(r.Context(), email, taskId, reqBody.DropTarget, reqBody.GroupBy)
	if err != nil {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "Error trying to move task: " + err.Error(),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"moved": moved,
	})
}

type assigneesRequestBody struct {
	Pending []int64 `json:"pending"`
}

func (h *TaskHandler) SaveAssignees(w http.ResponseWriter, r *http.Request) {
	email := h.email(r)
	if email == "" {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "missing user email"})
		return
	}

	taskId, err := taskIdFromPath(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid task id"})
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "Error trying to read the body: " + err.Error(),
		})
		return
	}

	var reqBody assigneesRequestBody
	if err := json.Unmarshal(body, &reqBody); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "JSON error: " + err.Error(),
		})
		return
	}

	saved, err := h.boardService.SaveAssignees(r.Context(), email, taskId, reqBody.Pending)
	if err != nil {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "Error trying to save assignees: " + err.Error(),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"saved": saved,
	})
}

type applyLabelsRequestBody struct {
	Tags []string `json:"tags"`
}

func (h *TaskHandler) ApplyLabels(w http.ResponseWriter, r *http.Request) {
	taskId, err := taskIdFromPath(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid task id"})
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "Error trying to read the body: " + err.Error(),
		})
		return
	}

	var reqBody applyLabelsRequestBody
	if err := json.Unmarshal(body, &reqBody); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "JSON error: " + err.Error(),
		})
		return
	}

	h.boardService.ApplyLabels(taskId, reqBody.Tags)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"tags": reqBody.Tags,
	})
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	email := h.email(r)
	if email == "" {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "missing user email"})
		return
	}

	taskId, err := taskIdFromPath(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid task id"})
		return
	}

	if err := h.boardService.DeleteTask(r.Context(), email, taskId); err != nil {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "Error trying to delete task: " + err.Error(),
		})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

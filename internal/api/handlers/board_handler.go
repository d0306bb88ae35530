package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/TWRT/taskboard/internal/board"
	"github.com/TWRT/taskboard/internal/service"
)

type BoardHandler struct {
	boardService *service.BoardService
	email        func(r *http.Request) string
}

func NewBoardHandler(boardService *service.BoardService, email func(r *http.Request) string) *BoardHandler {
	return &BoardHandler{
		boardService: boardService,
		email:        email,
	}
}

func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseFilters(r *http.Request) board.Filters {
	q := r.URL.Query()

	var assignees []int64
	for _, raw := range splitParam(q.Get("assignees")) {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			assignees = append(assignees, id)
		}
	}

	return board.Filters{
		Search:     q.Get("search"),
		Project:    q.Get("project"),
		Priorities: splitParam(q.Get("priorities")),
		Statuses:   splitParam(q.Get("statuses")),
		Assignees:  assignees,
	}
}

func (h *BoardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	email := h.email(r)
	if email == "" {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "missing user email",
		})
		return
	}

	q := r.URL.Query()
	view, err := h.boardService.GetBoard(
		r.Context(),
		email,
		q.Get("date_range"),
		q.Get("project"),
		q.Get("group_by"),
		parseFilters(r),
	)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "Error trying to build board: " + err.Error(),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(view)
}

func (h *BoardHandler) GetProjects(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"projects": h.boardService.Projects(),
	})
}

func (h *BoardHandler) GetStages(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"stages": h.boardService.Stages(),
	})
}

func (h *BoardHandler) GetMembers(w http.ResponseWriter, r *http.Request) {
	email := h.email(r)
	if email == "" {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "missing user email",
		})
		return
	}

	members, err := h.boardService.Members(r.Context(), email)
	if err != nil {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "Error trying to get members: " + err.Error(),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"members": members,
	})
}

package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/TWRT/taskboard/internal/repository"
)

type PrefHandler struct {
	prefRepo *repository.PrefRepository
}

func NewPrefHandler(prefRepo *repository.PrefRepository) *PrefHandler {
	return &PrefHandler{prefRepo: prefRepo}
}

func (h *PrefHandler) GetCollapsed(w http.ResponseWriter, r *http.Request) {
	collapsed, err := h.prefRepo.GetCollapsed(r.PathValue("board"))
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "Error trying to get prefs: " + err.Error(),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"collapsed": collapsed,
	})
}

func (h *PrefHandler) SetCollapsed(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "Error trying to read the body: " + err.Error(),
		})
		return
	}

	var collapsed map[string]bool
	if err := json.Unmarshal(body, &collapsed); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "JSON error: " + err.Error(),
		})
		return
	}

	if err := h.prefRepo.SetCollapsed(r.PathValue("board"), collapsed); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "Error trying to save prefs: " + err.Error(),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"collapsed": collapsed,
	})
}

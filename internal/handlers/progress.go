package handlers

import (
	"net/http"
	"strconv"

	"github.com/AnshRaj112/nutrameter-backend/internal/models"
	"github.com/AnshRaj112/nutrameter-backend/internal/services"
)

type ProgressListResponse struct {
	Success bool              `json:"success"`
	Entries []models.Progress `json:"entries"`
}

type ProgressResponse struct {
	Success bool             `json:"success"`
	Entry   *models.Progress `json:"entry"`
}

// ListProgress handles GET /progress?limit=. A missing or unparsable limit
// falls back to the default.
func (h *Handler) ListProgress(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}
	entries, err := h.progress.List(r.Context(), userID, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []models.Progress{}
	}
	writeJSON(w, http.StatusOK, ProgressListResponse{Success: true, Entries: entries})
}

func (h *Handler) CreateProgress(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req services.ProgressInput
	if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	entry, err := h.progress.Create(r.Context(), userID, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ProgressResponse{Success: true, Entry: entry})
}

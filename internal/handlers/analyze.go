package handlers

import (
	"net/http"

	"github.com/AnshRaj112/nutrameter-backend/internal/apperr"
	"github.com/AnshRaj112/nutrameter-backend/internal/models"
	"github.com/AnshRaj112/nutrameter-backend/internal/services"
)

type AnalyzeResponse struct {
	Success bool                      `json:"success"`
	Data    *models.NutritionEstimate `json:"data"`
}

// Analyze handles POST /analyze. The estimate is returned, not stored; the
// client posts it to /meals if the user keeps it.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	if _, err := currentUser(r); err != nil {
		h.writeError(w, r, err)
		return
	}
	if !h.analysis.Configured() {
		h.writeError(w, r, apperr.Unconfigured("AI analysis is not configured"))
		return
	}
	var req services.AnalyzeInput
	if err := decodeJSON(w, r, maxAnalyzeBody, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	est, err := h.analysis.Analyze(r.Context(), req)
	if h.analysisObserver != nil && apperr.KindOf(err) != apperr.KindValidation {
		h.analysisObserver.ObserveAnalysis(h.analyzerName, err)
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AnalyzeResponse{Success: true, Data: est})
}

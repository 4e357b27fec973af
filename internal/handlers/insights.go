package handlers

import (
	"net/http"

	"github.com/AnshRaj112/nutrameter-backend/internal/services"
)

type InsightsResponse struct {
	Success bool `json:"success"`
	*services.InsightsReport
}

type DashboardResponse struct {
	Success bool `json:"success"`
	*services.Dashboard
}

// GetInsights handles GET /insights.
func (h *Handler) GetInsights(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	report, err := h.insights.Insights(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, InsightsResponse{Success: true, InsightsReport: report})
}

// GetDashboard handles GET /dashboard.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	d, err := h.insights.Dashboard(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DashboardResponse{Success: true, Dashboard: d})
}

package handlers

import (
	"net/http"
)

type HealthResponse struct {
	Success  bool   `json:"success"`
	Status   string `json:"status"`
	Store    string `json:"store"` // "durable" or "fallback"
	Analyzer bool   `json:"analyzer"`
}

// Health is a liveness probe. It answers 200 while the fallback store is
// serving so a durable-store outage does not take the app out of rotation.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Success: true, Status: "ok", Store: "durable", Analyzer: h.analysis.Configured()}
	if h.health == nil || h.health.Degraded() || h.health.Ping(r.Context()) != nil {
		resp.Store = "fallback"
		resp.Status = "degraded"
	}
	writeJSON(w, http.StatusOK, resp)
}

package handlers

import (
	"net/http"

	"github.com/AnshRaj112/nutrameter-backend/internal/models"
	"github.com/AnshRaj112/nutrameter-backend/internal/services"
)

type AuthResponse struct {
	Success bool         `json:"success"`
	User    *models.User `json:"user"`
	Token   string       `json:"token"`
}

// Register handles POST /auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterInput
	if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.users.Register(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, AuthResponse{Success: true, User: res.User, Token: res.Token})
}

// Login handles POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginInput
	if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.users.Login(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{Success: true, User: res.User, Token: res.Token})
}

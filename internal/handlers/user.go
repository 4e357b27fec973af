package handlers

import (
	"net/http"

	"github.com/AnshRaj112/nutrameter-backend/internal/models"
)

type UserResponse struct {
	Success bool         `json:"success"`
	User    *models.User `json:"user"`
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	user, err := h.users.Get(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, UserResponse{Success: true, User: user})
}

// UpdateUser handles PUT /user. Only profile fields in models.UserUpdate are
// read from the body; email, password and ids are ignored.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var update models.UserUpdate
	if err := decodeJSON(w, r, maxJSONBody, &update); err != nil {
		h.writeError(w, r, err)
		return
	}
	user, err := h.users.Update(r.Context(), userID, update)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, UserResponse{Success: true, User: user})
}

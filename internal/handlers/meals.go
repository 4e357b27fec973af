package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AnshRaj112/nutrameter-backend/internal/models"
	"github.com/AnshRaj112/nutrameter-backend/internal/services"
)

type MealsResponse struct {
	Success bool          `json:"success"`
	Meals   []models.Meal `json:"meals"`
}

type MealResponse struct {
	Success bool         `json:"success"`
	Meal    *models.Meal `json:"meal"`
}

// ListMeals handles GET /meals?date=YYYY-MM-DD&mealType=.
func (h *Handler) ListMeals(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	meals, err := h.meals.List(r.Context(), userID, q.Get("date"), q.Get("mealType"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if meals == nil {
		meals = []models.Meal{}
	}
	writeJSON(w, http.StatusOK, MealsResponse{Success: true, Meals: meals})
}

func (h *Handler) CreateMeal(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req services.MealInput
	if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	meal, err := h.meals.Create(r.Context(), userID, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, MealResponse{Success: true, Meal: meal})
}

func (h *Handler) UpdateMeal(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var patch models.MealPatch
	if err := decodeJSON(w, r, maxJSONBody, &patch); err != nil {
		h.writeError(w, r, err)
		return
	}
	meal, err := h.meals.Update(r.Context(), userID, chi.URLParam(r, "id"), patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MealResponse{Success: true, Meal: meal})
}

func (h *Handler) DeleteMeal(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.meals.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Meal deleted"})
}

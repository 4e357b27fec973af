// Package store persists users, meals and progress entries.
//
// Implementations report failures as *apperr.Error. The kind matters: the
// Gateway falls back to the in-process store only for apperr.KindUnavailable,
// and passes every other error through unchanged.
package store

import (
	"context"

	"github.com/AnshRaj112/nutrameter-backend/internal/models"
)

type Store interface {
	// CreateUser assigns u.ID. Conflict if the email is taken.
	CreateUser(ctx context.Context, u *models.User) error
	// GetUserByEmail expects an already lower-cased email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, update models.UserUpdate) (*models.User, error)

	// CreateMeal assigns m.ID. CreatedAt must already be set.
	CreateMeal(ctx context.Context, m *models.Meal) error
	// ListMeals returns the owner's meals matching filter, newest first.
	ListMeals(ctx context.Context, userID string, filter models.MealFilter) ([]models.Meal, error)
	// UpdateMeal and DeleteMeal return NotFound unless both ids match.
	UpdateMeal(ctx context.Context, userID, mealID string, patch models.MealPatch) (*models.Meal, error)
	DeleteMeal(ctx context.Context, userID, mealID string) error

	CreateProgress(ctx context.Context, p *models.Progress) error
	// ListProgress returns at most limit entries, newest first.
	ListProgress(ctx context.Context, userID string, limit int) ([]models.Progress, error)

	Ping(ctx context.Context) error
}

// Migrator is implemented by durable stores that need schema or indexes.
type Migrator interface {
	Migrate(ctx context.Context) error
}

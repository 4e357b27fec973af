package services

import (
	"context"
	"strings"
	"time"

	"github.com/AnshRaj112/nutrameter-backend/internal/analytics"
	"github.com/AnshRaj112/nutrameter-backend/internal/apperr"
	"github.com/AnshRaj112/nutrameter-backend/internal/models"
	"github.com/AnshRaj112/nutrameter-backend/internal/store"
)

const DefaultMealName = "Unnamed Meal"

// MealInput is the client-supplied part of a new meal. Owner, id and log time
// are always assigned by the server.
type MealInput struct {
	Name            string             `json:"name"`
	ImageURL        string             `json:"imageUrl"`
	MealType        models.MealType    `json:"mealType"`
	FoodItems       []string           `json:"foodItems"`
	Calories        float64            `json:"calories"`
	Macros          models.Macros      `json:"macros"`
	Micronutrients  map[string]float64 `json:"micronutrients"`
	HealthScore     int                `json:"healthScore"`
	Recommendations []string           `json:"recommendations"`
	IsAIAnalyzed    bool               `json:"isAiAnalyzed"`
}

// MealService is the owner-scoped meal ledger.
type MealService struct {
	store store.Store
	loc   *time.Location
	now   func() time.Time
}

func NewMealService(s store.Store, loc *time.Location) *MealService {
	return &MealService{store: s, loc: loc, now: time.Now}
}

func (s *MealService) Create(ctx context.Context, userID string, in MealInput) (*models.Meal, error) {
	if in.MealType != "" && !in.MealType.Valid() {
		return nil, invalidMealType()
	}
	if in.Calories < 0 || in.Macros.HasNegative() {
		return nil, apperr.Validation("Calories and macros must not be negative")
	}

	m := &models.Meal{
		UserID:          userID,
		Name:            strings.TrimSpace(in.Name),
		ImageURL:        in.ImageURL,
		MealType:        in.MealType,
		FoodItems:       cleanStrings(in.FoodItems),
		Calories:        in.Calories,
		Macros:          in.Macros,
		Micronutrients:  models.NormalizeMicronutrients(in.Micronutrients),
		HealthScore:     models.ClampHealthScore(in.HealthScore),
		Recommendations: cleanStrings(in.Recommendations),
		IsAIAnalyzed:    in.IsAIAnalyzed,
		CreatedAt:       s.now().In(s.loc),
	}
	if m.Name == "" {
		m.Name = DefaultMealName
	}
	if m.MealType == "" {
		m.MealType = models.MealLunch
	}

	if err := s.store.CreateMeal(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// List returns the owner's meals newest first. date is YYYY-MM-DD or an
// RFC 3339 timestamp whose local calendar date is used; mealType narrows by
// type. Both are optional.
func (s *MealService) List(ctx context.Context, userID, date, mealType string) ([]models.Meal, error) {
	var filter models.MealFilter
	if date != "" {
		from, to, err := s.DayBounds(date)
		if err != nil {
			return nil, err
		}
		filter.From, filter.To = from, to
	}
	if mealType != "" {
		mt := models.MealType(mealType)
		if !mt.Valid() {
			return nil, invalidMealType()
		}
		filter.MealType = mt
	}
	return s.store.ListMeals(ctx, userID, filter)
}

// Since lists the owner's meals created at or after from, newest first.
func (s *MealService) Since(ctx context.Context, userID string, from time.Time) ([]models.Meal, error) {
	return s.store.ListMeals(ctx, userID, models.MealFilter{From: from})
}

// DayBounds parses a date filter into the first and last millisecond of that
// calendar day in the server's location.
func (s *MealService) DayBounds(date string) (time.Time, time.Time, error) {
	var day time.Time
	if d, err := time.ParseInLocation(time.DateOnly, date, s.loc); err == nil {
		day = d
	} else if ts, err := time.Parse(time.RFC3339, date); err == nil {
		day = ts
	} else {
		return time.Time{}, time.Time{}, apperr.Validation("Invalid date, expected YYYY-MM-DD")
	}
	return analytics.DayStart(day, s.loc), analytics.DayEnd(day, s.loc), nil
}

func (s *MealService) Update(ctx context.Context, userID, mealID string, patch models.MealPatch) (*models.Meal, error) {
	if patch.MealType != nil && !patch.MealType.Valid() {
		return nil, invalidMealType()
	}
	if patch.Calories != nil && *patch.Calories < 0 {
		return nil, apperr.Validation("Calories and macros must not be negative")
	}
	if patch.Macros != nil && patch.Macros.HasNegative() {
		return nil, apperr.Validation("Calories and macros must not be negative")
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			name = DefaultMealName
		}
		patch.Name = &name
	}
	if patch.HealthScore != nil {
		hs := models.ClampHealthScore(*patch.HealthScore)
		patch.HealthScore = &hs
	}
	if patch.Micronutrients != nil {
		micros := models.NormalizeMicronutrients(*patch.Micronutrients)
		patch.Micronutrients = &micros
	}
	if patch.FoodItems != nil {
		items := cleanStrings(*patch.FoodItems)
		patch.FoodItems = &items
	}
	if patch.Recommendations != nil {
		recs := cleanStrings(*patch.Recommendations)
		patch.Recommendations = &recs
	}
	return s.store.UpdateMeal(ctx, userID, mealID, patch)
}

func (s *MealService) Delete(ctx context.Context, userID, mealID string) error {
	return s.store.DeleteMeal(ctx, userID, mealID)
}

func invalidMealType() error {
	return apperr.Validation("Meal type must be one of breakfast, lunch, dinner, snack")
}

// cleanStrings trims entries and drops empty ones. The result is never nil.
func cleanStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

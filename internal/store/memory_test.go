package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/nutrameter-backend/internal/apperr"
	"github.com/AnshRaj112/nutrameter-backend/internal/models"
)

var base = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func newMeal(userID, name string, at time.Time) *models.Meal {
	return &models.Meal{
		UserID:          userID,
		Name:            name,
		MealType:        models.MealLunch,
		FoodItems:       []string{},
		Macros:          models.Macros{Protein: 25, Carbs: 45, Fats: 15},
		Micronutrients:  map[string]float64{},
		Recommendations: []string{},
		CreatedAt:       at,
	}
}

func TestMemoryUsers(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(10)

	u := &models.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "h"}
	require.NoError(t, s.CreateUser(ctx, u))
	require.NotEmpty(t, u.ID)

	err := s.CreateUser(ctx, &models.User{Name: "Other", Email: "ada@example.com"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	got, err := s.GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.GetUserByID(ctx, "missing")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	name := "Ada L."
	updated, err := s.UpdateUser(ctx, u.ID, models.UserUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", updated.Name)
	assert.Equal(t, "ada@example.com", updated.Email)
}

func TestMemorySeedDemoUser(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(10)
	s.SeedDemoUser(models.User{Name: "Demo User", PasswordHash: "hash"})
	s.SeedDemoUser(models.User{Name: "Second"})

	u, err := s.GetUserByEmail(ctx, DemoUserEmail)
	require.NoError(t, err)
	assert.Equal(t, DemoUserID, u.ID)
	assert.Equal(t, "Demo User", u.Name)
}

func TestMemoryMealsAreOwnerScoped(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(10)

	mine := newMeal("alice", "oats", base)
	require.NoError(t, s.CreateMeal(ctx, mine))
	theirs := newMeal("bob", "toast", base)
	require.NoError(t, s.CreateMeal(ctx, theirs))

	list, err := s.ListMeals(ctx, "alice", models.MealFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "oats", list[0].Name)

	name := "stolen"
	_, err = s.UpdateMeal(ctx, "alice", theirs.ID, models.MealPatch{Name: &name})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(s.DeleteMeal(ctx, "alice", theirs.ID)))

	bobs, err := s.ListMeals(ctx, "bob", models.MealFilter{})
	require.NoError(t, err)
	assert.Equal(t, "toast", bobs[0].Name)
}

func TestMemoryListMealsOrderAndFilter(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(10)

	first := newMeal("u", "first", base.Add(-2*time.Hour))
	second := newMeal("u", "second", base)
	third := newMeal("u", "third", base) // same instant, inserted later
	third.MealType = models.MealDinner
	for _, m := range []*models.Meal{first, second, third} {
		require.NoError(t, s.CreateMeal(ctx, m))
	}

	list, err := s.ListMeals(ctx, "u", models.MealFilter{})
	require.NoError(t, err)
	names := []string{list[0].Name, list[1].Name, list[2].Name}
	assert.Equal(t, []string{"third", "second", "first"}, names)

	list, err = s.ListMeals(ctx, "u", models.MealFilter{MealType: models.MealDinner})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "third", list[0].Name)

	list, err = s.ListMeals(ctx, "u", models.MealFilter{From: base.Add(-time.Hour), To: base})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestMemoryUpdateMealKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(10)
	m := newMeal("u", "lunch", base)
	require.NoError(t, s.CreateMeal(ctx, m))

	cals := 640.0
	items := []string{"rice", "beans"}
	updated, err := s.UpdateMeal(ctx, "u", m.ID, models.MealPatch{Calories: &cals, FoodItems: &items})
	require.NoError(t, err)
	assert.Equal(t, m.ID, updated.ID)
	assert.Equal(t, "u", updated.UserID)
	assert.Equal(t, base, updated.CreatedAt)
	assert.Equal(t, 640.0, updated.Calories)
	assert.Equal(t, "lunch", updated.Name)

	items[0] = "changed after the call"
	list, err := s.ListMeals(ctx, "u", models.MealFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"rice", "beans"}, list[0].FoodItems)
}

func TestMemoryEvictsOldestRecords(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(3)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.CreateMeal(ctx, newMeal("u", fmt.Sprintf("m%d", i), base.Add(time.Duration(i)*time.Minute))))
		require.NoError(t, s.CreateProgress(ctx, &models.Progress{UserID: "u", Weight: 70 + float64(i), Date: base.Add(time.Duration(i) * time.Minute)}))
	}

	meals, err := s.ListMeals(ctx, "u", models.MealFilter{})
	require.NoError(t, err)
	require.Len(t, meals, 3)
	assert.Equal(t, "m4", meals[0].Name)
	assert.Equal(t, "m2", meals[2].Name)

	entries, err := s.ListProgress(ctx, "u", 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, 74.0, entries[0].Weight)
}

func TestMemoryListProgressLimit(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(0)
	for i := 0; i < 4; i++ {
		require.NoError(t, s.CreateProgress(ctx, &models.Progress{UserID: "u", Weight: 60 + float64(i), Date: base.Add(time.Duration(i) * time.Hour)}))
	}
	require.NoError(t, s.CreateProgress(ctx, &models.Progress{UserID: "other", Weight: 99, Date: base}))

	entries, err := s.ListProgress(ctx, "u", 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 63.0, entries[0].Weight)
	assert.Equal(t, 62.0, entries[1].Weight)
}

func TestMemoryConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(1000)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.CreateMeal(ctx, newMeal("u", fmt.Sprintf("m%d", i), base))
			_, _ = s.ListMeals(ctx, "u", models.MealFilter{})
		}(i)
	}
	wg.Wait()

	list, err := s.ListMeals(ctx, "u", models.MealFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 20)
}

package store

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/AnshRaj112/nutrameter-backend/internal/apperr"
	"github.com/AnshRaj112/nutrameter-backend/internal/models"
)

const (
	DemoUserID    = "demo-user-001"
	DemoUserEmail = "demo@nutrameter.com"
	DemoPassword  = "demo123"
)

// Memory is the in-process store. It backs the gateway while the durable
// store is unreachable and serves everything in demo mode. Contents live as
// long as the process. Meals and progress entries are each capped at
// maxRecords, evicting the oldest insert first; users are never evicted.
type Memory struct {
	mu         sync.RWMutex
	users      map[string]models.User
	emails     map[string]string // email -> user id
	meals      []models.Meal     // insertion order
	progress   []models.Progress // insertion order
	maxRecords int
}

func NewMemory(maxRecords int) *Memory {
	return &Memory{
		users:      make(map[string]models.User),
		emails:     make(map[string]string),
		maxRecords: maxRecords,
	}
}

// SeedDemoUser adds u as the built-in demo account, overriding its id and
// email. It is a no-op when the demo account already exists.
func (s *Memory) SeedDemoUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.emails[DemoUserEmail]; ok {
		return
	}
	u.ID = DemoUserID
	u.Email = DemoUserEmail
	s.users[u.ID] = u
	s.emails[u.Email] = u.ID
}

func (s *Memory) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.emails[u.Email]; ok {
		return apperr.Conflict("Email already in use")
	}
	u.ID = uuid.NewString()
	s.users[u.ID] = *u
	s.emails[u.Email] = u.ID
	return nil
}

func (s *Memory) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emails[email]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	u := s.users[id]
	return &u, nil
}

func (s *Memory) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	return &u, nil
}

func (s *Memory) UpdateUser(_ context.Context, id string, update models.UserUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	update.Apply(&u)
	s.users[id] = u
	return &u, nil
}

func (s *Memory) CreateMeal(_ context.Context, m *models.Meal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = uuid.NewString()
	s.meals = append(s.meals, cloneMeal(*m))
	if s.maxRecords > 0 && len(s.meals) > s.maxRecords {
		s.meals = append(s.meals[:0:0], s.meals[len(s.meals)-s.maxRecords:]...)
	}
	return nil
}

func (s *Memory) ListMeals(_ context.Context, userID string, filter models.MealFilter) ([]models.Meal, error) {
	s.mu.RLock()
	out := make([]models.Meal, 0)
	for i := len(s.meals) - 1; i >= 0; i-- {
		if m := s.meals[i]; m.UserID == userID && filter.Matches(m) {
			out = append(out, cloneMeal(m))
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Memory) UpdateMeal(_ context.Context, userID, mealID string, patch models.MealPatch) (*models.Meal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.meals {
		if s.meals[i].ID == mealID && s.meals[i].UserID == userID {
			m := s.meals[i]
			patch.Apply(&m)
			s.meals[i] = cloneMeal(m)
			out := cloneMeal(m)
			return &out, nil
		}
	}
	return nil, apperr.NotFound("Meal not found")
}

func (s *Memory) DeleteMeal(_ context.Context, userID, mealID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.meals {
		if s.meals[i].ID == mealID && s.meals[i].UserID == userID {
			s.meals = append(s.meals[:i], s.meals[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("Meal not found")
}

func (s *Memory) CreateProgress(_ context.Context, p *models.Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = uuid.NewString()
	s.progress = append(s.progress, *p)
	if s.maxRecords > 0 && len(s.progress) > s.maxRecords {
		s.progress = append(s.progress[:0:0], s.progress[len(s.progress)-s.maxRecords:]...)
	}
	return nil
}

func (s *Memory) ListProgress(_ context.Context, userID string, limit int) ([]models.Progress, error) {
	s.mu.RLock()
	out := make([]models.Progress, 0)
	// Walk newest insert first so equal dates keep insert-descending order.
	for i := len(s.progress) - 1; i >= 0; i-- {
		if s.progress[i].UserID == userID {
			out = append(out, s.progress[i])
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Memory) Ping(context.Context) error { return nil }

// cloneMeal copies the slices and map so callers cannot alias stored state.
func cloneMeal(m models.Meal) models.Meal {
	m.FoodItems = slices.Clone(m.FoodItems)
	m.Recommendations = slices.Clone(m.Recommendations)
	m.Micronutrients = maps.Clone(m.Micronutrients)
	return m
}

package services

import (
	"context"
	"strings"
	"time"

	"github.com/AnshRaj112/nutrameter-backend/internal/apperr"
	"github.com/AnshRaj112/nutrameter-backend/internal/models"
	"github.com/AnshRaj112/nutrameter-backend/internal/store"
)

type ProgressInput struct {
	Weight      float64 `json:"weight"`
	WaterIntake float64 `json:"waterIntake"`
	Notes       string  `json:"notes"`
}

// ProgressService records weight and water samples. Entries are append-only.
type ProgressService struct {
	store store.Store
	loc   *time.Location
	now   func() time.Time
}

func NewProgressService(s store.Store, loc *time.Location) *ProgressService {
	return &ProgressService{store: s, loc: loc, now: time.Now}
}

func (s *ProgressService) Create(ctx context.Context, userID string, in ProgressInput) (*models.Progress, error) {
	if in.Weight <= 0 {
		return nil, apperr.Validation("Weight is required")
	}
	if in.WaterIntake < 0 {
		return nil, apperr.Validation("Water intake must not be negative")
	}
	p := &models.Progress{
		UserID:      userID,
		Weight:      in.Weight,
		WaterIntake: in.WaterIntake,
		Notes:       strings.TrimSpace(in.Notes),
		Date:        s.now().In(s.loc),
	}
	if err := s.store.CreateProgress(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns the newest entries. A non-positive limit means the default and
// anything above the maximum is capped.
func (s *ProgressService) List(ctx context.Context, userID string, limit int) ([]models.Progress, error) {
	return s.store.ListProgress(ctx, userID, ClampProgressLimit(limit))
}

func ClampProgressLimit(limit int) int {
	switch {
	case limit <= 0:
		return models.DefaultProgressLimit
	case limit > models.MaxProgressLimit:
		return models.MaxProgressLimit
	default:
		return limit
	}
}

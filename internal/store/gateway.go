package store

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/AnshRaj112/nutrameter-backend/internal/apperr"
	"github.com/AnshRaj112/nutrameter-backend/internal/models"
)

// FallbackObserver is told every time an operation is served by the fallback
// store because the durable one was unavailable.
type FallbackObserver interface {
	ObserveFallback(op string)
}

// Gateway runs every operation against the durable store under a timeout and
// repeats it on the fallback store when, and only when, the durable store
// reports apperr.KindUnavailable. Writes that land in the fallback store stay
// there; nothing is copied back once the durable store recovers.
//
// A Gateway with a nil primary serves everything from the fallback store.
type Gateway struct {
	primary  Store
	fallback *Memory
	timeout  time.Duration
	logger   *zap.Logger
	observer FallbackObserver

	degraded atomic.Bool
}

type GatewayOption func(*Gateway)

func WithFallbackObserver(o FallbackObserver) GatewayOption {
	return func(g *Gateway) { g.observer = o }
}

func NewGateway(primary Store, fallback *Memory, timeout time.Duration, logger *zap.Logger, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		primary:  primary,
		fallback: fallback,
		timeout:  timeout,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	if primary == nil {
		logger.Warn("no durable store configured, serving all data from the in-memory store")
	}
	return g
}

// Degraded reports whether the last durable-store call was unavailable.
func (g *Gateway) Degraded() bool {
	return g.primary == nil || g.degraded.Load()
}

// Primary returns the durable store, or nil in demo mode.
func (g *Gateway) Primary() Store { return g.primary }

func run[T any](ctx context.Context, g *Gateway, op string, call func(context.Context, Store) (T, error)) (T, error) {
	if g.primary == nil {
		return call(ctx, g.fallback)
	}

	pctx, cancel := context.WithTimeout(ctx, g.timeout)
	res, err := call(pctx, g.primary)
	// Drivers that cancel server-side report the timeout as their own error
	// (lib/pq returns SQLSTATE 57014), so the deadline decides.
	timedOut := err != nil && errors.Is(pctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil
	cancel()

	if err == nil {
		if g.degraded.CompareAndSwap(true, false) {
			g.logger.Info("durable store recovered", zap.String("op", op))
		}
		return res, nil
	}
	if timedOut && !apperr.IsUnavailable(err) {
		err = apperr.Unavailable(err)
	}
	if !apperr.IsUnavailable(err) {
		return res, err
	}
	// The caller gave up; falling back would answer nobody.
	if ctx.Err() != nil {
		var zero T
		return zero, ctx.Err()
	}

	if g.degraded.CompareAndSwap(false, true) {
		g.logger.Warn("durable store unavailable, serving from fallback store",
			zap.String("op", op), zap.Error(err))
	} else {
		g.logger.Debug("serving from fallback store", zap.String("op", op), zap.Error(err))
	}
	if g.observer != nil {
		g.observer.ObserveFallback(op)
	}
	return call(ctx, g.fallback)
}

func exec(ctx context.Context, g *Gateway, op string, call func(context.Context, Store) error) error {
	_, err := run(ctx, g, op, func(ctx context.Context, s Store) (struct{}, error) {
		return struct{}{}, call(ctx, s)
	})
	return err
}

func (g *Gateway) CreateUser(ctx context.Context, u *models.User) error {
	return exec(ctx, g, "create_user", func(ctx context.Context, s Store) error {
		return s.CreateUser(ctx, u)
	})
}

func (g *Gateway) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return run(ctx, g, "get_user_by_email", func(ctx context.Context, s Store) (*models.User, error) {
		return s.GetUserByEmail(ctx, email)
	})
}

func (g *Gateway) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return run(ctx, g, "get_user", func(ctx context.Context, s Store) (*models.User, error) {
		return s.GetUserByID(ctx, id)
	})
}

func (g *Gateway) UpdateUser(ctx context.Context, id string, update models.UserUpdate) (*models.User, error) {
	return run(ctx, g, "update_user", func(ctx context.Context, s Store) (*models.User, error) {
		return s.UpdateUser(ctx, id, update)
	})
}

func (g *Gateway) CreateMeal(ctx context.Context, m *models.Meal) error {
	return exec(ctx, g, "create_meal", func(ctx context.Context, s Store) error {
		return s.CreateMeal(ctx, m)
	})
}

func (g *Gateway) ListMeals(ctx context.Context, userID string, filter models.MealFilter) ([]models.Meal, error) {
	return run(ctx, g, "list_meals", func(ctx context.Context, s Store) ([]models.Meal, error) {
		return s.ListMeals(ctx, userID, filter)
	})
}

func (g *Gateway) UpdateMeal(ctx context.Context, userID, mealID string, patch models.MealPatch) (*models.Meal, error) {
	return run(ctx, g, "update_meal", func(ctx context.Context, s Store) (*models.Meal, error) {
		return s.UpdateMeal(ctx, userID, mealID, patch)
	})
}

func (g *Gateway) DeleteMeal(ctx context.Context, userID, mealID string) error {
	return exec(ctx, g, "delete_meal", func(ctx context.Context, s Store) error {
		return s.DeleteMeal(ctx, userID, mealID)
	})
}

func (g *Gateway) CreateProgress(ctx context.Context, p *models.Progress) error {
	return exec(ctx, g, "create_progress", func(ctx context.Context, s Store) error {
		return s.CreateProgress(ctx, p)
	})
}

func (g *Gateway) ListProgress(ctx context.Context, userID string, limit int) ([]models.Progress, error) {
	return run(ctx, g, "list_progress", func(ctx context.Context, s Store) ([]models.Progress, error) {
		return s.ListProgress(ctx, userID, limit)
	})
}

// Ping checks the durable store only.
func (g *Gateway) Ping(ctx context.Context) error {
	if g.primary == nil {
		return nil
	}
	pctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.primary.Ping(pctx)
}

var _ Store = (*Gateway)(nil)

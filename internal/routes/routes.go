package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/AnshRaj112/nutrameter-backend/internal/handlers"
	"github.com/AnshRaj112/nutrameter-backend/internal/middleware"
)

type Config struct {
	Handler        *handlers.Handler
	Tokens         middleware.TokenParser
	Logger         *zap.Logger
	AllowedOrigins []string

	// Optional.
	Metrics         http.Handler
	RequestObserver middleware.RequestObserver
	RedisLimiter    *middleware.RedisRateLimiter

	// Per-IP limiters, applied in production only.
	Production    bool
	GlobalLimiter *middleware.IPRateLimiter
	AuthLimiter   *middleware.IPRateLimiter
}

func New(cfg Config) http.Handler {
	h := cfg.Handler
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(logger, cfg.RequestObserver))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	if cfg.Production {
		r.Use(middleware.SecurityHeaders)
	}

	// Probes are never rate limited.
	r.Get("/health", h.Health)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Group(func(r chi.Router) {
		if cfg.RedisLimiter != nil {
			r.Use(cfg.RedisLimiter.Middleware)
		}
		if cfg.Production && cfg.GlobalLimiter != nil {
			r.Use(cfg.GlobalLimiter.Middleware)
		}

		r.Route("/auth", func(r chi.Router) {
			if cfg.Production && cfg.AuthLimiter != nil {
				r.Use(cfg.AuthLimiter.Middleware)
			}
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(cfg.Tokens))

			r.Get("/meals", h.ListMeals)
			r.Post("/meals", h.CreateMeal)
			r.Put("/meals/{id}", h.UpdateMeal)
			r.Delete("/meals/{id}", h.DeleteMeal)

			r.Get("/progress", h.ListProgress)
			r.Post("/progress", h.CreateProgress)

			r.Get("/user", h.GetUser)
			r.Put("/user", h.UpdateUser)

			r.Post("/analyze", h.Analyze)
			r.Get("/insights", h.GetInsights)
			r.Get("/dashboard", h.GetDashboard)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"message":"Not found"}`))
	})
	return r
}

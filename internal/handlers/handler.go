// Package handlers adapts HTTP requests to the services and writes the
// {success, message, ...} JSON envelope.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/AnshRaj112/nutrameter-backend/internal/apperr"
	"github.com/AnshRaj112/nutrameter-backend/internal/middleware"
	"github.com/AnshRaj112/nutrameter-backend/internal/services"
)

const (
	maxJSONBody    = 1 << 20
	maxAnalyzeBody = 15 << 20
)

// HealthChecker reports on the store behind the services.
type HealthChecker interface {
	Ping(ctx context.Context) error
	Degraded() bool
}

// AnalysisObserver records the outcome of image analyses.
type AnalysisObserver interface {
	ObserveAnalysis(provider string, err error)
}

type Deps struct {
	Users            *services.UserService
	Meals            *services.MealService
	Progress         *services.ProgressService
	Insights         *services.InsightService
	Analysis         *services.AnalysisService
	Health           HealthChecker
	AnalysisObserver AnalysisObserver
	AnalyzerName     string
	Logger           *zap.Logger
}

type Handler struct {
	users    *services.UserService
	meals    *services.MealService
	progress *services.ProgressService
	insights *services.InsightService
	analysis *services.AnalysisService
	health   HealthChecker

	analysisObserver AnalysisObserver
	analyzerName     string
	logger           *zap.Logger
}

func New(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		users:            d.Users,
		meals:            d.Meals,
		progress:         d.Progress,
		insights:         d.Insights,
		analysis:         d.Analysis,
		health:           d.Health,
		analysisObserver: d.AnalysisObserver,
		analyzerName:     d.AnalyzerName,
		logger:           logger,
	}
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err's kind to a status code. Details of server-side
// failures are logged and replaced by a generic message.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("kind", kind.String()),
			zap.String("request_id", chimw.GetReqID(r.Context())),
			zap.Error(err),
		)
	}
	writeJSON(w, status, messageResponse{Success: false, Message: apperr.Message(err)})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Validation("Request body too large")
		}
		if errors.Is(err, io.EOF) {
			return apperr.Validation("Request body is required")
		}
		return apperr.Validation("Invalid request body")
	}
	return nil
}

// currentUser returns the id RequireAuth put in the context.
func currentUser(r *http.Request) (string, error) {
	id, ok := middleware.UserID(r.Context())
	if !ok {
		return "", apperr.Unauthorized("Unauthorized")
	}
	return id, nil
}

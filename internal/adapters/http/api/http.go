// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/fuelplan/internal/app"
	"github.com/okian/fuelplan/internal/domain/model"
	"github.com/okian/fuelplan/pkg/logger"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	BuildScenario(ctx context.Context, in model.ScenarioInput) (model.ScenarioOutput, bool, error)
	BuildBatch(ctx context.Context, inputs []model.ScenarioInput) ([]service.BatchResult, error)
	Scenario(ctx context.Context, id string) (model.ScenarioOutput, error)

	AssembleKits(ctx context.Context, planID string) ([]model.Kit, error)
	Kits(ctx context.Context, planID string) ([]model.Kit, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	scenariosHandler *ScenariosHandler
	kitsHandler      *KitsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		scenariosHandler: NewScenariosHandler(deps),
		kitsHandler:      NewKitsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("POST /scenarios", MetricsMiddleware(s.scenariosHandler.HandleCreate, "scenarios"))
	mux.HandleFunc("POST /scenarios/batch", MetricsMiddleware(s.scenariosHandler.HandleBatch, "scenarios_batch"))
	mux.HandleFunc("GET /scenarios/{id}", MetricsMiddleware(s.scenariosHandler.HandleGet, "scenario"))
	mux.HandleFunc("GET /scenarios/{id}/timeline.csv", MetricsMiddleware(s.scenariosHandler.HandleTimelineCSV, "timeline"))
	mux.HandleFunc("POST /scenarios/{id}/kits", MetricsMiddleware(s.kitsHandler.HandleAssemble, "kits"))
	mux.HandleFunc("GET /scenarios/{id}/kits", MetricsMiddleware(s.kitsHandler.HandleList, "kits"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorBody(err)
	if status >= http.StatusInternalServerError {
		logger.Get().Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.Int("status", status),
			logger.Error(err),
		)
	}
	writeJSON(w, status, body)
}

// errorBody maps err to a status code and response body.
func errorBody(err error) (int, errorResponse) {
	var (
		validation *model.ValidationError
		missing    *model.MissingContextError
		kitErr     *model.KitAssemblyError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, errorResponse{
			Code:    "validation_error",
			Message: err.Error(),
			Details: map[string]string{"field": validation.Field, "reason": validation.Reason},
		}
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, errorResponse{Code: "bad_request", Message: err.Error()}
	case errors.As(err, &missing):
		return http.StatusNotFound, errorResponse{
			Code:    "missing_context",
			Message: err.Error(),
			Details: map[string]string{"entity": missing.Entity, "id": missing.ID},
		}
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, errorResponse{Code: "not_found", Message: err.Error()}
	case errors.As(err, &kitErr):
		return http.StatusUnprocessableEntity, errorResponse{
			Code:    "kit_assembly_failed",
			Message: err.Error(),
			Details: map[string]any{"categories": kitErr.Categories, "reason": kitErr.Reason},
		}
	case errors.Is(err, service.ErrNoCatalog):
		return http.StatusServiceUnavailable, errorResponse{Code: "catalog_unavailable", Message: err.Error()}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, errorResponse{Code: "unavailable", Message: err.Error()}
	default:
		return http.StatusInternalServerError, errorResponse{Code: "internal_error", Message: http.StatusText(http.StatusInternalServerError)}
	}
}

// decodeJSON reads a single JSON value from the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return WrapKind(ErrBadRequest, Wrap(err, "decode request body"))
	}
	if dec.More() {
		return NewKind(ErrBadRequest, "request body must contain a single JSON value")
	}
	return nil
}

// pathID returns the {id} path value.
func pathID(r *http.Request) (string, error) {
	id := r.PathValue("id")
	if id == "" {
		return "", NewKind(ErrBadRequest, "missing scenario id")
	}
	return id, nil
}

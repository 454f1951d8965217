package api

import (
	"context"
	"net/http"

	"github.com/okian/fuelplan/internal/domain/model"
)

// KitDependencies defines the kit operations used by the handlers.
type KitDependencies interface {
	AssembleKits(ctx context.Context, planID string) ([]model.Kit, error)
	Kits(ctx context.Context, planID string) ([]model.Kit, error)
}

// KitsHandler handles kit requests.
type KitsHandler struct {
	deps KitDependencies
}

// NewKitsHandler creates a new kits handler.
func NewKitsHandler(deps KitDependencies) *KitsHandler {
	return &KitsHandler{deps: deps}
}

type kitsResponse struct {
	PlanID string      `json:"planId"`
	Kits   []model.Kit `json:"kits"`
}

// HandleAssemble handles POST /scenarios/{id}/kits.
func (h *KitsHandler) HandleAssemble(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	kits, err := h.deps.AssembleKits(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, kitsResponse{PlanID: id, Kits: kits})
}

// HandleList handles GET /scenarios/{id}/kits.
func (h *KitsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	kits, err := h.deps.Kits(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if kits == nil {
		kits = []model.Kit{}
	}
	writeJSON(w, http.StatusOK, kitsResponse{PlanID: id, Kits: kits})
}

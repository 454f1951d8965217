package api

import (
	"bytes"
	"context"
	"net/http"

	"github.com/okian/fuelplan/internal/adapters/catalog"
	service "github.com/okian/fuelplan/internal/app"
	"github.com/okian/fuelplan/internal/domain/model"
)

// ScenarioDependencies defines the scenario operations used by the handlers.
type ScenarioDependencies interface {
	BuildScenario(ctx context.Context, in model.ScenarioInput) (model.ScenarioOutput, bool, error)
	BuildBatch(ctx context.Context, inputs []model.ScenarioInput) ([]service.BatchResult, error)
	Scenario(ctx context.Context, id string) (model.ScenarioOutput, error)
}

// ScenariosHandler handles scenario requests.
type ScenariosHandler struct {
	deps ScenarioDependencies
}

// NewScenariosHandler creates a new scenarios handler.
func NewScenariosHandler(deps ScenarioDependencies) *ScenariosHandler {
	return &ScenariosHandler{deps: deps}
}

// batchRequest is the body of POST /scenarios/batch.
type batchRequest struct {
	Scenarios []model.ScenarioInput `json:"scenarios"`
}

type batchEntry struct {
	Index    int                   `json:"index"`
	Created  bool                  `json:"created"`
	Scenario *model.ScenarioOutput `json:"scenario,omitempty"`
	Error    *errorResponse        `json:"error,omitempty"`
}

type batchResponse struct {
	Results []batchEntry `json:"results"`
}

// HandleCreate handles POST /scenarios. A new scenario answers 201; an
// identical earlier request answers 200 with the stored scenario.
func (h *ScenariosHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in model.ScenarioInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	out, created, err := h.deps.BuildScenario(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	w.Header().Set("Location", "/scenarios/"+out.ID)
	writeJSON(w, status, out)
}

// HandleBatch handles POST /scenarios/batch. Each entry carries either the
// scenario or its own error, in request order.
func (h *ScenariosHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	results, err := h.deps.BuildBatch(r.Context(), req.Scenarios)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := batchResponse{Results: make([]batchEntry, len(results))}
	for i, res := range results {
		entry := batchEntry{Index: res.Index, Created: res.Created}
		if res.Err != nil {
			_, body := errorBody(res.Err)
			entry.Error = &body
		} else {
			sc := res.Scenario
			entry.Scenario = &sc
		}
		resp.Results[i] = entry
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleGet handles GET /scenarios/{id}.
func (h *ScenariosHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.deps.Scenario(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleTimelineCSV handles GET /scenarios/{id}/timeline.csv.
func (h *ScenariosHandler) HandleTimelineCSV(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.deps.Scenario(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := catalog.WriteTimeline(&buf, out.FuelPlan); err != nil {
		writeError(w, r, WrapKind(ErrInternal, err))
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+out.ID+`-timeline.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

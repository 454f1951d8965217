package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/fuelplan/internal/adapters/http/api"
	service "github.com/okian/fuelplan/internal/app"
	"github.com/okian/fuelplan/internal/domain/model"
	"github.com/okian/fuelplan/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

type mockDeps struct {
	scenarios map[string]model.ScenarioOutput
	kits      map[string][]model.Kit
	buildErr  error
	kitErr    error
	seen      map[string]bool
}

func newMockDeps() *mockDeps {
	return &mockDeps{
		scenarios: map[string]model.ScenarioOutput{},
		kits:      map[string][]model.Kit{},
		seen:      map[string]bool{},
	}
}

func (m *mockDeps) BuildScenario(_ context.Context, in model.ScenarioInput) (model.ScenarioOutput, bool, error) {
	if m.buildErr != nil {
		return model.ScenarioOutput{}, false, m.buildErr
	}
	if err := in.Validate(); err != nil {
		return model.ScenarioOutput{}, false, err
	}
	if in.AthleteID == "ghost" {
		return model.ScenarioOutput{}, false, &model.MissingContextError{Entity: "athlete", ID: in.AthleteID}
	}
	key := fmt.Sprintf("%s-%s-%v", in.AthleteID, in.EventID, in.CarbTargetGPerHour)
	out := model.ScenarioOutput{
		ID:        "scn-" + key,
		AthleteID: in.AthleteID,
		EventID:   in.EventID,
		Inputs:    in,
		FuelPlan: []model.FuelLeg{
			{Hour: 0, CarbsG: 88, FluidsMl: 651, SodiumMg: 707, CaffeineMg: 16, Note: "include pre-start bottle"},
			{Hour: 1, CarbsG: 84, FluidsMl: 665, SodiumMg: 693, CaffeineMg: 48},
		},
	}
	created := !m.seen[key]
	m.seen[key] = true
	m.scenarios[out.ID] = out
	return out, created, nil
}

func (m *mockDeps) BuildBatch(ctx context.Context, inputs []model.ScenarioInput) ([]service.BatchResult, error) {
	if len(inputs) == 0 || len(inputs) > 6 {
		return nil, &model.ValidationError{Field: "inputs", Reason: "batch must contain 1 to 6 scenarios"}
	}
	out := make([]service.BatchResult, len(inputs))
	for i, in := range inputs {
		sc, created, err := m.BuildScenario(ctx, in)
		out[i] = service.BatchResult{Index: i, Scenario: sc, Created: created, Err: err}
	}
	return out, nil
}

func (m *mockDeps) Scenario(_ context.Context, id string) (model.ScenarioOutput, error) {
	sc, ok := m.scenarios[id]
	if !ok {
		return model.ScenarioOutput{}, fmt.Errorf("scenario %q: %w", id, service.ErrNotFound)
	}
	return sc, nil
}

func (m *mockDeps) AssembleKits(ctx context.Context, planID string) ([]model.Kit, error) {
	if _, err := m.Scenario(ctx, planID); err != nil {
		return nil, err
	}
	if m.kitErr != nil {
		return nil, m.kitErr
	}
	kits := []model.Kit{
		{ID: "kit-v", PlanID: planID, Variant: model.VariantValue, TotalPrice: 23.9},
		{ID: "kit-p", PlanID: planID, Variant: model.VariantPremium, TotalPrice: 43.05},
	}
	m.kits[planID] = append(m.kits[planID], kits...)
	return kits, nil
}

func (m *mockDeps) Kits(ctx context.Context, planID string) ([]model.Kit, error) {
	if _, err := m.Scenario(ctx, planID); err != nil {
		return nil, err
	}
	return m.kits[planID], nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats(context.Context) map[string]interface{} {
	return m.stats
}

const validBody = `{"athleteId":"ath-1","eventId":"evt-1","heatStrategy":"moderate","carbTargetGPerHour":85,"caffeinePlan":"balanced","sodiumConfidence":"medium","hydrationPlan":"steady"}`

func newMux(deps *mockDeps) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"storedScenarios": 3}}).Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
	return body
}

func TestScenarioRoutes(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := newMockDeps()
		mux := newMux(deps)

		Convey("When a scenario is posted twice", func() {
			first := do(mux, http.MethodPost, "/scenarios", validBody)
			second := do(mux, http.MethodPost, "/scenarios", validBody)

			Convey("Then the first is created and the second is served", func() {
				So(first.Code, ShouldEqual, http.StatusCreated)
				So(second.Code, ShouldEqual, http.StatusOK)
				So(first.Header().Get("Location"), ShouldStartWith, "/scenarios/scn-")

				var out model.ScenarioOutput
				So(json.Unmarshal(first.Body.Bytes(), &out), ShouldBeNil)
				So(out.AthleteID, ShouldEqual, "ath-1")
				So(out.FuelPlan, ShouldHaveLength, 2)
			})

			Convey("And it can be read back as JSON and CSV", func() {
				var out model.ScenarioOutput
				So(json.Unmarshal(first.Body.Bytes(), &out), ShouldBeNil)

				get := do(mux, http.MethodGet, "/scenarios/"+out.ID, "")
				So(get.Code, ShouldEqual, http.StatusOK)

				csv := do(mux, http.MethodGet, "/scenarios/"+out.ID+"/timeline.csv", "")
				So(csv.Code, ShouldEqual, http.StatusOK)
				So(csv.Header().Get("Content-Type"), ShouldEqual, "text/csv; charset=utf-8")
				So(csv.Body.String(), ShouldStartWith, "hour,carbs_g,fluids_ml,sodium_mg,caffeine_mg,note\n0,88,651,707,16,include pre-start bottle\n")
			})
		})

		Convey("When the body is malformed", func() {
			w := do(mux, http.MethodPost, "/scenarios", `{"athleteId":`)
			unknown := do(mux, http.MethodPost, "/scenarios", `{"athlete":"x"}`)

			Convey("Then 400 bad_request is returned", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["code"], ShouldEqual, "bad_request")
				So(unknown.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the input fails validation", func() {
			w := do(mux, http.MethodPost, "/scenarios", strings.Replace(validBody, "85", "150", 1))

			Convey("Then 400 names the field", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				body := decodeError(w)
				So(body["code"], ShouldEqual, "validation_error")
				So(body["details"].(map[string]any)["field"], ShouldEqual, "carbTargetGPerHour")
			})
		})

		Convey("When the athlete is unknown", func() {
			w := do(mux, http.MethodPost, "/scenarios", strings.Replace(validBody, "ath-1", "ghost", 1))

			Convey("Then 404 missing_context is returned", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				body := decodeError(w)
				So(body["code"], ShouldEqual, "missing_context")
				So(body["details"].(map[string]any)["entity"], ShouldEqual, "athlete")
			})
		})

		Convey("When the service fails unexpectedly", func() {
			deps.buildErr = errors.New("disk on fire")
			w := do(mux, http.MethodPost, "/scenarios", validBody)

			Convey("Then 500 hides the cause", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(w.Body.String(), ShouldNotContainSubstring, "disk")
			})
		})

		Convey("When an unknown scenario is requested", func() {
			get := do(mux, http.MethodGet, "/scenarios/nope", "")
			csv := do(mux, http.MethodGet, "/scenarios/nope/timeline.csv", "")

			Convey("Then 404 not_found is returned", func() {
				So(get.Code, ShouldEqual, http.StatusNotFound)
				So(decodeError(get)["code"], ShouldEqual, "not_found")
				So(csv.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When a route is called with the wrong method", func() {
			w := do(mux, http.MethodDelete, "/scenarios/abc", "")

			Convey("Then 405 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})
}

func TestBatchRoute(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux := newMux(newMockDeps())

		Convey("When a batch with one bad entry is posted", func() {
			body := `{"scenarios":[` + validBody + `,` + strings.Replace(validBody, "ath-1", "ghost", 1) + `]}`
			w := do(mux, http.MethodPost, "/scenarios/batch", body)

			Convey("Then every entry reports its own outcome in order", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp struct {
					Results []struct {
						Index    int                   `json:"index"`
						Created  bool                  `json:"created"`
						Scenario *model.ScenarioOutput `json:"scenario"`
						Error    *struct {
							Code string `json:"code"`
						} `json:"error"`
					} `json:"results"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Results, ShouldHaveLength, 2)
				So(resp.Results[0].Scenario, ShouldNotBeNil)
				So(resp.Results[0].Created, ShouldBeTrue)
				So(resp.Results[1].Index, ShouldEqual, 1)
				So(resp.Results[1].Scenario, ShouldBeNil)
				So(resp.Results[1].Error.Code, ShouldEqual, "missing_context")
			})
		})

		Convey("When an empty batch is posted", func() {
			w := do(mux, http.MethodPost, "/scenarios/batch", `{"scenarios":[]}`)

			Convey("Then 400 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestKitRoutes(t *testing.T) {
	Convey("Given a stored scenario", t, func() {
		deps := newMockDeps()
		mux := newMux(deps)
		var out model.ScenarioOutput
		So(json.Unmarshal(do(mux, http.MethodPost, "/scenarios", validBody).Body.Bytes(), &out), ShouldBeNil)

		Convey("When kits are assembled and listed", func() {
			post := do(mux, http.MethodPost, "/scenarios/"+out.ID+"/kits", "")
			list := do(mux, http.MethodGet, "/scenarios/"+out.ID+"/kits", "")

			Convey("Then both variants are returned", func() {
				So(post.Code, ShouldEqual, http.StatusCreated)
				So(list.Code, ShouldEqual, http.StatusOK)
				var resp struct {
					PlanID string      `json:"planId"`
					Kits   []model.Kit `json:"kits"`
				}
				So(json.Unmarshal(list.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.PlanID, ShouldEqual, out.ID)
				So(resp.Kits, ShouldHaveLength, 2)
			})
		})

		Convey("When no kits exist yet", func() {
			list := do(mux, http.MethodGet, "/scenarios/"+out.ID+"/kits", "")

			Convey("Then an empty array is returned", func() {
				So(list.Code, ShouldEqual, http.StatusOK)
				So(list.Body.String(), ShouldContainSubstring, `"kits":[]`)
			})
		})

		Convey("When preferences exclude every product", func() {
			deps.kitErr = &model.KitAssemblyError{
				Categories: []model.ProductCategory{model.CategoryGel, model.CategoryDrinkMix},
				Reason:     "relax dietary flags or banned brands",
			}
			w := do(mux, http.MethodPost, "/scenarios/"+out.ID+"/kits", "")

			Convey("Then 422 lists the empty categories", func() {
				So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
				body := decodeError(w)
				So(body["code"], ShouldEqual, "kit_assembly_failed")
				So(body["details"].(map[string]any)["categories"], ShouldResemble, []any{"gel", "drink_mix"})
			})
		})

		Convey("When the catalog is not configured", func() {
			deps.kitErr = service.ErrNoCatalog
			w := do(mux, http.MethodPost, "/scenarios/"+out.ID+"/kits", "")

			Convey("Then 503 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			})
		})
	})
}

func TestOperationalRoutes(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux := newMux(newMockDeps())

		Convey("When health and stats are requested", func() {
			health := do(mux, http.MethodGet, "/healthz", "")
			stats := do(mux, http.MethodGet, "/stats", "")

			Convey("Then both answer 200", func() {
				So(health.Code, ShouldEqual, http.StatusOK)
				So(stats.Code, ShouldEqual, http.StatusOK)
				So(stats.Body.String(), ShouldContainSubstring, `"storedScenarios":3`)
			})
		})

		Convey("When an unknown path is requested", func() {
			w := do(mux, http.MethodGet, "/unknown", "")

			Convey("Then 404 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestKindError(t *testing.T) {
	Convey("Given kind errors", t, func() {
		cause := errors.New("boom")

		Convey("When wrapping and creating them", func() {
			wrapped := api.WrapKind(api.ErrBadRequest, cause)
			created := api.NewKind(api.ErrInternal, "write failed")

			Convey("Then both kind and cause match", func() {
				So(errors.Is(wrapped, api.ErrBadRequest), ShouldBeTrue)
				So(errors.Is(wrapped, cause), ShouldBeTrue)
				So(wrapped.Error(), ShouldEqual, "boom")
				So(errors.Is(created, api.ErrInternal), ShouldBeTrue)
				So(created.Error(), ShouldEqual, "write failed")
				So(api.WrapKind(api.ErrBadRequest, nil), ShouldBeNil)
				So(api.Wrap(nil, "x"), ShouldBeNil)
				So(api.Wrap(cause, "ctx").Error(), ShouldEqual, "ctx: boom")
			})
		})
	})
}

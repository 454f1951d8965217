package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"github.com/okian/fuelplan/internal/adapters/catalog"
	"github.com/okian/fuelplan/internal/adapters/fixtures"
	"github.com/okian/fuelplan/internal/adapters/repository"
	service "github.com/okian/fuelplan/internal/app"
	"github.com/okian/fuelplan/internal/domain/guardrail"
	"github.com/okian/fuelplan/internal/domain/model"
	"github.com/okian/fuelplan/internal/domain/scenario"
	"github.com/okian/fuelplan/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const fixtureYAML = `
athletes:
  - id: ath-1
    weight_kg: 70
    long_run_pace_min_per_km: 5.5
  - id: ath-strict
    weight_kg: 62
    long_run_pace_min_per_km: 6
preferences:
  - athlete_id: ath-1
    dietary_flags: [vegan]
    favorite_brands: [GU]
    caffeine_sensitivity: medium
    target_flavor_diversity: 2
  - athlete_id: ath-strict
    banned_brands: [GU, Tailwind]
    caffeine_sensitivity: low
events:
  - id: evt-marathon
    climate: temperate
    discipline: road_marathon
    start_time: 2026-04-12T08:00:00Z
    distance_km: 42.2
    elevation_gain_m: 120
`

const catalogCSV = "sku,brand,name,category,carbs_per_serving,sodium_per_serving,caffeine_per_serving,price,weight_grams,flavors,dietary_flags\n" +
	"gel-gu,GU,Energy Gel,gel,22,60,0,1.5,32,salted caramel|vanilla,vegan\n" +
	"tailwind,Tailwind,Endurance Fuel,drink_mix,25,310,0,1.75,27,lemon,vegan\n" +
	"saltstick,SaltStick,Caps,capsule,0,215,0,0.25,1,,vegan\n"

func input(athlete string, carbs float64) model.ScenarioInput {
	return model.ScenarioInput{
		AthleteID:          athlete,
		EventID:            "evt-marathon",
		HeatStrategy:       model.HeatModerate,
		CarbTargetGPerHour: carbs,
		CaffeinePlan:       model.CaffeineBalanced,
		SodiumConfidence:   model.SodiumMedium,
		HydrationPlan:      model.HydrationSteady,
	}
}

func newService(opts ...service.Option) (*service.Service, repository.Store) {
	resolver, err := fixtures.Parse(strings.NewReader(fixtureYAML))
	So(err, ShouldBeNil)
	products, err := catalog.Parse(strings.NewReader(catalogCSV))
	So(err, ShouldBeNil)

	store := repository.NewMemoryStore()
	base := []service.Option{
		service.WithResolver(resolver),
		service.WithProducts(catalog.New(products)),
		service.WithStore(store),
		service.WithBuilder(scenario.NewBuilder(scenario.WithSimulator(guardrail.NewSimulator(guardrail.WithSeed(7))))),
		service.WithBatchConcurrency(3),
	}
	svc := service.New(append(base, opts...)...)
	So(svc.Start(context.Background()), ShouldBeNil)
	return svc, store
}

func TestBuildScenario(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc, store := newService()
		defer svc.Stop()

		Convey("When a scenario is built", func() {
			out, created, err := svc.BuildScenario(ctx, input("ath-1", 85))
			So(err, ShouldBeNil)

			Convey("Then it is created, stored and complete", func() {
				So(created, ShouldBeTrue)
				So(out.ID, ShouldNotBeEmpty)
				So(out.ScenarioHash, ShouldHaveLength, scenario.HashLength)
				So(out.FuelPlan, ShouldNotBeEmpty)
				So(out.Targets.CarbsPerHour, ShouldBeBetweenOrEqual, 40, 120)

				stored, err := svc.Scenario(ctx, out.ID)
				So(err, ShouldBeNil)
				So(stored.ScenarioHash, ShouldEqual, out.ScenarioHash)
			})

			Convey("And the same request is repeated", func() {
				again, created, err := svc.BuildScenario(ctx, input("ath-1", 85))

				Convey("Then the stored scenario is returned", func() {
					So(err, ShouldBeNil)
					So(created, ShouldBeFalse)
					So(again.ID, ShouldEqual, out.ID)
					n, _ := store.Count(ctx)
					So(n, ShouldEqual, 1)
				})
			})

			Convey("And a different carb target is requested", func() {
				other, created, err := svc.BuildScenario(ctx, input("ath-1", 90))

				Convey("Then a new scenario is stored", func() {
					So(err, ShouldBeNil)
					So(created, ShouldBeTrue)
					So(other.ID, ShouldNotEqual, out.ID)
					So(other.ScenarioHash, ShouldNotEqual, out.ScenarioHash)
				})
			})
		})

		Convey("When identical requests race", func() {
			var wg sync.WaitGroup
			ids := make([]string, 6)
			for i := range ids {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					out, _, err := svc.BuildScenario(ctx, input("ath-1", 70))
					if err == nil {
						ids[i] = out.ID
					}
				}(i)
			}
			wg.Wait()

			Convey("Then they collapse to one stored scenario", func() {
				for _, id := range ids {
					So(id, ShouldNotBeEmpty)
					So(id, ShouldEqual, ids[0])
				}
				n, _ := store.Count(ctx)
				So(n, ShouldEqual, 1)
			})
		})

		Convey("When the input is invalid or refers to unknown entities", func() {
			_, _, validationErr := svc.BuildScenario(ctx, input("ath-1", 200))
			_, _, missingErr := svc.BuildScenario(ctx, input("ghost", 80))
			_, notFoundErr := svc.Scenario(ctx, "nope")

			Convey("Then typed errors are returned", func() {
				So(errors.Is(validationErr, model.ErrValidation), ShouldBeTrue)
				So(errors.Is(missingErr, model.ErrMissingContext), ShouldBeTrue)
				So(errors.Is(notFoundErr, service.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestBuildBatch(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc, _ := newService()
		defer svc.Stop()

		Convey("When a mixed batch is built", func() {
			results, err := svc.BuildBatch(ctx, []model.ScenarioInput{
				input("ath-1", 60),
				input("ghost", 60),
				input("ath-1", 60),
				input("ath-strict", 75),
			})
			So(err, ShouldBeNil)

			Convey("Then results follow input order", func() {
				So(results, ShouldHaveLength, 4)
				for i, r := range results {
					So(r.Index, ShouldEqual, i)
				}
				So(results[0].Err, ShouldBeNil)
				So(errors.Is(results[1].Err, model.ErrMissingContext), ShouldBeTrue)
				So(results[2].Err, ShouldBeNil)
				So(results[2].Scenario.ID, ShouldEqual, results[0].Scenario.ID)
				So(results[3].Scenario.AthleteID, ShouldEqual, "ath-strict")
			})
		})

		Convey("When the batch is empty or too large", func() {
			_, emptyErr := svc.BuildBatch(ctx, nil)
			_, largeErr := svc.BuildBatch(ctx, make([]model.ScenarioInput, 7))

			Convey("Then it is rejected as invalid", func() {
				So(errors.Is(emptyErr, model.ErrValidation), ShouldBeTrue)
				So(errors.Is(largeErr, model.ErrValidation), ShouldBeTrue)
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := svc.BuildBatch(cctx, []model.ScenarioInput{input("ath-1", 60)})

			Convey("Then the cancellation is returned", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}

func TestKits(t *testing.T) {
	Convey("Given a stored scenario", t, func() {
		ctx := context.Background()
		svc, _ := newService()
		defer svc.Stop()
		out, _, err := svc.BuildScenario(ctx, input("ath-1", 85))
		So(err, ShouldBeNil)

		Convey("When kits are assembled", func() {
			kits, err := svc.AssembleKits(ctx, out.ID)
			So(err, ShouldBeNil)

			Convey("Then a value and a premium kit are stored for the plan", func() {
				So(kits, ShouldHaveLength, 2)
				So(kits[0].Variant, ShouldEqual, model.VariantValue)
				So(kits[1].Variant, ShouldEqual, model.VariantPremium)
				So(kits[0].PlanID, ShouldEqual, out.ID)

				stored, err := svc.Kits(ctx, out.ID)
				So(err, ShouldBeNil)
				So(stored, ShouldHaveLength, 2)
				So(stored[0].ID, ShouldEqual, kits[0].ID)
			})
		})

		Convey("When the athlete's preferences exclude every gel and drink", func() {
			strict, _, err := svc.BuildScenario(ctx, input("ath-strict", 70))
			So(err, ShouldBeNil)
			_, err = svc.AssembleKits(ctx, strict.ID)

			Convey("Then a kit assembly error is returned and nothing is stored", func() {
				var kitErr *model.KitAssemblyError
				So(errors.As(err, &kitErr), ShouldBeTrue)
				So(kitErr.Reason, ShouldContainSubstring, "relax")
				stored, err := svc.Kits(ctx, strict.ID)
				So(err, ShouldBeNil)
				So(stored, ShouldBeEmpty)
			})
		})

		Convey("When the plan is unknown", func() {
			_, assembleErr := svc.AssembleKits(ctx, "nope")
			_, listErr := svc.Kits(ctx, "nope")

			Convey("Then not found is reported", func() {
				So(errors.Is(assembleErr, service.ErrNotFound), ShouldBeTrue)
				So(errors.Is(listErr, service.ErrNotFound), ShouldBeTrue)
			})
		})
	})

	Convey("Given a service without a catalog", t, func() {
		resolver, err := fixtures.Parse(strings.NewReader(fixtureYAML))
		So(err, ShouldBeNil)
		svc := service.New(service.WithResolver(resolver))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		Convey("When kits are requested", func() {
			_, err := svc.AssembleKits(context.Background(), "any")

			Convey("Then ErrNoCatalog is returned", func() {
				So(errors.Is(err, service.ErrNoCatalog), ShouldBeTrue)
			})
		})
	})
}

func TestLifecycle(t *testing.T) {
	Convey("Given a service without a resolver", t, func() {
		svc := service.New()

		Convey("When it is started", func() {
			err := svc.Start(context.Background())

			Convey("Then ErrNoResolver is returned", func() {
				So(errors.Is(err, service.ErrNoResolver), ShouldBeTrue)
			})
		})
	})

	Convey("Given a started service with one scenario", t, func() {
		ctx := context.Background()
		svc, _ := newService(service.WithDedupeSize(10), service.WithMaxBatchSize(3))
		_, _, err := svc.BuildScenario(ctx, input("ath-1", 80))
		So(err, ShouldBeNil)

		Convey("When stats are requested", func() {
			stats := svc.GetStats(ctx)

			Convey("Then they describe the service", func() {
				So(stats["started"], ShouldEqual, true)
				So(stats["storedScenarios"], ShouldEqual, int64(1))
				So(stats["indexedHashes"], ShouldEqual, int64(1))
				So(stats["maxBatchSize"], ShouldEqual, 3)
				So(svc.MaxBatchSize(), ShouldEqual, 3)
			})
		})

		Convey("When it is stopped twice", func() {
			Convey("Then nothing panics", func() {
				So(func() { svc.Stop(); svc.Stop() }, ShouldNotPanic)
			})
		})
	})
}

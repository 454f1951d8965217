package fixtures_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/fuelplan/internal/adapters/fixtures"
	service "github.com/okian/fuelplan/internal/app"
	"github.com/okian/fuelplan/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var _ service.Resolver = (*fixtures.Store)(nil)

func load(t *testing.T) *fixtures.Store {
	t.Helper()
	s, err := fixtures.LoadFile(filepath.Join("testdata", "fixtures.yaml"))
	if err != nil {
		t.Fatalf("load fixtures: %v", err)
	}
	return s
}

func TestResolve(t *testing.T) {
	Convey("Given the sample fixtures", t, func() {
		s := load(t)
		ctx := context.Background()

		Convey("When the document is indexed", func() {
			Convey("Then every section is counted", func() {
				So(s.Counts(), ShouldResemble, map[string]int{
					"athletes": 1, "preferences": 1, "events": 2, "routes": 1, "estimates": 1,
				})
			})
		})

		Convey("When resolving an input without a route id", func() {
			sc, err := s.Resolve(ctx, model.ScenarioInput{AthleteID: "ath-1", EventID: "evt-marathon"})

			Convey("Then the route comes from the event", func() {
				So(err, ShouldBeNil)
				So(sc.Athlete.WeightKg, ShouldEqual, 70)
				So(sc.Preference.FavoriteBrands, ShouldResemble, []string{"GU"})
				So(sc.Preference.CarryProfile.GelLoops, ShouldEqual, 6)
				So(sc.Event.Discipline, ShouldEqual, model.DisciplineRoadMarathon)
				So(sc.Event.StartTime.Equal(time.Date(2026, 4, 12, 6, 0, 0, 0, time.UTC)), ShouldBeTrue)
				So(sc.Route, ShouldResemble, model.Route{DistanceKm: 42.2, ElevationGainM: 120})
				So(sc.EstimatedFinishHours, ShouldEqual, 0)
				So(sc.Validate(), ShouldBeNil)
			})
		})

		Convey("When resolving an input with a route id", func() {
			sc, err := s.Resolve(ctx, model.ScenarioInput{AthleteID: "ath-1", EventID: "evt-trail", RouteID: "rt-ridge"})

			Convey("Then the stored route and estimate are used", func() {
				So(err, ShouldBeNil)
				So(sc.Route.Profile, ShouldHaveLength, 3)
				So(sc.Route.AidStations[0].Name, ShouldEqual, "Saddle")
				So(sc.EstimatedFinishHours, ShouldEqual, 8.5)
			})
		})

		Convey("When an entity is missing", func() {
			cases := map[string]model.ScenarioInput{
				"athlete":         {AthleteID: "nobody", EventID: "evt-marathon"},
				"event":           {AthleteID: "ath-1", EventID: "nope"},
				"route":           {AthleteID: "ath-1", EventID: "evt-trail", RouteID: "rt-none"},
				"route for event": {AthleteID: "ath-1", EventID: "evt-trail"},
			}

			Convey("Then a MissingContextError names it", func() {
				for entity, in := range cases {
					_, err := s.Resolve(ctx, in)
					var missing *model.MissingContextError
					So(errors.As(err, &missing), ShouldBeTrue)
					So(missing.Entity, ShouldEqual, entity)
					So(errors.Is(err, model.ErrMissingContext), ShouldBeTrue)
				}
			})
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := s.Resolve(cctx, model.ScenarioInput{AthleteID: "ath-1", EventID: "evt-marathon"})

			Convey("Then the cancellation is returned", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}

func TestParse(t *testing.T) {
	Convey("Given fixture documents", t, func() {
		Convey("When an athlete has no preference", func() {
			s, err := fixtures.Parse(strings.NewReader("athletes:\n  - id: a\n    weight_kg: 60\nevents:\n  - id: e\n    distance_km: 10\n"))
			So(err, ShouldBeNil)
			_, err = s.Resolve(context.Background(), model.ScenarioInput{AthleteID: "a", EventID: "e"})

			Convey("Then resolution reports the missing preference", func() {
				var missing *model.MissingContextError
				So(errors.As(err, &missing), ShouldBeTrue)
				So(missing.Entity, ShouldEqual, "preference")
			})
		})

		Convey("When ids repeat or are blank", func() {
			_, dupErr := fixtures.Parse(strings.NewReader("athletes:\n  - id: a\n  - id: a\n"))
			_, blankErr := fixtures.Parse(strings.NewReader("events:\n  - name: no id\n"))

			Convey("Then the document is invalid", func() {
				So(errors.Is(dupErr, fixtures.ErrInvalidFixtures), ShouldBeTrue)
				So(errors.Is(blankErr, fixtures.ErrInvalidFixtures), ShouldBeTrue)
			})
		})

		Convey("When the document is empty or malformed", func() {
			empty, emptyErr := fixtures.Parse(strings.NewReader(""))
			_, badErr := fixtures.Parse(strings.NewReader("athletes: {"))

			Convey("Then empty is fine and malformed fails", func() {
				So(emptyErr, ShouldBeNil)
				So(empty.Counts()["athletes"], ShouldEqual, 0)
				So(badErr, ShouldNotBeNil)
			})
		})
	})
}

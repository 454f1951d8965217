package terrain_test

import (
	"errors"
	"testing"

	"github.com/okian/fuelplan/internal/domain/model"
	"github.com/okian/fuelplan/internal/domain/terrain"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClassFor(t *testing.T) {
	Convey("Given every supported discipline", t, func() {
		cases := map[model.Discipline]model.TerrainClass{
			model.DisciplineRoadMarathon: model.TerrainRoad,
			model.DisciplineHalfIronman:  model.TerrainRoad,
			model.DisciplineCycling:      model.TerrainRoad,
			model.DisciplineUltraRun:     model.TerrainTrail,
			model.DisciplineTrailUltra:   model.TerrainUltraTrail,
		}

		Convey("Then each maps to its terrain class", func() {
			for d, want := range cases {
				got, err := terrain.ClassFor(d)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, want)
			}
		})
	})

	Convey("Given an unknown discipline", t, func() {
		_, err := terrain.ClassFor("swimrun")

		Convey("Then ErrUnknownDiscipline is returned", func() {
			So(errors.Is(err, terrain.ErrUnknownDiscipline), ShouldBeTrue)
		})
	})
}

func TestAdjust(t *testing.T) {
	Convey("Given the three terrain classes", t, func() {
		Convey("When adjusting a road effort", func() {
			adj, err := terrain.Adjust(model.TerrainRoad, 3, model.ElevationMetrics{})
			So(err, ShouldBeNil)

			Convey("Then multipliers are neutral and liquids preferred", func() {
				So(adj.CarbAdjustment, ShouldEqual, 1)
				So(adj.FluidAdjustment, ShouldEqual, 1)
				So(adj.SodiumAdjustment, ShouldEqual, 1)
				So(adj.CaffeineAdjustment, ShouldEqual, 1)
				So(adj.PreferLiquidNutrition, ShouldBeTrue)
				So(adj.RequiresMoreVariety, ShouldBeFalse)
			})
		})

		Convey("When adjusting a trail effort", func() {
			adj, err := terrain.Adjust(model.TerrainTrail, 5, model.ElevationMetrics{})
			So(err, ShouldBeNil)

			Convey("Then trail multipliers apply", func() {
				So(adj.CarbAdjustment, ShouldEqual, 0.92)
				So(adj.FluidAdjustment, ShouldEqual, 1.05)
				So(adj.SodiumAdjustment, ShouldEqual, 1.10)
				So(adj.CaffeineAdjustment, ShouldEqual, 0.90)
				So(adj.RequiresMoreVariety, ShouldBeTrue)
			})
		})

		Convey("When adjusting a long ultra trail with a major climb", func() {
			metrics := model.ElevationMetrics{HasProfile: true, ClimbingIntensity: 0.8, MajorClimbs: []model.Climb{{GainM: 400}}}
			adj, err := terrain.Adjust(model.TerrainUltraTrail, 12, metrics)
			So(err, ShouldBeNil)

			Convey("Then ultra multipliers apply and real food is capped", func() {
				So(adj.CarbAdjustment, ShouldEqual, 0.80)
				So(adj.FluidAdjustment, ShouldEqual, 1.15)
				So(adj.SodiumAdjustment, ShouldEqual, 1.25)
				So(adj.CaffeineAdjustment, ShouldEqual, 0.75)
				So(adj.RealFoodFactor, ShouldEqual, 0.6)
				So(adj.PreferLiquidNutrition, ShouldBeTrue)
				So(adj.Guidance[len(adj.Guidance)-1], ShouldContainSubstring, "1 major climb")
			})
		})

		Convey("When the class is unknown", func() {
			_, err := terrain.Adjust("gravel", 3, model.ElevationMetrics{})

			Convey("Then ErrUnknownClass is returned", func() {
				So(errors.Is(err, terrain.ErrUnknownClass), ShouldBeTrue)
			})
		})
	})
}

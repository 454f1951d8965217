// Package terrain maps event disciplines to terrain classes and yields the
// multiplicative fueling adjustments for each class.
package terrain

import (
	"fmt"

	"github.com/okian/fuelplan/internal/domain/model"
)

// Thresholds for the qualitative flags.
const (
	longEffortHours       = 4.0
	steepRouteIntensity   = 0.6
	ultraRealFoodPerHour  = 0.05
	maxRealFoodFactor     = 0.6
	trailRealFoodBaseline = 0.1
)

// ClassFor returns the terrain class of a discipline.
func ClassFor(d model.Discipline) (model.TerrainClass, error) {
	switch d {
	case model.DisciplineRoadMarathon, model.DisciplineHalfIronman, model.DisciplineCycling:
		return model.TerrainRoad, nil
	case model.DisciplineUltraRun:
		return model.TerrainTrail, nil
	case model.DisciplineTrailUltra:
		return model.TerrainUltraTrail, nil
	default:
		return "", fmt.Errorf("%w: discipline %q", ErrUnknownDiscipline, d)
	}
}

type multipliers struct {
	carb, fluid, sodium, caffeine float64
}

func baseMultipliers(c model.TerrainClass) (multipliers, error) {
	switch c {
	case model.TerrainRoad:
		return multipliers{carb: 1.0, fluid: 1.0, sodium: 1.0, caffeine: 1.0}, nil
	case model.TerrainTrail:
		return multipliers{carb: 0.92, fluid: 1.05, sodium: 1.10, caffeine: 0.90}, nil
	case model.TerrainUltraTrail:
		return multipliers{carb: 0.80, fluid: 1.15, sodium: 1.25, caffeine: 0.75}, nil
	default:
		return multipliers{}, fmt.Errorf("%w: %q", ErrUnknownClass, c)
	}
}

// Adjust returns the adjustments for a terrain class. The numeric
// multipliers depend on the class only; duration and elevation shape the
// qualitative flags and guidance used for advisory text.
func Adjust(class model.TerrainClass, durationHours float64, metrics model.ElevationMetrics) (model.TerrainAdjustments, error) {
	m, err := baseMultipliers(class)
	if err != nil {
		return model.TerrainAdjustments{}, err
	}

	adj := model.TerrainAdjustments{
		Class:              class,
		CarbAdjustment:     m.carb,
		FluidAdjustment:    m.fluid,
		SodiumAdjustment:   m.sodium,
		CaffeineAdjustment: m.caffeine,
	}

	switch class {
	case model.TerrainRoad:
		adj.PreferLiquidNutrition = true
		adj.RequiresMoreVariety = durationHours > longEffortHours
		adj.Guidance = []string{"gels and drink mix at a steady cadence", "use aid-station fluids to save carry weight"}
	case model.TerrainTrail:
		adj.PreferLiquidNutrition = metrics.ClimbingIntensity > steepRouteIntensity
		adj.RequiresMoreVariety = durationHours > longEffortHours
		adj.RealFoodFactor = trailRealFoodBaseline
		adj.Guidance = []string{"mix chews with gels on runnable sections", "drink on climbs, eat on flats"}
	case model.TerrainUltraTrail:
		adj.PreferLiquidNutrition = metrics.ClimbingIntensity > steepRouteIntensity
		adj.RequiresMoreVariety = true
		adj.RealFoodFactor = min(maxRealFoodFactor, trailRealFoodBaseline+durationHours*ultraRealFoodPerHour)
		adj.Guidance = []string{"plan real food at aid stations", "rotate savory and sweet flavors", "increase sodium in the heat of the day"}
	}

	if len(metrics.MajorClimbs) > 0 {
		adj.Guidance = append(adj.Guidance, fmt.Sprintf("front-load carbs before %d major climb(s)", len(metrics.MajorClimbs)))
	}
	return adj, nil
}

package targets

import (
	"fmt"

	"github.com/okian/fuelplan/internal/domain/model"
)

func heatStrategyBias(h model.HeatStrategy) (float64, error) {
	switch h {
	case model.HeatAggressive:
		return 1.05, nil
	case model.HeatModerate:
		return 1.0, nil
	case model.HeatConservative:
		return 0.95, nil
	default:
		return 0, fmt.Errorf("%w: heat strategy %q", ErrUnknownLevel, h)
	}
}

func climateMultiplier(c model.Climate) (float64, error) {
	switch c {
	case model.ClimateCold:
		return 0.9, nil
	case model.ClimateCool:
		return 1.0, nil
	case model.ClimateTemperate:
		return 1.05, nil
	case model.ClimateHot:
		return 1.2, nil
	case model.ClimateHumid:
		return 1.25, nil
	default:
		return 0, fmt.Errorf("%w: climate %q", ErrUnknownLevel, c)
	}
}

func hydrationMultiplier(h model.HydrationPlan) (float64, error) {
	switch h {
	case model.HydrationMinimal:
		return 0.85, nil
	case model.HydrationSteady:
		return 1.0, nil
	case model.HydrationHeavy:
		return 1.15, nil
	default:
		return 0, fmt.Errorf("%w: hydration plan %q", ErrUnknownLevel, h)
	}
}

// sodiumMidpoint returns the midpoint of the confidence range in mg/h.
// Callers validate the level first.
func sodiumMidpoint(s model.SodiumConfidence) float64 {
	switch s {
	case model.SodiumLow:
		return (350 + 600) / 2.0
	case model.SodiumMedium:
		return (500 + 900) / 2.0
	case model.SodiumHigh:
		return (800 + 1400) / 2.0
	default:
		return 0
	}
}

// caffeineBase returns the plan's base dose in mg. Callers validate the plan first.
func caffeineBase(p model.CaffeinePlan) float64 {
	switch p {
	case model.CaffeineLow:
		return 80
	case model.CaffeineBalanced:
		return 160
	case model.CaffeineHigh:
		return 240
	default:
		return 0
	}
}

func caffeineSensitivityBias(s model.Sensitivity) (float64, error) {
	switch s {
	case model.SensitivityLow:
		return 0.8, nil
	case "", model.SensitivityMedium:
		return 1.0, nil
	case model.SensitivityHigh:
		return 1.15, nil
	default:
		return 0, fmt.Errorf("%w: caffeine sensitivity %q", ErrUnknownLevel, s)
	}
}

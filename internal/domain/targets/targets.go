// Package targets derives per-hour fueling targets from an athlete, their
// preferences, the event, the route and the requested scenario strategy.
//
// Each dimension is an ordered pipeline of named clamp/scale stages. After
// every multiplier the value is clamped back into the dimension's
// physiological bound, so no upstream extreme can push a target out of range.
package targets

import (
	"fmt"

	"github.com/okian/fuelplan/internal/domain/elevation"
	"github.com/okian/fuelplan/internal/domain/model"
	"github.com/okian/fuelplan/internal/domain/terrain"
)

// Duration model.
const (
	defaultPaceMinPerKm    = 5.2
	elevationPaceDivisorM  = 5000.0
	technicalPenaltyUltra  = 1.2
	minDurationHours       = 1.5
	maxDurationHours       = 12.0
	minutesPerHour         = 60.0
	veganSodiumReductionMg = 40.0
	veganFlag              = "vegan"
	baseFluidMlPerHour     = 620.0
	elevationCarbBumpMax   = 0.15
	elevationFluidBumpMax  = 0.10
	caffeineMgPerKgCeiling = 6.0
)

// Strategy bounds applied before elevation and terrain adjustments.
const (
	carbStrategyMin  = 50.0
	carbStrategyMax  = 110.0
	fluidStrategyMin = 450.0
	fluidStrategyMax = 1100.0
	sodiumRangeMin   = 350.0
	sodiumRangeMax   = 1400.0
)

// Physiological bounds every later stage is clamped to.
const (
	carbPhysMin   = 40.0
	carbPhysMax   = 120.0
	fluidPhysMin  = 350.0
	fluidPhysMax  = 1300.0
	sodiumPhysMin = 280.0
	sodiumPhysMax = 1750.0
)

// Trace dimension keys.
const (
	DimensionDuration = "duration"
	DimensionCarbs    = "carbs"
	DimensionFluids   = "fluids"
	DimensionSodium   = "sodium"
	DimensionCaffeine = "caffeine"
)

// Option applies a configuration option to the Deriver.
type Option func(*Deriver)

// WithDefaultPace sets the pace used when an athlete has no long-run pace.
func WithDefaultPace(minPerKm float64) Option {
	return func(d *Deriver) {
		if minPerKm > 0 {
			d.defaultPace = minPerKm
		}
	}
}

// WithTrace toggles recording of per-stage provenance on the result.
func WithTrace(enabled bool) Option {
	return func(d *Deriver) {
		d.trace = enabled
	}
}

// Deriver computes BaselineTargets.
type Deriver struct {
	defaultPace float64
	trace       bool
}

// NewDeriver creates a Deriver with configuration options.
func NewDeriver(opts ...Option) *Deriver {
	d := &Deriver{
		defaultPace: defaultPaceMinPerKm,
		trace:       true,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Derive computes the baseline targets for one scenario.
func (d *Deriver) Derive(in model.ScenarioInput, sc model.ScenarioContext) (model.BaselineTargets, error) {
	if err := in.Validate(); err != nil {
		return model.BaselineTargets{}, err
	}
	if err := sc.Validate(); err != nil {
		return model.BaselineTargets{}, err
	}

	var trace map[string][]model.StageTrace
	if d.trace {
		trace = make(map[string][]model.StageTrace, 5)
	}

	duration, err := d.durationHours(sc, trace)
	if err != nil {
		return model.BaselineTargets{}, err
	}

	metrics := elevation.Analyze(sc.Route.Profile)

	class, err := terrain.ClassFor(sc.Event.Discipline)
	if err != nil {
		return model.BaselineTargets{}, err
	}
	adj, err := terrain.Adjust(class, duration, metrics)
	if err != nil {
		return model.BaselineTargets{}, err
	}

	carbs, err := carbsPipeline(in, metrics, adj)
	if err != nil {
		return model.BaselineTargets{}, err
	}
	fluids, err := fluidsPipeline(in, sc.Event, metrics, adj)
	if err != nil {
		return model.BaselineTargets{}, err
	}
	sodium, err := sodiumPipeline(in, sc.Preference, adj)
	if err != nil {
		return model.BaselineTargets{}, err
	}
	caffeine, err := caffeinePipeline(in, sc.Preference, sc.Athlete, adj)
	if err != nil {
		return model.BaselineTargets{}, err
	}

	return model.BaselineTargets{
		CarbsPerHour:     carbs.run(in.CarbTargetGPerHour, trace),
		FluidsPerHour:    fluids.run(baseFluidMlPerHour, trace),
		SodiumPerHour:    sodium.run(sodiumMidpoint(in.SodiumConfidence), trace),
		CaffeineTotal:    caffeine.run(caffeineBase(in.CaffeinePlan), trace),
		DurationHours:    duration,
		ElevationMetrics: metrics,
		Terrain:          adj,
		Trace:            trace,
	}, nil
}

func (d *Deriver) durationHours(sc model.ScenarioContext, trace map[string][]model.StageTrace) (float64, error) {
	if sc.EstimatedFinishHours > 0 {
		p := pipeline{dimension: DimensionDuration, stages: []stage{
			clampStage("duration_bounds", minDurationHours, maxDurationHours),
		}}
		return p.run(sc.EstimatedFinishHours, trace), nil
	}

	pace := sc.Athlete.LongRunPaceMinPerKm
	if pace <= 0 {
		pace = d.defaultPace
	}
	penalty := 1.0
	if sc.Event.Discipline == model.DisciplineTrailUltra {
		penalty = technicalPenaltyUltra
	}

	p := pipeline{dimension: DimensionDuration, stages: []stage{
		scaleStage("pace_min_per_km", pace),
		scaleStage("elevation_gain", 1+sc.Route.ElevationGainM/elevationPaceDivisorM),
		scaleStage("technical_penalty", penalty),
		scaleStage("minutes_to_hours", 1/minutesPerHour),
		clampStage("duration_bounds", minDurationHours, maxDurationHours),
	}}
	return p.run(sc.Route.DistanceKm, trace), nil
}

func carbsPipeline(in model.ScenarioInput, m model.ElevationMetrics, adj model.TerrainAdjustments) (pipeline, error) {
	bias, err := heatStrategyBias(in.HeatStrategy)
	if err != nil {
		return pipeline{}, err
	}
	return pipeline{dimension: DimensionCarbs, stages: []stage{
		scaleStage("heat_strategy_bias", bias),
		clampStage("strategy_bounds", carbStrategyMin, carbStrategyMax),
		scaleStage("elevation_bump", 1+clamp(m.ClimbingIntensity, 0, 1)*elevationCarbBumpMax),
		// A 110 g/h strategy at full intensity bumps to 126.5 and lands on 120.
		clampStage("physiological_bounds", carbPhysMin, carbPhysMax),
		scaleStage("terrain", adj.CarbAdjustment),
		clampStage("physiological_bounds", carbPhysMin, carbPhysMax),
		roundStage(),
	}}, nil
}

func fluidsPipeline(in model.ScenarioInput, ev model.Event, m model.ElevationMetrics, adj model.TerrainAdjustments) (pipeline, error) {
	climate, err := climateMultiplier(ev.Climate)
	if err != nil {
		return pipeline{}, err
	}
	hydration, err := hydrationMultiplier(in.HydrationPlan)
	if err != nil {
		return pipeline{}, err
	}
	return pipeline{dimension: DimensionFluids, stages: []stage{
		scaleStage("climate", climate),
		scaleStage("hydration_plan", hydration),
		clampStage("strategy_bounds", fluidStrategyMin, fluidStrategyMax),
		scaleStage("elevation_bump", 1+clamp(m.ClimbingIntensity, 0, 1)*elevationFluidBumpMax),
		clampStage("physiological_bounds", fluidPhysMin, fluidPhysMax),
		scaleStage("terrain", adj.FluidAdjustment),
		clampStage("physiological_bounds", fluidPhysMin, fluidPhysMax),
		roundStage(),
	}}, nil
}

func sodiumPipeline(in model.ScenarioInput, pref model.Preference, adj model.TerrainAdjustments) (pipeline, error) {
	if !in.SodiumConfidence.Valid() {
		return pipeline{}, fmt.Errorf("%w: sodium confidence %q", ErrUnknownLevel, in.SodiumConfidence)
	}
	offset := 0.0
	if pref.HasDietaryFlag(veganFlag) {
		offset = -veganSodiumReductionMg
	}
	return pipeline{dimension: DimensionSodium, stages: []stage{
		offsetStage("vegan_offset", offset),
		clampStage("confidence_bounds", sodiumRangeMin, sodiumRangeMax),
		scaleStage("terrain", adj.SodiumAdjustment),
		clampStage("physiological_bounds", sodiumPhysMin, sodiumPhysMax),
		roundStage(),
	}}, nil
}

func caffeinePipeline(in model.ScenarioInput, pref model.Preference, a model.Athlete, adj model.TerrainAdjustments) (pipeline, error) {
	if !in.CaffeinePlan.Valid() {
		return pipeline{}, fmt.Errorf("%w: caffeine plan %q", ErrUnknownLevel, in.CaffeinePlan)
	}
	bias, err := caffeineSensitivityBias(pref.CaffeineSensitivity)
	if err != nil {
		return pipeline{}, err
	}
	ceiling := a.WeightKg * caffeineMgPerKgCeiling
	return pipeline{dimension: DimensionCaffeine, stages: []stage{
		scaleStage("sensitivity_bias", bias),
		clampStage("body_weight_ceiling", 0, ceiling),
		scaleStage("terrain", adj.CaffeineAdjustment),
		clampStage("body_weight_ceiling", 0, ceiling),
		roundStage(),
	}}, nil
}

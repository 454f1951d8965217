// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
)

// Accepted range for the requested carbohydrate intake.
const (
	MinCarbTargetGPerHour = 40
	MaxCarbTargetGPerHour = 120
)

// ScenarioInput is the caller's request for one fueling scenario.
type ScenarioInput struct {
	AthleteID          string           `json:"athleteId"`
	EventID            string           `json:"eventId"`
	RouteID            string           `json:"routeId,omitempty"`
	HeatStrategy       HeatStrategy     `json:"heatStrategy"`
	CarbTargetGPerHour float64          `json:"carbTargetGPerHour"`
	CaffeinePlan       CaffeinePlan     `json:"caffeinePlan"`
	SodiumConfidence   SodiumConfidence `json:"sodiumConfidence"`
	HydrationPlan      HydrationPlan    `json:"hydrationPlan"`
}

// Validate rejects malformed or out-of-range inputs. NaN is out of range.
func (in ScenarioInput) Validate() error {
	switch {
	case strings.TrimSpace(in.AthleteID) == "":
		return &ValidationError{Field: "athleteId", Reason: "must not be empty"}
	case strings.TrimSpace(in.EventID) == "":
		return &ValidationError{Field: "eventId", Reason: "must not be empty"}
	case !in.HeatStrategy.Valid():
		return &ValidationError{Field: "heatStrategy", Reason: "unknown value " + quote(string(in.HeatStrategy))}
	case !(in.CarbTargetGPerHour >= MinCarbTargetGPerHour && in.CarbTargetGPerHour <= MaxCarbTargetGPerHour):
		return &ValidationError{Field: "carbTargetGPerHour", Reason: "must be within [40,120]"}
	case !in.CaffeinePlan.Valid():
		return &ValidationError{Field: "caffeinePlan", Reason: "unknown value " + quote(string(in.CaffeinePlan))}
	case !in.SodiumConfidence.Valid():
		return &ValidationError{Field: "sodiumConfidence", Reason: "unknown value " + quote(string(in.SodiumConfidence))}
	case !in.HydrationPlan.Valid():
		return &ValidationError{Field: "hydrationPlan", Reason: "unknown value " + quote(string(in.HydrationPlan))}
	}
	return nil
}

// Athlete holds the physiological and skill profile used for planning.
type Athlete struct {
	ID                    string  `json:"id" yaml:"id"`
	WeightKg              float64 `json:"weightKg" yaml:"weight_kg"`
	LongRunPaceMinPerKm   float64 `json:"longRunPaceMinPerKm,omitempty" yaml:"long_run_pace_min_per_km"`
	ThresholdPaceMinPerKm float64 `json:"thresholdPaceMinPerKm,omitempty" yaml:"threshold_pace_min_per_km"`
	ClimbingSkill         int     `json:"climbingSkill,omitempty" yaml:"climbing_skill"`
	DescendingSkill       int     `json:"descendingSkill,omitempty" yaml:"descending_skill"`
	TechnicalSkill        int     `json:"technicalSkill,omitempty" yaml:"technical_skill"`
}

// CarryProfile describes how the athlete carries fuel on course.
type CarryProfile struct {
	PrefersVest bool `json:"prefersVest" yaml:"prefers_vest"`
	GelLoops    int  `json:"gelLoops" yaml:"gel_loops"`
	BottleCount int  `json:"bottleCount" yaml:"bottle_count"`
}

// Preference captures dietary and product preferences.
type Preference struct {
	AthleteID             string       `json:"athleteId" yaml:"athlete_id"`
	DietaryFlags          []string     `json:"dietaryFlags,omitempty" yaml:"dietary_flags"`
	FavoriteBrands        []string     `json:"favoriteBrands,omitempty" yaml:"favorite_brands"`
	BannedBrands          []string     `json:"bannedBrands,omitempty" yaml:"banned_brands"`
	CaffeineSensitivity   Sensitivity  `json:"caffeineSensitivity,omitempty" yaml:"caffeine_sensitivity"`
	SodiumSensitivity     Sensitivity  `json:"sodiumSensitivity,omitempty" yaml:"sodium_sensitivity"`
	TargetFlavorDiversity int          `json:"targetFlavorDiversity" yaml:"target_flavor_diversity"`
	PrefersEnergyDrink    bool         `json:"prefersEnergyDrink,omitempty" yaml:"prefers_energy_drink"`
	PrefersGels           bool         `json:"prefersGels,omitempty" yaml:"prefers_gels"`
	CarryProfile          CarryProfile `json:"carryProfile" yaml:"carry_profile"`
}

// HasDietaryFlag reports whether flag is one of the preference's dietary flags.
func (p Preference) HasDietaryFlag(flag string) bool {
	return containsFold(p.DietaryFlags, flag)
}

// Event is the race the scenario is planned for.
type Event struct {
	ID             string     `json:"id" yaml:"id"`
	Name           string     `json:"name,omitempty" yaml:"name"`
	Climate        Climate    `json:"climate" yaml:"climate"`
	Discipline     Discipline `json:"discipline" yaml:"discipline"`
	StartTime      time.Time  `json:"startTime" yaml:"start_time"`
	DistanceKm     float64    `json:"distanceKm,omitempty" yaml:"distance_km"`
	ElevationGainM float64    `json:"elevationGainM,omitempty" yaml:"elevation_gain_m"`
}

// ElevationPoint is one sample of a route's elevation profile.
type ElevationPoint struct {
	DistanceKm float64 `json:"distanceKm" yaml:"distance_km"`
	ElevationM float64 `json:"elevationM" yaml:"elevation_m"`
}

// AidStation is a resupply point on the route.
type AidStation struct {
	Name       string  `json:"name" yaml:"name"`
	DistanceKm float64 `json:"distanceKm" yaml:"distance_km"`
}

// Route is the course geometry for an event.
type Route struct {
	ID             string           `json:"id,omitempty" yaml:"id"`
	DistanceKm     float64          `json:"distanceKm" yaml:"distance_km"`
	ElevationGainM float64          `json:"elevationGainM" yaml:"elevation_gain_m"`
	Profile        []ElevationPoint `json:"profile,omitempty" yaml:"profile"`
	AidStations    []AidStation     `json:"aidStations,omitempty" yaml:"aid_stations"`
}

// ScenarioContext is the resolved state a scenario is derived from.
// It is never persisted on its own.
type ScenarioContext struct {
	Athlete    Athlete    `json:"athlete"`
	Preference Preference `json:"preference"`
	Event      Event      `json:"event"`
	Route      Route      `json:"route"`
	// EstimatedFinishHours is an optional external race-time estimate.
	// Zero means the duration is derived from pace and distance.
	EstimatedFinishHours float64 `json:"estimatedFinishHours,omitempty"`
}

// Validate rejects contexts the engine cannot plan against.
func (c ScenarioContext) Validate() error {
	switch {
	case !(c.Athlete.WeightKg > 0):
		return &ValidationError{Field: "athlete.weightKg", Reason: "must be positive"}
	case !(c.Route.DistanceKm > 0):
		return &ValidationError{Field: "route.distanceKm", Reason: "must be positive"}
	case !(c.Route.ElevationGainM >= 0):
		return &ValidationError{Field: "route.elevationGainM", Reason: "must not be negative"}
	case !c.Event.Climate.Valid():
		return &ValidationError{Field: "event.climate", Reason: "unknown value " + quote(string(c.Event.Climate))}
	case !c.Event.Discipline.Valid():
		return &ValidationError{Field: "event.discipline", Reason: "unknown value " + quote(string(c.Event.Discipline))}
	case !c.Preference.CaffeineSensitivity.Valid():
		return &ValidationError{Field: "preference.caffeineSensitivity", Reason: "unknown value " + quote(string(c.Preference.CaffeineSensitivity))}
	case c.Preference.TargetFlavorDiversity < 0:
		return &ValidationError{Field: "preference.targetFlavorDiversity", Reason: "must not be negative"}
	case !(c.EstimatedFinishHours >= 0):
		return &ValidationError{Field: "estimatedFinishHours", Reason: "must not be negative"}
	}
	return nil
}

// Climb is a contiguous ascending stretch of the route.
type Climb struct {
	StartKm float64 `json:"startKm"`
	EndKm   float64 `json:"endKm"`
	GainM   float64 `json:"gainM"`
}

// ElevationMetrics summarizes the climbing load of a route profile.
type ElevationMetrics struct {
	HasProfile        bool    `json:"hasProfile"`
	ClimbingIntensity float64 `json:"climbingIntensity"`
	AscentPercentage  float64 `json:"ascentPercentage"`
	MajorClimbs       []Climb `json:"majorClimbs,omitempty"`
}

// TerrainAdjustments are the multiplicative fueling adjustments for a terrain class.
type TerrainAdjustments struct {
	Class                 TerrainClass `json:"class"`
	CarbAdjustment        float64      `json:"carbAdjustment"`
	FluidAdjustment       float64      `json:"fluidAdjustment"`
	SodiumAdjustment      float64      `json:"sodiumAdjustment"`
	CaffeineAdjustment    float64      `json:"caffeineAdjustment"`
	PreferLiquidNutrition bool         `json:"preferLiquidNutrition"`
	RequiresMoreVariety   bool         `json:"requiresMoreVariety"`
	RealFoodFactor        float64      `json:"realFoodFactor"`
	Guidance              []string     `json:"guidance,omitempty"`
}

// StageTrace records one named step of a target derivation pipeline.
type StageTrace struct {
	Stage  string  `json:"stage"`
	Input  float64 `json:"input"`
	Output float64 `json:"output"`
}

// BaselineTargets are the per-hour intake targets for a scenario.
type BaselineTargets struct {
	CarbsPerHour     float64                 `json:"carbsPerHour"`
	FluidsPerHour    float64                 `json:"fluidsPerHour"`
	SodiumPerHour    float64                 `json:"sodiumPerHour"`
	CaffeineTotal    float64                 `json:"caffeineTotal"`
	DurationHours    float64                 `json:"durationHours"`
	ElevationMetrics ElevationMetrics        `json:"elevationMetrics"`
	Terrain          TerrainAdjustments      `json:"terrain"`
	Trace            map[string][]StageTrace `json:"trace,omitempty"`
}

// FuelLeg is one hour of the fuel timeline.
type FuelLeg struct {
	Hour       int     `json:"hour" csv:"hour"`
	CarbsG     float64 `json:"carbsG" csv:"carbs_g"`
	FluidsMl   float64 `json:"fluidsMl" csv:"fluids_ml"`
	SodiumMg   float64 `json:"sodiumMg" csv:"sodium_mg"`
	CaffeineMg float64 `json:"caffeineMg" csv:"caffeine_mg"`
	Note       string  `json:"note,omitempty" csv:"note,omitempty"`
}

// Totals sums every leg per dimension.
type Totals struct {
	CarbsG     float64 `json:"carbsG"`
	FluidsMl   float64 `json:"fluidsMl"`
	SodiumMg   float64 `json:"sodiumMg"`
	CaffeineMg float64 `json:"caffeineMg"`
}

// SumLegs returns the per-dimension totals of legs.
func SumLegs(legs []FuelLeg) Totals {
	var t Totals
	for _, l := range legs {
		t.CarbsG += l.CarbsG
		t.FluidsMl += l.FluidsMl
		t.SodiumMg += l.SodiumMg
		t.CaffeineMg += l.CaffeineMg
	}
	return t
}

// GuardrailResult holds breach-probability estimates in [0,1].
type GuardrailResult struct {
	GIRisk       float64 `json:"giRisk"`
	SodiumRisk   float64 `json:"sodiumRisk"`
	CaffeineRisk float64 `json:"caffeineRisk"`
}

// ScenarioScore is the bounded multi-factor evaluation of a scenario.
type ScenarioScore struct {
	Safety        int      `json:"safety"`
	Simplicity    int      `json:"simplicity"`
	Cost          int      `json:"cost"`
	Weight        int      `json:"weight"`
	Raceability   int      `json:"raceability"`
	DominantRisks []string `json:"dominantRisks"`
}

// ScenarioOutput is the immutable result of one scenario build.
type ScenarioOutput struct {
	ID           string          `json:"id"`
	ScenarioHash string          `json:"scenarioHash"`
	AthleteID    string          `json:"athleteId"`
	EventID      string          `json:"eventId"`
	CreatedAt    time.Time       `json:"createdAt"`
	Inputs       ScenarioInput   `json:"inputs"`
	Targets      BaselineTargets `json:"targets"`
	FuelPlan     []FuelLeg       `json:"fuelPlan"`
	Totals       Totals          `json:"totals"`
	Guardrails   GuardrailResult `json:"guardrails"`
	Score        ScenarioScore   `json:"score"`
}

func quote(s string) string { return `"` + s + `"` }

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(strings.TrimSpace(item), strings.TrimSpace(v)) {
			return true
		}
	}
	return false
}

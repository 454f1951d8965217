package model

// Discipline identifies the event format an athlete is racing.
type Discipline string

// Supported disciplines.
const (
	DisciplineRoadMarathon Discipline = "road_marathon"
	DisciplineHalfIronman  Discipline = "half_ironman"
	DisciplineCycling      Discipline = "cycling"
	DisciplineUltraRun     Discipline = "ultra_run"
	DisciplineTrailUltra   Discipline = "trail_ultra"
)

// Valid reports whether d is a known discipline.
func (d Discipline) Valid() bool {
	switch d {
	case DisciplineRoadMarathon, DisciplineHalfIronman, DisciplineCycling, DisciplineUltraRun, DisciplineTrailUltra:
		return true
	default:
		return false
	}
}

// Climate is the coarse weather tag attached to an event.
type Climate string

// Supported climate tags.
const (
	ClimateCold      Climate = "cold"
	ClimateCool      Climate = "cool"
	ClimateTemperate Climate = "temperate"
	ClimateHot       Climate = "hot"
	ClimateHumid     Climate = "humid"
)

// Valid reports whether c is a known climate tag.
func (c Climate) Valid() bool {
	switch c {
	case ClimateCold, ClimateCool, ClimateTemperate, ClimateHot, ClimateHumid:
		return true
	default:
		return false
	}
}

// HeatStrategy biases the carbohydrate target.
type HeatStrategy string

const (
	HeatAggressive   HeatStrategy = "aggressive"
	HeatModerate     HeatStrategy = "moderate"
	HeatConservative HeatStrategy = "conservative"
)

// Valid reports whether h is a known heat strategy.
func (h HeatStrategy) Valid() bool {
	switch h {
	case HeatAggressive, HeatModerate, HeatConservative:
		return true
	default:
		return false
	}
}

// CaffeinePlan selects the base caffeine dose.
type CaffeinePlan string

const (
	CaffeineLow      CaffeinePlan = "low"
	CaffeineBalanced CaffeinePlan = "balanced"
	CaffeineHigh     CaffeinePlan = "high"
)

// Valid reports whether p is a known caffeine plan.
func (p CaffeinePlan) Valid() bool {
	switch p {
	case CaffeineLow, CaffeineBalanced, CaffeineHigh:
		return true
	default:
		return false
	}
}

// SodiumConfidence expresses how well the athlete knows their sweat sodium.
type SodiumConfidence string

const (
	SodiumLow    SodiumConfidence = "low"
	SodiumMedium SodiumConfidence = "medium"
	SodiumHigh   SodiumConfidence = "high"
)

// Valid reports whether s is a known sodium confidence level.
func (s SodiumConfidence) Valid() bool {
	switch s {
	case SodiumLow, SodiumMedium, SodiumHigh:
		return true
	default:
		return false
	}
}

// HydrationPlan scales the fluid target.
type HydrationPlan string

const (
	HydrationMinimal HydrationPlan = "minimal"
	HydrationSteady  HydrationPlan = "steady"
	HydrationHeavy   HydrationPlan = "heavy"
)

// Valid reports whether h is a known hydration plan.
func (h HydrationPlan) Valid() bool {
	switch h {
	case HydrationMinimal, HydrationSteady, HydrationHeavy:
		return true
	default:
		return false
	}
}

// Sensitivity is a low/medium/high personal tolerance level.
type Sensitivity string

const (
	SensitivityLow    Sensitivity = "low"
	SensitivityMedium Sensitivity = "medium"
	SensitivityHigh   Sensitivity = "high"
)

// Valid reports whether s is a known sensitivity. The empty value is
// accepted and treated as medium by consumers.
func (s Sensitivity) Valid() bool {
	switch s {
	case "", SensitivityLow, SensitivityMedium, SensitivityHigh:
		return true
	default:
		return false
	}
}

// TerrainClass buckets disciplines by fueling style.
type TerrainClass string

const (
	TerrainRoad       TerrainClass = "road"
	TerrainTrail      TerrainClass = "trail"
	TerrainUltraTrail TerrainClass = "ultra_trail"
)

// ProductCategory is the kind of purchasable fuel product.
type ProductCategory string

const (
	CategoryGel      ProductCategory = "gel"
	CategoryChew     ProductCategory = "chew"
	CategoryDrinkMix ProductCategory = "drink_mix"
	CategoryCapsule  ProductCategory = "capsule"
	CategoryBar      ProductCategory = "bar"
)

// Valid reports whether c is a known product category.
func (c ProductCategory) Valid() bool {
	switch c {
	case CategoryGel, CategoryChew, CategoryDrinkMix, CategoryCapsule, CategoryBar:
		return true
	default:
		return false
	}
}

// KitVariant selects the kit assembly strategy.
type KitVariant string

const (
	VariantValue   KitVariant = "value"
	VariantPremium KitVariant = "premium"
)

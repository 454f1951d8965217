// Package scoring turns guardrail risks and a fuel timeline into a bounded
// multi-factor scenario score.
package scoring

import (
	"math"

	"github.com/okian/fuelplan/internal/domain/model"
)

// Default scoring configuration constants.
const (
	minScoreValue = 0
	maxScoreValue = 100

	safetyRiskPenalty = 90.0

	simplicityBase          = 96.0
	simplicityPerLeg        = 6.0
	simplicityDiversityBase = 2
	simplicityPerFlavor     = 4.0

	costBase        = 88.0
	costPerFavorite = 3.0
	costPerLeg      = 2.0

	weightBase          = 92.0
	weightFluidDivisor  = 50.0
	weightPerGelLoop    = 1.5
	heavyFluidsPerHourM = 950.0

	defaultSafetyWeight     = 0.45
	defaultSimplicityWeight = 0.30
	defaultCarryWeight      = 0.25
)

// Dominant risk labels, reported in this order.
const (
	RiskHighGI           = "high GI risk"
	RiskSodiumSwings     = "sodium swings"
	RiskCaffeineCeiling  = "caffeine near upper bound"
	RiskHeavyOpeningLegs = "carry weight heavy in opening legs"
)

// Risk thresholds above which a label is reported.
const (
	giRiskThreshold       = 0.35
	sodiumRiskThreshold   = 0.4
	caffeineRiskThreshold = 0.3
)

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithRaceabilityWeights sets how safety, simplicity and carry weight blend
// into raceability. Non-positive values keep the defaults.
func WithRaceabilityWeights(safety, simplicity, weight float64) Option {
	return func(s *Scorer) {
		if safety > 0 && simplicity > 0 && weight > 0 {
			s.safetyWeight = safety
			s.simplicityWeight = simplicity
			s.carryWeight = weight
		}
	}
}

// Scorer computes ScenarioScore values. It is stateless and safe for
// concurrent use.
type Scorer struct {
	safetyWeight     float64
	simplicityWeight float64
	carryWeight      float64
}

// NewScorer creates a Scorer with configuration options.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		safetyWeight:     defaultSafetyWeight,
		simplicityWeight: defaultSimplicityWeight,
		carryWeight:      defaultCarryWeight,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var defaultScorer = NewScorer()

// Score evaluates a scenario with the default weights.
func Score(g model.GuardrailResult, legs []model.FuelLeg, pref model.Preference, t model.BaselineTargets) model.ScenarioScore {
	return defaultScorer.Score(g, legs, pref, t)
}

// Score evaluates a scenario. Every field is an integer in [0,100].
func (s *Scorer) Score(g model.GuardrailResult, legs []model.FuelLeg, pref model.Preference, t model.BaselineTargets) model.ScenarioScore {
	legCount := float64(len(legs))

	safety := clamp(100 - (g.GIRisk+g.SodiumRisk+g.CaffeineRisk)*safetyRiskPenalty)
	simplicity := clamp(simplicityBase - (legCount*simplicityPerLeg +
		float64(pref.TargetFlavorDiversity-simplicityDiversityBase)*simplicityPerFlavor))
	cost := clamp(costBase - float64(len(pref.FavoriteBrands))*costPerFavorite - legCount*costPerLeg)
	weight := clamp(weightBase - t.FluidsPerHour/weightFluidDivisor -
		float64(pref.CarryProfile.GelLoops)*weightPerGelLoop)
	// Raceability blends the unrounded sub-scores.
	raceability := bound(safety*s.safetyWeight +
		simplicity*s.simplicityWeight +
		weight*s.carryWeight)

	return model.ScenarioScore{
		Safety:        bound(safety),
		Simplicity:    bound(simplicity),
		Cost:          bound(cost),
		Weight:        bound(weight),
		Raceability:   raceability,
		DominantRisks: dominantRisks(g, t),
	}
}

func dominantRisks(g model.GuardrailResult, t model.BaselineTargets) []string {
	risks := make([]string, 0, 4)
	if g.GIRisk > giRiskThreshold {
		risks = append(risks, RiskHighGI)
	}
	if g.SodiumRisk > sodiumRiskThreshold {
		risks = append(risks, RiskSodiumSwings)
	}
	if g.CaffeineRisk > caffeineRiskThreshold {
		risks = append(risks, RiskCaffeineCeiling)
	}
	if t.FluidsPerHour > heavyFluidsPerHourM {
		risks = append(risks, RiskHeavyOpeningLegs)
	}
	return risks
}

// bound rounds v and clamps it to the score range. NaN scores as zero.
func bound(v float64) int {
	if math.IsNaN(v) {
		return minScoreValue
	}
	r := math.Round(v)
	switch {
	case r < minScoreValue:
		return minScoreValue
	case r > maxScoreValue:
		return maxScoreValue
	default:
		return int(r)
	}
}

// clamp limits v to the score range without rounding. NaN scores as zero.
func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return minScoreValue
	}
	return math.Min(math.Max(v, minScoreValue), maxScoreValue)
}

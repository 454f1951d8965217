// Package guardrail estimates the probability of breaching physiological
// thresholds with a Monte Carlo simulation over the fuel plan.
package guardrail

import (
	"math"
	"math/rand/v2"

	"github.com/okian/fuelplan/internal/domain/model"
)

// Simulation parameters.
const (
	Draws                 = 64
	baseVariance          = 0.12
	varianceStep          = 0.0015
	sodiumVarianceFactor  = 0.8
	caffeineVarianceRatio = 0.4
	openingCaffeineNoise  = 0.05
	giCarbCeilingG        = 115.0
	sodiumLowRatio        = 0.6
	sodiumHighRatio       = 1.2
	caffeinePerKgCeiling  = 5.5
	caffeineFloorCeiling  = 300.0
)

// Source is the uniform random capability the simulator draws from.
// *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// Option applies a configuration option to the Simulator.
type Option func(*Simulator)

// WithSourceFactory sets the factory producing one Source per simulation.
func WithSourceFactory(f func() Source) Option {
	return func(s *Simulator) {
		if f != nil {
			s.newSource = f
		}
	}
}

// WithSeed makes every simulation draw from a PCG seeded with seed, so
// identical inputs produce identical risks.
func WithSeed(seed uint64) Option {
	return WithSourceFactory(func() Source {
		return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) //nolint:gosec // reproducible simulation
	})
}

// Simulator runs the guardrail Monte Carlo. It holds no mutable state and
// is safe for concurrent use as long as its factory returns fresh sources.
type Simulator struct {
	newSource func() Source
}

// NewSimulator creates a Simulator. Without options each call draws from a
// freshly seeded system source.
func NewSimulator(opts ...Option) *Simulator {
	s := &Simulator{
		newSource: func() Source {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec // not security sensitive
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Simulate estimates GI, sodium and caffeine breach probabilities.
func (s *Simulator) Simulate(legs []model.FuelLeg, t model.BaselineTargets, a model.Athlete) model.GuardrailResult {
	src := s.newSource()
	caffeineCeiling := math.Max(a.WeightKg*caffeinePerKgCeiling, caffeineFloorCeiling)
	sodiumLow := t.SodiumPerHour * sodiumLowRatio
	sodiumHigh := t.SodiumPerHour * sodiumHighRatio

	var giBreaches, sodiumBreaches, caffeineBreaches int
	for i := 0; i < Draws; i++ {
		variance := baseVariance + float64(i)*varianceStep

		carbs := t.CarbsPerHour * (1 + normal(src)*variance)
		if carbs > giCarbCeilingG {
			giBreaches++
		}

		sodium := t.SodiumPerHour * (1 + normal(src)*variance*sodiumVarianceFactor)
		if sodium < sodiumLow || sodium > sodiumHigh {
			sodiumBreaches++
		}

		z := normal(src)
		var caffeine float64
		for _, leg := range legs {
			noise := variance * caffeineVarianceRatio
			if leg.Hour == 0 {
				noise = openingCaffeineNoise
			}
			caffeine += leg.CaffeineMg * (1 + z*noise)
		}
		if caffeine > caffeineCeiling {
			caffeineBreaches++
		}
	}

	return model.GuardrailResult{
		GIRisk:       ratio(giBreaches),
		SodiumRisk:   ratio(sodiumBreaches),
		CaffeineRisk: ratio(caffeineBreaches),
	}
}

// normal returns a standard normal sample using the Box–Muller transform.
func normal(src Source) float64 {
	u1 := 1 - src.Float64() // (0,1], keeps the log finite
	u2 := src.Float64()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

func ratio(breaches int) float64 {
	return math.Round(float64(breaches)/Draws*100) / 100
}

package targets

import (
	"math"

	"github.com/okian/fuelplan/internal/domain/model"
)

// stage is one named, auditable transformation of a target value.
type stage struct {
	name  string
	apply func(float64) float64
}

func clampStage(name string, lo, hi float64) stage {
	return stage{name: name, apply: func(v float64) float64 { return clamp(v, lo, hi) }}
}

func scaleStage(name string, factor float64) stage {
	return stage{name: name, apply: func(v float64) float64 { return v * factor }}
}

func offsetStage(name string, delta float64) stage {
	return stage{name: name, apply: func(v float64) float64 { return v + delta }}
}

func roundStage() stage {
	return stage{name: "round", apply: math.Round}
}

// pipeline applies its stages in order and records each step.
type pipeline struct {
	dimension string
	stages    []stage
}

func (p pipeline) run(seed float64, trace map[string][]model.StageTrace) float64 {
	v := seed
	steps := make([]model.StageTrace, 0, len(p.stages)+1)
	steps = append(steps, model.StageTrace{Stage: "seed", Input: seed, Output: seed})
	for _, s := range p.stages {
		out := s.apply(v)
		steps = append(steps, model.StageTrace{Stage: s.name, Input: v, Output: out})
		v = out
	}
	if trace != nil {
		trace[p.dimension] = steps
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

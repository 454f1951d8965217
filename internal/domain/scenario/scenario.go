// Package scenario orchestrates one scenario build: targets, timeline,
// guardrails and score, stamped with a deterministic content hash.
package scenario

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/fuelplan/internal/domain/guardrail"
	"github.com/okian/fuelplan/internal/domain/model"
	"github.com/okian/fuelplan/internal/domain/scoring"
	"github.com/okian/fuelplan/internal/domain/targets"
	"github.com/okian/fuelplan/internal/domain/timeline"
)

// HashLength is the number of hex characters kept from the digest.
const HashLength = 32

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithDeriver sets the target deriver.
func WithDeriver(d *targets.Deriver) Option {
	return func(b *Builder) {
		if d != nil {
			b.deriver = d
		}
	}
}

// WithSimulator sets the guardrail simulator.
func WithSimulator(s *guardrail.Simulator) Option {
	return func(b *Builder) {
		if s != nil {
			b.simulator = s
		}
	}
}

// WithScorer sets the scenario scorer.
func WithScorer(s *scoring.Scorer) Option {
	return func(b *Builder) {
		if s != nil {
			b.scorer = s
		}
	}
}

// WithClock sets the timestamp source for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// WithIDGenerator sets the scenario id source.
func WithIDGenerator(gen func() string) Option {
	return func(b *Builder) {
		if gen != nil {
			b.newID = gen
		}
	}
}

// Builder assembles ScenarioOutput records. It holds no mutable state;
// concurrent Build calls are independent.
type Builder struct {
	deriver   *targets.Deriver
	simulator *guardrail.Simulator
	scorer    *scoring.Scorer
	now       func() time.Time
	newID     func() string
}

// NewBuilder creates a Builder with configuration options.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		deriver:   targets.NewDeriver(),
		simulator: guardrail.NewSimulator(),
		scorer:    scoring.NewScorer(),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build validates the request and runs the full pipeline.
func (b *Builder) Build(in model.ScenarioInput, sc model.ScenarioContext) (model.ScenarioOutput, error) {
	if err := in.Validate(); err != nil {
		return model.ScenarioOutput{}, err
	}
	if err := sc.Validate(); err != nil {
		return model.ScenarioOutput{}, err
	}

	hash, err := Hash(in, sc)
	if err != nil {
		return model.ScenarioOutput{}, err
	}

	t, err := b.deriver.Derive(in, sc)
	if err != nil {
		return model.ScenarioOutput{}, fmt.Errorf("derive targets: %w", err)
	}

	legs := timeline.Build(t, sc.Preference)
	risks := b.simulator.Simulate(legs, t, sc.Athlete)
	score := b.scorer.Score(risks, legs, sc.Preference, t)

	return model.ScenarioOutput{
		ID:           b.newID(),
		ScenarioHash: hash,
		AthleteID:    in.AthleteID,
		EventID:      in.EventID,
		CreatedAt:    b.now(),
		Inputs:       in,
		Targets:      t,
		FuelPlan:     legs,
		Totals:       model.SumLegs(legs),
		Guardrails:   risks,
		Score:        score,
	}, nil
}

type hashEnvelope struct {
	Input   model.ScenarioInput   `json:"input"`
	Context model.ScenarioContext `json:"context"`
}

// Hash returns the truncated hex sha256 of the canonical JSON encoding of
// input and context. Struct fields encode in declaration order and map keys
// sorted, so equal arguments always hash equally.
func Hash(in model.ScenarioInput, sc model.ScenarioContext) (string, error) {
	payload, err := json.Marshal(hashEnvelope{Input: in, Context: normalize(sc)})
	if err != nil {
		return "", fmt.Errorf("encode scenario for hashing: %w", err)
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])[:HashLength], nil
}

// normalize makes the same instant in different zones hash equally.
func normalize(sc model.ScenarioContext) model.ScenarioContext {
	sc.Event.StartTime = sc.Event.StartTime.UTC()
	return sc
}

// Package service provides the application service that resolves scenario
// context, builds and deduplicates scenarios, and assembles product kits
// for the HTTP API and CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/fuelplan/internal/adapters/repository"
	"github.com/okian/fuelplan/internal/domain/dedupe"
	"github.com/okian/fuelplan/internal/domain/kit"
	"github.com/okian/fuelplan/internal/domain/model"
	"github.com/okian/fuelplan/internal/domain/scenario"
	"github.com/okian/fuelplan/pkg/logger"
	"github.com/okian/fuelplan/pkg/metrics"
)

const (
	defaultDedupeSize       = 50_000
	defaultBatchConcurrency = 4
	defaultMaxBatchSize     = 6
)

// Resolver turns a scenario input into the context it is planned against.
type Resolver interface {
	Resolve(ctx context.Context, in model.ScenarioInput) (model.ScenarioContext, error)
}

// ProductSource lists the products kits are assembled from.
type ProductSource interface {
	Products(ctx context.Context) ([]model.Product, error)
}

// BatchResult is the outcome of one batch entry. Exactly one of Scenario
// and Err is meaningful.
type BatchResult struct {
	Index    int
	Scenario model.ScenarioOutput
	Created  bool
	Err      error
}

// Service implements the API dependencies for scenario planning.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     repository.Store
	index     dedupe.Index
	builder   *scenario.Builder
	assembler *kit.Assembler
	resolver  Resolver
	products  ProductSource

	// Configuration
	dedupeSize       int
	batchConcurrency int
	maxBatchSize     int

	// State
	started bool

	logger logger.Logger
}

// New constructs a Service. Components not supplied through options get
// in-memory defaults; a Resolver must be supplied before Start.
func New(opts ...Option) *Service {
	s := &Service{
		dedupeSize:       defaultDedupeSize,
		batchConcurrency: defaultBatchConcurrency,
		maxBatchSize:     defaultMaxBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.index == nil {
		s.index = dedupe.NewInMemoryIndex(dedupe.WithMaxSize(s.dedupeSize))
	}
	if s.builder == nil {
		s.builder = scenario.NewBuilder()
	}
	if s.assembler == nil {
		s.assembler = kit.NewAssembler()
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// Start checks the wiring and publishes the stored scenario count.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.resolver == nil {
		return ErrNoResolver
	}

	n, err := s.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("count stored scenarios: %w", err)
	}
	metrics.UpdateStoredScenarios(n)

	s.started = true
	s.logger.Info(ctx, "scenario service started",
		logger.Int64("storedScenarios", n),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("batchConcurrency", s.batchConcurrency),
		logger.Int("maxBatchSize", s.maxBatchSize),
		logger.Bool("catalog", s.products != nil),
	)
	return nil
}

// Stop releases the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn(context.Background(), "close store", logger.Error(err))
	}
	s.started = false
	s.logger.Info(context.Background(), "scenario service stopped")
}

// BuildScenario resolves, builds and stores one scenario. Identical
// requests resolve to the first stored scenario; created is false then.
func (s *Service) BuildScenario(ctx context.Context, in model.ScenarioInput) (model.ScenarioOutput, bool, error) {
	if err := ctx.Err(); err != nil {
		return model.ScenarioOutput{}, false, err
	}
	if err := in.Validate(); err != nil {
		metrics.RecordErrorByComponent("scenario", "validation")
		return model.ScenarioOutput{}, false, err
	}
	if s.resolver == nil {
		return model.ScenarioOutput{}, false, ErrNoResolver
	}

	sc, err := s.resolver.Resolve(ctx, in)
	if err != nil {
		if errors.Is(err, model.ErrMissingContext) {
			metrics.RecordErrorByComponent("scenario", "missing_context")
		}
		return model.ScenarioOutput{}, false, err
	}
	if err := sc.Validate(); err != nil {
		metrics.RecordErrorByComponent("scenario", "validation")
		return model.ScenarioOutput{}, false, err
	}

	hash, err := scenario.Hash(in, sc)
	if err != nil {
		return model.ScenarioOutput{}, false, err
	}

	if stored, ok := s.lookup(ctx, hash); ok {
		metrics.RecordScenarioDeduplicated()
		s.logger.Debug(ctx, "scenario served from hash index",
			logger.String("hash", hash),
			logger.String("id", stored.ID),
		)
		return stored, false, nil
	}

	start := time.Now()
	out, err := s.builder.Build(in, sc)
	if err != nil {
		metrics.RecordErrorByComponent("scenario", "build")
		return model.ScenarioOutput{}, false, err
	}

	stored, created, err := s.store.UpsertScenario(ctx, out)
	if err != nil {
		metrics.RecordErrorByComponent("store", "upsert")
		return model.ScenarioOutput{}, false, fmt.Errorf("store scenario: %w", err)
	}
	s.index.Record(ctx, hash, stored.ID)

	if !created {
		metrics.RecordScenarioDeduplicated()
		s.logger.Debug(ctx, "concurrent build collapsed to stored scenario",
			logger.String("hash", hash),
			logger.String("id", stored.ID),
		)
		return stored, false, nil
	}

	metrics.RecordScenarioBuilt()
	metrics.RecordBuildLatency(float64(time.Since(start).Microseconds()) / 1000)
	metrics.RecordGuardrailRisks(stored.Guardrails.GIRisk, stored.Guardrails.SodiumRisk, stored.Guardrails.CaffeineRisk)
	if n, err := s.store.Count(ctx); err == nil {
		metrics.UpdateStoredScenarios(n)
	}

	s.logger.Info(ctx, "scenario built",
		logger.String("id", stored.ID),
		logger.String("hash", hash),
		logger.String("athleteId", stored.AthleteID),
		logger.String("eventId", stored.EventID),
		logger.Int("legs", len(stored.FuelPlan)),
		logger.Int("raceability", stored.Score.Raceability),
		logger.Duration("elapsed", time.Since(start)),
	)
	return stored, true, nil
}

// lookup finds a stored scenario for hash through the index, then the store.
func (s *Service) lookup(ctx context.Context, hash string) (model.ScenarioOutput, bool) {
	if id, ok := s.index.Lookup(ctx, hash); ok {
		stored, err := s.store.ScenarioByID(ctx, id)
		if err == nil {
			return stored, true
		}
		s.index.Forget(ctx, hash)
	}

	stored, err := s.store.ScenarioByHash(ctx, hash)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn(ctx, "scenario hash lookup failed", logger.String("hash", hash), logger.Error(err))
		}
		return model.ScenarioOutput{}, false
	}
	s.index.Record(ctx, hash, stored.ID)
	return stored, true
}

// BuildBatch builds every input independently with bounded concurrency.
// Results follow input order; per-entry failures are reported in the
// entry, not as the returned error.
func (s *Service) BuildBatch(ctx context.Context, inputs []model.ScenarioInput) ([]BatchResult, error) {
	if len(inputs) < 1 || len(inputs) > s.maxBatchSize {
		return nil, &model.ValidationError{
			Field:  "inputs",
			Reason: fmt.Sprintf("batch must contain 1 to %d scenarios, got %d", s.maxBatchSize, len(inputs)),
		}
	}
	metrics.RecordBatchSize(len(inputs))

	results := make([]BatchResult, len(inputs))
	var g errgroup.Group
	g.SetLimit(s.batchConcurrency)
	for i, in := range inputs {
		g.Go(func() error {
			out, created, err := s.BuildScenario(ctx, in)
			results[i] = BatchResult{Index: i, Scenario: out, Created: created, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	s.logger.Info(ctx, "batch built",
		logger.Int("size", len(inputs)),
		logger.Int("failed", failed),
	)
	return results, nil
}

// Scenario returns a stored scenario by id.
func (s *Service) Scenario(ctx context.Context, id string) (model.ScenarioOutput, error) {
	return s.store.ScenarioByID(ctx, id)
}

// AssembleKits builds and stores the value and premium kits for a stored
// scenario, using the athlete's current preferences.
func (s *Service) AssembleKits(ctx context.Context, planID string) ([]model.Kit, error) {
	if s.products == nil {
		return nil, ErrNoCatalog
	}
	if s.resolver == nil {
		return nil, ErrNoResolver
	}

	sc, err := s.store.ScenarioByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	scCtx, err := s.resolver.Resolve(ctx, sc.Inputs)
	if err != nil {
		return nil, err
	}
	products, err := s.products.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	kits, err := s.assembler.Assemble(ctx, sc, scCtx.Preference, products)
	if err != nil {
		if errors.Is(err, model.ErrKitAssembly) {
			metrics.RecordKitAssemblyFailure()
			metrics.RecordErrorByComponent("kit", "assembly")
			s.logger.Warn(ctx, "kit assembly failed",
				logger.String("planId", planID),
				logger.Error(err),
			)
		}
		return nil, err
	}

	if err := s.store.SaveKits(ctx, kits); err != nil {
		metrics.RecordErrorByComponent("store", "save_kits")
		return nil, fmt.Errorf("store kits: %w", err)
	}
	for _, k := range kits {
		metrics.RecordKitAssembled(string(k.Variant))
	}

	s.logger.Info(ctx, "kits assembled",
		logger.String("planId", planID),
		logger.Int("kits", len(kits)),
		logger.Int("products", len(products)),
	)
	return kits, nil
}

// Kits returns the stored kits of a scenario in creation order.
func (s *Service) Kits(ctx context.Context, planID string) ([]model.Kit, error) {
	if _, err := s.store.ScenarioByID(ctx, planID); err != nil {
		return nil, err
	}
	return s.store.KitsByPlan(ctx, planID)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":          s.started,
		"dedupeSize":       s.dedupeSize,
		"indexedHashes":    s.index.Size(),
		"batchConcurrency": s.batchConcurrency,
		"maxBatchSize":     s.maxBatchSize,
		"catalog":          s.products != nil,
	}

	n, err := s.store.Count(ctx)
	if err != nil {
		s.logger.Warn(ctx, "count stored scenarios", logger.Error(err))
		return stats
	}
	stats["storedScenarios"] = n
	metrics.UpdateStoredScenarios(n)
	return stats
}

// MaxBatchSize reports the configured batch size cap.
func (s *Service) MaxBatchSize() int { return s.maxBatchSize }

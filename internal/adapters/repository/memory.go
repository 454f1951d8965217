package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/fuelplan/internal/domain/model"
	"github.com/okian/fuelplan/pkg/metrics"
)

// MemoryStore is an in-process Store. Records are immutable once stored,
// so reads hand out copies of the stored values.
type MemoryStore struct {
	mu        sync.RWMutex
	scenarios map[string]model.ScenarioOutput // id -> scenario
	byHash    map[string]string               // hash -> id
	kits      map[string][]model.Kit          // plan id -> kits, insertion order
	kitPlan   map[string]string               // kit id -> plan id
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		scenarios: make(map[string]model.ScenarioOutput),
		byHash:    make(map[string]string),
		kits:      make(map[string][]model.Kit),
		kitPlan:   make(map[string]string),
	}
}

func (s *MemoryStore) UpsertScenario(_ context.Context, sc model.ScenarioOutput) (model.ScenarioOutput, bool, error) {
	start := time.Now()
	defer observe("upsert_scenario", start)

	if sc.ID == "" || sc.ScenarioHash == "" {
		return model.ScenarioOutput{}, false, fmt.Errorf("%w: scenario id and hash are required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byHash[sc.ScenarioHash]; ok {
		return s.scenarios[id], false, nil
	}
	s.scenarios[sc.ID] = sc
	s.byHash[sc.ScenarioHash] = sc.ID
	return sc, true, nil
}

func (s *MemoryStore) ScenarioByID(_ context.Context, id string) (model.ScenarioOutput, error) {
	start := time.Now()
	defer observe("scenario_by_id", start)

	s.mu.RLock()
	defer s.mu.RUnlock()

	sc, ok := s.scenarios[id]
	if !ok {
		return model.ScenarioOutput{}, fmt.Errorf("scenario %q: %w", id, ErrNotFound)
	}
	return sc, nil
}

func (s *MemoryStore) ScenarioByHash(_ context.Context, hash string) (model.ScenarioOutput, error) {
	start := time.Now()
	defer observe("scenario_by_hash", start)

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byHash[hash]
	if !ok {
		return model.ScenarioOutput{}, fmt.Errorf("scenario hash %q: %w", hash, ErrNotFound)
	}
	return s.scenarios[id], nil
}

func (s *MemoryStore) SaveKits(_ context.Context, kits []model.Kit) error {
	start := time.Now()
	defer observe("save_kits", start)

	for _, k := range kits {
		if k.ID == "" || k.PlanID == "" {
			return fmt.Errorf("%w: kit id and plan id are required", ErrInvalidInput)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range kits {
		if plan, ok := s.kitPlan[k.ID]; ok {
			s.replaceKit(plan, k)
			continue
		}
		s.kits[k.PlanID] = append(s.kits[k.PlanID], k)
		s.kitPlan[k.ID] = k.PlanID
	}
	return nil
}

// replaceKit swaps the stored kit with the same id. Must be called with s.mu held.
func (s *MemoryStore) replaceKit(plan string, k model.Kit) {
	list := s.kits[plan]
	for i := range list {
		if list[i].ID != k.ID {
			continue
		}
		if plan == k.PlanID {
			list[i] = k
			return
		}
		s.kits[plan] = append(list[:i:i], list[i+1:]...)
		break
	}
	s.kits[k.PlanID] = append(s.kits[k.PlanID], k)
	s.kitPlan[k.ID] = k.PlanID
}

func (s *MemoryStore) KitsByPlan(_ context.Context, planID string) ([]model.Kit, error) {
	start := time.Now()
	defer observe("kits_by_plan", start)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Kit, len(s.kits[planID]))
	copy(out, s.kits[planID])
	return out, nil
}

func (s *MemoryStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.scenarios)), nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

func observe(operation string, start time.Time) {
	metrics.RecordStoreLatency(operation, float64(time.Since(start).Microseconds())/1000)
}

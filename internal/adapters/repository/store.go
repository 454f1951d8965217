// Package repository persists scenarios and kits.
package repository

import (
	"context"

	"github.com/okian/fuelplan/internal/domain/model"
)

// Store provides read/write access to scenarios and kits.
type Store interface {
	// UpsertScenario stores s unless a scenario with the same hash exists.
	// It returns the stored record, which is the earlier one on conflict,
	// and whether s was newly created.
	UpsertScenario(ctx context.Context, s model.ScenarioOutput) (model.ScenarioOutput, bool, error)

	// ScenarioByID returns ErrNotFound if id is unknown.
	ScenarioByID(ctx context.Context, id string) (model.ScenarioOutput, error)

	// ScenarioByHash returns ErrNotFound if hash is unknown.
	ScenarioByHash(ctx context.Context, hash string) (model.ScenarioOutput, error)

	// SaveKits inserts kits, replacing any with the same id.
	SaveKits(ctx context.Context, kits []model.Kit) error

	// KitsByPlan returns the kits of a scenario, oldest first.
	KitsByPlan(ctx context.Context, planID string) ([]model.Kit, error)

	// Count returns the number of stored scenarios.
	Count(ctx context.Context) (int64, error)

	Close() error
}

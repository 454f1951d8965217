package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/okian/fuelplan/internal/domain/model"
)

type scenarioRecord struct {
	ID           string `gorm:"primaryKey"`
	ScenarioHash string `gorm:"uniqueIndex"`
	AthleteID    string
	EventID      string
	CreatedAt    time.Time
	Payload      datatypes.JSON
}

func (scenarioRecord) TableName() string { return "scenarios" }

type kitRecord struct {
	ID               string `gorm:"primaryKey"`
	PlanID           string `gorm:"index"`
	ScenarioHash     string
	Variant          string
	TotalPrice       float64
	TotalWeightGrams float64
	CreatedAt        time.Time
	Payload          datatypes.JSON
}

func (kitRecord) TableName() string { return "kits" }

// SQLOption applies a configuration option to the SQLStore.
type SQLOption func(*SQLStore)

// WithMigrations toggles running the embedded migrations on open.
func WithMigrations(enabled bool) SQLOption {
	return func(s *SQLStore) {
		s.migrate = enabled
	}
}

// WithGormLogLevel sets the gorm query log level. Silent by default.
func WithGormLogLevel(level gormlogger.LogLevel) SQLOption {
	return func(s *SQLStore) {
		s.logLevel = level
	}
}

// SQLStore is a Store backed by SQLite through gorm.
type SQLStore struct {
	db       *gorm.DB
	migrate  bool
	logLevel gormlogger.LogLevel
}

// OpenSQLStore opens (creating if needed) the SQLite database at path and
// applies pending migrations.
func OpenSQLStore(ctx context.Context, path string, opts ...SQLOption) (*SQLStore, error) {
	s := &SQLStore{migrate: true, logLevel: gormlogger.Silent}
	for _, opt := range opts {
		opt(s)
	}

	db, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        path,
	}, &gorm.Config{Logger: gormlogger.Default.LogMode(s.logLevel)})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	s.db = db

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	// SQLite allows a single writer.
	sqlDB.SetMaxOpenConns(1)

	if s.migrate {
		if err := RunMigrations(ctx, db); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *SQLStore) UpsertScenario(ctx context.Context, sc model.ScenarioOutput) (model.ScenarioOutput, bool, error) {
	start := time.Now()
	defer observe("upsert_scenario", start)

	if sc.ID == "" || sc.ScenarioHash == "" {
		return model.ScenarioOutput{}, false, fmt.Errorf("%w: scenario id and hash are required", ErrInvalidInput)
	}
	payload, err := json.Marshal(sc)
	if err != nil {
		return model.ScenarioOutput{}, false, fmt.Errorf("encode scenario: %w", err)
	}

	rec := scenarioRecord{
		ID:           sc.ID,
		ScenarioHash: sc.ScenarioHash,
		AthleteID:    sc.AthleteID,
		EventID:      sc.EventID,
		CreatedAt:    sc.CreatedAt,
		Payload:      datatypes.JSON(payload),
	}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "scenario_hash"}}, DoNothing: true}).
		Create(&rec)
	if res.Error != nil {
		return model.ScenarioOutput{}, false, fmt.Errorf("upsert scenario: %w", res.Error)
	}
	if res.RowsAffected == 1 {
		return sc, true, nil
	}

	stored, err := s.ScenarioByHash(ctx, sc.ScenarioHash)
	if err != nil {
		return model.ScenarioOutput{}, false, err
	}
	return stored, false, nil
}

func (s *SQLStore) ScenarioByID(ctx context.Context, id string) (model.ScenarioOutput, error) {
	start := time.Now()
	defer observe("scenario_by_id", start)

	return s.findScenario(ctx, "id = ?", id)
}

func (s *SQLStore) ScenarioByHash(ctx context.Context, hash string) (model.ScenarioOutput, error) {
	start := time.Now()
	defer observe("scenario_by_hash", start)

	return s.findScenario(ctx, "scenario_hash = ?", hash)
}

func (s *SQLStore) findScenario(ctx context.Context, where string, arg string) (model.ScenarioOutput, error) {
	var rec scenarioRecord
	err := s.db.WithContext(ctx).Where(where, arg).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ScenarioOutput{}, fmt.Errorf("scenario %q: %w", arg, ErrNotFound)
	}
	if err != nil {
		return model.ScenarioOutput{}, fmt.Errorf("load scenario: %w", err)
	}

	var sc model.ScenarioOutput
	if err := json.Unmarshal(rec.Payload, &sc); err != nil {
		return model.ScenarioOutput{}, fmt.Errorf("decode scenario %q: %w", rec.ID, err)
	}
	return sc, nil
}

func (s *SQLStore) SaveKits(ctx context.Context, kits []model.Kit) error {
	start := time.Now()
	defer observe("save_kits", start)

	if len(kits) == 0 {
		return nil
	}
	recs := make([]kitRecord, 0, len(kits))
	for _, k := range kits {
		if k.ID == "" || k.PlanID == "" {
			return fmt.Errorf("%w: kit id and plan id are required", ErrInvalidInput)
		}
		payload, err := json.Marshal(k)
		if err != nil {
			return fmt.Errorf("encode kit: %w", err)
		}
		recs = append(recs, kitRecord{
			ID:               k.ID,
			PlanID:           k.PlanID,
			ScenarioHash:     k.ScenarioHash,
			Variant:          string(k.Variant),
			TotalPrice:       k.TotalPrice,
			TotalWeightGrams: k.TotalWeightGrams,
			CreatedAt:        k.CreatedAt,
			Payload:          datatypes.JSON(payload),
		})
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(&recs).Error
	if err != nil {
		return fmt.Errorf("save kits: %w", err)
	}
	return nil
}

func (s *SQLStore) KitsByPlan(ctx context.Context, planID string) ([]model.Kit, error) {
	start := time.Now()
	defer observe("kits_by_plan", start)

	var recs []kitRecord
	err := s.db.WithContext(ctx).
		Where("plan_id = ?", planID).
		Order("created_at ASC").Order("rowid ASC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("load kits: %w", err)
	}

	kits := make([]model.Kit, 0, len(recs))
	for _, rec := range recs {
		var k model.Kit
		if err := json.Unmarshal(rec.Payload, &k); err != nil {
			return nil, fmt.Errorf("decode kit %q: %w", rec.ID, err)
		}
		kits = append(kits, k)
	}
	return kits, nil
}

func (s *SQLStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&scenarioRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count scenarios: %w", err)
	}
	return n, nil
}

// Close releases the underlying database handle.
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

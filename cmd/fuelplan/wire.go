package main

import (
	"context"
	"fmt"

	"github.com/okian/fuelplan/internal/adapters/catalog"
	"github.com/okian/fuelplan/internal/adapters/fixtures"
	"github.com/okian/fuelplan/internal/adapters/repository"
	service "github.com/okian/fuelplan/internal/app"
	"github.com/okian/fuelplan/internal/config"
	"github.com/okian/fuelplan/internal/domain/guardrail"
	"github.com/okian/fuelplan/internal/domain/scenario"
	"github.com/okian/fuelplan/pkg/logger"
)

// newService wires the application service from configuration. The
// catalog is optional; kit endpoints answer 503 without it.
func newService(ctx context.Context, cfg *config.Config) (*service.Service, error) {
	log := logger.Get()

	resolver, err := fixtures.LoadFile(cfg.FixturesPath)
	if err != nil {
		return nil, err
	}
	log.Info(ctx, "fixtures loaded", logger.String("path", cfg.FixturesPath), logger.Any("counts", resolver.Counts()))

	opts := []service.Option{
		service.WithLogger(log.Named("service")),
		service.WithResolver(resolver),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithBatchConcurrency(cfg.BatchConcurrency),
		service.WithMaxBatchSize(cfg.MaxBatchSize),
	}

	if cfg.GuardrailSeed != 0 {
		sim := guardrail.NewSimulator(guardrail.WithSeed(cfg.GuardrailSeed))
		opts = append(opts, service.WithBuilder(scenario.NewBuilder(scenario.WithSimulator(sim))))
	}

	if cfg.CatalogPath != "" {
		products, err := catalog.LoadFile(cfg.CatalogPath)
		if err != nil {
			log.Warn(ctx, "product catalog unavailable; kit assembly disabled",
				logger.String("path", cfg.CatalogPath),
				logger.Error(err),
			)
		} else {
			log.Info(ctx, "product catalog loaded", logger.String("path", cfg.CatalogPath), logger.Int("products", products.Len()))
			opts = append(opts, service.WithProducts(products))
		}
	}

	if cfg.DBPath != "" {
		store, err := repository.OpenSQLStore(ctx, cfg.DBPath)
		if err != nil {
			return nil, err
		}
		log.Info(ctx, "using sqlite store", logger.String("path", cfg.DBPath))
		opts = append(opts, service.WithStore(store))
	} else {
		log.Info(ctx, "using memory store")
	}

	svc := service.New(opts...)
	if err := svc.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start service: %w", err)
	}
	return svc, nil
}

package service

import (
	"github.com/okian/fuelplan/internal/adapters/repository"
	"github.com/okian/fuelplan/internal/domain/dedupe"
	"github.com/okian/fuelplan/internal/domain/kit"
	"github.com/okian/fuelplan/internal/domain/scenario"
	"github.com/okian/fuelplan/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the scenario and kit store. Defaults to a MemoryStore.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithIndex sets the scenario hash index.
func WithIndex(index dedupe.Index) Option {
	return func(s *Service) {
		if index != nil {
			s.index = index
		}
	}
}

// WithDedupeSize bounds the default hash index. Ignored when WithIndex is used.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithBuilder sets the scenario builder.
func WithBuilder(b *scenario.Builder) Option {
	return func(s *Service) {
		if b != nil {
			s.builder = b
		}
	}
}

// WithAssembler sets the kit assembler.
func WithAssembler(a *kit.Assembler) Option {
	return func(s *Service) {
		if a != nil {
			s.assembler = a
		}
	}
}

// WithResolver sets the source of athlete, preference, event and route data.
func WithResolver(r Resolver) Option {
	return func(s *Service) {
		if r != nil {
			s.resolver = r
		}
	}
}

// WithProducts sets the product catalog used for kits.
func WithProducts(p ProductSource) Option {
	return func(s *Service) {
		if p != nil {
			s.products = p
		}
	}
}

// WithBatchConcurrency caps the concurrent builds of one batch.
func WithBatchConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchConcurrency = n
		}
	}
}

// WithMaxBatchSize caps the number of inputs per batch.
func WithMaxBatchSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxBatchSize = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

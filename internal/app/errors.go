package service

import (
	"errors"

	"github.com/okian/fuelplan/internal/adapters/repository"
)

// Sentinel error kinds returned by the Service.
var (
	// ErrNotFound reports an unknown scenario id.
	ErrNotFound = repository.ErrNotFound
	// ErrNoCatalog reports kit assembly without a configured product catalog.
	ErrNoCatalog = errors.New("product catalog not configured")
	// ErrNoResolver reports a Service started without a context resolver.
	ErrNoResolver = errors.New("scenario context resolver not configured")
)

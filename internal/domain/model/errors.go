package model

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel error kinds. Typed errors below match them with errors.Is.
var (
	ErrValidation     = errors.New("validation failed")
	ErrMissingContext = errors.New("missing scenario context")
	ErrKitAssembly    = errors.New("kit assembly failed")
)

// ValidationError reports a malformed or out-of-range field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is matches ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// MissingContextError reports a lookup that found nothing for an id.
type MissingContextError struct {
	Entity string
	ID     string
}

func (e *MissingContextError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// Is matches ErrMissingContext.
func (e *MissingContextError) Is(target error) bool { return target == ErrMissingContext }

// KitAssemblyError reports that no product survived dietary/brand filtering
// for the required categories. Callers should relax preferences.
type KitAssemblyError struct {
	Categories []ProductCategory
	Reason     string
}

func (e *KitAssemblyError) Error() string {
	names := make([]string, len(e.Categories))
	for i, c := range e.Categories {
		names[i] = string(c)
	}
	return fmt.Sprintf("no eligible products for %s: %s", strings.Join(names, ", "), e.Reason)
}

// Is matches ErrKitAssembly.
func (e *KitAssemblyError) Is(target error) bool { return target == ErrKitAssembly }

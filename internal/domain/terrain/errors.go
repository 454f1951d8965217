package terrain

import "errors"

// Sentinel kinds for terrain lookups.
var (
	ErrUnknownDiscipline = errors.New("unknown discipline")
	ErrUnknownClass      = errors.New("unknown terrain class")
)

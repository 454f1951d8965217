package targets

import "errors"

// ErrUnknownLevel reports an enumeration value with no lookup entry.
var ErrUnknownLevel = errors.New("unknown lookup level")

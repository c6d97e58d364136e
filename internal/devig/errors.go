package devig

import "errors"

// ErrUnknownMethod is returned when a de-vig method name is not in the
// supported set. Callers must not substitute a default on this error.
var ErrUnknownMethod = errors.New("unknown de-vig method")

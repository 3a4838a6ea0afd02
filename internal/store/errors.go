package store

import "errors"

// ErrNotFound is returned by per-kind lookups when no row matches the id.
// Callers (the Reconciler) treat it as "not present" rather than a fault.
var ErrNotFound = errors.New("store: not found")

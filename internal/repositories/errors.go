package repositories

import "errors"

// ErrNotFound is returned by all repositories when an entity does not exist.
// Callers use errors.Is to distinguish misses from infrastructure failures.
var ErrNotFound = errors.New("record not found")

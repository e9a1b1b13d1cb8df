package session

import "errors"

// ErrValidation marks rejected mutations: the operation is refused and no
// state changes. Callers match it with errors.Is.
var ErrValidation = errors.New("validation failed")

// ErrPersist marks a failed write-through to the storage layer. The in-memory
// state has already been updated and remains authoritative for the session.
var ErrPersist = errors.New("failed to persist state")

package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrConflict indicates a state-machine violation, such as opening a second
// cash session for a store or closing a session that is already closed.
var ErrConflict = errors.New("conflicting state")

// ErrIntegrity indicates that two independently computed financial totals
// diverged. It points at a logic defect, never at a real-world cash
// discrepancy, and the triggering operation must abort entirely.
var ErrIntegrity = errors.New("integrity check failed")

// ErrPersistence indicates that a post-write verification read did not match
// what was just written.
var ErrPersistence = errors.New("persistence verification failed")

// ErrUpstreamUnavailable indicates the external rate source could not be
// reached or returned an unusable payload. The rate fallback chain absorbs
// it; it never surfaces to API callers.
var ErrUpstreamUnavailable = errors.New("upstream rate source unavailable")

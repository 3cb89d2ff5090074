package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, end date before start date).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when a write would violate a uniqueness rule,
// such as registering an email twice or flagging a second recommended map.
// Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrForbidden is returned when the caller is authenticated but is neither
// the owner nor a collaborator of the resource being changed.
// Handlers should map this to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrUnauthorized is returned for bad credentials or a missing identity.
// Handlers should map this to HTTP 401.
var ErrUnauthorized = errors.New("unauthorized")

// ErrUnavailable is returned when an optional upstream (the assistant) is
// disabled or currently failing. Handlers should map this to HTTP 503.
var ErrUnavailable = errors.New("unavailable")

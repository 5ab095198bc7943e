package domain

import "errors"

// ErrNotFound is returned by repo, upstream and service functions when the
// requested resource (store, address, coordinates, shipping option) does not
// exist according to an authoritative answer.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrUpstream is returned by the upstream API clients for every failure that
// is not an authoritative "not found": network errors, timeouts, unexpected
// status codes and malformed payloads.
// Handlers should map this to a generic HTTP 500.
var ErrUpstream = errors.New("upstream error")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing store name, unknown store type).
// Handlers should map this to HTTP 400.
var ErrValidation = errors.New("validation error")

// NotFoundError is an ErrNotFound that carries a message meant for the API
// caller. errors.Is(err, ErrNotFound) reports true for it.
type NotFoundError struct {
	Message string
}

// NotFound returns a *NotFoundError with the given caller-facing message.
func NotFound(message string) error {
	return &NotFoundError{Message: message}
}

func (e *NotFoundError) Error() string {
	return "not found: " + e.Message
}

// Is makes errors.Is(err, ErrNotFound) match a wrapped *NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

package model

import (
	"errors"
	"net/http"
)

// Error kinds shared by services and handlers. Handlers map them to
// HTTP statuses; the delivery agent retries only ErrTransient.
var (
	// ErrInvalidInput marks a request missing required fields. Never retried.
	ErrInvalidInput = errors.New("missing or invalid input")

	// ErrNotFound marks an update/delete whose target does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a duplicate create or a delete blocked by
	// dependent records. Surfaced to the caller for manual resolution.
	ErrConflict = errors.New("conflict")

	// ErrTransient marks network or datastore unavailability.
	ErrTransient = errors.New("temporarily unavailable")
)

// HTTPStatus maps an error to the status code the API reports for it.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrTransient):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Package repository holds the persistence layer: JSON-file stores for
// bookings, comments and settings, an optional MySQL booking store and the
// captcha stores. The sentinel values below let higher layers such as
// handlers tell failure scenarios apart with errors.Is.
package repository

import "errors"

// ErrNotFound is returned when the requested record does not exist.
// Handlers translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an operation cannot proceed because of the
// current state, such as running first-time setup when a password is
// already stored. Handlers translate it into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrStorage wraps failures of the underlying file or database. Handlers
// log the cause and answer with a generic 500.
var ErrStorage = errors.New("storage failure")

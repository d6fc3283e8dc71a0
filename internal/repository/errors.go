// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrConflict signals that an operation cannot proceed due to
// existing dependent records (e.g. deleting a tour that still has
// bookings).
package repository

import "errors"

// ErrConflict is returned when a delete or update cannot be
// performed because of conflicting state, such as attempting to
// delete a tour whose dates still carry active bookings. Handlers
// should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned when a user cannot be created because
// the email address is already registered.
var ErrEmailExists = errors.New("email already exists")

// ErrSlugExists is returned when a tour cannot be created or updated
// because its slug collides with an existing tour.
var ErrSlugExists = errors.New("slug already exists")

// ErrTourNotFound is returned when a referenced tour does not exist.
var ErrTourNotFound = errors.New("tour not found")

// ErrTourDateNotFound is returned when a referenced tour date does not exist.
var ErrTourDateNotFound = errors.New("tour date not found")

// ErrHasBookings is returned when a user cannot be deleted because
// bookings still reference them.
var ErrHasBookings = errors.New("user has bookings")

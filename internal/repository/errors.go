// Package repository contains the data access layer.  This file defines
// sentinel errors shared by multiple repositories so that handlers can
// distinguish failure scenarios without string matching.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrRideNotFound indicates that a ride was not located in the DB.
var ErrRideNotFound = errors.New("ride not found")

// ErrBookingNotFound indicates that a booking was not located in the DB.
var ErrBookingNotFound = errors.New("booking not found")

// ErrReviewNotFound indicates that a review was not located in the DB.
var ErrReviewNotFound = errors.New("review not found")

// ErrEmailExists indicates an attempt to register an email that is
// already taken.  Handlers translate this into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// Package service contains the booking core: the per-session seat
// ledger, the booking state machine and its seat-sync coordinator,
// the confirmation workflow, and the time-windowed batch jobs.  This
// file defines the sentinel errors the core surfaces.  All of them
// describe precondition failures the caller must report back to the
// end user; none are logged and swallowed.  Handlers translate them
// into HTTP status codes.
package service

import "errors"

// ErrSessionCancelled is returned when a seat reservation is
// attempted against a cancelled session.
var ErrSessionCancelled = errors.New("session is cancelled")

// ErrSpotsNotInitialized is returned when the seat ledger is asked to
// mutate a session whose available-spots counter was never set.
var ErrSpotsNotInitialized = errors.New("available spots not initialized")

// ErrNoAvailableSpots is returned when a reservation is attempted on
// a session with no seats left.
var ErrNoAvailableSpots = errors.New("no available spots")

// ErrCapacityExceeded is returned when releasing a seat would push
// the available count above the session capacity.
var ErrCapacityExceeded = errors.New("cannot release more seats than capacity")

// ErrInvalidCapacity is returned when a capacity change requests a
// non-positive value.
var ErrInvalidCapacity = errors.New("capacity must be positive")

// ErrCapacityBelowBooked is returned when a capacity change would
// drop the total below the number of seats already booked.
var ErrCapacityBelowBooked = errors.New("capacity below booked seats")

// ErrSessionRequired is returned when a booking would end up without
// an owning session.
var ErrSessionRequired = errors.New("booking requires a session")

// ErrInvalidStatus is returned when an unknown status value is
// supplied to a booking operation.
var ErrInvalidStatus = errors.New("invalid booking status")

// ErrInvalidTransition is returned when the requested status change
// is not allowed by the state machine, e.g. reviving a cancelled
// booking or demoting a confirmed one back to pending.
var ErrInvalidTransition = errors.New("status transition not allowed")

// ErrBookingCancelled is returned when a confirmation token is
// redeemed for a booking that was cancelled in the meantime.
var ErrBookingCancelled = errors.New("booking is cancelled")

package service

import "github.com/iliyamo/surf-school-booking/internal/model"

// The seat ledger is the only code allowed to touch a session's
// available-spots counter.  All three operations mutate the session
// in memory and perform no I/O; the caller persists the session in
// the same transaction as the booking change that triggered them.

// ReserveSeat takes one seat from the session.  It fails when the
// session is cancelled, when the ledger was never initialized, or
// when no seats are left.  On failure the session is unchanged.
func ReserveSeat(s *model.Session) error {
	if s.IsCancelled {
		return ErrSessionCancelled
	}
	if s.AvailableSpots == nil {
		return ErrSpotsNotInitialized
	}
	if *s.AvailableSpots <= 0 {
		return ErrNoAvailableSpots
	}
	*s.AvailableSpots--
	return nil
}

// ReleaseSeat returns one seat to the session.  It fails when the
// ledger was never initialized or when releasing would push the
// available count above capacity.  On failure the session is
// unchanged.  Releasing on a cancelled session is allowed: cascade
// cancellation releases seats on the session being cancelled.
func ReleaseSeat(s *model.Session) error {
	if s.AvailableSpots == nil {
		return ErrSpotsNotInitialized
	}
	if *s.AvailableSpots >= s.Capacity {
		return ErrCapacityExceeded
	}
	*s.AvailableSpots++
	return nil
}

// SetCapacity resizes the session while preserving the booked-seat
// count.  The new capacity must be positive and at least the number
// of seats already booked; the available count is recomputed as
// newCapacity - booked.  On failure capacity and available spots are
// unchanged.
func SetCapacity(s *model.Session, newCapacity int) error {
	if newCapacity <= 0 {
		return ErrInvalidCapacity
	}
	booked := s.BookedSeats()
	if newCapacity < booked {
		return ErrCapacityBelowBooked
	}
	s.Capacity = newCapacity
	available := newCapacity - booked
	s.AvailableSpots = &available
	return nil
}

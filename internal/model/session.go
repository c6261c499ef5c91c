package model

import "time"

// Session represents one scheduled occurrence of a course with a
// fixed seat capacity.  AvailableSpots is the seat ledger: it is nil
// until the ledger is initialized (normally at creation, when it is
// set to Capacity) and is mutated only through the service-layer seat
// ledger.  Version implements optimistic locking on every seat-state
// write so two requests racing for the last seat cannot both win.
//
// Fields:
//  ID             – primary key identifier.
//  CourseID       – course this session belongs to (never zero).
//  StartsAt       – when the session begins (UTC).
//  EndsAt         – derived end time: StartsAt + course duration.
//  Capacity       – total seats (positive once set; 0 means unset).
//  AvailableSpots – seats still free (nil when uninitialized).
//  IsCancelled    – cancellation flag; flipping it to true cascades
//                   cancellation to all active bookings.
//  Version        – optimistic-concurrency counter.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Session struct {
	ID             uint64    // sessions.id
	CourseID       uint64    // sessions.course_id
	StartsAt       time.Time // sessions.starts_at
	EndsAt         time.Time // sessions.ends_at
	Capacity       int       // sessions.capacity
	AvailableSpots *int      // sessions.available_spots (nullable)
	IsCancelled    bool      // sessions.is_cancelled
	Version        uint32    // sessions.version
	CreatedAt      time.Time // sessions.created_at
	UpdatedAt      time.Time // sessions.updated_at
}

// BookedSeats returns the number of seats currently held against the
// session, or 0 when either counter is unset.
func (s *Session) BookedSeats() int {
	if s.Capacity <= 0 || s.AvailableSpots == nil {
		return 0
	}
	return s.Capacity - *s.AvailableSpots
}

// ReferenceEnd returns the timestamp used to decide whether a session
// is over: EndsAt when set, otherwise StartsAt.
func (s *Session) ReferenceEnd() time.Time {
	if !s.EndsAt.IsZero() {
		return s.EndsAt
	}
	return s.StartsAt
}

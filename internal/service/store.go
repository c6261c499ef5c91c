package service

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/surf-school-booking/internal/model"
	"github.com/iliyamo/surf-school-booking/internal/queue"
)

// Sentinel errors the persistence implementation must return so the
// core (and its callers) can distinguish the conditions.  They live
// next to the interface they belong to.
var (
	// ErrSessionNotFound is returned when no session exists for an id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrBookingNotFound is returned when no booking exists for an id
	// or confirmation token.
	ErrBookingNotFound = errors.New("booking not found")
	// ErrCourseNotFound is returned when no course exists for an id.
	ErrCourseNotFound = errors.New("course not found")
	// ErrVersionConflict is returned when a versioned session write
	// lost a race with a concurrent transaction.  Callers are expected
	// to re-read and retry.
	ErrVersionConflict = errors.New("session was modified concurrently")
)

// Store opens transactions against the backing store.  Every booking
// mutation and its seat-ledger side effects run inside a single
// transaction; fn returning an error rolls everything back.
type Store interface {
	InTx(ctx context.Context, fn func(Tx) error) error
}

// Tx is the narrow persistence surface the booking core needs inside
// one transaction.  Session writes are versioned: SaveSessionSeats
// and UpdateSessionCapacity compare-and-bump the session's version
// counter and return ErrVersionConflict when it no longer matches.
type Tx interface {
	// Courses.
	Course(ctx context.Context, id uint64) (*model.Course, error)

	// Sessions.
	Session(ctx context.Context, id uint64) (*model.Session, error)
	InsertSession(ctx context.Context, s *model.Session) error
	// SaveSessionSeats persists available_spots and is_cancelled.
	SaveSessionSeats(ctx context.Context, s *model.Session) error
	// UpdateSessionCapacity persists capacity and available_spots.
	UpdateSessionCapacity(ctx context.Context, s *model.Session) error
	SessionsEndedBefore(ctx context.Context, reference time.Time) ([]model.Session, error)
	DeleteSession(ctx context.Context, id uint64) error

	// Bookings.
	Booking(ctx context.Context, id uint64) (*model.Booking, error)
	BookingByToken(ctx context.Context, token string) (*model.Booking, error)
	InsertBooking(ctx context.Context, b *model.Booking) error
	UpdateBooking(ctx context.Context, b *model.Booking) error
	DeleteBooking(ctx context.Context, id uint64) error
	// ActiveBookingsBySession lists the session's bookings that are
	// not cancelled, for cascade cancellation.
	ActiveBookingsBySession(ctx context.Context, sessionID uint64) ([]model.Booking, error)
	// PendingStartingBetween lists PENDING bookings whose session
	// starts within [from, to], for expiry reclamation.
	PendingStartingBetween(ctx context.Context, from, to time.Time) ([]model.Booking, error)
	// RemindableStartingBetween lists PENDING/CONFIRMED bookings with
	// no reminder sent whose session starts within [from, to), for
	// reminder dispatch.
	RemindableStartingBetween(ctx context.Context, from, to time.Time) ([]model.Booking, error)
}

// Notifier hands notification events to the asynchronous delivery
// channel.  The core calls it only after the owning transaction has
// committed and ignores delivery errors (the implementation logs
// them); a lost notification must never roll back a seat mutation.
type Notifier interface {
	ConfirmationRequested(ctx context.Context, ev queue.BookingConfirmationEvent) error
	BookingCancelled(ctx context.Context, ev queue.BookingCancelledEvent) error
	BookingReminder(ctx context.Context, ev queue.BookingReminderEvent) error
}

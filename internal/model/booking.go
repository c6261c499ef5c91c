package model

import "time"

// BookingStatus enumerates the lifecycle states of a booking.  The
// typed string constants mirror the enum values stored in the
// bookings.status column.
type BookingStatus string

const (
	// StatusPending is the initial state of a customer booking.  A
	// pending booking occupies a seat and carries a confirmation
	// token until it is confirmed or cancelled.
	StatusPending BookingStatus = "PENDING"
	// StatusConfirmed marks a booking whose confirmation token was
	// redeemed (or that an admin confirmed directly).  It still
	// occupies a seat.
	StatusConfirmed BookingStatus = "CONFIRMED"
	// StatusCancelled is terminal.  A cancelled booking never
	// occupies a seat and cannot leave this state.
	StatusCancelled BookingStatus = "CANCELLED"
)

// HoldsSeat reports whether a booking in this status occupies one
// unit of session capacity.  This predicate is the single source of
// truth for seat accounting; no other code may re-derive it.
func (s BookingStatus) HoldsSeat() bool {
	return s == StatusPending || s == StatusConfirmed
}

// IsFinal reports whether the status permits no further transitions.
func (s BookingStatus) IsFinal() bool {
	return s == StatusCancelled
}

// Valid reports whether s is one of the known status values.
func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the state machine allows moving
// from s to next.  Setting the same status again is handled by the
// caller as a no-op, not a transition.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCancelled
	}
	return false
}

// Booking records one customer's reservation of a single seat in a
// session.  A booking always belongs to exactly one session; the
// optional UserID links it to the account that created it.
//
// Fields:
//  ID                 – primary key identifier.
//  FirstName          – contact first name.
//  LastName           – contact last name.
//  Email              – contact email; confirmation and reminder
//                       notifications are sent here.
//  Phone              – contact phone number.
//  Age                – participant age (positive).
//  Status             – current lifecycle state.
//  SessionID          – owning session (never zero).
//  UserID             – account that created the booking (nullable).
//  ConfirmationToken  – opaque token proving control of the contact
//                       email (nullable, unique when present).
//  ConfirmationSentAt – when the confirmation message was queued.
//  ConfirmedAt        – when the booking was confirmed.
//  ReminderSentAt     – when the pre-session reminder was queued;
//                       guards the reminder job against duplicates.
//  CreatedAt          – creation timestamp.
//  UpdatedAt          – last update timestamp.
type Booking struct {
	ID                 uint64        // bookings.id
	FirstName          string        // bookings.first_name
	LastName           string        // bookings.last_name
	Email              string        // bookings.email
	Phone              string        // bookings.phone
	Age                int           // bookings.age
	Status             BookingStatus // bookings.status
	SessionID          uint64        // bookings.session_id
	UserID             *uint64       // bookings.user_id (nullable)
	ConfirmationToken  *string       // bookings.confirmation_token (nullable, unique)
	ConfirmationSentAt *time.Time    // bookings.confirmation_sent_at (nullable)
	ConfirmedAt        *time.Time    // bookings.confirmed_at (nullable)
	ReminderSentAt     *time.Time    // bookings.reminder_sent_at (nullable)
	CreatedAt          time.Time     // bookings.created_at
	UpdatedAt          time.Time     // bookings.updated_at
}

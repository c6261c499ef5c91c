package service

import (
	"context"
	"time"

	"github.com/iliyamo/surf-school-booking/internal/model"
	"github.com/iliyamo/surf-school-booking/internal/queue"
)

// BookingService implements the booking state machine and its
// confirmation workflow.  Every mutation runs its seat-ledger side
// effects through SyncSeats inside the same transaction as the row
// write; notifications are queued only after the transaction commits.
type BookingService struct {
	store    Store
	notifier Notifier
	now      func() time.Time // injectable clock for tests
}

// NewBookingService returns a BookingService backed by the given
// store and notifier.
func NewBookingService(store Store, notifier Notifier) *BookingService {
	return &BookingService{store: store, notifier: notifier, now: time.Now}
}

// CreateBookingInput carries the attendee details for a new booking.
type CreateBookingInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Age       int
	SessionID uint64
	// Status is the requested initial status.  Only privileged
	// callers may set it; everyone else is forced to PENDING.
	Status model.BookingStatus
	// UserID links the booking to the authenticated account that
	// created it, when there is one.
	UserID *uint64
}

// CreateBooking inserts a booking and claims its seat.  Non-privileged
// callers always get a PENDING booking regardless of the requested
// status; PENDING bookings are issued a confirmation token and a
// confirmation mail is queued once the transaction has committed.
func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput, privileged bool) (*model.Booking, error) {
	status := in.Status
	if !privileged || status == "" {
		status = model.StatusPending
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if in.SessionID == 0 {
		return nil, ErrSessionRequired
	}

	var (
		booking *model.Booking
		confirm *queue.BookingConfirmationEvent
	)
	err := s.store.InTx(ctx, func(tx Tx) error {
		session, err := tx.Session(ctx, in.SessionID)
		if err != nil {
			return err
		}
		course, err := tx.Course(ctx, session.CourseID)
		if err != nil {
			return err
		}

		now := s.now()
		booking = &model.Booking{
			FirstName: in.FirstName,
			LastName:  in.LastName,
			Email:     in.Email,
			Phone:     in.Phone,
			Age:       in.Age,
			Status:    status,
			SessionID: session.ID,
			UserID:    in.UserID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if status == model.StatusConfirmed {
			booking.ConfirmedAt = &now
		}
		if status == model.StatusPending {
			token, err := newConfirmationToken()
			if err != nil {
				return err
			}
			booking.ConfirmationToken = &token
			booking.ConfirmationSentAt = &now
		}

		// Before-create: claim the seat under the same transaction
		// as the insert, so a full session rejects the row too.
		if err := SyncSeats(nil, session, "", booking.Status); err != nil {
			return err
		}
		if err := tx.SaveSessionSeats(ctx, session); err != nil {
			return err
		}
		if err := tx.InsertBooking(ctx, booking); err != nil {
			return err
		}

		if booking.ConfirmationToken != nil {
			confirm = &queue.BookingConfirmationEvent{
				BookingID:    booking.ID,
				Email:        booking.Email,
				CourseTitle:  course.Title,
				SessionStart: session.StartsAt.Format(time.RFC3339),
				Token:        *booking.ConfirmationToken,
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if confirm != nil {
		_ = s.notifier.ConfirmationRequested(ctx, *confirm)
	}
	return booking, nil
}

// SetBookingStatus moves a booking through the state machine.
// Setting the current status again is a no-op; transitions outside
// PENDING→CONFIRMED, PENDING→CANCELLED and CONFIRMED→CANCELLED fail
// with ErrInvalidTransition.  A transition to CANCELLED releases the
// seat and queues a cancellation mail.
func (s *BookingService) SetBookingStatus(ctx context.Context, id uint64, next model.BookingStatus) (*model.Booking, error) {
	if !next.Valid() {
		return nil, ErrInvalidStatus
	}

	var (
		booking   *model.Booking
		cancelled *queue.BookingCancelledEvent
	)
	err := s.store.InTx(ctx, func(tx Tx) error {
		b, err := tx.Booking(ctx, id)
		if err != nil {
			return err
		}
		booking = b
		if b.Status == next {
			return nil
		}
		if !b.Status.CanTransitionTo(next) {
			return ErrInvalidTransition
		}

		session, err := tx.Session(ctx, b.SessionID)
		if err != nil {
			return err
		}

		// Before-update: the seat delta and the row write share one
		// transaction.
		prev := b.Status
		if err := SyncSeats(session, session, prev, next); err != nil {
			return err
		}
		if err := tx.SaveSessionSeats(ctx, session); err != nil {
			return err
		}

		now := s.now()
		b.Status = next
		b.UpdatedAt = now
		b.ConfirmationToken = nil
		b.ConfirmationSentAt = nil
		if next == model.StatusConfirmed {
			b.ConfirmedAt = &now
		}
		if err := tx.UpdateBooking(ctx, b); err != nil {
			return err
		}

		if next == model.StatusCancelled {
			course, err := tx.Course(ctx, session.CourseID)
			if err != nil {
				return err
			}
			cancelled = &queue.BookingCancelledEvent{
				BookingID:    b.ID,
				Email:        b.Email,
				CourseTitle:  course.Title,
				SessionStart: session.StartsAt.Format(time.RFC3339),
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if cancelled != nil {
		_ = s.notifier.BookingCancelled(ctx, *cancelled)
	}
	return booking, nil
}

// SetBookingSession moves a booking to a different session, releasing
// the seat on the old one and claiming a seat on the new one in the
// same transaction.  Cancelled bookings move without touching either
// ledger.
func (s *BookingService) SetBookingSession(ctx context.Context, id, sessionID uint64) (*model.Booking, error) {
	if sessionID == 0 {
		return nil, ErrSessionRequired
	}

	var booking *model.Booking
	err := s.store.InTx(ctx, func(tx Tx) error {
		b, err := tx.Booking(ctx, id)
		if err != nil {
			return err
		}
		booking = b
		if b.SessionID == sessionID {
			return nil
		}

		prev, err := tx.Session(ctx, b.SessionID)
		if err != nil {
			return err
		}
		next, err := tx.Session(ctx, sessionID)
		if err != nil {
			return err
		}

		if err := SyncSeats(prev, next, b.Status, b.Status); err != nil {
			return err
		}
		if err := tx.SaveSessionSeats(ctx, prev); err != nil {
			return err
		}
		if err := tx.SaveSessionSeats(ctx, next); err != nil {
			return err
		}

		b.SessionID = next.ID
		b.UpdatedAt = s.now()
		return tx.UpdateBooking(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// DeleteBooking removes a booking, releasing its seat first when the
// booking still held one.
func (s *BookingService) DeleteBooking(ctx context.Context, id uint64) error {
	return s.store.InTx(ctx, func(tx Tx) error {
		b, err := tx.Booking(ctx, id)
		if err != nil {
			return err
		}
		if b.Status.HoldsSeat() {
			session, err := tx.Session(ctx, b.SessionID)
			if err != nil {
				return err
			}
			// Before-delete: give the seat back under the same
			// transaction as the row removal.
			if err := SyncSeats(session, nil, b.Status, ""); err != nil {
				return err
			}
			if err := tx.SaveSessionSeats(ctx, session); err != nil {
				return err
			}
		}
		return tx.DeleteBooking(ctx, id)
	})
}

// ConfirmByToken redeems an emailed confirmation token.  Redeeming
// the same token twice succeeds idempotently: the token stays on the
// booking and an already-confirmed booking is returned as-is.  A
// cancelled booking fails with ErrBookingCancelled.
func (s *BookingService) ConfirmByToken(ctx context.Context, token string) (*model.Booking, error) {
	var booking *model.Booking
	err := s.store.InTx(ctx, func(tx Tx) error {
		b, err := tx.BookingByToken(ctx, token)
		if err != nil {
			return err
		}
		booking = b
		switch b.Status {
		case model.StatusCancelled:
			return ErrBookingCancelled
		case model.StatusConfirmed:
			return nil
		}

		// PENDING and CONFIRMED both hold a seat, so no ledger
		// delta here; the row write still runs in a transaction so a
		// concurrent cancellation cannot interleave.
		now := s.now()
		b.Status = model.StatusConfirmed
		b.ConfirmedAt = &now
		b.ConfirmationSentAt = nil
		b.UpdatedAt = now
		return tx.UpdateBooking(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

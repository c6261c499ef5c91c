package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/surf-school-booking/internal/model"
	"github.com/iliyamo/surf-school-booking/internal/queue"
)

// Windows of the scheduled jobs.
const (
	// ExpiryHorizon is how far ahead the reclamation job looks for
	// unconfirmed bookings.
	ExpiryHorizon = 12 * time.Hour
	// ReminderLead is how long before a session's start its reminder
	// goes out.
	ReminderLead = 24 * time.Hour
	// ReminderWindow is the width of the reminder slot; together with
	// the run cadence it keeps a booking from being picked up twice.
	ReminderWindow = 30 * time.Minute
)

// BatchFailure records a single item a batch job could not process.
type BatchFailure struct {
	BookingID uint64
	Err       error
}

// BatchResult summarizes a batch run.  Processed counts the items
// actually mutated; one item's failure never aborts the rest.
type BatchResult struct {
	Processed int
	Failures  []BatchFailure
}

// Failed reports whether any item in the batch failed.
func (r BatchResult) Failed() bool { return len(r.Failures) > 0 }

// Jobs runs the time-windowed maintenance batches.  Each candidate is
// re-read and mutated in its own transaction, so a partial run can be
// retried without double-applying anything.
type Jobs struct {
	store    Store
	notifier Notifier
	now      func() time.Time
}

// NewJobs returns a Jobs runner backed by the given store and
// notifier.
func NewJobs(store Store, notifier Notifier) *Jobs {
	return &Jobs{store: store, notifier: notifier, now: time.Now}
}

// RunExpiryReclamation cancels PENDING bookings whose session starts
// within the next twelve hours, freeing their seats and queueing the
// cancellation mails.  Bookings confirmed between candidate selection
// and processing are left alone.
func (j *Jobs) RunExpiryReclamation(ctx context.Context, now time.Time) (BatchResult, error) {
	var candidates []model.Booking
	err := j.store.InTx(ctx, func(tx Tx) error {
		var err error
		candidates, err = tx.PendingStartingBetween(ctx, now, now.Add(ExpiryHorizon))
		return err
	})
	if err != nil {
		return BatchResult{}, fmt.Errorf("select expiry candidates: %w", err)
	}

	var res BatchResult
	for i := range candidates {
		id := candidates[i].ID
		ev, err := j.expireOne(ctx, id)
		if err != nil {
			res.Failures = append(res.Failures, BatchFailure{BookingID: id, Err: err})
			continue
		}
		if ev != nil {
			res.Processed++
			_ = j.notifier.BookingCancelled(ctx, *ev)
		}
	}
	return res, nil
}

// expireOne cancels a single still-pending booking in its own
// transaction.  It returns nil, nil when the booking no longer
// qualifies (confirmed, cancelled or deleted in the meantime).
func (j *Jobs) expireOne(ctx context.Context, id uint64) (*queue.BookingCancelledEvent, error) {
	var ev *queue.BookingCancelledEvent
	err := j.store.InTx(ctx, func(tx Tx) error {
		b, err := tx.Booking(ctx, id)
		if errors.Is(err, ErrBookingNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if b.Status != model.StatusPending {
			return nil
		}

		session, err := tx.Session(ctx, b.SessionID)
		if err != nil {
			return err
		}
		if err := SyncSeats(session, session, b.Status, model.StatusCancelled); err != nil {
			return err
		}
		if err := tx.SaveSessionSeats(ctx, session); err != nil {
			return err
		}

		now := j.now()
		b.Status = model.StatusCancelled
		b.ConfirmationToken = nil
		b.ConfirmationSentAt = nil
		b.UpdatedAt = now
		if err := tx.UpdateBooking(ctx, b); err != nil {
			return err
		}

		course, err := tx.Course(ctx, session.CourseID)
		if err != nil {
			return err
		}
		ev = &queue.BookingCancelledEvent{
			BookingID:    b.ID,
			Email:        b.Email,
			CourseTitle:  course.Title,
			SessionStart: session.StartsAt.Format(time.RFC3339),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// RunReminderDispatch queues a reminder mail for every active booking
// whose session starts in about 24 hours and that has not been
// reminded yet.  Pending bookings without a confirmation token get
// one issued so the reminder can still carry a confirmation link.
func (j *Jobs) RunReminderDispatch(ctx context.Context, now time.Time) (BatchResult, error) {
	var candidates []model.Booking
	err := j.store.InTx(ctx, func(tx Tx) error {
		var err error
		from := now.Add(ReminderLead)
		candidates, err = tx.RemindableStartingBetween(ctx, from, from.Add(ReminderWindow))
		return err
	})
	if err != nil {
		return BatchResult{}, fmt.Errorf("select reminder candidates: %w", err)
	}

	var res BatchResult
	for i := range candidates {
		id := candidates[i].ID
		ev, err := j.remindOne(ctx, id)
		if err != nil {
			res.Failures = append(res.Failures, BatchFailure{BookingID: id, Err: err})
			continue
		}
		if ev != nil {
			res.Processed++
			_ = j.notifier.BookingReminder(ctx, *ev)
		}
	}
	return res, nil
}

// remindOne stamps reminder_sent_at for a single booking in its own
// transaction and builds the reminder event.  The stamp goes in
// before the mail is queued, so a crashed run errs on the side of a
// missing reminder rather than a duplicate one.
func (j *Jobs) remindOne(ctx context.Context, id uint64) (*queue.BookingReminderEvent, error) {
	var ev *queue.BookingReminderEvent
	err := j.store.InTx(ctx, func(tx Tx) error {
		b, err := tx.Booking(ctx, id)
		if errors.Is(err, ErrBookingNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if !b.Status.HoldsSeat() || b.ReminderSentAt != nil {
			return nil
		}

		now := j.now()
		if b.Status == model.StatusPending && b.ConfirmationToken == nil {
			token, err := newConfirmationToken()
			if err != nil {
				return err
			}
			b.ConfirmationToken = &token
			b.ConfirmationSentAt = &now
		}
		b.ReminderSentAt = &now
		b.UpdatedAt = now
		if err := tx.UpdateBooking(ctx, b); err != nil {
			return err
		}

		session, err := tx.Session(ctx, b.SessionID)
		if err != nil {
			return err
		}
		course, err := tx.Course(ctx, session.CourseID)
		if err != nil {
			return err
		}
		ev = &queue.BookingReminderEvent{
			BookingID:    b.ID,
			Email:        b.Email,
			Status:       string(b.Status),
			CourseTitle:  course.Title,
			SessionStart: session.StartsAt.Format(time.RFC3339),
		}
		if b.Status == model.StatusPending && b.ConfirmationToken != nil {
			ev.Token = *b.ConfirmationToken
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ev, nil
}

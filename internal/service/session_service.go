package service

import (
	"context"
	"time"

	"github.com/iliyamo/surf-school-booking/internal/model"
	"github.com/iliyamo/surf-school-booking/internal/queue"
)

// SessionService manages course sessions: scheduling, capacity
// changes, cancellation with its booking cascade, and removal of
// sessions that already took place.
type SessionService struct {
	store    Store
	notifier Notifier
	now      func() time.Time
}

// NewSessionService returns a SessionService backed by the given
// store and notifier.
func NewSessionService(store Store, notifier Notifier) *SessionService {
	return &SessionService{store: store, notifier: notifier, now: time.Now}
}

// CreateSessionInput carries the schedule for a new session.
type CreateSessionInput struct {
	CourseID uint64
	StartsAt time.Time
	Capacity int
}

// CreateSession schedules a session for a course.  The end time is
// derived from the course duration and the seat ledger starts fully
// available.
func (s *SessionService) CreateSession(ctx context.Context, in CreateSessionInput) (*model.Session, error) {
	if in.Capacity <= 0 {
		return nil, ErrInvalidCapacity
	}

	var session *model.Session
	err := s.store.InTx(ctx, func(tx Tx) error {
		course, err := tx.Course(ctx, in.CourseID)
		if err != nil {
			return err
		}

		now := s.now()
		available := in.Capacity
		session = &model.Session{
			CourseID:       course.ID,
			StartsAt:       in.StartsAt,
			EndsAt:         in.StartsAt.Add(time.Duration(course.Duration) * time.Minute),
			Capacity:       in.Capacity,
			AvailableSpots: &available,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		return tx.InsertSession(ctx, session)
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// SetSessionCapacity resizes a session while preserving the seats
// already booked.  Shrinking below the booked count fails with
// ErrCapacityBelowBooked.
func (s *SessionService) SetSessionCapacity(ctx context.Context, id uint64, capacity int) (*model.Session, error) {
	var session *model.Session
	err := s.store.InTx(ctx, func(tx Tx) error {
		sess, err := tx.Session(ctx, id)
		if err != nil {
			return err
		}
		if err := SetCapacity(sess, capacity); err != nil {
			return err
		}
		sess.UpdatedAt = s.now()
		session = sess
		return tx.UpdateSessionCapacity(ctx, sess)
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// CancelSession marks a session cancelled and cascades to its active
// bookings: each one transitions to CANCELLED through the normal
// status path, releasing its seat, and gets a cancellation mail once
// the transaction has committed.  Cancelling an already-cancelled
// session is a no-op.
func (s *SessionService) CancelSession(ctx context.Context, id uint64) (*model.Session, error) {
	var (
		session *model.Session
		events  []queue.BookingCancelledEvent
	)
	err := s.store.InTx(ctx, func(tx Tx) error {
		sess, err := tx.Session(ctx, id)
		if err != nil {
			return err
		}
		session = sess
		if sess.IsCancelled {
			return nil
		}
		// Flag first: releases stay legal on a cancelled session,
		// new reservations do not.
		sess.IsCancelled = true

		active, err := tx.ActiveBookingsBySession(ctx, sess.ID)
		if err != nil {
			return err
		}
		course, err := tx.Course(ctx, sess.CourseID)
		if err != nil {
			return err
		}

		now := s.now()
		start := sess.StartsAt.Format(time.RFC3339)
		for i := range active {
			b := &active[i]
			if err := SyncSeats(sess, sess, b.Status, model.StatusCancelled); err != nil {
				return err
			}
			b.Status = model.StatusCancelled
			b.ConfirmationToken = nil
			b.ConfirmationSentAt = nil
			b.UpdatedAt = now
			if err := tx.UpdateBooking(ctx, b); err != nil {
				return err
			}
			events = append(events, queue.BookingCancelledEvent{
				BookingID:    b.ID,
				Email:        b.Email,
				CourseTitle:  course.Title,
				SessionStart: start,
			})
		}

		sess.UpdatedAt = now
		return tx.SaveSessionSeats(ctx, sess)
	})
	if err != nil {
		return nil, err
	}
	for _, ev := range events {
		_ = s.notifier.BookingCancelled(ctx, ev)
	}
	return session, nil
}

// PurgeFinishedSessions deletes sessions whose reference end time is
// at or before now and returns how many were removed.  Bookings go
// with their session via the schema's cascade.
func (s *SessionService) PurgeFinishedSessions(ctx context.Context, now time.Time) (int, error) {
	purged := 0
	err := s.store.InTx(ctx, func(tx Tx) error {
		ended, err := tx.SessionsEndedBefore(ctx, now)
		if err != nil {
			return err
		}
		for i := range ended {
			if err := tx.DeleteSession(ctx, ended[i].ID); err != nil {
				return err
			}
			purged++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return purged, nil
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/surf-school-booking/internal/model"
)

var testStart = time.Date(2026, 7, 14, 9, 0, 0, 0, time.UTC)

func newBookingFixture(t *testing.T, capacity int) (*BookingService, *memStore, *memNotifier, *model.Session) {
	t.Helper()
	store := newMemStore()
	course := store.addCourse("Beginner Surf", 90)
	session := store.addSession(course.ID, testStart, capacity)
	notifier := &memNotifier{}
	svc := NewBookingService(store, notifier)
	svc.now = func() time.Time { return testStart.Add(-48 * time.Hour) }
	return svc, store, notifier, session
}

func createInput(sessionID uint64) CreateBookingInput {
	return CreateBookingInput{
		FirstName: "Ana",
		LastName:  "Silva",
		Email:     "ana@example.com",
		Phone:     "+351000000",
		Age:       30,
		SessionID: sessionID,
	}
}

func TestCreateBookingForcesPending(t *testing.T) {
	svc, store, notifier, session := newBookingFixture(t, 2)
	ctx := context.Background()

	in := createInput(session.ID)
	in.Status = model.StatusConfirmed // must be ignored for non-privileged callers
	b, err := svc.CreateBooking(ctx, in, false)
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if b.Status != model.StatusPending {
		t.Fatalf("status = %q, want PENDING", b.Status)
	}
	if b.ConfirmationToken == nil || len(*b.ConfirmationToken) != 64 {
		t.Fatalf("confirmation token = %v, want 64 hex chars", b.ConfirmationToken)
	}
	if b.ConfirmationSentAt == nil {
		t.Fatal("confirmation_sent_at not stamped")
	}
	if got := *store.sessions[session.ID].AvailableSpots; got != 1 {
		t.Fatalf("available = %d, want 1", got)
	}
	if len(notifier.confirmations) != 1 {
		t.Fatalf("confirmation events = %d, want 1", len(notifier.confirmations))
	}
	ev := notifier.confirmations[0]
	if ev.BookingID != b.ID || ev.Token != *b.ConfirmationToken || ev.CourseTitle != "Beginner Surf" {
		t.Fatalf("unexpected confirmation event: %+v", ev)
	}
}

func TestCreateBookingPrivilegedConfirmed(t *testing.T) {
	svc, _, notifier, session := newBookingFixture(t, 2)

	in := createInput(session.ID)
	in.Status = model.StatusConfirmed
	b, err := svc.CreateBooking(context.Background(), in, true)
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if b.Status != model.StatusConfirmed {
		t.Fatalf("status = %q, want CONFIRMED", b.Status)
	}
	if b.ConfirmationToken != nil {
		t.Fatal("confirmed booking must not carry a confirmation token")
	}
	if b.ConfirmedAt == nil {
		t.Fatal("confirmed_at not stamped")
	}
	if len(notifier.confirmations) != 0 {
		t.Fatal("no confirmation mail expected for a confirmed create")
	}
}

func TestCreateBookingFullSession(t *testing.T) {
	svc, store, _, session := newBookingFixture(t, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := svc.CreateBooking(ctx, createInput(session.ID), false); err != nil {
			t.Fatalf("booking %d: %v", i+1, err)
		}
	}
	_, err := svc.CreateBooking(ctx, createInput(session.ID), false)
	if !errors.Is(err, ErrNoAvailableSpots) {
		t.Fatalf("err = %v, want ErrNoAvailableSpots", err)
	}
	if got := *store.sessions[session.ID].AvailableSpots; got != 0 {
		t.Fatalf("available = %d, want 0", got)
	}
	if len(store.bookings) != 2 {
		t.Fatalf("bookings = %d, want 2 (rejected row must not persist)", len(store.bookings))
	}
}

func TestCreateBookingCancelledSession(t *testing.T) {
	svc, store, _, session := newBookingFixture(t, 2)
	store.sessions[session.ID].IsCancelled = true

	_, err := svc.CreateBooking(context.Background(), createInput(session.ID), false)
	if !errors.Is(err, ErrSessionCancelled) {
		t.Fatalf("err = %v, want ErrSessionCancelled", err)
	}
}

func TestCreateBookingVersionConflict(t *testing.T) {
	svc, store, _, session := newBookingFixture(t, 2)
	store.saveSeatsErr = ErrVersionConflict

	_, err := svc.CreateBooking(context.Background(), createInput(session.ID), false)
	if !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("err = %v, want ErrVersionConflict", err)
	}
	if len(store.bookings) != 0 {
		t.Fatal("conflicting transaction must not persist the booking")
	}
}

func TestConfirmByTokenIdempotent(t *testing.T) {
	svc, store, _, session := newBookingFixture(t, 2)
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, createInput(session.ID), false)
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	token := *b.ConfirmationToken

	first, err := svc.ConfirmByToken(ctx, token)
	if err != nil {
		t.Fatalf("first confirm: %v", err)
	}
	if first.Status != model.StatusConfirmed || first.ConfirmedAt == nil {
		t.Fatalf("first confirm: status=%q confirmed_at=%v", first.Status, first.ConfirmedAt)
	}
	if first.ConfirmationSentAt != nil {
		t.Fatal("confirmation_sent_at should be cleared on confirm")
	}

	// The same link clicked again must succeed, not 404.
	second, err := svc.ConfirmByToken(ctx, token)
	if err != nil {
		t.Fatalf("second confirm: %v", err)
	}
	if second.Status != model.StatusConfirmed {
		t.Fatalf("second confirm status = %q", second.Status)
	}

	// Confirmation keeps the seat; no ledger movement.
	if got := *store.sessions[session.ID].AvailableSpots; got != 1 {
		t.Fatalf("available = %d, want 1", got)
	}
}

func TestConfirmByTokenUnknownAndCancelled(t *testing.T) {
	svc, store, _, session := newBookingFixture(t, 2)
	ctx := context.Background()

	if _, err := svc.ConfirmByToken(ctx, "deadbeef"); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("unknown token: err = %v, want ErrBookingNotFound", err)
	}

	b, err := svc.CreateBooking(ctx, createInput(session.ID), false)
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	token := *b.ConfirmationToken
	// Cancel directly in the store, keeping the token, to model a
	// cancellation racing the mail link.
	store.bookings[b.ID].Status = model.StatusCancelled

	if _, err := svc.ConfirmByToken(ctx, token); !errors.Is(err, ErrBookingCancelled) {
		t.Fatalf("cancelled booking: err = %v, want ErrBookingCancelled", err)
	}
}

func TestSetBookingStatusCancelReleasesSeat(t *testing.T) {
	svc, store, notifier, session := newBookingFixture(t, 2)
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, createInput(session.ID), false)
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	got, err := svc.SetBookingStatus(ctx, b.ID, model.StatusCancelled)
	if err != nil {
		t.Fatalf("SetBookingStatus: %v", err)
	}
	if got.Status != model.StatusCancelled {
		t.Fatalf("status = %q, want CANCELLED", got.Status)
	}
	if got.ConfirmationToken != nil || got.ConfirmationSentAt != nil {
		t.Fatal("cancellation must clear the confirmation token and sent-at")
	}
	if avail := *store.sessions[session.ID].AvailableSpots; avail != 2 {
		t.Fatalf("available = %d, want 2", avail)
	}
	if len(notifier.cancellations) != 1 {
		t.Fatalf("cancellation events = %d, want 1", len(notifier.cancellations))
	}

	// The freed seat is bookable again.
	if _, err := svc.CreateBooking(ctx, createInput(session.ID), false); err != nil {
		t.Fatalf("re-book after cancel: %v", err)
	}
}

func TestSetBookingStatusRules(t *testing.T) {
	svc, store, notifier, session := newBookingFixture(t, 3)
	ctx := context.Background()

	cancelled := store.addBooking(session.ID, model.StatusCancelled)
	if _, err := svc.SetBookingStatus(ctx, cancelled.ID, model.StatusConfirmed); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("revive cancelled: err = %v, want ErrInvalidTransition", err)
	}

	confirmed := store.addBooking(session.ID, model.StatusConfirmed)
	if _, err := svc.SetBookingStatus(ctx, confirmed.ID, model.StatusPending); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("demote confirmed: err = %v, want ErrInvalidTransition", err)
	}

	if _, err := svc.SetBookingStatus(ctx, confirmed.ID, "DONE"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("unknown status: err = %v, want ErrInvalidStatus", err)
	}

	// Same status again: no-op, no event, no ledger movement.
	before := *store.sessions[session.ID].AvailableSpots
	if _, err := svc.SetBookingStatus(ctx, confirmed.ID, model.StatusConfirmed); err != nil {
		t.Fatalf("same-status set: %v", err)
	}
	if got := *store.sessions[session.ID].AvailableSpots; got != before {
		t.Fatalf("ledger moved on a no-op: %d -> %d", before, got)
	}
	if len(notifier.cancellations) != 0 {
		t.Fatal("no cancellation event expected")
	}
}

func TestSetBookingSessionMovesSeat(t *testing.T) {
	svc, store, _, session := newBookingFixture(t, 2)
	ctx := context.Background()
	course := store.courses[session.CourseID]
	other := store.addSession(course.ID, testStart.Add(24*time.Hour), 1)

	b, err := svc.CreateBooking(ctx, createInput(session.ID), false)
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	moved, err := svc.SetBookingSession(ctx, b.ID, other.ID)
	if err != nil {
		t.Fatalf("SetBookingSession: %v", err)
	}
	if moved.SessionID != other.ID {
		t.Fatalf("session_id = %d, want %d", moved.SessionID, other.ID)
	}
	if got := *store.sessions[session.ID].AvailableSpots; got != 2 {
		t.Fatalf("old session available = %d, want 2", got)
	}
	if got := *store.sessions[other.ID].AvailableSpots; got != 0 {
		t.Fatalf("new session available = %d, want 0", got)
	}
}

func TestSetBookingSessionTargetFull(t *testing.T) {
	svc, store, _, session := newBookingFixture(t, 2)
	ctx := context.Background()
	course := store.courses[session.CourseID]
	full := store.addSession(course.ID, testStart.Add(24*time.Hour), 1)
	store.addBooking(full.ID, model.StatusConfirmed) // fills the target

	b, err := svc.CreateBooking(ctx, createInput(session.ID), false)
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	_, err = svc.SetBookingSession(ctx, b.ID, full.ID)
	if !errors.Is(err, ErrNoAvailableSpots) {
		t.Fatalf("err = %v, want ErrNoAvailableSpots", err)
	}
	// The whole move rolls back: the seat on the old session stays
	// claimed.
	if got := *store.sessions[session.ID].AvailableSpots; got != 1 {
		t.Fatalf("old session available = %d, want 1", got)
	}
	if store.bookings[b.ID].SessionID != session.ID {
		t.Fatal("booking moved despite the failed reservation")
	}
}

func TestDeleteBookingReleasesSeat(t *testing.T) {
	svc, store, _, session := newBookingFixture(t, 2)
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, createInput(session.ID), false)
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if err := svc.DeleteBooking(ctx, b.ID); err != nil {
		t.Fatalf("DeleteBooking: %v", err)
	}
	if got := *store.sessions[session.ID].AvailableSpots; got != 2 {
		t.Fatalf("available = %d, want 2", got)
	}
	if _, ok := store.bookings[b.ID]; ok {
		t.Fatal("booking row still present")
	}

	// Deleting a cancelled booking must not release anything.
	cancelled := store.addBooking(session.ID, model.StatusCancelled)
	if err := svc.DeleteBooking(ctx, cancelled.ID); err != nil {
		t.Fatalf("delete cancelled: %v", err)
	}
	if got := *store.sessions[session.ID].AvailableSpots; got != 2 {
		t.Fatalf("available = %d, want 2 after deleting a cancelled booking", got)
	}
}

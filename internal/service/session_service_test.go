package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/surf-school-booking/internal/model"
)

func newSessionFixture(t *testing.T) (*SessionService, *memStore, *memNotifier) {
	t.Helper()
	store := newMemStore()
	notifier := &memNotifier{}
	svc := NewSessionService(store, notifier)
	svc.now = func() time.Time { return testStart.Add(-72 * time.Hour) }
	return svc, store, notifier
}

func TestCreateSessionDerivesEndTime(t *testing.T) {
	svc, store, _ := newSessionFixture(t)
	course := store.addCourse("Intermediate Surf", 90)

	s, err := svc.CreateSession(context.Background(), CreateSessionInput{
		CourseID: course.ID,
		StartsAt: testStart,
		Capacity: 8,
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if want := testStart.Add(90 * time.Minute); !s.EndsAt.Equal(want) {
		t.Fatalf("ends_at = %v, want %v", s.EndsAt, want)
	}
	if s.AvailableSpots == nil || *s.AvailableSpots != 8 {
		t.Fatalf("available = %v, want 8", s.AvailableSpots)
	}
	if _, ok := store.sessions[s.ID]; !ok {
		t.Fatal("session not persisted")
	}
}

func TestCreateSessionValidation(t *testing.T) {
	svc, store, _ := newSessionFixture(t)
	course := store.addCourse("Beginner Surf", 60)

	if _, err := svc.CreateSession(context.Background(), CreateSessionInput{CourseID: course.ID, StartsAt: testStart, Capacity: 0}); !errors.Is(err, ErrInvalidCapacity) {
		t.Fatalf("zero capacity: err = %v, want ErrInvalidCapacity", err)
	}
	if _, err := svc.CreateSession(context.Background(), CreateSessionInput{CourseID: 999, StartsAt: testStart, Capacity: 5}); !errors.Is(err, ErrCourseNotFound) {
		t.Fatalf("unknown course: err = %v, want ErrCourseNotFound", err)
	}
}

func TestSetSessionCapacity(t *testing.T) {
	svc, store, _ := newSessionFixture(t)
	course := store.addCourse("Beginner Surf", 60)
	session := store.addSession(course.ID, testStart, 10)
	store.addBooking(session.ID, model.StatusConfirmed)
	store.addBooking(session.ID, model.StatusPending) // 2 booked, 8 free

	s, err := svc.SetSessionCapacity(context.Background(), session.ID, 4)
	if err != nil {
		t.Fatalf("SetSessionCapacity: %v", err)
	}
	if s.Capacity != 4 || *s.AvailableSpots != 2 {
		t.Fatalf("capacity=%d available=%d, want 4/2", s.Capacity, *s.AvailableSpots)
	}

	if _, err := svc.SetSessionCapacity(context.Background(), session.ID, 1); !errors.Is(err, ErrCapacityBelowBooked) {
		t.Fatalf("err = %v, want ErrCapacityBelowBooked", err)
	}
}

func TestCancelSessionCascades(t *testing.T) {
	svc, store, notifier := newSessionFixture(t)
	course := store.addCourse("Beginner Surf", 60)
	session := store.addSession(course.ID, testStart, 5)
	pending := store.addBooking(session.ID, model.StatusPending)
	confirmed := store.addBooking(session.ID, model.StatusConfirmed)
	already := store.addBooking(session.ID, model.StatusCancelled)

	s, err := svc.CancelSession(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("CancelSession: %v", err)
	}
	if !s.IsCancelled {
		t.Fatal("session not flagged cancelled")
	}
	for _, id := range []uint64{pending.ID, confirmed.ID, already.ID} {
		if got := store.bookings[id].Status; got != model.StatusCancelled {
			t.Fatalf("booking %d status = %q, want CANCELLED", id, got)
		}
	}
	// Both active bookings released their seats.
	if got := *store.sessions[session.ID].AvailableSpots; got != 5 {
		t.Fatalf("available = %d, want 5", got)
	}
	// One mail per cascaded booking; the already-cancelled one gets
	// nothing.
	if len(notifier.cancellations) != 2 {
		t.Fatalf("cancellation events = %d, want 2", len(notifier.cancellations))
	}

	// Cancelling again is a no-op.
	if _, err := svc.CancelSession(context.Background(), session.ID); err != nil {
		t.Fatalf("second cancel: %v", err)
	}
	if len(notifier.cancellations) != 2 {
		t.Fatal("second cancel queued more mails")
	}
}

func TestPurgeFinishedSessions(t *testing.T) {
	svc, store, _ := newSessionFixture(t)
	course := store.addCourse("Beginner Surf", 60)
	past := store.addSession(course.ID, testStart.Add(-48*time.Hour), 5)
	store.addBooking(past.ID, model.StatusConfirmed)
	future := store.addSession(course.ID, testStart.Add(48*time.Hour), 5)

	n, err := svc.PurgeFinishedSessions(context.Background(), testStart)
	if err != nil {
		t.Fatalf("PurgeFinishedSessions: %v", err)
	}
	if n != 1 {
		t.Fatalf("purged = %d, want 1", n)
	}
	if _, ok := store.sessions[past.ID]; ok {
		t.Fatal("past session still present")
	}
	if _, ok := store.sessions[future.ID]; !ok {
		t.Fatal("future session was purged")
	}
	if len(store.bookings) != 0 {
		t.Fatal("bookings of the purged session still present")
	}
}

package service

import (
	"errors"
	"testing"

	"github.com/iliyamo/surf-school-booking/internal/model"
)

func sessionWith(capacity, available int) *model.Session {
	return &model.Session{Capacity: capacity, AvailableSpots: &available}
}

func TestReserveSeat(t *testing.T) {
	s := sessionWith(2, 2)
	if err := ReserveSeat(s); err != nil {
		t.Fatalf("first reserve: %v", err)
	}
	if err := ReserveSeat(s); err != nil {
		t.Fatalf("second reserve: %v", err)
	}
	if *s.AvailableSpots != 0 {
		t.Fatalf("available = %d, want 0", *s.AvailableSpots)
	}
	if err := ReserveSeat(s); !errors.Is(err, ErrNoAvailableSpots) {
		t.Fatalf("reserve on full session: err = %v, want ErrNoAvailableSpots", err)
	}
	if *s.AvailableSpots != 0 {
		t.Fatalf("failed reserve mutated the session: available = %d", *s.AvailableSpots)
	}
}

func TestReserveSeatCancelledSession(t *testing.T) {
	s := sessionWith(5, 5)
	s.IsCancelled = true
	if err := ReserveSeat(s); !errors.Is(err, ErrSessionCancelled) {
		t.Fatalf("err = %v, want ErrSessionCancelled", err)
	}
}

func TestReserveSeatUninitializedLedger(t *testing.T) {
	s := &model.Session{Capacity: 5}
	if err := ReserveSeat(s); !errors.Is(err, ErrSpotsNotInitialized) {
		t.Fatalf("err = %v, want ErrSpotsNotInitialized", err)
	}
}

func TestReleaseSeat(t *testing.T) {
	s := sessionWith(3, 1)
	if err := ReleaseSeat(s); err != nil {
		t.Fatalf("release: %v", err)
	}
	if *s.AvailableSpots != 2 {
		t.Fatalf("available = %d, want 2", *s.AvailableSpots)
	}
}

func TestReleaseSeatAboveCapacity(t *testing.T) {
	s := sessionWith(3, 3)
	if err := ReleaseSeat(s); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("err = %v, want ErrCapacityExceeded", err)
	}
	if *s.AvailableSpots != 3 {
		t.Fatalf("failed release mutated the session: available = %d", *s.AvailableSpots)
	}
}

func TestReleaseSeatZeroCapacity(t *testing.T) {
	// An initialized ledger on a zero-capacity session must not let
	// the available count grow past capacity.
	s := sessionWith(0, 0)
	if err := ReleaseSeat(s); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("err = %v, want ErrCapacityExceeded", err)
	}
	if *s.AvailableSpots != 0 {
		t.Fatalf("failed release mutated the session: available = %d", *s.AvailableSpots)
	}
}

func TestReleaseSeatOnCancelledSession(t *testing.T) {
	// Cascade cancellation releases seats on the session being
	// cancelled, so the flag must not block releases.
	s := sessionWith(3, 1)
	s.IsCancelled = true
	if err := ReleaseSeat(s); err != nil {
		t.Fatalf("release on cancelled session: %v", err)
	}
}

func TestSetCapacityPreservesBookedSeats(t *testing.T) {
	s := sessionWith(10, 4) // 6 booked
	if err := SetCapacity(s, 8); err != nil {
		t.Fatalf("shrink to 8: %v", err)
	}
	if s.Capacity != 8 || *s.AvailableSpots != 2 {
		t.Fatalf("capacity=%d available=%d, want 8/2", s.Capacity, *s.AvailableSpots)
	}

	if err := SetCapacity(s, 20); err != nil {
		t.Fatalf("grow to 20: %v", err)
	}
	if s.Capacity != 20 || *s.AvailableSpots != 14 {
		t.Fatalf("capacity=%d available=%d, want 20/14", s.Capacity, *s.AvailableSpots)
	}
}

func TestSetCapacityBelowBooked(t *testing.T) {
	s := sessionWith(10, 4) // 6 booked
	if err := SetCapacity(s, 5); !errors.Is(err, ErrCapacityBelowBooked) {
		t.Fatalf("err = %v, want ErrCapacityBelowBooked", err)
	}
	if s.Capacity != 10 || *s.AvailableSpots != 4 {
		t.Fatalf("failed resize mutated the session: capacity=%d available=%d", s.Capacity, *s.AvailableSpots)
	}
}

func TestSetCapacityRejectsNonPositive(t *testing.T) {
	s := sessionWith(10, 10)
	for _, n := range []int{0, -1} {
		if err := SetCapacity(s, n); !errors.Is(err, ErrInvalidCapacity) {
			t.Fatalf("SetCapacity(%d): err = %v, want ErrInvalidCapacity", n, err)
		}
	}
}

func TestSetCapacityInitializesLedger(t *testing.T) {
	s := &model.Session{}
	if err := SetCapacity(s, 6); err != nil {
		t.Fatalf("SetCapacity: %v", err)
	}
	if s.AvailableSpots == nil || *s.AvailableSpots != 6 {
		t.Fatalf("available = %v, want 6", s.AvailableSpots)
	}
}

package service

import (
	"context"
	"time"

	"github.com/iliyamo/surf-school-booking/internal/model"
	"github.com/iliyamo/surf-school-booking/internal/queue"
)

// memStore is an in-memory Store with real transaction semantics:
// each InTx works on a deep copy and the copy replaces the live state
// only when fn succeeds, so rollback behavior is observable in tests.
type memStore struct {
	courses  map[uint64]*model.Course
	sessions map[uint64]*model.Session
	bookings map[uint64]*model.Booking
	nextID   uint64

	saveSeatsErr     error            // injected into SaveSessionSeats
	updateBookingErr map[uint64]error // injected into UpdateBooking by id
}

func newMemStore() *memStore {
	return &memStore{
		courses:          map[uint64]*model.Course{},
		sessions:         map[uint64]*model.Session{},
		bookings:         map[uint64]*model.Booking{},
		updateBookingErr: map[uint64]error{},
	}
}

func (m *memStore) id() uint64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) addCourse(title string, durationMin int) *model.Course {
	c := &model.Course{ID: m.id(), Title: title, Level: "beginner", TargetAudience: model.AudienceBoth, Duration: durationMin}
	m.courses[c.ID] = c
	return c
}

func (m *memStore) addSession(courseID uint64, startsAt time.Time, capacity int) *model.Session {
	available := capacity
	s := &model.Session{
		ID:             m.id(),
		CourseID:       courseID,
		StartsAt:       startsAt,
		EndsAt:         startsAt.Add(time.Hour),
		Capacity:       capacity,
		AvailableSpots: &available,
		Version:        1,
	}
	m.sessions[s.ID] = s
	return s
}

func (m *memStore) addBooking(sessionID uint64, status model.BookingStatus) *model.Booking {
	b := &model.Booking{
		ID:        m.id(),
		FirstName: "Kai",
		LastName:  "Rider",
		Email:     "kai@example.com",
		Age:       25,
		Status:    status,
		SessionID: sessionID,
	}
	if status.HoldsSeat() {
		sess := m.sessions[sessionID]
		*sess.AvailableSpots--
	}
	m.bookings[b.ID] = b
	return b
}

func copySession(s *model.Session) *model.Session {
	cp := *s
	if s.AvailableSpots != nil {
		n := *s.AvailableSpots
		cp.AvailableSpots = &n
	}
	return &cp
}

func copyBooking(b *model.Booking) *model.Booking {
	cp := *b
	copyU64 := func(p *uint64) *uint64 {
		if p == nil {
			return nil
		}
		n := *p
		return &n
	}
	copyStr := func(p *string) *string {
		if p == nil {
			return nil
		}
		s := *p
		return &s
	}
	copyTime := func(p *time.Time) *time.Time {
		if p == nil {
			return nil
		}
		t := *p
		return &t
	}
	cp.UserID = copyU64(b.UserID)
	cp.ConfirmationToken = copyStr(b.ConfirmationToken)
	cp.ConfirmationSentAt = copyTime(b.ConfirmationSentAt)
	cp.ConfirmedAt = copyTime(b.ConfirmedAt)
	cp.ReminderSentAt = copyTime(b.ReminderSentAt)
	return &cp
}

func (m *memStore) InTx(ctx context.Context, fn func(Tx) error) error {
	tx := &memTx{
		store:    m,
		sessions: map[uint64]*model.Session{},
		bookings: map[uint64]*model.Booking{},
	}
	for id, s := range m.sessions {
		tx.sessions[id] = copySession(s)
	}
	for id, b := range m.bookings {
		tx.bookings[id] = copyBooking(b)
	}
	if err := fn(tx); err != nil {
		return err
	}
	m.sessions = tx.sessions
	m.bookings = tx.bookings
	return nil
}

type memTx struct {
	store    *memStore
	sessions map[uint64]*model.Session
	bookings map[uint64]*model.Booking
}

func (t *memTx) Course(ctx context.Context, id uint64) (*model.Course, error) {
	c, ok := t.store.courses[id]
	if !ok {
		return nil, ErrCourseNotFound
	}
	return c, nil
}

func (t *memTx) Session(ctx context.Context, id uint64) (*model.Session, error) {
	s, ok := t.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (t *memTx) InsertSession(ctx context.Context, s *model.Session) error {
	s.ID = t.store.id()
	s.Version = 1
	t.sessions[s.ID] = s
	return nil
}

func (t *memTx) SaveSessionSeats(ctx context.Context, s *model.Session) error {
	if err := t.store.saveSeatsErr; err != nil {
		return err
	}
	if _, ok := t.sessions[s.ID]; !ok {
		return ErrSessionNotFound
	}
	s.Version++
	t.sessions[s.ID] = s
	return nil
}

func (t *memTx) UpdateSessionCapacity(ctx context.Context, s *model.Session) error {
	return t.SaveSessionSeats(ctx, s)
}

func (t *memTx) SessionsEndedBefore(ctx context.Context, reference time.Time) ([]model.Session, error) {
	var out []model.Session
	for _, s := range t.sessions {
		if !s.ReferenceEnd().After(reference) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (t *memTx) DeleteSession(ctx context.Context, id uint64) error {
	delete(t.sessions, id)
	for bid, b := range t.bookings {
		if b.SessionID == id {
			delete(t.bookings, bid)
		}
	}
	return nil
}

func (t *memTx) Booking(ctx context.Context, id uint64) (*model.Booking, error) {
	b, ok := t.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	return b, nil
}

func (t *memTx) BookingByToken(ctx context.Context, token string) (*model.Booking, error) {
	for _, b := range t.bookings {
		if b.ConfirmationToken != nil && *b.ConfirmationToken == token {
			return b, nil
		}
	}
	return nil, ErrBookingNotFound
}

func (t *memTx) InsertBooking(ctx context.Context, b *model.Booking) error {
	b.ID = t.store.id()
	t.bookings[b.ID] = b
	return nil
}

func (t *memTx) UpdateBooking(ctx context.Context, b *model.Booking) error {
	if err := t.store.updateBookingErr[b.ID]; err != nil {
		return err
	}
	if _, ok := t.bookings[b.ID]; !ok {
		return ErrBookingNotFound
	}
	t.bookings[b.ID] = b
	return nil
}

func (t *memTx) DeleteBooking(ctx context.Context, id uint64) error {
	delete(t.bookings, id)
	return nil
}

func (t *memTx) ActiveBookingsBySession(ctx context.Context, sessionID uint64) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range t.bookings {
		if b.SessionID == sessionID && b.Status != model.StatusCancelled {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (t *memTx) PendingStartingBetween(ctx context.Context, from, to time.Time) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range t.bookings {
		if b.Status != model.StatusPending {
			continue
		}
		s, ok := t.sessions[b.SessionID]
		if !ok {
			continue
		}
		if !s.StartsAt.Before(from) && !s.StartsAt.After(to) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (t *memTx) RemindableStartingBetween(ctx context.Context, from, to time.Time) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range t.bookings {
		if !b.Status.HoldsSeat() || b.ReminderSentAt != nil {
			continue
		}
		s, ok := t.sessions[b.SessionID]
		if !ok {
			continue
		}
		if !s.StartsAt.Before(from) && s.StartsAt.Before(to) {
			out = append(out, *b)
		}
	}
	return out, nil
}

// memNotifier records the events the core queues after commit.
type memNotifier struct {
	confirmations []queue.BookingConfirmationEvent
	cancellations []queue.BookingCancelledEvent
	reminders     []queue.BookingReminderEvent
}

func (n *memNotifier) ConfirmationRequested(ctx context.Context, ev queue.BookingConfirmationEvent) error {
	n.confirmations = append(n.confirmations, ev)
	return nil
}

func (n *memNotifier) BookingCancelled(ctx context.Context, ev queue.BookingCancelledEvent) error {
	n.cancellations = append(n.cancellations, ev)
	return nil
}

func (n *memNotifier) BookingReminder(ctx context.Context, ev queue.BookingReminderEvent) error {
	n.reminders = append(n.reminders, ev)
	return nil
}

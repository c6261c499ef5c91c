package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/surf-school-booking/internal/model"
	"github.com/iliyamo/surf-school-booking/internal/service"
)

// Store implements service.Store on MySQL.  Every unit of work runs
// inside one database transaction; session writes carry an optimistic
// version check so two requests racing for the last seat cannot both
// commit.
type Store struct {
	db *sql.DB
}

// NewStore returns a Store bound to the given database handle.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// InTx runs fn inside a transaction.  The transaction commits only
// when fn returns nil; any error (or panic unwinding) rolls it back.
func (s *Store) InTx(ctx context.Context, fn func(service.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&storeTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// storeTx implements service.Tx over a single *sql.Tx.
type storeTx struct {
	tx *sql.Tx
}

const courseCols = `id, title, level, target_audience, duration_minutes, base_price, is_private, created_at, updated_at`

func (t *storeTx) Course(ctx context.Context, id uint64) (*model.Course, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT `+courseCols+` FROM courses WHERE id = ?`, id)
	c, err := scanCourse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, service.ErrCourseNotFound
	}
	return c, err
}

const sessionCols = `id, course_id, starts_at, ends_at, capacity, available_spots, is_cancelled, version, created_at, updated_at`

func (t *storeTx) Session(ctx context.Context, id uint64) (*model.Session, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT `+sessionCols+` FROM sessions WHERE id = ?`, id)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, service.ErrSessionNotFound
	}
	return s, err
}

func (t *storeTx) InsertSession(ctx context.Context, s *model.Session) error {
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO sessions (course_id, starts_at, ends_at, capacity, available_spots, is_cancelled, version)
		 VALUES (?, ?, ?, ?, ?, ?, 1)`,
		s.CourseID, s.StartsAt, nullTime(s.EndsAt), s.Capacity, nullInt(s.AvailableSpots), s.IsCancelled)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	s.Version = 1
	return nil
}

// SaveSessionSeats persists the seat ledger and cancellation flag.
// The WHERE clause compares the version the caller read; losing the
// race yields ErrVersionConflict and the caller must re-read.
func (t *storeTx) SaveSessionSeats(ctx context.Context, s *model.Session) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE sessions SET available_spots = ?, is_cancelled = ?, updated_at = NOW(), version = version + 1
		 WHERE id = ? AND version = ?`,
		nullInt(s.AvailableSpots), s.IsCancelled, s.ID, s.Version)
	if err != nil {
		return err
	}
	return t.bumpVersion(res, s)
}

// UpdateSessionCapacity persists a capacity change together with the
// recomputed available counter, under the same version check.
func (t *storeTx) UpdateSessionCapacity(ctx context.Context, s *model.Session) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE sessions SET capacity = ?, available_spots = ?, updated_at = NOW(), version = version + 1
		 WHERE id = ? AND version = ?`,
		s.Capacity, nullInt(s.AvailableSpots), s.ID, s.Version)
	if err != nil {
		return err
	}
	return t.bumpVersion(res, s)
}

func (t *storeTx) bumpVersion(res sql.Result, s *model.Session) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return service.ErrVersionConflict
	}
	s.Version++
	return nil
}

func (t *storeTx) SessionsEndedBefore(ctx context.Context, reference time.Time) ([]model.Session, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT `+sessionCols+` FROM sessions WHERE COALESCE(ends_at, starts_at) <= ?`, reference)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (t *storeTx) DeleteSession(ctx context.Context, id uint64) error {
	// Bookings go with the session via ON DELETE CASCADE.
	_, err := t.tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

const bookingCols = `id, first_name, last_name, email, phone, age, status, session_id, user_id,
	confirmation_token, confirmation_sent_at, confirmed_at, reminder_sent_at, created_at, updated_at`

func (t *storeTx) Booking(ctx context.Context, id uint64) (*model.Booking, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT `+bookingCols+` FROM bookings WHERE id = ?`, id)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, service.ErrBookingNotFound
	}
	return b, err
}

func (t *storeTx) BookingByToken(ctx context.Context, token string) (*model.Booking, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT `+bookingCols+` FROM bookings WHERE confirmation_token = ?`, token)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, service.ErrBookingNotFound
	}
	return b, err
}

func (t *storeTx) InsertBooking(ctx context.Context, b *model.Booking) error {
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO bookings (first_name, last_name, email, phone, age, status, session_id, user_id,
		   confirmation_token, confirmation_sent_at, confirmed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.FirstName, b.LastName, b.Email, b.Phone, b.Age, string(b.Status), b.SessionID, b.UserID,
		b.ConfirmationToken, b.ConfirmationSentAt, b.ConfirmedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

func (t *storeTx) UpdateBooking(ctx context.Context, b *model.Booking) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE bookings SET first_name = ?, last_name = ?, email = ?, phone = ?, age = ?, status = ?,
		   session_id = ?, confirmation_token = ?, confirmation_sent_at = ?, confirmed_at = ?,
		   reminder_sent_at = ?, updated_at = NOW()
		 WHERE id = ?`,
		b.FirstName, b.LastName, b.Email, b.Phone, b.Age, string(b.Status),
		b.SessionID, b.ConfirmationToken, b.ConfirmationSentAt, b.ConfirmedAt,
		b.ReminderSentAt, b.ID)
	return err
}

func (t *storeTx) DeleteBooking(ctx context.Context, id uint64) error {
	_, err := t.tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	return err
}

func (t *storeTx) ActiveBookingsBySession(ctx context.Context, sessionID uint64) ([]model.Booking, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT `+bookingCols+` FROM bookings WHERE session_id = ? AND status <> ?`,
		sessionID, string(model.StatusCancelled))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

func (t *storeTx) PendingStartingBetween(ctx context.Context, from, to time.Time) ([]model.Booking, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT `+prefixedBookingCols+`
		 FROM bookings b
		 JOIN sessions s ON s.id = b.session_id
		 WHERE b.status = ? AND s.starts_at >= ? AND s.starts_at <= ?`,
		string(model.StatusPending), from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

func (t *storeTx) RemindableStartingBetween(ctx context.Context, from, to time.Time) ([]model.Booking, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT `+prefixedBookingCols+`
		 FROM bookings b
		 JOIN sessions s ON s.id = b.session_id
		 WHERE b.status IN (?, ?) AND b.reminder_sent_at IS NULL
		   AND s.starts_at >= ? AND s.starts_at < ?`,
		string(model.StatusPending), string(model.StatusConfirmed), from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

const prefixedBookingCols = `b.id, b.first_name, b.last_name, b.email, b.phone, b.age, b.status,
	b.session_id, b.user_id, b.confirmation_token, b.confirmation_sent_at, b.confirmed_at,
	b.reminder_sent_at, b.created_at, b.updated_at`

func nullInt(p *int) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}

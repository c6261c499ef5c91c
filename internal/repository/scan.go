package repository

import (
	"database/sql"

	"github.com/iliyamo/surf-school-booking/internal/model"
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows so the scan
// helpers serve single-row and multi-row queries alike.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCourse(rs rowScanner) (*model.Course, error) {
	var c model.Course
	err := rs.Scan(&c.ID, &c.Title, &c.Level, &c.TargetAudience, &c.Duration,
		&c.BasePrice, &c.IsPrivate, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanSession(rs rowScanner) (*model.Session, error) {
	var (
		s     model.Session
		ends  sql.NullTime
		spots sql.NullInt64
	)
	err := rs.Scan(&s.ID, &s.CourseID, &s.StartsAt, &ends, &s.Capacity, &spots,
		&s.IsCancelled, &s.Version, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if ends.Valid {
		s.EndsAt = ends.Time
	}
	if spots.Valid {
		n := int(spots.Int64)
		s.AvailableSpots = &n
	}
	return &s, nil
}

func scanBooking(rs rowScanner) (*model.Booking, error) {
	var (
		b      model.Booking
		userID sql.NullInt64
		token  sql.NullString
		sent   sql.NullTime
		conf   sql.NullTime
		remind sql.NullTime
	)
	err := rs.Scan(&b.ID, &b.FirstName, &b.LastName, &b.Email, &b.Phone, &b.Age,
		&b.Status, &b.SessionID, &userID, &token, &sent, &conf, &remind,
		&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		id := uint64(userID.Int64)
		b.UserID = &id
	}
	if token.Valid {
		tok := token.String
		b.ConfirmationToken = &tok
	}
	if sent.Valid {
		t := sent.Time
		b.ConfirmationSentAt = &t
	}
	if conf.Valid {
		t := conf.Time
		b.ConfirmedAt = &t
	}
	if remind.Valid {
		t := remind.Time
		b.ReminderSentAt = &t
	}
	return &b, nil
}

func collectBookings(rows *sql.Rows) ([]model.Booking, error) {
	var out []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

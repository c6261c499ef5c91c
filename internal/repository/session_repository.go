package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/surf-school-booking/internal/service"
)

// SessionRepo serves the read side of the session catalogue for the
// HTTP layer.  Seat mutations never go through here; they run inside
// Store transactions.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo returns a SessionRepo bound to the given database.
func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

// SessionDetail is a session joined with its course, shaped for API
// responses.
type SessionDetail struct {
	ID             uint64  `json:"id"`
	CourseID       uint64  `json:"course_id"`
	CourseTitle    string  `json:"course_title"`
	Level          string  `json:"level"`
	StartsAt       string  `json:"starts_at"`
	EndsAt         *string `json:"ends_at,omitempty"`
	Capacity       int     `json:"capacity"`
	AvailableSpots *int    `json:"available_spots"`
	IsCancelled    bool    `json:"is_cancelled"`
}

const sessionDetailQuery = `SELECT s.id, s.course_id, c.title, c.level, s.starts_at, s.ends_at,
	   s.capacity, s.available_spots, s.is_cancelled
	FROM sessions s
	JOIN courses c ON c.id = s.course_id`

// ListUpcoming returns sessions starting at or after the given time,
// soonest first.
func (r *SessionRepo) ListUpcoming(ctx context.Context, from time.Time) ([]SessionDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		sessionDetailQuery+` WHERE s.starts_at >= ? ORDER BY s.starts_at`, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SessionDetail
	for rows.Next() {
		d, err := scanSessionDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// GetByID returns one session detail or service.ErrSessionNotFound.
func (r *SessionRepo) GetByID(ctx context.Context, id uint64) (*SessionDetail, error) {
	row := r.db.QueryRowContext(ctx, sessionDetailQuery+` WHERE s.id = ?`, id)
	d, err := scanSessionDetail(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, service.ErrSessionNotFound
	}
	return d, err
}

func scanSessionDetail(rs rowScanner) (*SessionDetail, error) {
	var (
		d      SessionDetail
		starts time.Time
		ends   sql.NullTime
		spots  sql.NullInt64
	)
	err := rs.Scan(&d.ID, &d.CourseID, &d.CourseTitle, &d.Level, &starts, &ends,
		&d.Capacity, &spots, &d.IsCancelled)
	if err != nil {
		return nil, err
	}
	d.StartsAt = starts.UTC().Format(time.RFC3339)
	if ends.Valid {
		iso := ends.Time.UTC().Format(time.RFC3339)
		d.EndsAt = &iso
	}
	if spots.Valid {
		n := int(spots.Int64)
		d.AvailableSpots = &n
	}
	return &d, nil
}

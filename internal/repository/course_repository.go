package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/surf-school-booking/internal/model"
	"github.com/iliyamo/surf-school-booking/internal/service"
)

// CourseRepo provides CRUD operations on the course catalogue.  The
// booking core only reads courses, so these run outside the booking
// transactions on the plain database handle.
type CourseRepo struct {
	db *sql.DB
}

// NewCourseRepo returns a CourseRepo bound to the given database.
func NewCourseRepo(db *sql.DB) *CourseRepo { return &CourseRepo{db: db} }

// List returns all courses ordered by title.
func (r *CourseRepo) List(ctx context.Context) ([]model.Course, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+courseCols+` FROM courses ORDER BY title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// GetByID returns one course or service.ErrCourseNotFound.
func (r *CourseRepo) GetByID(ctx context.Context, id uint64) (*model.Course, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+courseCols+` FROM courses WHERE id = ?`, id)
	c, err := scanCourse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, service.ErrCourseNotFound
	}
	return c, err
}

// Create inserts a course and populates its generated ID.
func (r *CourseRepo) Create(ctx context.Context, c *model.Course) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO courses (title, level, target_audience, duration_minutes, base_price, is_private)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.Title, c.Level, c.TargetAudience, c.Duration, c.BasePrice, c.IsPrivate)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// Update rewrites a course's editable fields.
func (r *CourseRepo) Update(ctx context.Context, c *model.Course) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE courses SET title = ?, level = ?, target_audience = ?, duration_minutes = ?,
		   base_price = ?, is_private = ?, updated_at = NOW()
		 WHERE id = ?`,
		c.Title, c.Level, c.TargetAudience, c.Duration, c.BasePrice, c.IsPrivate, c.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return service.ErrCourseNotFound
	}
	return nil
}

// Delete removes a course.  Courses with scheduled sessions are
// protected by the foreign key and surface ErrConflict.
func (r *CourseRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyErr(err) {
			return ErrConflict
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return service.ErrCourseNotFound
	}
	return nil
}

package model

import "time"

// Audience values accepted for Course.TargetAudience.
const (
	AudienceAdult = "adult"
	AudienceChild = "child"
	AudienceBoth  = "both"
)

// Course describes a lesson offering that sessions are scheduled
// from.  The duration feeds the derived end time of every session of
// the course.  Courses are read-only input to the booking core.
//
// Fields:
//  ID             – primary key identifier.
//  Title          – display title, used in notification emails.
//  Level          – difficulty label (e.g. "beginner").
//  TargetAudience – one of the Audience* constants.
//  Duration       – lesson length in minutes (positive).
//  BasePrice      – price in whole currency units.
//  IsPrivate      – whether the course is a private lesson.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Course struct {
	ID             uint64    // courses.id
	Title          string    // courses.title
	Level          string    // courses.level
	TargetAudience string    // courses.target_audience
	Duration       int       // courses.duration_minutes
	BasePrice      int       // courses.base_price
	IsPrivate      bool      // courses.is_private
	CreatedAt      time.Time // courses.created_at
	UpdatedAt      time.Time // courses.updated_at
}

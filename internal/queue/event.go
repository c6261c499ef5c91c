// Package queue defines the notification payloads exchanged over the
// message broker, the publisher that enqueues them, and the consumer
// that turns them into outbound mail records.
package queue

// Notification kinds carried in the envelope so the consumer can
// decode the right payload.
const (
	KindConfirmation = "booking.confirmation_requested"
	KindCancellation = "booking.cancelled"
	KindReminder     = "booking.reminder"
)

// BookingConfirmationEvent is queued when a pending booking is
// created and the customer must confirm it via the emailed token.
type BookingConfirmationEvent struct {
	EventID      string `json:"event_id"`
	BookingID    uint64 `json:"booking_id"`
	Email        string `json:"email"`
	CourseTitle  string `json:"course_title"`
	SessionStart string `json:"session_start"`
	Token        string `json:"token"`
}

// BookingCancelledEvent is queued whenever a booking transitions to
// cancelled, whether manually, by session cancellation, or by the
// expiry reclamation job.
type BookingCancelledEvent struct {
	EventID      string `json:"event_id"`
	BookingID    uint64 `json:"booking_id"`
	Email        string `json:"email"`
	CourseTitle  string `json:"course_title"`
	SessionStart string `json:"session_start"`
}

// BookingReminderEvent is queued by the reminder dispatch job for
// sessions starting in about 24 hours.  Status selects the mail
// variant; Token is set only for the pending variant so the customer
// can still confirm from the reminder.
type BookingReminderEvent struct {
	EventID      string `json:"event_id"`
	BookingID    uint64 `json:"booking_id"`
	Email        string `json:"email"`
	Status       string `json:"status"`
	CourseTitle  string `json:"course_title"`
	SessionStart string `json:"session_start"`
	Token        string `json:"token,omitempty"`
}

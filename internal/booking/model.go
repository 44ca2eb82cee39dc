package booking

import (
	"errors"
	"time"
)

var ErrInvalidStatus = errors.New("invalid booking status")

// Status is the closed set of booking states.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
)

// ParseStatus maps a status literal onto the closed set; unknown literals
// are a caller error.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return Status(s), nil
	default:
		return "", ErrInvalidStatus
	}
}

// CanTransitionTo reports whether the normal booking flow allows moving from
// s to next. CANCELLED is terminal; administrative overrides bypass this.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCancelled
	default:
		return false
	}
}

// IsActive reports whether the booking counts toward session capacity.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

type Booking struct {
	ID        int       `db:"id" json:"id"`
	UserID    int       `db:"user_id" json:"user_id"`
	SessionID int       `db:"session_id" json:"session_id"`
	Status    Status    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// BookingWithDetails joins a booking with its session and user for staff
// listing endpoints.
type BookingWithDetails struct {
	Booking
	SessionStart time.Time `db:"session_start" json:"session_start"`
	SessionEnd   time.Time `db:"session_end" json:"session_end"`
	CourseName   string    `db:"course_name" json:"course_name"`
	UserEmail    string    `db:"user_email" json:"user_email"`
}

type CreateBookingRequest struct {
	SessionID int  `json:"session_id" binding:"required"`
	UserID    *int `json:"user_id"`
}

package session

import "time"

// DefaultCapacity applies when a create request omits capacity.
const DefaultCapacity = 5

// Session is a schedulable interval owned by a course. Start and end times
// are stored at whole-minute precision with half-open [start, end) semantics.
type Session struct {
	ID        int       `db:"id" json:"id"`
	CourseID  int       `db:"course_id" json:"course_id"`
	StartTime time.Time `db:"start_time" json:"start_time"`
	EndTime   time.Time `db:"end_time" json:"end_time"`
	Capacity  int       `db:"capacity" json:"capacity"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SessionWithAvailability joins a session with its active booking count for
// listing pages.
type SessionWithAvailability struct {
	Session
	ActiveBookings int  `json:"active_bookings"`
	Available      int  `json:"available"`
	IsFull         bool `json:"is_full"`
}

type CreateSessionRequest struct {
	CourseID  int    `json:"course_id" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	Capacity  *int   `json:"capacity"`
}

// UpdateSessionRequest carries a partial update; unset fields keep their
// previous value.
type UpdateSessionRequest struct {
	CourseID  *int    `json:"course_id" validate:"omitempty,gt=0"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
	Capacity  *int    `json:"capacity" validate:"omitempty,gt=0"`
}

package session

import (
	"context"
	"errors"
	"time"

	"slotbook/internal/db"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(database *sqlx.DB) Repository {
	return &repository{db: database}
}

// isExclusionViolation matches the sessions_no_overlap EXCLUDE constraint
// (pq error 23P01), the storage-level backstop for concurrent overlap races.
func isExclusionViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23P01"
}

// isForeignKeyViolation matches pq error 23503, raised when bookings still
// reference the session being deleted.
func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}

func (r *repository) Create(ctx context.Context, courseID int, start, end time.Time, capacity int) (*Session, error) {
	query := `
		INSERT INTO sessions (course_id, start_time, end_time, capacity)
		VALUES ($1, $2, $3, $4)
		RETURNING id, course_id, start_time, end_time, capacity, created_at
	`

	var session Session
	err := r.db.GetContext(ctx, &session, query, courseID, start, end, capacity)
	if err != nil {
		if isExclusionViolation(err) {
			return nil, ErrSessionOverlap
		}
		return nil, err
	}

	return &session, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Session, error) {
	query := `
		SELECT id, course_id, start_time, end_time, capacity, created_at
		FROM sessions
		WHERE id = $1
	`

	var session Session
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}

	return &session, nil
}

func (r *repository) GetAll(ctx context.Context, limit, offset int, sort Sort) ([]Session, error) {
	// sort.OrderBy is built from a whitelist, never from raw input.
	query := `
		SELECT id, course_id, start_time, end_time, capacity, created_at
		FROM sessions
		ORDER BY ` + sort.OrderBy() + `
		LIMIT $1 OFFSET $2
	`

	var sessions []Session
	if err := r.db.SelectContext(ctx, &sessions, query, limit, offset); err != nil {
		return nil, err
	}

	return sessions, nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM sessions`); err != nil {
		return 0, err
	}
	return count, nil
}

// FindOverlapping returns sessions of the course whose half-open range
// intersects [start, end). Touching endpoints do not intersect.
func (r *repository) FindOverlapping(ctx context.Context, courseID int, start, end time.Time) ([]Session, error) {
	query := `
		SELECT id, course_id, start_time, end_time, capacity, created_at
		FROM sessions
		WHERE course_id = $1 AND start_time < $3 AND end_time > $2
	`

	var sessions []Session
	if err := r.db.SelectContext(ctx, &sessions, query, courseID, start, end); err != nil {
		return nil, err
	}

	return sessions, nil
}

func (r *repository) Update(ctx context.Context, s *Session) (*Session, error) {
	query := `
		UPDATE sessions
		SET course_id = $1, start_time = $2, end_time = $3, capacity = $4
		WHERE id = $5
		RETURNING id, course_id, start_time, end_time, capacity, created_at
	`

	var session Session
	err := r.db.GetContext(ctx, &session, query, s.CourseID, s.StartTime, s.EndTime, s.Capacity, s.ID)
	if err != nil {
		if isExclusionViolation(err) {
			return nil, ErrSessionOverlap
		}
		return nil, err
	}

	return &session, nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if isForeignKeyViolation(err) {
		// A booking landed between the service's active-count check and
		// the delete.
		return ErrSessionHasBookings
	}
	return err
}

func (r *repository) ExistsByID(ctx context.Context, id int) (bool, error) {
	return db.Exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM sessions WHERE id = $1)`, id)
}

func (r *repository) ActiveBookingCount(ctx context.Context, sessionID int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM bookings
		WHERE session_id = $1 AND status IN ('PENDING', 'CONFIRMED')
	`

	var count int
	if err := r.db.GetContext(ctx, &count, query, sessionID); err != nil {
		return 0, err
	}

	return count, nil
}

// ActiveBookingCounts is the batch form used by listing pages to avoid one
// count query per row. Sessions without active bookings are absent from the
// result map.
func (r *repository) ActiveBookingCounts(ctx context.Context, sessionIDs []int) (map[int]int, error) {
	counts := make(map[int]int, len(sessionIDs))
	if len(sessionIDs) == 0 {
		return counts, nil
	}

	query := `
		SELECT session_id, COUNT(*) AS count
		FROM bookings
		WHERE session_id = ANY($1) AND status IN ('PENDING', 'CONFIRMED')
		GROUP BY session_id
	`

	rows := []struct {
		SessionID int `db:"session_id"`
		Count     int `db:"count"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(sessionIDs)); err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.SessionID] = row.Count
	}

	return counts, nil
}

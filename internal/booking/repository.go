package booking

import (
	"context"
	"errors"

	"slotbook/internal/db"
	"slotbook/internal/session"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var ErrBookingNotFound = errors.New("booking not found")

// isForeignKeyViolation matches pq error 23503, raised when the referenced
// session row was deleted between the service's existence check and the
// insert.
func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(database *sqlx.DB) Repository {
	return &repository{db: database}
}

func (r *repository) Create(ctx context.Context, userID, sessionID int) (*Booking, error) {
	query := `
		INSERT INTO bookings (user_id, session_id, status)
		VALUES ($1, $2, 'PENDING')
		RETURNING id, user_id, session_id, status, created_at
	`

	var booking Booking
	if err := r.db.GetContext(ctx, &booking, query, userID, sessionID); err != nil {
		if isForeignKeyViolation(err) {
			return nil, session.ErrSessionNotFound
		}
		return nil, err
	}

	return &booking, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Booking, error) {
	query := `
		SELECT id, user_id, session_id, status, created_at
		FROM bookings
		WHERE id = $1
	`

	var booking Booking
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		return nil, err
	}

	return &booking, nil
}

func (r *repository) GetAll(ctx context.Context, limit, offset int) ([]Booking, error) {
	query := `
		SELECT id, user_id, session_id, status, created_at
		FROM bookings
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`

	var bookings []Booking
	if err := r.db.SelectContext(ctx, &bookings, query, limit, offset); err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM bookings`); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) GetByUser(ctx context.Context, userID int) ([]Booking, error) {
	query := `
		SELECT id, user_id, session_id, status, created_at
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	var bookings []Booking
	if err := r.db.SelectContext(ctx, &bookings, query, userID); err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *repository) GetBySession(ctx context.Context, sessionID int) ([]BookingWithDetails, error) {
	query := `
		SELECT
			b.id,
			b.user_id,
			b.session_id,
			b.status,
			b.created_at,
			s.start_time AS session_start,
			s.end_time AS session_end,
			c.name AS course_name,
			u.email AS user_email
		FROM bookings b
		JOIN sessions s ON b.session_id = s.id
		JOIN courses c ON s.course_id = c.id
		JOIN users u ON b.user_id = u.id
		WHERE b.session_id = $1
		ORDER BY b.created_at DESC
	`

	var bookings []BookingWithDetails
	if err := r.db.SelectContext(ctx, &bookings, query, sessionID); err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int, status Status) (*Booking, error) {
	query := `
		UPDATE bookings
		SET status = $1
		WHERE id = $2
		RETURNING id, user_id, session_id, status, created_at
	`

	var booking Booking
	if err := r.db.GetContext(ctx, &booking, query, status, id); err != nil {
		return nil, err
	}

	return &booking, nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

func (r *repository) CountActiveForSession(ctx context.Context, sessionID int) (int, error) {
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

func (r *repository) UserHasActiveForSession(ctx context.Context, userID, sessionID int) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM bookings
			WHERE user_id = $1 AND session_id = $2 AND status IN ('PENDING', 'CONFIRMED')
		)
	`

	return db.Exists(ctx, r.db, query, userID, sessionID)
}

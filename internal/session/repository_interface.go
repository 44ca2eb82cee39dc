package session

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, courseID int, start, end time.Time, capacity int) (*Session, error)
	GetByID(ctx context.Context, id int) (*Session, error)
	GetAll(ctx context.Context, limit, offset int, sort Sort) ([]Session, error)
	Count(ctx context.Context) (int, error)
	FindOverlapping(ctx context.Context, courseID int, start, end time.Time) ([]Session, error)
	Update(ctx context.Context, s *Session) (*Session, error)
	Delete(ctx context.Context, id int) error
	ExistsByID(ctx context.Context, id int) (bool, error)
	ActiveBookingCount(ctx context.Context, sessionID int) (int, error)
	ActiveBookingCounts(ctx context.Context, sessionIDs []int) (map[int]int, error)
}

package booking

import "context"

type Repository interface {
	Create(ctx context.Context, userID, sessionID int) (*Booking, error)
	GetByID(ctx context.Context, id int) (*Booking, error)
	GetAll(ctx context.Context, limit, offset int) ([]Booking, error)
	Count(ctx context.Context) (int, error)
	GetByUser(ctx context.Context, userID int) ([]Booking, error)
	GetBySession(ctx context.Context, sessionID int) ([]BookingWithDetails, error)
	UpdateStatus(ctx context.Context, id int, status Status) (*Booking, error)
	Delete(ctx context.Context, id int) error
	CountActiveForSession(ctx context.Context, sessionID int) (int, error)
	UserHasActiveForSession(ctx context.Context, userID, sessionID int) (bool, error)
}

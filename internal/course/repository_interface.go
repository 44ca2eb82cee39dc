package course

import "context"

type Repository interface {
	Create(ctx context.Context, name, description string) (*Course, error)
	GetByID(ctx context.Context, id int) (*Course, error)
	GetAll(ctx context.Context, limit, offset int) ([]Course, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, c *Course) (*Course, error)
	Delete(ctx context.Context, id int) error
	ExistsByID(ctx context.Context, id int) (bool, error)
	HasSessions(ctx context.Context, id int) (bool, error)
}

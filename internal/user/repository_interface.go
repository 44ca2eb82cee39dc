package user

import (
	"context"

	"slotbook/internal/auth"
)

type Repository interface {
	Create(ctx context.Context, email, fullName, passwordHash string, role auth.Role) (*User, error)
	FindByID(ctx context.Context, id int) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	GetAll(ctx context.Context, limit, offset int) ([]User, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, u *User) (*User, error)
	Delete(ctx context.Context, id int) error
}

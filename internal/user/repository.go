package user

import (
	"context"

	"slotbook/internal/auth"
	"slotbook/internal/db"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(database *sqlx.DB) Repository {
	return &repository{db: database}
}

func (r *repository) Create(ctx context.Context, email, fullName, passwordHash string, role auth.Role) (*User, error) {
	query := `
		INSERT INTO users (email, full_name, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, full_name, password_hash, role, created_at
	`

	var user User
	if err := r.db.GetContext(ctx, &user, query, email, fullName, passwordHash, role); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *repository) FindByID(ctx context.Context, id int) (*User, error) {
	query := `
		SELECT id, email, full_name, password_hash, role, created_at
		FROM users
		WHERE id = $1
	`

	var user User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, email, full_name, password_hash, role, created_at
		FROM users
		WHERE email = $1
	`

	var user User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *repository) EmailExists(ctx context.Context, email string) (bool, error) {
	return db.Exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
}

func (r *repository) GetAll(ctx context.Context, limit, offset int) ([]User, error) {
	query := `
		SELECT id, email, full_name, password_hash, role, created_at
		FROM users
		ORDER BY id ASC
		LIMIT $1 OFFSET $2
	`

	var users []User
	if err := r.db.SelectContext(ctx, &users, query, limit, offset); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) Update(ctx context.Context, u *User) (*User, error) {
	query := `
		UPDATE users
		SET email = $1, full_name = $2, password_hash = $3, role = $4
		WHERE id = $5
		RETURNING id, email, full_name, password_hash, role, created_at
	`

	var user User
	if err := r.db.GetContext(ctx, &user, query, u.Email, u.FullName, u.PasswordHash, u.Role, u.ID); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

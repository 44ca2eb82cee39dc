package course

import (
	"context"

	"slotbook/internal/db"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(database *sqlx.DB) Repository {
	return &repository{db: database}
}

func (r *repository) Create(ctx context.Context, name, description string) (*Course, error) {
	query := `
		INSERT INTO courses (name, description)
		VALUES ($1, $2)
		RETURNING id, name, description, created_at
	`

	var course Course
	if err := r.db.GetContext(ctx, &course, query, name, description); err != nil {
		return nil, err
	}

	return &course, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Course, error) {
	query := `
		SELECT id, name, description, created_at
		FROM courses
		WHERE id = $1
	`

	var course Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}

	return &course, nil
}

func (r *repository) GetAll(ctx context.Context, limit, offset int) ([]Course, error) {
	query := `
		SELECT id, name, description, created_at
		FROM courses
		ORDER BY id ASC
		LIMIT $1 OFFSET $2
	`

	var courses []Course
	if err := r.db.SelectContext(ctx, &courses, query, limit, offset); err != nil {
		return nil, err
	}

	return courses, nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM courses`); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) Update(ctx context.Context, c *Course) (*Course, error) {
	query := `
		UPDATE courses
		SET name = $1, description = $2
		WHERE id = $3
		RETURNING id, name, description, created_at
	`

	var course Course
	if err := r.db.GetContext(ctx, &course, query, c.Name, c.Description, c.ID); err != nil {
		return nil, err
	}

	return &course, nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	return err
}

func (r *repository) ExistsByID(ctx context.Context, id int) (bool, error) {
	return db.Exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM courses WHERE id = $1)`, id)
}

func (r *repository) HasSessions(ctx context.Context, id int) (bool, error) {
	return db.Exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM sessions WHERE course_id = $1)`, id)
}

package course

import (
	"context"
	"database/sql"
	"errors"

	"slotbook/internal/api"
)

var (
	ErrCourseNotFound    = errors.New("course not found")
	ErrCourseHasSessions = errors.New("course still has sessions")
)

type Service interface {
	Create(ctx context.Context, req CreateCourseRequest) (*Course, error)
	GetByID(ctx context.Context, id int) (*Course, error)
	List(ctx context.Context, page, size int) (*api.Page[Course], error)
	Update(ctx context.Context, id int, req UpdateCourseRequest) (*Course, error)
	Delete(ctx context.Context, id int) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreateCourseRequest) (*Course, error) {
	return s.repo.Create(ctx, req.Name, req.Description)
}

func (s *service) GetByID(ctx context.Context, id int) (*Course, error) {
	course, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

func (s *service) List(ctx context.Context, page, size int) (*api.Page[Course], error) {
	courses, err := s.repo.GetAll(ctx, size, page*size)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}

	return api.NewPage(courses, page, size, total), nil
}

func (s *service) Update(ctx context.Context, id int, req UpdateCourseRequest) (*Course, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Description != nil {
		existing.Description = *req.Description
	}

	return s.repo.Update(ctx, existing)
}

// Delete removes a course. A course that still owns sessions cannot be
// deleted; sessions must be removed first so bookings are never orphaned.
func (s *service) Delete(ctx context.Context, id int) error {
	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrCourseNotFound
	}

	hasSessions, err := s.repo.HasSessions(ctx, id)
	if err != nil {
		return err
	}
	if hasSessions {
		return ErrCourseHasSessions
	}

	return s.repo.Delete(ctx, id)
}

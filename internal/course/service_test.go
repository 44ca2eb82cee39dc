package course

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockCourseRepo struct{ mock.Mock }

func (m *MockCourseRepo) Create(ctx context.Context, name, description string) (*Course, error) {
	args := m.Called(ctx, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Course), args.Error(1)
}

func (m *MockCourseRepo) GetByID(ctx context.Context, id int) (*Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Course), args.Error(1)
}

func (m *MockCourseRepo) GetAll(ctx context.Context, limit, offset int) ([]Course, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Course), args.Error(1)
}

func (m *MockCourseRepo) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockCourseRepo) Update(ctx context.Context, c *Course) (*Course, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Course), args.Error(1)
}

func (m *MockCourseRepo) Delete(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCourseRepo) ExistsByID(ctx context.Context, id int) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockCourseRepo) HasSessions(ctx context.Context, id int) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func TestService_GetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo := new(MockCourseRepo)
		repo.On("GetByID", mock.Anything, 1).Return(&Course{ID: 1, Name: "Yoga"}, nil)

		svc := NewService(repo)
		c, err := svc.GetByID(context.Background(), 1)

		assert.NoError(t, err)
		assert.Equal(t, "Yoga", c.Name)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(MockCourseRepo)
		repo.On("GetByID", mock.Anything, 404).Return(nil, sql.ErrNoRows)

		svc := NewService(repo)
		_, err := svc.GetByID(context.Background(), 404)

		assert.ErrorIs(t, err, ErrCourseNotFound)
	})
}

func TestService_Update(t *testing.T) {
	repo := new(MockCourseRepo)
	repo.On("GetByID", mock.Anything, 1).Return(&Course{ID: 1, Name: "Yoga", Description: "old"}, nil)
	repo.On("Update", mock.Anything, &Course{ID: 1, Name: "Hot Yoga", Description: "old"}).
		Return(&Course{ID: 1, Name: "Hot Yoga", Description: "old"}, nil)

	svc := NewService(repo)
	name := "Hot Yoga"
	updated, err := svc.Update(context.Background(), 1, UpdateCourseRequest{Name: &name})

	assert.NoError(t, err)
	assert.Equal(t, "Hot Yoga", updated.Name)
	assert.Equal(t, "old", updated.Description)
	repo.AssertExpectations(t)
}

func TestService_Delete(t *testing.T) {
	t.Run("deletes empty course", func(t *testing.T) {
		repo := new(MockCourseRepo)
		repo.On("ExistsByID", mock.Anything, 1).Return(true, nil)
		repo.On("HasSessions", mock.Anything, 1).Return(false, nil)
		repo.On("Delete", mock.Anything, 1).Return(nil)

		svc := NewService(repo)
		assert.NoError(t, svc.Delete(context.Background(), 1))
		repo.AssertExpectations(t)
	})

	t.Run("blocked while sessions exist", func(t *testing.T) {
		repo := new(MockCourseRepo)
		repo.On("ExistsByID", mock.Anything, 1).Return(true, nil)
		repo.On("HasSessions", mock.Anything, 1).Return(true, nil)

		svc := NewService(repo)
		assert.ErrorIs(t, svc.Delete(context.Background(), 1), ErrCourseHasSessions)
		repo.AssertNotCalled(t, "Delete")
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(MockCourseRepo)
		repo.On("ExistsByID", mock.Anything, 404).Return(false, nil)

		svc := NewService(repo)
		assert.ErrorIs(t, svc.Delete(context.Background(), 404), ErrCourseNotFound)
	})
}

func TestService_List(t *testing.T) {
	repo := new(MockCourseRepo)
	repo.On("GetAll", mock.Anything, 20, 0).Return([]Course{{ID: 1}, {ID: 2}}, nil)
	repo.On("Count", mock.Anything).Return(2, nil)

	svc := NewService(repo)
	page, err := svc.List(context.Background(), 0, 20)

	assert.NoError(t, err)
	assert.Len(t, page.Content, 2)
	assert.Equal(t, 2, page.TotalElements)
	assert.True(t, page.Last)
}

package session

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"slotbook/internal/course"
	"slotbook/internal/timerange"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockSessionRepo struct{ mock.Mock }
type MockCourseRepo struct{ mock.Mock }

func (m *MockSessionRepo) Create(ctx context.Context, courseID int, start, end time.Time, capacity int) (*Session, error) {
	args := m.Called(ctx, courseID, start, end, capacity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}

func (m *MockSessionRepo) GetByID(ctx context.Context, id int) (*Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}

func (m *MockSessionRepo) GetAll(ctx context.Context, limit, offset int, sort Sort) ([]Session, error) {
	args := m.Called(ctx, limit, offset, sort)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Session), args.Error(1)
}

func (m *MockSessionRepo) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockSessionRepo) FindOverlapping(ctx context.Context, courseID int, start, end time.Time) ([]Session, error) {
	args := m.Called(ctx, courseID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Session), args.Error(1)
}

func (m *MockSessionRepo) Update(ctx context.Context, s *Session) (*Session, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}

func (m *MockSessionRepo) Delete(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSessionRepo) ExistsByID(ctx context.Context, id int) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionRepo) ActiveBookingCount(ctx context.Context, sessionID int) (int, error) {
	args := m.Called(ctx, sessionID)
	return args.Int(0), args.Error(1)
}

func (m *MockSessionRepo) ActiveBookingCounts(ctx context.Context, sessionIDs []int) (map[int]int, error) {
	args := m.Called(ctx, sessionIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]int), args.Error(1)
}

func (m *MockCourseRepo) Create(ctx context.Context, name, description string) (*course.Course, error) {
	args := m.Called(ctx, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*course.Course), args.Error(1)
}

func (m *MockCourseRepo) GetByID(ctx context.Context, id int) (*course.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*course.Course), args.Error(1)
}

func (m *MockCourseRepo) GetAll(ctx context.Context, limit, offset int) ([]course.Course, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]course.Course), args.Error(1)
}

func (m *MockCourseRepo) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockCourseRepo) Update(ctx context.Context, c *course.Course) (*course.Course, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*course.Course), args.Error(1)
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

func rfc3339In(d time.Duration) string {
	return time.Now().Add(d).Truncate(time.Minute).Format(time.RFC3339)
}

func TestService_Create(t *testing.T) {
	startStr := rfc3339In(24 * time.Hour)
	endStr := rfc3339In(25 * time.Hour)

	capacityThree := 3
	capacityZero := 0

	tests := []struct {
		name        string
		req         CreateSessionRequest
		setupMocks  func(*MockSessionRepo, *MockCourseRepo)
		expectedErr error
		expectedCap int
	}{
		{
			name: "defaults capacity when omitted",
			req:  CreateSessionRequest{CourseID: 1, StartTime: startStr, EndTime: endStr},
			setupMocks: func(sr *MockSessionRepo, cr *MockCourseRepo) {
				cr.On("ExistsByID", mock.Anything, 1).Return(true, nil)
				sr.On("FindOverlapping", mock.Anything, 1, mock.Anything, mock.Anything).Return([]Session{}, nil)
				sr.On("Create", mock.Anything, 1, mock.Anything, mock.Anything, DefaultCapacity).Return(&Session{
					ID: 1, CourseID: 1, Capacity: DefaultCapacity,
				}, nil)
			},
			expectedCap: DefaultCapacity,
		},
		{
			name: "explicit capacity",
			req:  CreateSessionRequest{CourseID: 1, StartTime: startStr, EndTime: endStr, Capacity: &capacityThree},
			setupMocks: func(sr *MockSessionRepo, cr *MockCourseRepo) {
				cr.On("ExistsByID", mock.Anything, 1).Return(true, nil)
				sr.On("FindOverlapping", mock.Anything, 1, mock.Anything, mock.Anything).Return([]Session{}, nil)
				sr.On("Create", mock.Anything, 1, mock.Anything, mock.Anything, 3).Return(&Session{
					ID: 1, CourseID: 1, Capacity: 3,
				}, nil)
			},
			expectedCap: 3,
		},
		{
			name: "course not found",
			req:  CreateSessionRequest{CourseID: 404, StartTime: startStr, EndTime: endStr},
			setupMocks: func(sr *MockSessionRepo, cr *MockCourseRepo) {
				cr.On("ExistsByID", mock.Anything, 404).Return(false, nil)
			},
			expectedErr: course.ErrCourseNotFound,
		},
		{
			name: "malformed timestamp",
			req:  CreateSessionRequest{CourseID: 1, StartTime: "yesterday", EndTime: endStr},
			setupMocks: func(sr *MockSessionRepo, cr *MockCourseRepo) {
				cr.On("ExistsByID", mock.Anything, 1).Return(true, nil)
			},
			expectedErr: ErrInvalidTimeFormat,
		},
		{
			name: "end before start",
			req:  CreateSessionRequest{CourseID: 1, StartTime: endStr, EndTime: startStr},
			setupMocks: func(sr *MockSessionRepo, cr *MockCourseRepo) {
				cr.On("ExistsByID", mock.Anything, 1).Return(true, nil)
			},
			expectedErr: timerange.ErrInvalidRange,
		},
		{
			name: "start in the past",
			req:  CreateSessionRequest{CourseID: 1, StartTime: rfc3339In(-2 * time.Hour), EndTime: rfc3339In(-1 * time.Hour)},
			setupMocks: func(sr *MockSessionRepo, cr *MockCourseRepo) {
				cr.On("ExistsByID", mock.Anything, 1).Return(true, nil)
			},
			expectedErr: timerange.ErrNotInFuture,
		},
		{
			name: "zero capacity rejected",
			req:  CreateSessionRequest{CourseID: 1, StartTime: startStr, EndTime: endStr, Capacity: &capacityZero},
			setupMocks: func(sr *MockSessionRepo, cr *MockCourseRepo) {
				cr.On("ExistsByID", mock.Anything, 1).Return(true, nil)
			},
			expectedErr: ErrInvalidCapacity,
		},
		{
			name: "overlapping session rejected",
			req:  CreateSessionRequest{CourseID: 1, StartTime: startStr, EndTime: endStr},
			setupMocks: func(sr *MockSessionRepo, cr *MockCourseRepo) {
				cr.On("ExistsByID", mock.Anything, 1).Return(true, nil)
				sr.On("FindOverlapping", mock.Anything, 1, mock.Anything, mock.Anything).Return([]Session{
					{ID: 7, CourseID: 1},
				}, nil)
			},
			expectedErr: ErrSessionOverlap,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sr := new(MockSessionRepo)
			cr := new(MockCourseRepo)
			tt.setupMocks(sr, cr)

			svc := NewService(sr, cr, nil)
			sess, err := svc.Create(context.Background(), tt.req)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, sess)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedCap, sess.Capacity)
			}

			sr.AssertExpectations(t)
			cr.AssertExpectations(t)
		})
	}
}

func TestService_Create_NormalizesToMinute(t *testing.T) {
	// Seconds in the request are dropped, not rounded.
	start := time.Now().Add(24 * time.Hour).Truncate(time.Minute).Add(42 * time.Second)
	end := start.Add(time.Hour)

	// Parsed timestamps lose the monotonic reading, so match on Equal.
	atMinute := func(want time.Time) interface{} {
		return mock.MatchedBy(func(got time.Time) bool { return got.Equal(want) })
	}

	sr := new(MockSessionRepo)
	cr := new(MockCourseRepo)
	cr.On("ExistsByID", mock.Anything, 1).Return(true, nil)
	sr.On("FindOverlapping", mock.Anything, 1, atMinute(start.Truncate(time.Minute)), atMinute(end.Truncate(time.Minute))).
		Return([]Session{}, nil)
	sr.On("Create", mock.Anything, 1, atMinute(start.Truncate(time.Minute)), atMinute(end.Truncate(time.Minute)), DefaultCapacity).
		Return(&Session{ID: 1, CourseID: 1, Capacity: DefaultCapacity}, nil)

	svc := NewService(sr, cr, nil)
	_, err := svc.Create(context.Background(), CreateSessionRequest{
		CourseID:  1,
		StartTime: start.Format(time.RFC3339),
		EndTime:   end.Format(time.RFC3339),
	})

	assert.NoError(t, err)
	sr.AssertExpectations(t)
}

func TestService_Update(t *testing.T) {
	existing := Session{
		ID:        5,
		CourseID:  1,
		StartTime: time.Now().Add(24 * time.Hour).Truncate(time.Minute),
		EndTime:   time.Now().Add(25 * time.Hour).Truncate(time.Minute),
		Capacity:  5,
	}

	t.Run("own record excluded from overlap detection", func(t *testing.T) {
		sr := new(MockSessionRepo)
		cr := new(MockCourseRepo)

		snapshot := existing
		sr.On("GetByID", mock.Anything, 5).Return(&snapshot, nil)
		sr.On("FindOverlapping", mock.Anything, 1, mock.Anything, mock.Anything).Return([]Session{
			{ID: 5, CourseID: 1},
		}, nil)
		sr.On("Update", mock.Anything, mock.Anything).Return(&snapshot, nil)

		svc := NewService(sr, cr, nil)
		newCap := 8
		updated, err := svc.Update(context.Background(), 5, UpdateSessionRequest{Capacity: &newCap})

		assert.NoError(t, err)
		assert.NotNil(t, updated)
		sr.AssertExpectations(t)
	})

	t.Run("conflict with another session", func(t *testing.T) {
		sr := new(MockSessionRepo)
		cr := new(MockCourseRepo)

		snapshot := existing
		sr.On("GetByID", mock.Anything, 5).Return(&snapshot, nil)
		sr.On("FindOverlapping", mock.Anything, 1, mock.Anything, mock.Anything).Return([]Session{
			{ID: 9, CourseID: 1},
		}, nil)

		svc := NewService(sr, cr, nil)
		newStart := rfc3339In(26 * time.Hour)
		newEnd := rfc3339In(27 * time.Hour)
		_, err := svc.Update(context.Background(), 5, UpdateSessionRequest{StartTime: &newStart, EndTime: &newEnd})

		assert.ErrorIs(t, err, ErrSessionOverlap)
	})

	t.Run("session not found", func(t *testing.T) {
		sr := new(MockSessionRepo)
		sr.On("GetByID", mock.Anything, 404).Return(nil, sql.ErrNoRows)

		svc := NewService(sr, new(MockCourseRepo), nil)
		_, err := svc.Update(context.Background(), 404, UpdateSessionRequest{})

		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestService_Delete(t *testing.T) {
	t.Run("deletes session without bookings", func(t *testing.T) {
		sr := new(MockSessionRepo)
		sr.On("ExistsByID", mock.Anything, 5).Return(true, nil)
		sr.On("ActiveBookingCount", mock.Anything, 5).Return(0, nil)
		sr.On("Delete", mock.Anything, 5).Return(nil)

		svc := NewService(sr, new(MockCourseRepo), nil)
		assert.NoError(t, svc.Delete(context.Background(), 5))
		sr.AssertExpectations(t)
	})

	t.Run("blocked while bookings are active", func(t *testing.T) {
		sr := new(MockSessionRepo)
		sr.On("ExistsByID", mock.Anything, 5).Return(true, nil)
		sr.On("ActiveBookingCount", mock.Anything, 5).Return(3, nil)

		svc := NewService(sr, new(MockCourseRepo), nil)
		assert.ErrorIs(t, svc.Delete(context.Background(), 5), ErrSessionHasBookings)
		sr.AssertNotCalled(t, "Delete")
	})

	t.Run("not found", func(t *testing.T) {
		sr := new(MockSessionRepo)
		sr.On("ExistsByID", mock.Anything, 404).Return(false, nil)

		svc := NewService(sr, new(MockCourseRepo), nil)
		assert.ErrorIs(t, svc.Delete(context.Background(), 404), ErrSessionNotFound)
	})
}

func TestService_List_Availability(t *testing.T) {
	sessions := []Session{
		{ID: 1, CourseID: 1, Capacity: 5},
		{ID: 2, CourseID: 1, Capacity: 2},
	}

	sr := new(MockSessionRepo)
	sr.On("GetAll", mock.Anything, 20, 0, DefaultSort).Return(sessions, nil)
	sr.On("Count", mock.Anything).Return(2, nil)
	sr.On("ActiveBookingCounts", mock.Anything, []int{1, 2}).Return(map[int]int{1: 3, 2: 2}, nil)

	svc := NewService(sr, new(MockCourseRepo), nil)
	page, err := svc.List(context.Background(), 0, 20, DefaultSort)

	assert.NoError(t, err)
	assert.Len(t, page.Content, 2)

	assert.Equal(t, 3, page.Content[0].ActiveBookings)
	assert.Equal(t, 2, page.Content[0].Available)
	assert.False(t, page.Content[0].IsFull)

	assert.Equal(t, 2, page.Content[1].ActiveBookings)
	assert.Equal(t, 0, page.Content[1].Available)
	assert.True(t, page.Content[1].IsFull)
}

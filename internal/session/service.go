package session

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"slotbook/internal/api"
	"slotbook/internal/course"
	"slotbook/internal/lock"
	"slotbook/internal/metrics"
	"slotbook/internal/timerange"
)

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionOverlap     = errors.New("session overlaps with existing session for this course")
	ErrInvalidCapacity    = errors.New("session capacity must be greater than zero")
	ErrInvalidTimeFormat  = errors.New("start_time and end_time must be RFC3339 timestamps")
	ErrSessionHasBookings = errors.New("session has active bookings")
)

type Service interface {
	Create(ctx context.Context, req CreateSessionRequest) (*Session, error)
	Update(ctx context.Context, id int, req UpdateSessionRequest) (*Session, error)
	Delete(ctx context.Context, id int) error
	GetByID(ctx context.Context, id int) (*SessionWithAvailability, error)
	List(ctx context.Context, page, size int, sort Sort) (*api.Page[SessionWithAvailability], error)
}

type service struct {
	repo       Repository
	courseRepo course.Repository
	cache      *Cache

	// Serializes scheduling mutations per course so two concurrent writers
	// cannot both pass the overlap check before either commits.
	courseLocks lock.KeyedMutex
}

// NewService builds the scheduling service. cache may be nil; listing then
// always reads counts from the store.
func NewService(repo Repository, courseRepo course.Repository, cache *Cache) Service {
	return &service{
		repo:       repo,
		courseRepo: courseRepo,
		cache:      cache,
	}
}

func (s *service) Create(ctx context.Context, req CreateSessionRequest) (*Session, error) {
	exists, err := s.courseRepo.ExistsByID(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, course.ErrCourseNotFound
	}

	start, end, err := parseRange(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	if err := timerange.Validate(start, end, timerange.Normalize(time.Now())); err != nil {
		return nil, err
	}

	capacity := DefaultCapacity
	if req.Capacity != nil {
		capacity = *req.Capacity
	}
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}

	unlock := s.courseLocks.Lock(req.CourseID)
	defer unlock()

	if err := s.checkNoOverlap(ctx, req.CourseID, start, end, 0); err != nil {
		return nil, err
	}

	session, err := s.repo.Create(ctx, req.CourseID, start, end, capacity)
	if err != nil {
		if errors.Is(err, ErrSessionOverlap) {
			metrics.RecordSessionConflict()
		}
		return nil, err
	}

	metrics.RecordSessionCreated()
	return session, nil
}

func (s *service) Update(ctx context.Context, id int, req UpdateSessionRequest) (*Session, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	courseID := existing.CourseID
	if req.CourseID != nil && *req.CourseID != courseID {
		exists, err := s.courseRepo.ExistsByID(ctx, *req.CourseID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, course.ErrCourseNotFound
		}
		courseID = *req.CourseID
	}

	startStr := existing.StartTime.Format(time.RFC3339)
	if req.StartTime != nil {
		startStr = *req.StartTime
	}
	endStr := existing.EndTime.Format(time.RFC3339)
	if req.EndTime != nil {
		endStr = *req.EndTime
	}

	start, end, err := parseRange(startStr, endStr)
	if err != nil {
		return nil, err
	}

	if err := timerange.Validate(start, end, timerange.Normalize(time.Now())); err != nil {
		return nil, err
	}

	capacity := existing.Capacity
	if req.Capacity != nil {
		capacity = *req.Capacity
	}
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}

	unlock := s.courseLocks.Lock(courseID)
	defer unlock()

	// The session's own prior record never conflicts with its replacement.
	if err := s.checkNoOverlap(ctx, courseID, start, end, existing.ID); err != nil {
		return nil, err
	}

	existing.CourseID = courseID
	existing.StartTime = start
	existing.EndTime = end
	existing.Capacity = capacity

	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		if errors.Is(err, ErrSessionOverlap) {
			metrics.RecordSessionConflict()
		}
		return nil, err
	}

	return updated, nil
}

// Delete removes a session without active bookings. Sessions with live
// PENDING or CONFIRMED bookings are protected so bookings never dangle.
func (s *service) Delete(ctx context.Context, id int) error {
	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrSessionNotFound
	}

	active, err := s.repo.ActiveBookingCount(ctx, id)
	if err != nil {
		return err
	}
	if active > 0 {
		return ErrSessionHasBookings
	}

	return s.repo.Delete(ctx, id)
}

func (s *service) GetByID(ctx context.Context, id int) (*SessionWithAvailability, error) {
	session, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	active, err := s.repo.ActiveBookingCount(ctx, id)
	if err != nil {
		return nil, err
	}

	return withAvailability(*session, active), nil
}

func (s *service) List(ctx context.Context, page, size int, sort Sort) (*api.Page[SessionWithAvailability], error) {
	sessions, err := s.repo.GetAll(ctx, size, page*size, sort)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]int, len(sessions))
	for i, sess := range sessions {
		ids[i] = sess.ID
	}

	counts, err := s.activeCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	content := make([]SessionWithAvailability, 0, len(sessions))
	for _, sess := range sessions {
		content = append(content, *withAvailability(sess, counts[sess.ID]))
	}

	return api.NewPage(content, page, size, total), nil
}

// activeCounts resolves per-session booking counts, serving what it can from
// the cache and batching the remainder into a single query.
func (s *service) activeCounts(ctx context.Context, ids []int) (map[int]int, error) {
	if s.cache == nil {
		return s.repo.ActiveBookingCounts(ctx, ids)
	}

	counts, missing := s.cache.GetCounts(ctx, ids)
	if len(missing) == 0 {
		return counts, nil
	}

	fresh, err := s.repo.ActiveBookingCounts(ctx, missing)
	if err != nil {
		return nil, err
	}

	// Zero counts are cached too; absent map entries mean no active bookings.
	toCache := make(map[int]int, len(missing))
	for _, id := range missing {
		toCache[id] = fresh[id]
		counts[id] = fresh[id]
	}
	s.cache.SetCounts(ctx, toCache)

	return counts, nil
}

func (s *service) checkNoOverlap(ctx context.Context, courseID int, start, end time.Time, excludeID int) error {
	overlapping, err := s.repo.FindOverlapping(ctx, courseID, start, end)
	if err != nil {
		return err
	}

	for _, other := range overlapping {
		if excludeID == 0 || other.ID != excludeID {
			metrics.RecordSessionConflict()
			return ErrSessionOverlap
		}
	}

	return nil
}

func parseRange(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidTimeFormat
	}

	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidTimeFormat
	}

	return timerange.Normalize(start), timerange.Normalize(end), nil
}

func withAvailability(sess Session, active int) *SessionWithAvailability {
	available := sess.Capacity - active
	if available < 0 {
		available = 0
	}

	return &SessionWithAvailability{
		Session:        sess,
		ActiveBookings: active,
		Available:      available,
		IsFull:         active >= sess.Capacity,
	}
}

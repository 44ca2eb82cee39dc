package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"slotbook/internal/api"
	"slotbook/internal/auth"
	"slotbook/internal/lock"
	"slotbook/internal/metrics"
	"slotbook/internal/session"
	"slotbook/internal/user"
)

var (
	ErrSessionRequired    = errors.New("session_id is required")
	ErrNotOwner           = errors.New("only the owning user or an admin may act on this booking")
	ErrSessionNotBookable = errors.New("session must be in the future to create a booking")
	ErrSessionStarted     = errors.New("session must be in the future to cancel a booking")
	ErrSessionFull        = errors.New("session is full")
	ErrAlreadyBooked      = errors.New("user already has an active booking for this session")
	ErrInvalidTransition  = errors.New("booking status transition not allowed")
)

// Actor is the resolved identity performing an operation.
type Actor struct {
	UserID int
	Role   auth.Role
}

type Service interface {
	Create(ctx context.Context, req CreateBookingRequest, actor Actor) (*Booking, error)
	Cancel(ctx context.Context, id int, actor Actor) (*Booking, error)
	UpdateStatus(ctx context.Context, id int, statusLiteral string) (*Booking, error)
	Delete(ctx context.Context, id int) error
	GetByID(ctx context.Context, id int) (*Booking, error)
	List(ctx context.Context, page, size int) (*api.Page[Booking], error)
	ListForUser(ctx context.Context, userID int) ([]Booking, error)
	ListForSession(ctx context.Context, sessionID int) ([]BookingWithDetails, error)
}

type service struct {
	repo        Repository
	sessionRepo session.Repository
	userRepo    user.Repository
	cache       *session.Cache

	// Serializes capacity admission per session so concurrent creates cannot
	// both pass the count check and overbook.
	sessionLocks lock.KeyedMutex
}

// NewService builds the booking service. cache may be nil.
func NewService(repo Repository, sessionRepo session.Repository, userRepo user.Repository, cache *session.Cache) Service {
	return &service{
		repo:        repo,
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		cache:       cache,
	}
}

// Create books a session for the target user. The target is the explicit
// user_id from the request or, when omitted, the actor itself; only the
// target user or an admin may create the booking.
func (s *service) Create(ctx context.Context, req CreateBookingRequest, actor Actor) (*Booking, error) {
	if req.SessionID == 0 {
		return nil, ErrSessionRequired
	}

	targetUserID := actor.UserID
	if req.UserID != nil {
		targetUserID = *req.UserID
	}

	if !auth.IsOwnerOrElevated(targetUserID, actor.UserID, actor.Role) {
		return nil, ErrNotOwner
	}

	if _, err := s.userRepo.FindByID(ctx, targetUserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}

	sess, err := s.sessionRepo.GetByID(ctx, req.SessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, session.ErrSessionNotFound
		}
		return nil, err
	}

	if !sess.StartTime.After(time.Now()) {
		return nil, ErrSessionNotBookable
	}

	unlock := s.sessionLocks.Lock(sess.ID)
	defer unlock()

	hasActive, err := s.repo.UserHasActiveForSession(ctx, targetUserID, sess.ID)
	if err != nil {
		return nil, err
	}
	if hasActive {
		return nil, ErrAlreadyBooked
	}

	active, err := s.repo.CountActiveForSession(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	if active >= sess.Capacity {
		metrics.RecordCapacityRejection()
		return nil, ErrSessionFull
	}

	booking, err := s.repo.Create(ctx, targetUserID, sess.ID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, sess.ID)
	}
	metrics.RecordBooking(string(booking.Status))

	return booking, nil
}

// Cancel moves a booking to CANCELLED. The cancellation window closes when
// the session starts; that check runs before the ownership check, so a
// too-late cancel reports the window error even for a non-owner.
func (s *service) Cancel(ctx context.Context, id int, actor Actor) (*Booking, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	sess, err := s.sessionRepo.GetByID(ctx, booking.SessionID)
	if err != nil {
		return nil, err
	}

	if !sess.StartTime.After(time.Now()) {
		return nil, ErrSessionStarted
	}

	if !auth.IsOwnerOrElevated(booking.UserID, actor.UserID, actor.Role) {
		return nil, ErrNotOwner
	}

	if !booking.Status.CanTransitionTo(StatusCancelled) {
		return nil, ErrInvalidTransition
	}

	cancelled, err := s.repo.UpdateStatus(ctx, id, StatusCancelled)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, booking.SessionID)
	}
	metrics.RecordBookingCancellation()

	return cancelled, nil
}

// UpdateStatus is the unrestricted administrative transition: it bypasses
// ownership, the state machine, and the future-time rule. Unknown literals
// are rejected without touching the record.
func (s *service) UpdateStatus(ctx context.Context, id int, statusLiteral string) (*Booking, error) {
	status, err := ParseStatus(statusLiteral)
	if err != nil {
		return nil, err
	}

	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, booking.SessionID)
	}

	return updated, nil
}

func (s *service) Delete(ctx context.Context, id int) error {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrBookingNotFound
		}
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, booking.SessionID)
	}

	return nil
}

func (s *service) GetByID(ctx context.Context, id int) (*Booking, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return booking, nil
}

func (s *service) List(ctx context.Context, page, size int) (*api.Page[Booking], error) {
	bookings, err := s.repo.GetAll(ctx, size, page*size)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}

	return api.NewPage(bookings, page, size, total), nil
}

func (s *service) ListForUser(ctx context.Context, userID int) ([]Booking, error) {
	return s.repo.GetByUser(ctx, userID)
}

func (s *service) ListForSession(ctx context.Context, sessionID int) ([]BookingWithDetails, error) {
	return s.repo.GetBySession(ctx, sessionID)
}

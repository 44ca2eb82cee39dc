package user

import (
	"context"
	"database/sql"
	"errors"

	"slotbook/internal/api"
	"slotbook/internal/auth"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAdminSecretInvalid = errors.New("admin role requires a valid creation secret")
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest, adminSecret string) (*User, string, string, error)
	Login(ctx context.Context, req LoginRequest) (*User, string, string, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, *User, error)
	GetByID(ctx context.Context, id int) (*User, error)
	List(ctx context.Context, page, size int) (*api.Page[User], error)
	Update(ctx context.Context, id int, req UpdateUserRequest, adminSecret string) (*User, error)
	Delete(ctx context.Context, id int) error
}

type service struct {
	repo Repository

	jwtSecret string
	// Creation secret gating promotion to ADMIN; injected from config,
	// never read from the environment here.
	adminCreationSecret string
}

func NewService(repo Repository, jwtSecret, adminCreationSecret string) Service {
	return &service{
		repo:                repo,
		jwtSecret:           jwtSecret,
		adminCreationSecret: adminCreationSecret,
	}
}

// Register creates a user. Requests may ask for any role, but ADMIN is only
// granted when the presented secret matches the configured one.
func (s *service) Register(ctx context.Context, req RegisterRequest, adminSecret string) (*User, string, string, error) {
	role := auth.RoleUser
	if req.Role != "" {
		parsed, err := auth.ParseRole(req.Role)
		if err != nil {
			return nil, "", "", err
		}
		role = parsed
	}

	if !auth.CanElevateRole(role, adminSecret, s.adminCreationSecret) {
		return nil, "", "", ErrAdminSecretInvalid
	}

	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, "", "", err
	}
	if exists {
		return nil, "", "", ErrEmailExists
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", "", err
	}

	user, err := s.repo.Create(ctx, req.Email, req.FullName, passwordHash, role)
	if err != nil {
		return nil, "", "", err
	}

	accessToken, refreshToken, err := auth.GenerateTokens(user.ID, user.Email, user.Role, s.jwtSecret)
	if err != nil {
		return nil, "", "", err
	}

	return user, accessToken, refreshToken, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*User, string, string, error) {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, "", "", ErrInvalidCredentials
	}

	accessToken, refreshToken, err := auth.GenerateTokens(user.ID, user.Email, user.Role, s.jwtSecret)
	if err != nil {
		return nil, "", "", err
	}

	return user, accessToken, refreshToken, nil
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, *User, error) {
	_, claims, err := auth.RefreshAccessToken(refreshToken, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return "", nil, ErrUserNotFound
	}

	newAccessToken, err := auth.GenerateAccessToken(user.ID, user.Email, user.Role, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	return newAccessToken, user, nil
}

func (s *service) GetByID(ctx context.Context, id int) (*User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *service) List(ctx context.Context, page, size int) (*api.Page[User], error) {
	users, err := s.repo.GetAll(ctx, size, page*size)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}

	return api.NewPage(users, page, size, total), nil
}

// Update merges the provided fields onto the user. Changing a non-admin to
// ADMIN is re-gated by the creation secret, same as registration.
func (s *service) Update(ctx context.Context, id int, req UpdateUserRequest, adminSecret string) (*User, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Role != nil {
		role, err := auth.ParseRole(*req.Role)
		if err != nil {
			return nil, err
		}
		if role == auth.RoleAdmin && existing.Role != auth.RoleAdmin &&
			!auth.CanElevateRole(role, adminSecret, s.adminCreationSecret) {
			return nil, ErrAdminSecretInvalid
		}
		existing.Role = role
	}

	if req.Email != nil {
		existing.Email = *req.Email
	}
	if req.FullName != nil {
		existing.FullName = *req.FullName
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		existing.PasswordHash = hash
	}

	return s.repo.Update(ctx, existing)
}

func (s *service) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

package user

import (
	"errors"
	"net/http"
	"strconv"

	"slotbook/internal/api"
	"slotbook/internal/auth"
	"slotbook/internal/logger"

	"github.com/gin-gonic/gin"
)

// AdminSecretHeader carries the admin creation secret on registration and
// role-change requests.
const AdminSecretHeader = "X-Admin-Secret"

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Register godoc
// @Summary      Register new user
// @Description  Creates a user and returns access & refresh tokens. Requesting the ADMIN role requires a valid X-Admin-Secret header.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request         body      RegisterRequest  true   "Registration data"
// @Param        X-Admin-Secret  header    string           false  "Admin creation secret"
// @Success      201             {object}  LoginResponse
// @Failure      400             {object}  api.ErrorResponse
// @Failure      403             {object}  api.ErrorResponse
// @Failure      409             {object}  api.ErrorResponse
// @Router       /auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	user, accessToken, refreshToken, err := h.service.Register(
		c.Request.Context(), req, c.GetHeader(AdminSecretHeader),
	)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidRole):
			api.Error(c, http.StatusBadRequest, "Invalid role")
		case errors.Is(err, ErrAdminSecretInvalid):
			api.Error(c, http.StatusForbidden, "Admin user creation is forbidden: invalid or missing X-Admin-Secret")
		case errors.Is(err, ErrEmailExists):
			api.Error(c, http.StatusConflict, "Email already registered")
		default:
			logger.Error("failed to register user", "error", err)
			api.InternalError(c)
		}
		return
	}

	c.JSON(http.StatusCreated, LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         *user,
	})
}

// Login godoc
// @Summary      Login user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      LoginRequest  true  "Credentials"
// @Success      200      {object}  LoginResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      401      {object}  api.ErrorResponse
// @Router       /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	user, accessToken, refreshToken, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			api.Error(c, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		logger.Error("failed to login user", "error", err)
		api.InternalError(c)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         *user,
	})
}

// Refresh godoc
// @Summary      Refresh access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      RefreshRequest  true  "Refresh token"
// @Success      200      {object}  RefreshResponse
// @Failure      401      {object}  api.ErrorResponse
// @Router       /auth/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	accessToken, user, err := h.service.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		api.Error(c, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	c.JSON(http.StatusOK, RefreshResponse{
		AccessToken: accessToken,
		User:        *user,
	})
}

// GetMe godoc
// @Summary      Get current user
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  User
// @Failure      401  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /me [get]
func (h *Handler) GetMe(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		api.Error(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	user, err := h.service.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			api.Error(c, http.StatusNotFound, "User not found")
			return
		}
		logger.Error("failed to load current user", "error", err)
		api.InternalError(c)
		return
	}

	c.JSON(http.StatusOK, user)
}

// ListUsers godoc
// @Summary      List users
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Param        page  query     int  false  "Page number (0-based)"
// @Param        size  query     int  false  "Page size"
// @Success      200   {object}  api.Page[User]
// @Router       /admin/users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	page, size := api.PageParams(c)

	result, err := h.service.List(c.Request.Context(), page, size)
	if err != nil {
		logger.Error("failed to list users", "error", err)
		api.InternalError(c)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetUser godoc
// @Summary      Get user by id
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Param        userID  path      int  true  "User ID"
// @Success      200     {object}  User
// @Failure      404     {object}  api.ErrorResponse
// @Router       /admin/users/{userID} [get]
func (h *Handler) GetUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("userID"))
	if err != nil {
		api.Error(c, http.StatusBadRequest, "Invalid user ID")
		return
	}

	user, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			api.Error(c, http.StatusNotFound, "User not found")
			return
		}
		logger.Error("failed to get user", "error", err)
		api.InternalError(c)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateUser godoc
// @Summary      Update user
// @Description  Merges the provided fields onto the user. Promoting to ADMIN requires a valid X-Admin-Secret header.
// @Tags         users
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        userID          path      int                true   "User ID"
// @Param        request         body      UpdateUserRequest  true   "Fields to update"
// @Param        X-Admin-Secret  header    string             false  "Admin creation secret"
// @Success      200             {object}  User
// @Failure      400             {object}  api.ErrorResponse
// @Failure      403             {object}  api.ErrorResponse
// @Failure      404             {object}  api.ErrorResponse
// @Router       /admin/users/{userID} [patch]
func (h *Handler) UpdateUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("userID"))
	if err != nil {
		api.Error(c, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if errs := api.ValidateStruct(req); len(errs) > 0 {
		api.RespondWithValidationErrors(c, errs)
		return
	}

	user, err := h.service.Update(c.Request.Context(), id, req, c.GetHeader(AdminSecretHeader))
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			api.Error(c, http.StatusNotFound, "User not found")
		case errors.Is(err, auth.ErrInvalidRole):
			api.Error(c, http.StatusBadRequest, "Invalid role")
		case errors.Is(err, ErrAdminSecretInvalid):
			api.Error(c, http.StatusForbidden, "Changing user role to ADMIN is forbidden: invalid or missing X-Admin-Secret")
		default:
			logger.Error("failed to update user", "error", err)
			api.InternalError(c)
		}
		return
	}

	c.JSON(http.StatusOK, user)
}

// DeleteUser godoc
// @Summary      Delete user
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Param        userID  path      int  true  "User ID"
// @Success      200     {object}  api.MessageResponse
// @Failure      404     {object}  api.ErrorResponse
// @Router       /admin/users/{userID} [delete]
func (h *Handler) DeleteUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("userID"))
	if err != nil {
		api.Error(c, http.StatusBadRequest, "Invalid user ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			api.Error(c, http.StatusNotFound, "User not found")
			return
		}
		logger.Error("failed to delete user", "error", err)
		api.InternalError(c)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "User deleted"})
}

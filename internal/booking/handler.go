package booking

import (
	"errors"
	"net/http"
	"strconv"

	"slotbook/internal/api"
	"slotbook/internal/auth"
	"slotbook/internal/logger"
	"slotbook/internal/session"
	"slotbook/internal/user"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func actorFrom(c *gin.Context) (Actor, bool) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		return Actor{}, false
	}
	role, ok := auth.GetRole(c)
	if !ok {
		return Actor{}, false
	}
	return Actor{UserID: userID, Role: role}, true
}

// respondBookingError maps service errors onto HTTP statuses. Every handler
// in this package funnels through it so the mapping lives in one place.
func respondBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrBookingNotFound):
		api.Error(c, http.StatusNotFound, "Booking not found")
	case errors.Is(err, session.ErrSessionNotFound):
		api.Error(c, http.StatusNotFound, "Session not found")
	case errors.Is(err, user.ErrUserNotFound):
		api.Error(c, http.StatusNotFound, "User not found")
	case errors.Is(err, ErrSessionRequired):
		api.Error(c, http.StatusBadRequest, "session_id is required")
	case errors.Is(err, ErrInvalidStatus):
		api.Error(c, http.StatusBadRequest, "Invalid booking status")
	case errors.Is(err, ErrNotOwner):
		api.Error(c, http.StatusForbidden, "You can only manage your own bookings")
	case errors.Is(err, ErrSessionStarted):
		api.Error(c, http.StatusConflict, "Session has already started")
	case errors.Is(err, ErrSessionNotBookable):
		api.Error(c, http.StatusConflict, "Session is not open for booking")
	case errors.Is(err, ErrSessionFull):
		api.Error(c, http.StatusConflict, "Session is fully booked")
	case errors.Is(err, ErrAlreadyBooked):
		api.Error(c, http.StatusConflict, "You already have an active booking for this session")
	case errors.Is(err, ErrInvalidTransition):
		api.Error(c, http.StatusUnprocessableEntity, "Booking status does not allow this change")
	default:
		logger.Error("booking operation failed", "error", err)
		api.InternalError(c)
	}
}

// CreateBooking godoc
// @Summary      Book a session
// @Description  Books a seat on a session for the current user. ADMINs may pass user_id to book on behalf of another user.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateBookingRequest  true  "Booking data"
// @Success      201      {object}  Booking
// @Failure      400      {object}  api.ErrorResponse
// @Failure      403      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /bookings [post]
func (h *Handler) CreateBooking(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		api.Error(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	booking, err := h.service.Create(c.Request.Context(), req, actor)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// CancelBooking godoc
// @Summary      Cancel a booking
// @Description  Cancels a booking. Rejected once the session has started, and for bookings that are already cancelled.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path      int  true  "Booking ID"
// @Success      200        {object}  Booking
// @Failure      403        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Failure      409        {object}  api.ErrorResponse
// @Failure      422        {object}  api.ErrorResponse
// @Router       /bookings/{bookingID}/cancel [post]
func (h *Handler) CancelBooking(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		api.Error(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	id, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		api.Error(c, http.StatusBadRequest, "Invalid booking ID")
		return
	}

	booking, err := h.service.Cancel(c.Request.Context(), id, actor)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// GetBooking godoc
// @Summary      Get booking by id
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path      int  true  "Booking ID"
// @Success      200        {object}  Booking
// @Failure      403        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Router       /bookings/{bookingID} [get]
func (h *Handler) GetBooking(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		api.Error(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	id, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		api.Error(c, http.StatusBadRequest, "Invalid booking ID")
		return
	}

	booking, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	if !auth.IsOwnerOrElevated(booking.UserID, actor.UserID, actor.Role) {
		api.Error(c, http.StatusForbidden, "You can only view your own bookings")
		return
	}

	c.JSON(http.StatusOK, booking)
}

// GetMyBookings godoc
// @Summary      List current user's bookings
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  Booking
// @Router       /me/bookings [get]
func (h *Handler) GetMyBookings(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Error(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	bookings, err := h.service.ListForUser(c.Request.Context(), userID)
	if err != nil {
		logger.Error("failed to list user bookings", "error", err)
		api.InternalError(c)
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// ListBookings godoc
// @Summary      List all bookings
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        page  query     int  false  "Page number (0-based)"
// @Param        size  query     int  false  "Page size"
// @Success      200   {object}  api.Page[Booking]
// @Router       /admin/bookings [get]
func (h *Handler) ListBookings(c *gin.Context) {
	page, size := api.PageParams(c)

	result, err := h.service.List(c.Request.Context(), page, size)
	if err != nil {
		logger.Error("failed to list bookings", "error", err)
		api.InternalError(c)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListSessionBookings godoc
// @Summary      List bookings for a session
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        sessionID  path   int  true  "Session ID"
// @Success      200        {array}  BookingWithDetails
// @Failure      404        {object}  api.ErrorResponse
// @Router       /admin/sessions/{sessionID}/bookings [get]
func (h *Handler) ListSessionBookings(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("sessionID"))
	if err != nil {
		api.Error(c, http.StatusBadRequest, "Invalid session ID")
		return
	}

	bookings, err := h.service.ListForSession(c.Request.Context(), id)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// UpdateBookingStatus godoc
// @Summary      Force a booking status
// @Description  Sets the booking status directly, bypassing the lifecycle rules. Admin repair tool.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path      int     true  "Booking ID"
// @Param        status     query     string  true  "New status (PENDING, CONFIRMED, CANCELLED)"
// @Success      200        {object}  Booking
// @Failure      400        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Router       /admin/bookings/{bookingID}/status [patch]
func (h *Handler) UpdateBookingStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		api.Error(c, http.StatusBadRequest, "Invalid booking ID")
		return
	}

	booking, err := h.service.UpdateStatus(c.Request.Context(), id, c.Query("status"))
	if err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// DeleteBooking godoc
// @Summary      Delete a booking
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path      int  true  "Booking ID"
// @Success      200        {object}  api.MessageResponse
// @Failure      404        {object}  api.ErrorResponse
// @Router       /admin/bookings/{bookingID} [delete]
func (h *Handler) DeleteBooking(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		api.Error(c, http.StatusBadRequest, "Invalid booking ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Booking deleted"})
}

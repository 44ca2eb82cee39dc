package session

import (
	"errors"
	"net/http"
	"strconv"

	"slotbook/internal/api"
	"slotbook/internal/course"
	"slotbook/internal/logger"
	"slotbook/internal/timerange"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func respondSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		api.Error(c, http.StatusNotFound, "Session not found")
	case errors.Is(err, course.ErrCourseNotFound):
		api.Error(c, http.StatusNotFound, "Course not found")
	case errors.Is(err, ErrInvalidTimeFormat):
		api.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, timerange.ErrInvalidRange):
		api.Error(c, http.StatusBadRequest, "Session end time must be after start time")
	case errors.Is(err, timerange.ErrNotInFuture):
		api.Error(c, http.StatusBadRequest, "Session start time must be in the future")
	case errors.Is(err, ErrInvalidCapacity):
		api.Error(c, http.StatusBadRequest, "Session capacity must be greater than 0")
	case errors.Is(err, ErrSessionOverlap):
		api.Error(c, http.StatusConflict, "Session overlaps with existing session for this course")
	case errors.Is(err, ErrSessionHasBookings):
		api.Error(c, http.StatusConflict, "Session has active bookings")
	default:
		logger.Error("session operation failed", "error", err)
		api.InternalError(c)
	}
}

// CreateSession godoc
// @Summary      Create session
// @Description  Creates a session for a course. Times are RFC3339 and get truncated to whole minutes; the range must lie in the future and must not overlap another session of the same course. Capacity defaults to 5.
// @Tags         sessions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateSessionRequest  true  "Session data"
// @Success      201      {object}  Session
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /admin/sessions [post]
func (h *Handler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// UpdateSession godoc
// @Summary      Update session
// @Description  Merges provided fields onto the session and re-validates the whole range; the session's own record is excluded from overlap detection.
// @Tags         sessions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        sessionID  path      int                   true  "Session ID"
// @Param        request    body      UpdateSessionRequest  true  "Fields to update"
// @Success      200        {object}  Session
// @Failure      400        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Failure      409        {object}  api.ErrorResponse
// @Router       /admin/sessions/{sessionID} [patch]
func (h *Handler) UpdateSession(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("sessionID"))
	if err != nil {
		api.Error(c, http.StatusBadRequest, "Invalid session ID")
		return
	}

	var req UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if errs := api.ValidateStruct(req); len(errs) > 0 {
		api.RespondWithValidationErrors(c, errs)
		return
	}

	session, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// DeleteSession godoc
// @Summary      Delete session
// @Description  Deletes a session. Fails with 409 while the session has active bookings.
// @Tags         sessions
// @Security     BearerAuth
// @Produce      json
// @Param        sessionID  path      int  true  "Session ID"
// @Success      200        {object}  api.MessageResponse
// @Failure      404        {object}  api.ErrorResponse
// @Failure      409        {object}  api.ErrorResponse
// @Router       /admin/sessions/{sessionID} [delete]
func (h *Handler) DeleteSession(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("sessionID"))
	if err != nil {
		api.Error(c, http.StatusBadRequest, "Invalid session ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Session deleted"})
}

// GetSession godoc
// @Summary      Get session by id
// @Tags         sessions
// @Security     BearerAuth
// @Produce      json
// @Param        sessionID  path      int  true  "Session ID"
// @Success      200        {object}  SessionWithAvailability
// @Failure      404        {object}  api.ErrorResponse
// @Router       /sessions/{sessionID} [get]
func (h *Handler) GetSession(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("sessionID"))
	if err != nil {
		api.Error(c, http.StatusBadRequest, "Invalid session ID")
		return
	}

	session, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// ListSessions godoc
// @Summary      List sessions
// @Description  Returns a page of sessions joined with their active booking counts.
// @Tags         sessions
// @Security     BearerAuth
// @Produce      json
// @Param        page  query     int     false  "Page number (0-based)"
// @Param        size  query     int     false  "Page size"
// @Param        sort  query     string  false  "Sort order: start_time|end_time|id, optionally with ,asc or ,desc"
// @Success      200   {object}  api.Page[SessionWithAvailability]
// @Router       /sessions [get]
func (h *Handler) ListSessions(c *gin.Context) {
	page, size := api.PageParams(c)

	sort, err := ParseSort(c.Query("sort"))
	if err != nil {
		api.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.List(c.Request.Context(), page, size, sort)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

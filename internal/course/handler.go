package course

import (
	"errors"
	"net/http"
	"strconv"

	"slotbook/internal/api"
	"slotbook/internal/logger"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// CreateCourse godoc
// @Summary      Create course
// @Description  Creates a new course. Requires TRAINER or ADMIN role.
// @Tags         courses
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateCourseRequest  true  "Course data"
// @Success      201      {object}  Course
// @Failure      400      {object}  api.ErrorResponse
// @Failure      403      {object}  api.ErrorResponse
// @Router       /admin/courses [post]
func (h *Handler) CreateCourse(c *gin.Context) {
	var req CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	course, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		logger.Error("failed to create course", "error", err)
		api.InternalError(c)
		return
	}

	c.JSON(http.StatusCreated, course)
}

// ListCourses godoc
// @Summary      List courses
// @Tags         courses
// @Security     BearerAuth
// @Produce      json
// @Param        page  query     int  false  "Page number (0-based)"
// @Param        size  query     int  false  "Page size"
// @Success      200   {object}  api.Page[Course]
// @Router       /courses [get]
func (h *Handler) ListCourses(c *gin.Context) {
	page, size := api.PageParams(c)

	result, err := h.service.List(c.Request.Context(), page, size)
	if err != nil {
		logger.Error("failed to list courses", "error", err)
		api.InternalError(c)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCourse godoc
// @Summary      Get course by id
// @Tags         courses
// @Security     BearerAuth
// @Produce      json
// @Param        courseID  path      int  true  "Course ID"
// @Success      200       {object}  Course
// @Failure      404       {object}  api.ErrorResponse
// @Router       /courses/{courseID} [get]
func (h *Handler) GetCourse(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("courseID"))
	if err != nil {
		api.Error(c, http.StatusBadRequest, "Invalid course ID")
		return
	}

	course, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrCourseNotFound) {
			api.Error(c, http.StatusNotFound, "Course not found")
			return
		}
		logger.Error("failed to get course", "error", err)
		api.InternalError(c)
		return
	}

	c.JSON(http.StatusOK, course)
}

// UpdateCourse godoc
// @Summary      Update course
// @Description  Merges the provided fields onto the existing course.
// @Tags         courses
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        courseID  path      int                  true  "Course ID"
// @Param        request   body      UpdateCourseRequest  true  "Fields to update"
// @Success      200       {object}  Course
// @Failure      400       {object}  api.ErrorResponse
// @Failure      404       {object}  api.ErrorResponse
// @Router       /admin/courses/{courseID} [patch]
func (h *Handler) UpdateCourse(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("courseID"))
	if err != nil {
		api.Error(c, http.StatusBadRequest, "Invalid course ID")
		return
	}

	var req UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if errs := api.ValidateStruct(req); len(errs) > 0 {
		api.RespondWithValidationErrors(c, errs)
		return
	}

	course, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, ErrCourseNotFound) {
			api.Error(c, http.StatusNotFound, "Course not found")
			return
		}
		logger.Error("failed to update course", "error", err)
		api.InternalError(c)
		return
	}

	c.JSON(http.StatusOK, course)
}

// DeleteCourse godoc
// @Summary      Delete course
// @Description  Deletes a course. Fails while the course still has sessions.
// @Tags         courses
// @Security     BearerAuth
// @Produce      json
// @Param        courseID  path      int  true  "Course ID"
// @Success      200       {object}  api.MessageResponse
// @Failure      404       {object}  api.ErrorResponse
// @Failure      409       {object}  api.ErrorResponse
// @Router       /admin/courses/{courseID} [delete]
func (h *Handler) DeleteCourse(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("courseID"))
	if err != nil {
		api.Error(c, http.StatusBadRequest, "Invalid course ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, ErrCourseNotFound):
			api.Error(c, http.StatusNotFound, "Course not found")
		case errors.Is(err, ErrCourseHasSessions):
			api.Error(c, http.StatusConflict, "Course still has sessions")
		default:
			logger.Error("failed to delete course", "error", err)
			api.InternalError(c)
		}
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Course deleted"})
}

package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the envelope for every error surfaced to clients. It
// carries the originating path and time so failed requests can be matched
// against server logs.
type ErrorResponse struct {
	Error     string    `json:"error" example:"something went wrong"`
	Timestamp time.Time `json:"timestamp"`
	Path      string    `json:"path" example:"/sessions"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// Error writes msg as an ErrorResponse with the given status.
func Error(c *gin.Context, status int, msg string) {
	c.JSON(status, ErrorResponse{
		Error:     msg,
		Timestamp: time.Now().UTC(),
		Path:      c.Request.URL.Path,
	})
}

// InternalError hides the underlying cause from the client; callers are
// expected to log it.
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "internal server error")
}

// Package handlers implements the HTTP endpoints of the records API: the
// import trigger and the authenticated read endpoints over club records,
// personal bests and the import audit log.
//
// Every failure is answered with ErrorResponse:
//
//	HTTP/1.1 429 Too Many Requests
//	{
//	  "error": "monthly import quota exceeded: 3 of 3 imports used this month",
//	  "code": "quota_exceeded",
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000"
//	}
package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/swim-records/internal/http/middleware"
)

// ErrorResponse is the error envelope returned by all endpoints.
type ErrorResponse struct {
	// Human-readable message, always present
	Error string `json:"error" example:"Internal error: database is locked"`
	// Stable, machine-readable code (see errors.go)
	Code string `json:"code" example:"internal_error"`
	// Echo of X-Request-ID
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
}

// fail aborts with the error envelope. 5xx are logged with the request
// logger.
func fail(c *gin.Context, status int, code, msg string) {
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("error", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     msg,
		Code:      code,
		RequestID: c.Writer.Header().Get("X-Request-ID"),
	})
}

// Fail is the exported fail, for router fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, body any) {
	c.JSON(http.StatusOK, body)
}

// weakETag sets a weak validator built from a row count and the latest
// change, and reports whether the client copy is still fresh (304 sent).
func weakETag(c *gin.Context, scope string, count int64, latest *time.Time) bool {
	var ts int64
	if latest != nil {
		ts = latest.UnixNano()
	}
	etag := fmt.Sprintf(`W/"%s:%d:%d"`, scope, count, ts)
	c.Header("ETag", etag)
	if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
		c.Status(http.StatusNotModified)
		return true
	}
	return false
}

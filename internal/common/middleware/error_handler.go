package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	apperrors "github.com/open-builders/gws-backend/internal/common/errors"
)

// RetryAfterSeconds is sent with retryable 503 responses.
const RetryAfterSeconds = 30

// Recovery turns panics into a 500 error envelope.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Error().
			Str("request_id", getRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("panic", fmt.Sprintf("%v", recovered)).
			Str("stack", string(debug.Stack())).
			Msg("Panic recovered")

		RespondError(c, apperrors.New(apperrors.ErrCodeInternal, "Internal server error"))
	})
}

// RequestID propagates X-Request-ID or generates one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success   bool                `json:"success"`
	Error     *apperrors.AppError `json:"error"`
	Timestamp time.Time           `json:"timestamp"`
	RequestID string              `json:"request_id"`
	Path      string              `json:"path,omitempty"`
	Method    string              `json:"method,omitempty"`
}

// RespondError writes appErr and aborts the chain.
func RespondError(c *gin.Context, appErr *apperrors.AppError) {
	requestID := getRequestID(c)
	appErr.WithRequestID(requestID)

	status := appErr.HTTPStatus()
	if status == http.StatusServiceUnavailable && appErr.Retryable {
		c.Header("Retry-After", strconv.Itoa(RetryAfterSeconds))
	}

	logError(c, appErr, status)
	c.AbortWithStatusJSON(status, ErrorResponse{
		Success:   false,
		Error:     appErr,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
		Path:      c.Request.URL.Path,
		Method:    c.Request.Method,
	})
}

func logError(c *gin.Context, appErr *apperrors.AppError, status int) {
	var ev *zerolog.Event
	switch {
	case status >= http.StatusInternalServerError:
		ev = log.Error()
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		ev = log.Warn()
	default:
		ev = log.Info()
	}
	ev = ev.
		Str("request_id", getRequestID(c)).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Str("error_code", string(appErr.Code)).
		Int("status", status)
	if userID := c.GetString("user_id"); userID != "" {
		ev = ev.Str("user_id", userID)
	}
	if appErr.Cause != nil {
		ev = ev.Err(appErr.Cause)
	}
	ev.Msg(appErr.Message)
}

func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return "unknown"
}

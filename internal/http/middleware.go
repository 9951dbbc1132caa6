package http

import (
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/almasmith/mercer-library/internal/logging"
	"github.com/almasmith/mercer-library/internal/problem"
)

const (
	CorrelationIDHeader     = "X-Correlation-ID"
	ContextKeyCorrelationID = "correlation_id"

	maxCorrelationIDLength = 64
)

// CorrelationMiddleware echoes the caller's X-Correlation-ID or generates
// one, and makes it available to the gin context and to request.Context.
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(CorrelationIDHeader))
		if id == "" || len(id) > maxCorrelationIDLength {
			id = strings.ReplaceAll(uuid.NewString(), "-", "")
		}

		c.Set(ContextKeyCorrelationID, id)
		c.Request = c.Request.WithContext(logging.ContextWithCorrelationID(c.Request.Context(), id))
		c.Header(CorrelationIDHeader, id)
		c.Next()
	}
}

// AccessLogMiddleware writes one logrus entry per request.
func AccessLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"client_ip":   c.ClientIP(),
		}
		if id := GetUserID(c); id != 0 {
			fields["user_id"] = id
		}

		entry := logging.WithContext(c.Request.Context()).WithFields(fields)
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.Error("request")
		case status >= http.StatusBadRequest:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	}
}

// RecoveryMiddleware turns a panic into a 500 problem response.
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logging.WithContext(c.Request.Context()).
					WithField("panic", err).
					WithField("stack", string(debug.Stack())).
					Error("Panic recovered")

				if c.Writer.Written() {
					c.Abort()
					return
				}
				problem.Abort(c, http.StatusInternalServerError, "an unexpected error occurred")
			}
		}()
		c.Next()
	}
}

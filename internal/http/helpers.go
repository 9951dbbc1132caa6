package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/almasmith/mercer-library/internal/auth"
	"github.com/almasmith/mercer-library/internal/logging"
	"github.com/almasmith/mercer-library/internal/problem"
	"github.com/almasmith/mercer-library/internal/validation"
)

// GetUserID extracts the authenticated user's ID from the Gin context.
func GetUserID(c *gin.Context) uint {
	return auth.GetUserID(c)
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request problem.
func respondBadRequest(c *gin.Context, message string) {
	problem.Respond(c, http.StatusBadRequest, message)
}

// respondValidation sends a 400 with per-field messages.
func respondValidation(c *gin.Context, errs validation.Errors) {
	problem.Validation(c, errs)
}

// respondNotFound sends a 404 Not Found problem.
func respondNotFound(c *gin.Context, resource string) {
	problem.Respond(c, http.StatusNotFound, resource+" not found")
}

// respondPreconditionFailed sends a 412 that carries the current tag so the
// client can refetch or retry.
func respondPreconditionFailed(c *gin.Context, currentTag string) {
	if currentTag != "" {
		c.Header("ETag", currentTag)
	}
	problem.Respond(c, http.StatusPreconditionFailed, "the resource was modified by another request")
}

// respondInternalError logs the error and sends a 500 problem.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	logging.WithContext(c.Request.Context()).WithError(err).
		WithField("operation", context).
		Error("Internal error")
	problem.Respond(c, http.StatusInternalServerError, "an unexpected error occurred")
}

// --- Parameter Parsing ---

// parseBookID reads the :id parameter. Anything that is not a UUID cannot
// name a book, so it is answered with 404 rather than 400.
func parseBookID(c *gin.Context) (string, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondNotFound(c, "book")
		return "", false
	}
	return id.String(), true
}

// queryInt parses an optional integer query parameter.
func queryInt(c *gin.Context, name string, errs validation.Errors) *int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		errs.Add(name, name+" must be an integer")
		return nil
	}
	return &v
}

// queryTime parses an optional RFC 3339 query parameter. A bare date is
// accepted as midnight UTC.
func queryTime(c *gin.Context, name string, errs validation.Errors) *time.Time {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil
	}
	t, err := parseTime(raw)
	if err != nil {
		errs.Add(name, name+" must be an RFC 3339 timestamp")
		return nil
	}
	t = t.UTC()
	return &t
}

func parseTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Time{}, errors.New("invalid time")
}

// bindJSON decodes the request body and answers 400 on malformed JSON.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondBadRequest(c, "request body must be valid JSON")
		return false
	}
	return true
}

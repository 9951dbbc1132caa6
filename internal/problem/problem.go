// Package problem writes RFC 9457 problem details from gin handlers and
// middleware.
package problem

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/almasmith/mercer-library/internal/logging"
)

const ContentType = "application/problem+json"

// Details is the problem+json body.
type Details struct {
	Type     string              `json:"type"`
	Title    string              `json:"title"`
	Status   int                 `json:"status"`
	Detail   string              `json:"detail,omitempty"`
	Instance string              `json:"instance"`
	Errors   map[string][]string `json:"errors,omitempty"`
}

// New builds a problem for the current request. The instance carries the
// correlation id so that a report can be matched to the server log.
func New(c *gin.Context, status int, detail string) Details {
	instance := c.Request.URL.Path
	if cid := logging.CorrelationID(c.Request.Context()); cid != "" {
		instance += "?cid=" + cid
	}
	return Details{
		Type:     "about:blank",
		Title:    http.StatusText(status),
		Status:   status,
		Detail:   detail,
		Instance: instance,
	}
}

// Write sends p as the response.
func Write(c *gin.Context, p Details) {
	c.Header("Content-Type", ContentType)
	c.JSON(p.Status, p)
}

// Respond sends a problem with the given status and detail.
func Respond(c *gin.Context, status int, detail string) {
	Write(c, New(c, status, detail))
}

// Abort stops the handler chain and sends a problem.
func Abort(c *gin.Context, status int, detail string) {
	c.Abort()
	Respond(c, status, detail)
}

// Validation sends a 400 with per-field messages.
func Validation(c *gin.Context, errs map[string][]string) {
	p := New(c, http.StatusBadRequest, "One or more validation errors occurred.")
	p.Errors = errs
	Write(c, p)
}

package problem

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almasmith/mercer-library/internal/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, handler gin.HandlerFunc, cid string) (*httptest.ResponseRecorder, Details) {
	t.Helper()
	router := gin.New()
	router.GET("/things/:id", func(c *gin.Context) {
		if cid != "" {
			c.Request = c.Request.WithContext(logging.ContextWithCorrelationID(c.Request.Context(), cid))
		}
		c.Next()
	}, handler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/things/1", nil))

	var body Details
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestRespond(t *testing.T) {
	w, body := serve(t, func(c *gin.Context) {
		Respond(c, http.StatusNotFound, "book not found")
	}, "abc123")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, ContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, "Not Found", body.Title)
	assert.Equal(t, 404, body.Status)
	assert.Equal(t, "book not found", body.Detail)
	assert.Equal(t, "/things/1?cid=abc123", body.Instance)
}

func TestAbortStopsChain(t *testing.T) {
	router := gin.New()
	reached := false
	router.GET("/x", func(c *gin.Context) {
		Abort(c, http.StatusUnauthorized, "authentication required")
	}, func(c *gin.Context) {
		reached = true
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, reached)
}

func TestValidation(t *testing.T) {
	w, body := serve(t, func(c *gin.Context) {
		Validation(c, map[string][]string{"title": {"title is required"}})
	}, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "/things/1", body.Instance)
	assert.Equal(t, []string{"title is required"}, body.Errors["title"])
}

package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/almasmith/mercer-library/internal/logging"
)

func TestCorrelationMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(CorrelationMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "%s|%s", c.GetString(ContextKeyCorrelationID), logging.CorrelationID(c.Request.Context()))
	})

	t.Run("echoes the caller's id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(CorrelationIDHeader, "abc-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "abc-123", w.Header().Get(CorrelationIDHeader))
		assert.Equal(t, "abc-123|abc-123", w.Body.String())
	})

	t.Run("generates an id without dashes", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		id := w.Header().Get(CorrelationIDHeader)
		assert.Len(t, id, 32)
		assert.NotContains(t, id, "-")
		assert.Equal(t, id+"|"+id, w.Body.String())
	})
}

func TestRecoveryMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(CorrelationMiddleware(), AccessLogMiddleware(), RecoveryMiddleware())
	router.GET("/boom", func(c *gin.Context) {
		panic("kaboom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	p := decodeProblem(t, w)
	assert.NotContains(t, p.Detail, "kaboom")
}

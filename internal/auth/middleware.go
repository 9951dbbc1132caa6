package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/almasmith/mercer-library/internal/problem"
)

// Context keys for user data
const (
	ContextKeyUserID = "auth_user_id"
	ContextKeyEmail  = "auth_email"
)

// AccessTokenQueryParam carries the token for clients that cannot set
// headers, such as a browser EventSource.
const AccessTokenQueryParam = "access_token"

// Middleware authenticates requests with bearer access tokens.
type Middleware struct {
	tokens     *TokenIssuer
	allowQuery bool
}

// NewMiddleware creates header-only authentication middleware.
func NewMiddleware(tokens *TokenIssuer) *Middleware {
	return &Middleware{tokens: tokens}
}

// WithQueryToken returns a copy that also accepts the access_token query
// parameter when the Authorization header is absent.
func (m *Middleware) WithQueryToken() *Middleware {
	return &Middleware{tokens: m.tokens, allowQuery: true}
}

// Handler returns a Gin middleware handler that rejects unauthenticated
// requests with 401.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := m.authenticate(c)
		if claims == nil {
			c.Header("WWW-Authenticate", `Bearer realm="api"`)
			problem.Abort(c, http.StatusUnauthorized, "authentication required")
			return
		}

		userID, _ := claims.UserID()
		c.Set(ContextKeyUserID, userID)
		c.Set(ContextKeyEmail, claims.Email)
		c.Next()
	}
}

func (m *Middleware) authenticate(c *gin.Context) *Claims {
	raw := bearerToken(c.GetHeader("Authorization"))
	if raw == "" && m.allowQuery {
		raw = c.Query(AccessTokenQueryParam)
	}
	if raw == "" {
		return nil
	}

	claims, err := m.tokens.Parse(raw)
	if err != nil {
		return nil
	}
	if _, err := claims.UserID(); err != nil {
		return nil
	}
	return claims
}

// bearerToken extracts the token from "Bearer <token>".
func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// GetUserID retrieves the authenticated user's ID from the context.
// Returns 0 if the request was not authenticated.
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyUserID); exists {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return 0
}

// GetEmail retrieves the authenticated user's email from the context.
func GetEmail(c *gin.Context) string {
	return c.GetString(ContextKeyEmail)
}

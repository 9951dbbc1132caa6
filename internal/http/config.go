package http

import (
	"time"

	"github.com/almasmith/mercer-library/internal/auth"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Library LibraryService
	Auth    AuthService
	Tokens  *auth.TokenIssuer

	// Realtime fan-out
	Hub               Subscriber
	HeartbeatInterval time.Duration

	// Throttling (optional)
	AuthRateLimiter *auth.RateLimiter
	APIRateLimiter  *auth.RateLimiter

	// Readiness probe
	Database Pinger

	// Application info
	Version string
}

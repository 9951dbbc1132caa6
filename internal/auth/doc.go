// Package auth provides registration, login and request authentication
// for the API.
//
// Users sign in with email and password and receive a short-lived HS256
// access token. Every /api route expects it in the Authorization header:
//
//	Authorization: Bearer <token>
//
// The realtime stream also accepts it as the access_token query parameter,
// since browsers cannot set headers on an EventSource.
//
// # Configuration
//
//	JWT_SECRET=<at least 16 bytes>
//	JWT_ISSUER=mercer-library
//	JWT_AUDIENCE=mercer-library-clients
//	JWT_EXPIRES_MINUTES=60
//	AUTH_BCRYPT_COST=12
//	AUTH_MAX_LOGIN_ATTEMPTS=5
//	AUTH_LOCKOUT_DURATION=15m
//
// # Usage
//
//	tokens := auth.NewTokenIssuer(cfg.JWT)
//	authService := auth.NewService(userRepo, tokens, auditService, cfg.Auth)
//	router.Use(auth.NewMiddleware(tokens).Handler())
//
// Extract user in handlers:
//
//	userID := auth.GetUserID(c)
package auth
